// Package store persists registrations in the relational store and keeps a
// local JSON mirror for degraded operation when the database is unreachable.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
	pkgerrors "robolab-portal/pkg/errors"
	"robolab-portal/pkg/mirror"
)

// Source tells where a result came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// ErrNotFound no registration with the given ID.
var ErrNotFound = errors.New("registration not found")

// Outcome describes where an added registration ended up.
type Outcome struct {
	Source  Source
	Pending bool
}

// SyncResult summarizes a SyncPending run.
type SyncResult struct {
	Attempted int
	Synced    int
	Remaining int
	Failed    []string
}

// RegistrationStore is the persistence adapter for registrations.
type RegistrationStore struct {
	repo   repository.RegistrationRepository
	mirror *mirror.File[model.Registration]
	logger *zap.Logger
}

func New(repo repository.RegistrationRepository, m *mirror.File[model.Registration], logger *zap.Logger) *RegistrationStore {
	return &RegistrationStore{repo: repo, mirror: m, logger: logger}
}

// Add writes reg to the database. When the database cannot be reached the
// record is kept in the mirror as pending and the outcome reports SourceLocal.
func (s *RegistrationStore) Add(ctx context.Context, reg *model.Registration) (*Outcome, error) {
	err := s.repo.Create(ctx, reg)
	if err == nil {
		if mErr := s.mirror.Put(*reg, false); mErr != nil {
			s.logger.Warn("update mirror after insert", zap.String("id", reg.ID), zap.Error(mErr))
		}
		return &Outcome{Source: SourceRemote}, nil
	}

	classified := pkgerrors.Classify(err)
	if !pkgerrors.IsConnectivity(classified) {
		return nil, pkgerrors.Wrap("insert registration", err)
	}

	s.logger.Warn("database unreachable, keeping registration locally",
		zap.String("id", reg.ID), zap.Error(err))
	if mErr := s.mirror.Put(*reg, true); mErr != nil {
		return nil, fmt.Errorf("store registration locally: %w", errors.Join(classified, mErr))
	}
	return &Outcome{Source: SourceLocal, Pending: true}, nil
}

// GetAll returns every registration, newest first. Rows still pending in the
// mirror are included. On connectivity failure the mirror contents are
// returned with SourceLocal and no error.
func (s *RegistrationStore) GetAll(ctx context.Context) ([]model.Registration, Source, error) {
	remote, err := s.repo.List(ctx)
	if err != nil {
		classified := pkgerrors.Classify(err)
		if !pkgerrors.IsConnectivity(classified) {
			return nil, "", pkgerrors.Wrap("list registrations", err)
		}
		s.logger.Warn("database unreachable, serving registrations from mirror", zap.Error(err))
		local, mErr := s.mirror.All()
		if mErr != nil {
			return nil, "", fmt.Errorf("read mirror: %w", errors.Join(classified, mErr))
		}
		sortNewestFirst(local)
		return local, SourceLocal, nil
	}

	if mErr := s.mirror.Merge(remote); mErr != nil {
		s.logger.Warn("merge mirror", zap.Error(mErr))
	}
	pending, mErr := s.mirror.Pending()
	if mErr != nil {
		s.logger.Warn("read pending registrations", zap.Error(mErr))
	}
	out := append(remote, pending...)
	sortNewestFirst(out)
	return out, SourceRemote, nil
}

// Get returns one registration, falling back to the mirror when the
// database is unreachable.
func (s *RegistrationStore) Get(ctx context.Context, id string) (*model.Registration, Source, error) {
	reg, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return reg, SourceRemote, nil
	}

	classified := pkgerrors.Classify(err)
	switch pkgerrors.KindOf(classified) {
	case pkgerrors.KindNotFound:
		// may still be waiting for sync
		if local, ok, _ := s.mirror.Get(id); ok {
			return &local, SourceLocal, nil
		}
		return nil, "", ErrNotFound
	case pkgerrors.KindConnectivity:
		local, ok, mErr := s.mirror.Get(id)
		if mErr != nil {
			return nil, "", fmt.Errorf("read mirror: %w", errors.Join(classified, mErr))
		}
		if !ok {
			return nil, "", ErrNotFound
		}
		return &local, SourceLocal, nil
	}
	return nil, "", pkgerrors.Wrap("get registration", err)
}

// Delete removes a registration and its assignments and payments. A record
// that only exists in the mirror is removed there.
func (s *RegistrationStore) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap("delete registration", err)
	}
	if n == 0 {
		if _, ok, _ := s.mirror.Get(id); !ok {
			return ErrNotFound
		}
	}
	if mErr := s.mirror.Remove(id); mErr != nil {
		s.logger.Warn("remove from mirror", zap.String("id", id), zap.Error(mErr))
	}
	return nil
}

// SyncPending pushes mirror-only records to the database. Records that
// already exist remotely are marked synced. The run stops at the first
// connectivity failure.
func (s *RegistrationStore) SyncPending(ctx context.Context) (*SyncResult, error) {
	pending, err := s.mirror.Pending()
	if err != nil {
		return nil, fmt.Errorf("read pending registrations: %w", err)
	}

	result := &SyncResult{Attempted: len(pending)}
	var synced []string
	for i := range pending {
		reg := pending[i]
		inserted, err := s.repo.InsertIgnore(ctx, &reg)
		if err != nil {
			classified := pkgerrors.Classify(err)
			if pkgerrors.IsConnectivity(classified) {
				s.logger.Warn("sync aborted, database unreachable", zap.Error(err))
				break
			}
			s.logger.Error("sync registration", zap.String("id", reg.ID), zap.Error(err))
			result.Failed = append(result.Failed, reg.ID)
			continue
		}
		if !inserted {
			s.logger.Info("registration already present remotely", zap.String("id", reg.ID))
		}
		synced = append(synced, reg.ID)
	}

	if err := s.mirror.MarkSynced(synced...); err != nil {
		return nil, fmt.Errorf("mark synced: %w", err)
	}
	result.Synced = len(synced)
	result.Remaining = result.Attempted - result.Synced
	return result, nil
}

// PendingIDs returns the IDs of mirror-only records.
func (s *RegistrationStore) PendingIDs() (map[string]bool, error) {
	pending, err := s.mirror.Pending()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(pending))
	for _, r := range pending {
		out[r.ID] = true
	}
	return out, nil
}

func sortNewestFirst(list []model.Registration) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].SubmittedAt.After(list[j].SubmittedAt)
	})
}
