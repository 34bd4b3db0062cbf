package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"robolab-portal/internal/dto"
	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
)

// ── Time slot errors ──

var (
	ErrTimeSlotNotFound    = errors.New("time slot not found")
	ErrInvalidTimeRange    = errors.New("start time must be before end time")
	ErrCapacityBelowActual = errors.New("capacity is below the number of assigned students")
)

// TimeSlotService time slot business interface
type TimeSlotService interface {
	Create(ctx context.Context, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error)
	List(ctx context.Context, req *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest) (*dto.TimeSlotResponse, error)
	Delete(ctx context.Context, id string) error
}

type timeSlotService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeSlotService creates a TimeSlotService.
func NewTimeSlotService(repo *repository.Repository, logger *zap.Logger) TimeSlotService {
	return &timeSlotService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *timeSlotService) Create(ctx context.Context, req *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	// HH:MM compares correctly as a string
	if req.StartTime >= req.EndTime {
		return nil, ErrInvalidTimeRange
	}

	slot := &model.TimeSlot{
		Name:        req.Name,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Days:        req.Days,
		MaxCapacity: req.MaxCapacity,
		Description: req.Description,
	}
	if err := s.repo.TimeSlot.Create(ctx, slot); err != nil {
		s.logger.Error("create time slot failed", zap.Error(err))
		return nil, err
	}

	return toTimeSlotResponse(slot, 0), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *timeSlotService) GetByID(ctx context.Context, id string) (*dto.TimeSlotResponse, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		s.logger.Error("load time slot failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	assigned, err := s.repo.StudentSchedule.CountBySlot(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTimeSlotResponse(slot, int(assigned)), nil
}

// ────────────────────── List ──────────────────────

// List returns every slot with capacity figures recomputed from the current
// assignments.
func (s *timeSlotService) List(ctx context.Context, req *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error) {
	slots, err := s.repo.TimeSlot.List(ctx)
	if err != nil {
		s.logger.Error("list time slots failed", zap.Error(err))
		return nil, err
	}
	counts, err := s.repo.TimeSlot.AssignedCounts(ctx)
	if err != nil {
		s.logger.Error("count assignments failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeSlotResponse, 0, len(slots))
	for i := range slots {
		if req.Day != "" && !slots[i].HasDay(req.Day) {
			continue
		}
		result = append(result, *toTimeSlotResponse(&slots[i], counts[slots[i].ID]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *timeSlotService) Update(ctx context.Context, id string, req *dto.UpdateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	slot, err := s.repo.TimeSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		s.logger.Error("load time slot failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		slot.Name = *req.Name
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if len(req.Days) > 0 {
		slot.Days = req.Days
	}
	if req.MaxCapacity != nil {
		slot.MaxCapacity = *req.MaxCapacity
	}
	if req.Description != nil {
		slot.Description = *req.Description
	}
	if slot.StartTime >= slot.EndTime {
		return nil, ErrInvalidTimeRange
	}

	assigned, err := s.repo.StudentSchedule.CountBySlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if int64(slot.MaxCapacity) < assigned {
		return nil, ErrCapacityBelowActual
	}

	if err := s.repo.TimeSlot.Update(ctx, slot); err != nil {
		s.logger.Error("update time slot failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTimeSlotResponse(slot, int(assigned)), nil
}

// ────────────────────── Delete ──────────────────────

// Delete removes the slot and every assignment to it.
func (s *timeSlotService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.TimeSlot.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete time slot failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrTimeSlotNotFound
	}
	s.logger.Info("time slot deleted", zap.String("id", id))
	return nil
}

// ── helpers ──

func toTimeSlotResponse(slot *model.TimeSlot, assigned int) *dto.TimeSlotResponse {
	available := slot.MaxCapacity - assigned
	if available < 0 {
		available = 0
	}
	days := []string(slot.Days)
	if days == nil {
		days = []string{}
	}
	return &dto.TimeSlotResponse{
		ID:          slot.ID,
		Name:        slot.Name,
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		Days:        days,
		MaxCapacity: slot.MaxCapacity,
		Description: slot.Description,
		Assigned:    assigned,
		Available:   available,
		Selectable:  available > 0,
		CreatedAt:   slot.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:   slot.UpdatedAt.UTC().Format(timeLayout),
	}
}

const timeLayout = "2006-01-02T15:04:05Z"
