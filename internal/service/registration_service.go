package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"robolab-portal/config"
	"robolab-portal/internal/dto"
	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
	"robolab-portal/internal/store"
)

// ── Registration errors ──

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrForbidden            = errors.New("administrator role required")
	ErrExportFailed         = errors.New("failed to build the export file")
)

// RegistrationStore is the persistence adapter the registration service
// works against.
type RegistrationStore interface {
	Add(ctx context.Context, reg *model.Registration) (*store.Outcome, error)
	GetAll(ctx context.Context) ([]model.Registration, store.Source, error)
	Get(ctx context.Context, id string) (*model.Registration, store.Source, error)
	Delete(ctx context.Context, id string) error
	SyncPending(ctx context.Context) (*store.SyncResult, error)
	PendingIDs() (map[string]bool, error)
}

// RegistrationService registration business interface
type RegistrationService interface {
	Submit(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.CreateRegistrationResponse, error)
	List(ctx context.Context, req *dto.RegistrationListRequest) (*dto.RegistrationListResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RegistrationResponse, error)
	// Delete removes a registration after verifying that callerID holds the
	// admin role.
	Delete(ctx context.Context, id, callerID string) error
	Stats(ctx context.Context) (*dto.RegistrationStatsResponse, error)
	Export(ctx context.Context, req *dto.RegistrationListRequest) (*bytes.Buffer, string, error)
	Sync(ctx context.Context) (*dto.SyncResponse, error)
}

type registrationService struct {
	cfg      *config.Config
	store    RegistrationStore
	repo     *repository.Repository
	notifier *Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewRegistrationService creates a RegistrationService.
func NewRegistrationService(
	cfg *config.Config,
	st RegistrationStore,
	repo *repository.Repository,
	notifier *Notifier,
	logger *zap.Logger,
) RegistrationService {
	return &registrationService{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── Submit ──────────────────────

func (s *registrationService) Submit(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.CreateRegistrationResponse, error) {
	now := s.now().UTC()
	id, err := NewRegistrationID(now)
	if err != nil {
		return nil, fmt.Errorf("generate registration id: %w", err)
	}

	reg := &model.Registration{
		ID:                    id,
		ParentName:            strings.TrimSpace(req.ParentName),
		ParentEmail:           strings.TrimSpace(req.ParentEmail),
		ParentPhone:           strings.TrimSpace(req.ParentPhone),
		EmergencyContactName:  strings.TrimSpace(req.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(req.EmergencyContactPhone),
		ChildName:             strings.TrimSpace(req.ChildName),
		ChildAge:              strings.TrimSpace(req.ChildAge),
		ChildGrade:            strings.TrimSpace(req.ChildGrade),
		ChildSchool:           strings.TrimSpace(req.ChildSchool),
		MedicalNotes:          strings.TrimSpace(req.MedicalNotes),
		PreferredTiming:       req.PreferredTiming,
		AlternateTiming:       req.AlternateTiming,
		HasExperience:         req.HasExperience,
		ExperienceDescription: strings.TrimSpace(req.ExperienceDescription),
		InterestLevel:         req.InterestLevel,
		HearAboutUs:           req.HearAboutUs,
		PhotoConsent:          req.PhotoConsent,
		WaiverAgreement:       req.WaiverAgreement,
		TShirtSize:            req.TShirtSize,
		SpecialRequests:       strings.TrimSpace(req.SpecialRequests),
		VolunteerInterest:     req.VolunteerInterest,
		SubmittedAt:           now,
	}

	outcome, err := s.store.Add(ctx, reg)
	if err != nil {
		s.logger.Error("store registration failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := &dto.CreateRegistrationResponse{
		ID:          reg.ID,
		SubmittedAt: reg.SubmittedAt.Format(time.RFC3339),
		Source:      string(outcome.Source),
		Message:     "Registration received. A confirmation email is on its way.",
	}
	if outcome.Pending {
		resp.Message = "Registration received and saved locally. It will be filed once the database is reachable."
	}
	resp.Warnings = s.notifier.RegistrationReceived(ctx, reg)

	s.logger.Info("registration submitted",
		zap.String("id", reg.ID),
		zap.String("source", resp.Source),
	)
	return resp, nil
}

// ────────────────────── List ──────────────────────

func (s *registrationService) List(ctx context.Context, req *dto.RegistrationListRequest) (*dto.RegistrationListResponse, error) {
	records, source, err := s.store.GetAll(ctx)
	if err != nil {
		s.logger.Error("load registrations failed", zap.Error(err))
		return nil, err
	}

	filtered := FilterRegistrations(records, req.Term, req.Field, req.ProgramType, s.cfg.Program.Cutoff())
	pageSize := req.GetPageSize()
	p := Paginate(len(filtered), req.GetPage(), pageSize)

	pending := s.pendingIDs()
	list := make([]dto.RegistrationResponse, 0, p.End-p.Start)
	for i := p.Start; i < p.End; i++ {
		list = append(list, s.toRegistrationResponse(&filtered[i], pending[filtered[i].ID]))
	}

	return &dto.RegistrationListResponse{
		List:     list,
		Page:     p.Page,
		PageSize: pageSize,
		Total:    len(filtered),
		Pages:    p.Pages,
		Source:   string(source),
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *registrationService) GetByID(ctx context.Context, id string) (*dto.RegistrationResponse, error) {
	reg, source, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRegistrationNotFound
		}
		s.logger.Error("load registration failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := s.toRegistrationResponse(reg, source == store.SourceLocal && s.pendingIDs()[reg.ID])
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *registrationService) Delete(ctx context.Context, id, callerID string) error {
	ok, err := s.repo.AdminUser.HasRole(ctx, callerID, model.RoleAdmin)
	if err != nil {
		s.logger.Error("role lookup failed", zap.String("user_id", callerID), zap.Error(err))
		return err
	}
	if !ok {
		s.logger.Warn("registration delete denied", zap.String("user_id", callerID), zap.String("id", id))
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRegistrationNotFound
		}
		s.logger.Error("delete registration failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("registration deleted", zap.String("id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── Stats ──────────────────────

func (s *registrationService) Stats(ctx context.Context) (*dto.RegistrationStatsResponse, error) {
	records, source, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.cfg.Program.Cutoff()
	resp := &dto.RegistrationStatsResponse{
		Total:        len(records),
		EarlyLabel:   s.cfg.Program.EarlyCohortLabel,
		LaterLabel:   s.cfg.Program.LaterCohortLabel,
		Cutoff:       cutoff.Format(time.RFC3339),
		PendingLocal: len(s.pendingIDs()),
		Source:       string(source),
	}
	for i := range records {
		if records[i].Cohort(cutoff) == model.ProgramEarly {
			resp.Early++
		} else {
			resp.Later++
		}
	}
	return resp, nil
}

// ────────────────────── Export ──────────────────────

// Export writes the filtered registrations to an xlsx workbook, one column
// per field of the registration field map.
func (s *registrationService) Export(ctx context.Context, req *dto.RegistrationListRequest) (*bytes.Buffer, string, error) {
	records, _, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, "", err
	}
	cutoff := s.cfg.Program.Cutoff()
	filtered := FilterRegistrations(records, req.Term, req.Field, req.ProgramType, cutoff)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Registrations"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", ErrExportFailed
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F6FB2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	headers := make([]interface{}, 0, len(model.RegistrationFields)+1)
	for _, m := range model.RegistrationFields {
		headers = append(headers, m.Label)
	}
	headers = append(headers, "Program")
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, "", ErrExportFailed
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	_ = f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle)
	_ = f.SetColWidth(sheet, "A", lastCol, 18)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i := range filtered {
		row := registrationRow(&filtered[i])
		row = append(row, s.cohortLabel(filtered[i].Cohort(cutoff)))
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			s.logger.Error("write export row failed", zap.Error(err))
			return nil, "", ErrExportFailed
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write export workbook failed", zap.Error(err))
		return nil, "", ErrExportFailed
	}
	filename := fmt.Sprintf("registrations_%s.xlsx", s.now().UTC().Format("20060102"))
	return buf, filename, nil
}

// registrationRow lays a registration out in model.RegistrationFields order.
func registrationRow(r *model.Registration) []interface{} {
	values := r.ColumnValues()
	row := make([]interface{}, 0, len(model.RegistrationFields))
	for _, m := range model.RegistrationFields {
		row = append(row, values[m.Column])
	}
	return row
}

// ────────────────────── Sync ──────────────────────

func (s *registrationService) Sync(ctx context.Context) (*dto.SyncResponse, error) {
	res, err := s.store.SyncPending(ctx)
	if err != nil {
		s.logger.Error("sync pending registrations failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("pending registrations synced",
		zap.Int("attempted", res.Attempted),
		zap.Int("synced", res.Synced),
		zap.Int("remaining", res.Remaining),
	)
	return &dto.SyncResponse{
		Attempted: res.Attempted,
		Synced:    res.Synced,
		Remaining: res.Remaining,
		Failed:    res.Failed,
	}, nil
}

// ── helpers ──

func (s *registrationService) pendingIDs() map[string]bool {
	ids, err := s.store.PendingIDs()
	if err != nil {
		s.logger.Warn("read pending registrations failed", zap.Error(err))
		return nil
	}
	return ids
}

func (s *registrationService) cohortLabel(p model.ProgramType) string {
	if p == model.ProgramEarly {
		return s.cfg.Program.EarlyCohortLabel
	}
	return s.cfg.Program.LaterCohortLabel
}

func (s *registrationService) toRegistrationResponse(r *model.Registration, pending bool) dto.RegistrationResponse {
	cohort := r.Cohort(s.cfg.Program.Cutoff())
	return dto.RegistrationResponse{
		ID:                    r.ID,
		ParentName:            r.ParentName,
		ParentEmail:           r.ParentEmail,
		ParentPhone:           r.ParentPhone,
		EmergencyContactName:  r.EmergencyContactName,
		EmergencyContactPhone: r.EmergencyContactPhone,
		ChildName:             r.ChildName,
		ChildAge:              r.ChildAge,
		ChildGrade:            r.ChildGrade,
		ChildSchool:           r.ChildSchool,
		MedicalNotes:          r.MedicalNotes,
		PreferredTiming:       r.PreferredTiming,
		AlternateTiming:       r.AlternateTiming,
		HasExperience:         r.HasExperience,
		ExperienceDescription: r.ExperienceDescription,
		InterestLevel:         r.InterestLevel,
		HearAboutUs:           r.HearAboutUs,
		PhotoConsent:          r.PhotoConsent,
		WaiverAgreement:       r.WaiverAgreement,
		TShirtSize:            r.TShirtSize,
		SpecialRequests:       r.SpecialRequests,
		VolunteerInterest:     r.VolunteerInterest,
		SubmittedAt:           r.SubmittedAt.UTC().Format(time.RFC3339),
		ProgramType:           string(cohort),
		ProgramLabel:          s.cohortLabel(cohort),
		Pending:               pending,
	}
}

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewRegistrationID returns "<base36 unix millis>-<6 random base36 chars>",
// uppercased.
func NewRegistrationID(now time.Time) (string, error) {
	suffix := make([]byte, 6)
	base := big.NewInt(int64(len(idAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", err
		}
		suffix[i] = idAlphabet[n.Int64()]
	}
	prefix := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return prefix + "-" + string(suffix), nil
}
