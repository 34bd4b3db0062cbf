package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"robolab-portal/config"
	"robolab-portal/internal/dto"
	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
	pkgerrors "robolab-portal/pkg/errors"
	"robolab-portal/pkg/receipt"
)

// ── Payment errors ──

var (
	ErrPaymentNotFound  = errors.New("payment record not found")
	ErrDuplicatePayment = errors.New("a payment record for this month already exists")
	ErrReceiptFailed    = errors.New("failed to render the receipt")
)

const monthLayout = "2006-01"

// PaymentService tuition tracking business interface
type PaymentService interface {
	Create(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error)
	List(ctx context.Context, req *dto.PaymentListRequest) ([]dto.PaymentResponse, error)
	UpdateStatus(ctx context.Context, id string, req *dto.UpdatePaymentStatusRequest) (*dto.PaymentResponse, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, req *dto.PaymentSummaryRequest) (*dto.PaymentSummaryResponse, error)
	// Generate creates the missing monthly records of every registration for
	// the configured number of months starting with the current one.
	Generate(ctx context.Context) (*dto.GeneratePaymentsResponse, error)
	Receipt(ctx context.Context, id string) ([]byte, string, error)
}

type paymentService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) PaymentService {
	return &paymentService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *paymentService) Create(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	reg, err := s.repo.Registration.GetByID(ctx, req.RegistrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}

	amount := s.cfg.Payments.DefaultTuition
	if req.Amount != nil {
		amount = *req.Amount
	}
	p := &model.StudentPayment{
		RegistrationID: reg.ID,
		StudentName:    reg.ChildName,
		MonthYear:      req.MonthYear,
		Amount:         amount,
		Notes:          req.Notes,
	}
	if err := s.repo.Payment.Create(ctx, p); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrDuplicatePayment
		}
		s.logger.Error("create payment failed", zap.String("registration_id", reg.ID), zap.Error(err))
		return nil, err
	}

	resp := toPaymentResponse(p)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *paymentService) List(ctx context.Context, req *dto.PaymentListRequest) ([]dto.PaymentResponse, error) {
	list, err := s.repo.Payment.List(ctx, repository.PaymentFilter{
		MonthYear:      req.MonthYear,
		RegistrationID: req.RegistrationID,
		IsPaid:         req.IsPaid,
	})
	if err != nil {
		s.logger.Error("list payments failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.PaymentResponse, 0, len(list))
	for i := range list {
		result = append(result, toPaymentResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── UpdateStatus ──────────────────────

// UpdateStatus marks a record paid (payment date today, method set) or unpaid
// (payment date and method cleared).
func (s *paymentService) UpdateStatus(ctx context.Context, id string, req *dto.UpdatePaymentStatusRequest) (*dto.PaymentResponse, error) {
	fields := map[string]interface{}{"is_paid": *req.IsPaid}
	if *req.IsPaid {
		today := s.now().UTC().Truncate(24 * time.Hour)
		fields["payment_date"] = datatypes.Date(today)
		fields["payment_method"] = req.PaymentMethod
	} else {
		fields["payment_date"] = nil
		fields["payment_method"] = ""
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}

	n, err := s.repo.Payment.UpdateFields(ctx, id, fields)
	if err != nil {
		s.logger.Error("update payment status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if n == 0 {
		return nil, ErrPaymentNotFound
	}

	p, err := s.repo.Payment.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toPaymentResponse(p)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *paymentService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Payment.Delete(ctx, id)
	if err != nil {
		s.logger.Error("delete payment failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// ────────────────────── Summary ──────────────────────

func (s *paymentService) Summary(ctx context.Context, req *dto.PaymentSummaryRequest) (*dto.PaymentSummaryResponse, error) {
	totals, err := s.repo.Payment.Totals(ctx, req.MonthYear)
	if err != nil {
		s.logger.Error("payment totals failed", zap.Error(err))
		return nil, err
	}

	resp := &dto.PaymentSummaryResponse{MonthYear: req.MonthYear, Currency: s.cfg.Payments.Currency}
	for _, t := range totals {
		resp.Records += t.Count
		if t.IsPaid {
			resp.PaidCount += t.Count
			resp.PaidTotal += t.Total
		} else {
			resp.UnpaidCount += t.Count
			resp.UnpaidTotal += t.Total
		}
	}
	return resp, nil
}

// ────────────────────── Generate ──────────────────────

func (s *paymentService) Generate(ctx context.Context) (*dto.GeneratePaymentsResponse, error) {
	regs, err := s.repo.Registration.List(ctx)
	if err != nil {
		s.logger.Error("load registrations for payment generation failed", zap.Error(err))
		return nil, err
	}

	months := MonthsFrom(s.now(), s.cfg.Payments.MonthsAhead)
	batch := make([]model.StudentPayment, 0, len(regs)*len(months))
	for i := range regs {
		for _, m := range months {
			batch = append(batch, model.StudentPayment{
				RegistrationID: regs[i].ID,
				StudentName:    regs[i].ChildName,
				MonthYear:      m,
				Amount:         s.cfg.Payments.DefaultTuition,
			})
		}
	}

	created, err := s.repo.Payment.CreateMissing(ctx, batch)
	if err != nil {
		s.logger.Error("generate payments failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("monthly payments generated",
		zap.Int("registrations", len(regs)),
		zap.Int("months", len(months)),
		zap.Int64("created", created),
	)
	return &dto.GeneratePaymentsResponse{
		Registrations: len(regs),
		Months:        months,
		Created:       created,
	}, nil
}

// MonthsFrom lists n consecutive "YYYY-MM" values starting with the month of from.
func MonthsFrom(from time.Time, n int) []string {
	first := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, first.AddDate(0, i, 0).Format(monthLayout))
	}
	return out
}

// ────────────────────── Receipt ──────────────────────

func (s *paymentService) Receipt(ctx context.Context, id string) ([]byte, string, error) {
	p, err := s.repo.Payment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPaymentNotFound
		}
		return nil, "", err
	}

	data := &receipt.Data{
		Number:         receipt.Number(p.ID, p.MonthYear),
		ProgramName:    s.cfg.Program.Name,
		IssuedAt:       s.now().UTC(),
		StudentName:    p.StudentName,
		RegistrationID: p.RegistrationID,
		MonthYear:      p.MonthYear,
		Amount:         p.Amount,
		Currency:       s.cfg.Payments.Currency,
		Paid:           p.IsPaid,
		PaymentMethod:  p.PaymentMethod,
		Notes:          p.Notes,
	}
	if p.PaymentDate != nil {
		d := time.Time(*p.PaymentDate)
		data.PaymentDate = &d
	}

	body, err := receipt.Render(data)
	if err != nil {
		s.logger.Error("render receipt failed", zap.String("id", id), zap.Error(err))
		return nil, "", ErrReceiptFailed
	}
	return body, receipt.Filename(data), nil
}

func toPaymentResponse(p *model.StudentPayment) dto.PaymentResponse {
	resp := dto.PaymentResponse{
		ID:             p.ID,
		RegistrationID: p.RegistrationID,
		StudentName:    p.StudentName,
		MonthYear:      p.MonthYear,
		Amount:         p.Amount,
		IsPaid:         p.IsPaid,
		PaymentMethod:  p.PaymentMethod,
		Notes:          p.Notes,
		CreatedAt:      p.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:      p.UpdatedAt.UTC().Format(timeLayout),
	}
	if p.PaymentDate != nil {
		resp.PaymentDate = time.Time(*p.PaymentDate).Format("2006-01-02")
	}
	return resp
}
