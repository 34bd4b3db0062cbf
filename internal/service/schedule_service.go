package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"robolab-portal/internal/dto"
	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
)

// ── Assignment errors ──

var (
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrDayNotInSlot        = errors.New("the time slot does not run on that day")
	ErrDuplicateAssignment = errors.New("student is already assigned to this slot on that day")
	ErrSlotFull            = errors.New("time slot is full")
)

// ScheduleService assigns registered students to weekly time slots.
type ScheduleService interface {
	Assign(ctx context.Context, req *dto.AssignStudentRequest) (*dto.ScheduleResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error)
	Remove(ctx context.Context, id string) error
}

type scheduleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewScheduleService creates a ScheduleService.
func NewScheduleService(repo *repository.Repository, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, logger: logger}
}

// ────────────────────── Assign ──────────────────────

// Assign checks the day against the slot, then issues the conditional insert
// that enforces uniqueness and capacity in the database.
func (s *scheduleService) Assign(ctx context.Context, req *dto.AssignStudentRequest) (*dto.ScheduleResponse, error) {
	reg, err := s.repo.Registration.GetByID(ctx, req.RegistrationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	slot, err := s.repo.TimeSlot.GetByID(ctx, req.TimeSlotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimeSlotNotFound
		}
		return nil, err
	}
	if !slot.HasDay(req.DayOfWeek) {
		return nil, ErrDayNotInSlot
	}

	sched := &model.StudentSchedule{
		RegistrationID: reg.ID,
		TimeSlotID:     slot.ID,
		DayOfWeek:      req.DayOfWeek,
		Notes:          req.Notes,
	}
	if err := s.repo.StudentSchedule.Assign(ctx, sched); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateAssignment):
			return nil, ErrDuplicateAssignment
		case errors.Is(err, repository.ErrSlotFull):
			return nil, ErrSlotFull
		case errors.Is(err, gorm.ErrRecordNotFound):
			// slot deleted between the lookup and the insert
			return nil, ErrTimeSlotNotFound
		}
		s.logger.Error("assign student failed",
			zap.String("registration_id", reg.ID),
			zap.String("time_slot_id", slot.ID),
			zap.Error(err),
		)
		return nil, err
	}

	sched.Registration = reg
	sched.TimeSlot = slot
	s.logger.Info("student assigned",
		zap.String("registration_id", reg.ID),
		zap.String("time_slot_id", slot.ID),
		zap.String("day", req.DayOfWeek),
	)
	resp := toScheduleResponse(sched)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error) {
	list, err := s.repo.StudentSchedule.List(ctx, repository.ScheduleFilter{
		TimeSlotID:     req.TimeSlotID,
		RegistrationID: req.RegistrationID,
		DayOfWeek:      req.DayOfWeek,
	})
	if err != nil {
		s.logger.Error("list assignments failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ScheduleResponse, 0, len(list))
	for i := range list {
		result = append(result, toScheduleResponse(&list[i]))
	}
	return result, nil
}

// ────────────────────── Remove ──────────────────────

func (s *scheduleService) Remove(ctx context.Context, id string) error {
	n, err := s.repo.StudentSchedule.Delete(ctx, id)
	if err != nil {
		s.logger.Error("remove assignment failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func toScheduleResponse(s *model.StudentSchedule) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ID:             s.ID,
		RegistrationID: s.RegistrationID,
		TimeSlotID:     s.TimeSlotID,
		DayOfWeek:      s.DayOfWeek,
		Notes:          s.Notes,
		AssignedAt:     s.AssignedAt.UTC().Format(time.RFC3339),
	}
	if s.Registration != nil {
		resp.ChildName = s.Registration.ChildName
		resp.ParentName = s.Registration.ParentName
	}
	if s.TimeSlot != nil {
		resp.TimeSlotName = s.TimeSlot.Name
		resp.StartTime = s.TimeSlot.StartTime
		resp.EndTime = s.TimeSlot.EndTime
	}
	return resp
}
