package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
	pkgerrors "robolab-portal/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := gdb.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return gdb
}

func newRegistration(id string, submitted time.Time) *model.Registration {
	return &model.Registration{
		ID:                    id,
		ParentName:            "Pat Parent",
		ParentEmail:           "pat@example.com",
		ParentPhone:           "555-010-0000",
		EmergencyContactName:  "Sam Sitter",
		EmergencyContactPhone: "555-010-0001",
		ChildName:             "Alex " + id,
		ChildAge:              "10",
		ChildGrade:            "5",
		ChildSchool:           "Maple Elementary",
		PreferredTiming:       "Weekday afternoons",
		InterestLevel:         "beginner",
		HearAboutUs:           "Friend",
		WaiverAgreement:       true,
		TShirtSize:            "YM",
		SubmittedAt:           submitted.UTC(),
	}
}

func newSlot(t *testing.T, repo *repository.Repository, capacity int) *model.TimeSlot {
	t.Helper()
	slot := &model.TimeSlot{
		Name:        "Robotics Basics",
		StartTime:   "15:30",
		EndTime:     "17:00",
		Days:        []string{"Monday", "Wednesday"},
		MaxCapacity: capacity,
	}
	if err := repo.TimeSlot.Create(context.Background(), slot); err != nil {
		t.Fatalf("create slot: %v", err)
	}
	return slot
}

// ────────── Registrations ──────────

func TestRegistration_RoundTrip(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()

	in := newRegistration("LX2K9Q-7H3JQ2", time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC))
	in.MedicalNotes = "peanut allergy"
	if err := repo.Registration.Create(ctx, in); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := repo.Registration.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	got := list[0]
	if got.ID != in.ID || got.ChildName != in.ChildName || got.MedicalNotes != in.MedicalNotes ||
		got.TShirtSize != in.TShirtSize || !got.WaiverAgreement || !got.SubmittedAt.Equal(in.SubmittedAt) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestRegistration_DuplicateID(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()

	reg := newRegistration("DUP-AAAAAA", time.Now())
	if err := repo.Registration.Create(ctx, reg); err != nil {
		t.Fatal(err)
	}
	err := repo.Registration.Create(ctx, newRegistration("DUP-AAAAAA", time.Now()))
	if !pkgerrors.IsDuplicate(err) {
		t.Errorf("err = %v, want duplicate", err)
	}

	inserted, err := repo.Registration.InsertIgnore(ctx, newRegistration("DUP-AAAAAA", time.Now()))
	if err != nil || inserted {
		t.Errorf("InsertIgnore existing = %v, %v", inserted, err)
	}
	inserted, err = repo.Registration.InsertIgnore(ctx, newRegistration("NEW-BBBBBB", time.Now()))
	if err != nil || !inserted {
		t.Errorf("InsertIgnore new = %v, %v", inserted, err)
	}
}

func TestRegistration_DeleteCascades(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()

	reg := newRegistration("DEL-AAAAAA", time.Now())
	_ = repo.Registration.Create(ctx, reg)
	slot := newSlot(t, repo, 3)
	if err := repo.StudentSchedule.Assign(ctx, &model.StudentSchedule{RegistrationID: reg.ID, TimeSlotID: slot.ID, DayOfWeek: "Monday"}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Payment.CreateMissing(ctx, []model.StudentPayment{{RegistrationID: reg.ID, StudentName: reg.ChildName, MonthYear: "2025-10", Amount: 150}}); err != nil {
		t.Fatal(err)
	}

	n, err := repo.Registration.Delete(ctx, reg.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	if _, err := repo.Registration.GetByID(ctx, reg.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("GetByID after delete err = %v", err)
	}
	left, _ := repo.StudentSchedule.List(ctx, repository.ScheduleFilter{})
	pays, _ := repo.Payment.List(ctx, repository.PaymentFilter{})
	if len(left) != 0 || len(pays) != 0 {
		t.Errorf("dependents left: %d schedules, %d payments", len(left), len(pays))
	}
}

// ────────── Assignments ──────────

func TestAssign_DuplicateTriple(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()

	reg := newRegistration("ASG-AAAAAA", time.Now())
	_ = repo.Registration.Create(ctx, reg)
	slot := newSlot(t, repo, 5)

	first := &model.StudentSchedule{RegistrationID: reg.ID, TimeSlotID: slot.ID, DayOfWeek: "Monday"}
	if err := repo.StudentSchedule.Assign(ctx, first); err != nil {
		t.Fatalf("first Assign: %v", err)
	}
	if first.ID == "" {
		t.Error("ID not set")
	}

	err := repo.StudentSchedule.Assign(ctx, &model.StudentSchedule{RegistrationID: reg.ID, TimeSlotID: slot.ID, DayOfWeek: "Monday"})
	if !errors.Is(err, repository.ErrDuplicateAssignment) {
		t.Errorf("second Assign err = %v, want ErrDuplicateAssignment", err)
	}

	// same student, other day is fine
	if err := repo.StudentSchedule.Assign(ctx, &model.StudentSchedule{RegistrationID: reg.ID, TimeSlotID: slot.ID, DayOfWeek: "Wednesday"}); err != nil {
		t.Errorf("other day Assign: %v", err)
	}
}

func TestAssign_Capacity(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()
	slot := newSlot(t, repo, 2)

	for i := 0; i < 3; i++ {
		reg := newRegistration(fmt.Sprintf("CAP-%06d", i), time.Now())
		if err := repo.Registration.Create(ctx, reg); err != nil {
			t.Fatal(err)
		}
		err := repo.StudentSchedule.Assign(ctx, &model.StudentSchedule{RegistrationID: reg.ID, TimeSlotID: slot.ID, DayOfWeek: "Monday"})
		switch {
		case i < 2 && err != nil:
			t.Fatalf("Assign %d: %v", i, err)
		case i == 2 && !errors.Is(err, repository.ErrSlotFull):
			t.Fatalf("Assign over capacity err = %v, want ErrSlotFull", err)
		}
	}

	counts, err := repo.TimeSlot.AssignedCounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[slot.ID] != 2 {
		t.Errorf("assigned = %d, want 2", counts[slot.ID])
	}
	n, _ := repo.StudentSchedule.CountBySlot(ctx, slot.ID)
	if n != 2 {
		t.Errorf("CountBySlot = %d", n)
	}
}

func TestAssign_UnknownSlot(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	err := repo.StudentSchedule.Assign(context.Background(), &model.StudentSchedule{
		RegistrationID: "X", TimeSlotID: "00000000-0000-0000-0000-000000000000", DayOfWeek: "Monday",
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want ErrRecordNotFound", err)
	}
}

func TestTimeSlot_DeleteCascades(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()

	reg := newRegistration("TSD-AAAAAA", time.Now())
	_ = repo.Registration.Create(ctx, reg)
	slot := newSlot(t, repo, 2)
	_ = repo.StudentSchedule.Assign(ctx, &model.StudentSchedule{RegistrationID: reg.ID, TimeSlotID: slot.ID, DayOfWeek: "Monday"})

	n, err := repo.TimeSlot.Delete(ctx, slot.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	list, _ := repo.StudentSchedule.List(ctx, repository.ScheduleFilter{RegistrationID: reg.ID})
	if len(list) != 0 {
		t.Errorf("assignments left: %d", len(list))
	}
}

func TestScheduleList_Preloads(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()

	reg := newRegistration("PRE-AAAAAA", time.Now())
	_ = repo.Registration.Create(ctx, reg)
	slot := newSlot(t, repo, 2)
	_ = repo.StudentSchedule.Assign(ctx, &model.StudentSchedule{RegistrationID: reg.ID, TimeSlotID: slot.ID, DayOfWeek: "Wednesday", Notes: "bring laptop"})

	list, err := repo.StudentSchedule.List(ctx, repository.ScheduleFilter{TimeSlotID: slot.ID, DayOfWeek: "Wednesday"})
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %v, %v", list, err)
	}
	if list[0].Registration == nil || list[0].Registration.ChildName != reg.ChildName {
		t.Error("registration not preloaded")
	}
	if list[0].TimeSlot == nil || list[0].TimeSlot.Name != slot.Name {
		t.Error("slot not preloaded")
	}
	if list[0].Notes != "bring laptop" {
		t.Errorf("notes = %q", list[0].Notes)
	}
}

// ────────── Payments ──────────

func TestPayments_CreateMissingIsIdempotent(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()

	reg := newRegistration("PAY-AAAAAA", time.Now())
	_ = repo.Registration.Create(ctx, reg)

	var batch []model.StudentPayment
	for m := 1; m <= 12; m++ {
		batch = append(batch, model.StudentPayment{
			RegistrationID: reg.ID, StudentName: reg.ChildName,
			MonthYear: fmt.Sprintf("2026-%02d", m), Amount: 150,
		})
	}
	again := make([]model.StudentPayment, len(batch))
	copy(again, batch)

	n, err := repo.Payment.CreateMissing(ctx, batch)
	if err != nil || n != 12 {
		t.Fatalf("first run = %d, %v", n, err)
	}
	for i := range again {
		again[i].ID = ""
	}
	n, err = repo.Payment.CreateMissing(ctx, again)
	if err != nil || n != 0 {
		t.Fatalf("second run = %d, %v", n, err)
	}

	list, _ := repo.Payment.List(ctx, repository.PaymentFilter{RegistrationID: reg.ID})
	if len(list) != 12 {
		t.Errorf("rows = %d, want 12", len(list))
	}
}

func TestPayments_DuplicateMonth(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()
	reg := newRegistration("PAY-BBBBBB", time.Now())
	_ = repo.Registration.Create(ctx, reg)

	p := &model.StudentPayment{RegistrationID: reg.ID, StudentName: "A", MonthYear: "2026-01", Amount: 150}
	if err := repo.Payment.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	err := repo.Payment.Create(ctx, &model.StudentPayment{RegistrationID: reg.ID, StudentName: "A", MonthYear: "2026-01", Amount: 150})
	if !pkgerrors.IsDuplicate(err) {
		t.Errorf("err = %v, want duplicate", err)
	}
}

func TestPayments_UpdateAndTotals(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()
	reg := newRegistration("PAY-CCCCCC", time.Now())
	_ = repo.Registration.Create(ctx, reg)

	_, _ = repo.Payment.CreateMissing(ctx, []model.StudentPayment{
		{RegistrationID: reg.ID, StudentName: "A", MonthYear: "2026-01", Amount: 150},
		{RegistrationID: reg.ID, StudentName: "A", MonthYear: "2026-02", Amount: 120.5},
	})
	list, _ := repo.Payment.List(ctx, repository.PaymentFilter{MonthYear: "2026-01"})
	if len(list) != 1 {
		t.Fatalf("list = %d", len(list))
	}

	n, err := repo.Payment.UpdateFields(ctx, list[0].ID, map[string]interface{}{"is_paid": true, "payment_method": "card"})
	if err != nil || n != 1 {
		t.Fatalf("UpdateFields = %d, %v", n, err)
	}

	paid := true
	onlyPaid, _ := repo.Payment.List(ctx, repository.PaymentFilter{IsPaid: &paid})
	if len(onlyPaid) != 1 || onlyPaid[0].PaymentMethod != "card" {
		t.Errorf("paid filter = %+v", onlyPaid)
	}

	totals, err := repo.Payment.Totals(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	var paidTotal, unpaidTotal float64
	for _, tt := range totals {
		if tt.IsPaid {
			paidTotal = tt.Total
		} else {
			unpaidTotal = tt.Total
		}
	}
	if paidTotal != 150 || unpaidTotal != 120.5 {
		t.Errorf("totals paid=%v unpaid=%v", paidTotal, unpaidTotal)
	}
}

// ────────── Admin users ──────────

func TestAdminUser_Roles(t *testing.T) {
	repo := repository.NewRepository(openTestDB(t))
	ctx := context.Background()

	admin := &model.AdminUser{Email: "Admin@RoboLab.example", Name: "Admin", PasswordHash: "x"}
	if err := repo.AdminUser.Create(ctx, admin, model.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	viewer := &model.AdminUser{Email: "viewer@robolab.example", Name: "Viewer", PasswordHash: "x"}
	if err := repo.AdminUser.Create(ctx, viewer); err != nil {
		t.Fatal(err)
	}

	ok, err := repo.AdminUser.HasRole(ctx, admin.ID, model.RoleAdmin)
	if err != nil || !ok {
		t.Errorf("admin HasRole = %v, %v", ok, err)
	}
	ok, _ = repo.AdminUser.HasRole(ctx, viewer.ID, model.RoleAdmin)
	if ok {
		t.Error("viewer should not be admin")
	}

	// granting twice is harmless
	if err := repo.AdminUser.GrantRole(ctx, admin.ID, model.RoleAdmin); err != nil {
		t.Errorf("GrantRole again: %v", err)
	}

	got, err := repo.AdminUser.GetByEmail(ctx, "admin@robolab.example")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != admin.ID || len(got.Roles) != 1 {
		t.Errorf("GetByEmail = %+v", got)
	}

	if err := repo.AdminUser.UpdatePassword(ctx, admin.ID, "new-hash"); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.AdminUser.GetByID(ctx, admin.ID)
	if got.PasswordHash != "new-hash" {
		t.Error("password not updated")
	}
}
