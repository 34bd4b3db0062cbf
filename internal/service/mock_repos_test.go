package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
	"robolab-portal/internal/store"
)

// ── Mock RegistrationRepository ──

type mockRegistrationRepo struct {
	regs map[string]*model.Registration
}

func newMockRegistrationRepo() *mockRegistrationRepo {
	return &mockRegistrationRepo{regs: make(map[string]*model.Registration)}
}

func (m *mockRegistrationRepo) Create(_ context.Context, reg *model.Registration) error {
	if _, ok := m.regs[reg.ID]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *reg
	m.regs[reg.ID] = &cp
	return nil
}

func (m *mockRegistrationRepo) InsertIgnore(ctx context.Context, reg *model.Registration) (bool, error) {
	if _, ok := m.regs[reg.ID]; ok {
		return false, nil
	}
	return true, m.Create(ctx, reg)
}

func (m *mockRegistrationRepo) GetByID(_ context.Context, id string) (*model.Registration, error) {
	if r, ok := m.regs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRegistrationRepo) List(_ context.Context) ([]model.Registration, error) {
	out := make([]model.Registration, 0, len(m.regs))
	for _, r := range m.regs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (m *mockRegistrationRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.regs[id]; !ok {
		return 0, nil
	}
	delete(m.regs, id)
	return 1, nil
}

// ── Mock TimeSlotRepository ──

type mockTimeSlotRepo struct {
	slots     map[string]*model.TimeSlot
	schedules *mockStudentScheduleRepo
}

func newMockTimeSlotRepo(schedules *mockStudentScheduleRepo) *mockTimeSlotRepo {
	return &mockTimeSlotRepo{slots: make(map[string]*model.TimeSlot), schedules: schedules}
}

func (m *mockTimeSlotRepo) Create(_ context.Context, slot *model.TimeSlot) error {
	_ = slot.BeforeCreate(nil)
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt
	cp := *slot
	m.slots[slot.ID] = &cp
	return nil
}

func (m *mockTimeSlotRepo) GetByID(_ context.Context, id string) (*model.TimeSlot, error) {
	if s, ok := m.slots[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) List(_ context.Context) ([]model.TimeSlot, error) {
	out := make([]model.TimeSlot, 0, len(m.slots))
	for _, s := range m.slots {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *mockTimeSlotRepo) Update(_ context.Context, slot *model.TimeSlot) error {
	cp := *slot
	m.slots[slot.ID] = &cp
	return nil
}

func (m *mockTimeSlotRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.slots[id]; !ok {
		return 0, nil
	}
	delete(m.slots, id)
	for sid, s := range m.schedules.rows {
		if s.TimeSlotID == id {
			delete(m.schedules.rows, sid)
		}
	}
	return 1, nil
}

func (m *mockTimeSlotRepo) AssignedCounts(_ context.Context) (map[string]int, error) {
	out := make(map[string]int)
	for _, s := range m.schedules.rows {
		out[s.TimeSlotID]++
	}
	return out, nil
}

// ── Mock StudentScheduleRepository ──

// mockStudentScheduleRepo enforces the same duplicate and capacity rules as
// the conditional insert.
type mockStudentScheduleRepo struct {
	mu    sync.Mutex
	rows  map[string]*model.StudentSchedule
	slots func(id string) (*model.TimeSlot, bool)
}

func newMockStudentScheduleRepo() *mockStudentScheduleRepo {
	return &mockStudentScheduleRepo{rows: make(map[string]*model.StudentSchedule)}
}

func (m *mockStudentScheduleRepo) Assign(_ context.Context, s *model.StudentSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.slots(s.TimeSlotID)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	count := 0
	for _, r := range m.rows {
		if r.RegistrationID == s.RegistrationID && r.TimeSlotID == s.TimeSlotID && r.DayOfWeek == s.DayOfWeek {
			return repository.ErrDuplicateAssignment
		}
		if r.TimeSlotID == s.TimeSlotID {
			count++
		}
	}
	if count >= slot.MaxCapacity {
		return repository.ErrSlotFull
	}
	_ = s.BeforeCreate(nil)
	s.AssignedAt = time.Now()
	cp := *s
	m.rows[s.ID] = &cp
	return nil
}

func (m *mockStudentScheduleRepo) GetByID(_ context.Context, id string) (*model.StudentSchedule, error) {
	if r, ok := m.rows[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentScheduleRepo) List(_ context.Context, f repository.ScheduleFilter) ([]model.StudentSchedule, error) {
	var out []model.StudentSchedule
	for _, r := range m.rows {
		if f.TimeSlotID != "" && r.TimeSlotID != f.TimeSlotID {
			continue
		}
		if f.RegistrationID != "" && r.RegistrationID != f.RegistrationID {
			continue
		}
		if f.DayOfWeek != "" && r.DayOfWeek != f.DayOfWeek {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockStudentScheduleRepo) CountBySlot(_ context.Context, slotID string) (int64, error) {
	var n int64
	for _, r := range m.rows {
		if r.TimeSlotID == slotID {
			n++
		}
	}
	return n, nil
}

func (m *mockStudentScheduleRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

// ── Mock PaymentRepository ──

type mockPaymentRepo struct {
	rows map[string]*model.StudentPayment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{rows: make(map[string]*model.StudentPayment)}
}

func (m *mockPaymentRepo) taken(regID, month string) bool {
	for _, r := range m.rows {
		if r.RegistrationID == regID && r.MonthYear == month {
			return true
		}
	}
	return false
}

func (m *mockPaymentRepo) Create(_ context.Context, p *model.StudentPayment) error {
	if m.taken(p.RegistrationID, p.MonthYear) {
		return gorm.ErrDuplicatedKey
	}
	_ = p.BeforeCreate(nil)
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *mockPaymentRepo) CreateMissing(ctx context.Context, list []model.StudentPayment) (int64, error) {
	var n int64
	for i := range list {
		if m.taken(list[i].RegistrationID, list[i].MonthYear) {
			continue
		}
		if err := m.Create(ctx, &list[i]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, id string) (*model.StudentPayment, error) {
	if r, ok := m.rows[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPaymentRepo) List(_ context.Context, f repository.PaymentFilter) ([]model.StudentPayment, error) {
	var out []model.StudentPayment
	for _, r := range m.rows {
		if f.MonthYear != "" && r.MonthYear != f.MonthYear {
			continue
		}
		if f.RegistrationID != "" && r.RegistrationID != f.RegistrationID {
			continue
		}
		if f.IsPaid != nil && r.IsPaid != *f.IsPaid {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MonthYear < out[j].MonthYear })
	return out, nil
}

func (m *mockPaymentRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}) (int64, error) {
	r, ok := m.rows[id]
	if !ok {
		return 0, nil
	}
	for k, v := range fields {
		switch k {
		case "is_paid":
			r.IsPaid = v.(bool)
		case "payment_method":
			r.PaymentMethod = v.(string)
		case "notes":
			r.Notes = v.(string)
		case "payment_date":
			if v == nil {
				r.PaymentDate = nil
			} else {
				d := v.(datatypes.Date)
				r.PaymentDate = &d
			}
		default:
			return 0, fmt.Errorf("unexpected field %q", k)
		}
	}
	return 1, nil
}

func (m *mockPaymentRepo) Delete(_ context.Context, id string) (int64, error) {
	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

func (m *mockPaymentRepo) Totals(_ context.Context, monthYear string) ([]repository.PaymentTotals, error) {
	agg := map[bool]*repository.PaymentTotals{}
	for _, r := range m.rows {
		if monthYear != "" && r.MonthYear != monthYear {
			continue
		}
		t, ok := agg[r.IsPaid]
		if !ok {
			t = &repository.PaymentTotals{IsPaid: r.IsPaid}
			agg[r.IsPaid] = t
		}
		t.Count++
		t.Total += r.Amount
	}
	var out []repository.PaymentTotals
	for _, t := range agg {
		out = append(out, *t)
	}
	return out, nil
}

// ── Mock AdminUserRepository ──

type mockAdminUserRepo struct {
	users map[string]*model.AdminUser
	err   error
}

func newMockAdminUserRepo() *mockAdminUserRepo {
	return &mockAdminUserRepo{users: make(map[string]*model.AdminUser)}
}

func (m *mockAdminUserRepo) Create(_ context.Context, u *model.AdminUser, roles ...string) error {
	_ = u.BeforeCreate(nil)
	for _, r := range roles {
		u.Roles = append(u.Roles, model.UserRole{UserID: u.ID, Role: r})
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockAdminUserRepo) GetByID(_ context.Context, id string) (*model.AdminUser, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminUserRepo) GetByEmail(_ context.Context, email string) (*model.AdminUser, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockAdminUserRepo) GrantRole(_ context.Context, userID, role string) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Roles = append(u.Roles, model.UserRole{UserID: userID, Role: role})
	return nil
}

func (m *mockAdminUserRepo) HasRole(_ context.Context, userID, role string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	u, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	for _, r := range u.Roles {
		if r.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock RegistrationStore ──

type mockStore struct {
	repo    *mockRegistrationRepo
	pending map[string]model.Registration
	// offline makes every call behave as if the database were unreachable.
	offline bool
	addErr  error
}

func newMockStore(repo *mockRegistrationRepo) *mockStore {
	return &mockStore{repo: repo, pending: make(map[string]model.Registration)}
}

func (m *mockStore) Add(ctx context.Context, reg *model.Registration) (*store.Outcome, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	if m.offline {
		m.pending[reg.ID] = *reg
		return &store.Outcome{Source: store.SourceLocal, Pending: true}, nil
	}
	if err := m.repo.Create(ctx, reg); err != nil {
		return nil, err
	}
	return &store.Outcome{Source: store.SourceRemote}, nil
}

func (m *mockStore) GetAll(ctx context.Context) ([]model.Registration, store.Source, error) {
	src := store.SourceRemote
	var out []model.Registration
	if m.offline {
		src = store.SourceLocal
	} else {
		out, _ = m.repo.List(ctx)
	}
	for _, r := range m.pending {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, src, nil
}

func (m *mockStore) Get(ctx context.Context, id string) (*model.Registration, store.Source, error) {
	if r, ok := m.pending[id]; ok {
		return &r, store.SourceLocal, nil
	}
	r, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", store.ErrNotFound
	}
	return r, store.SourceRemote, nil
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	n, _ := m.repo.Delete(ctx, id)
	if _, ok := m.pending[id]; ok {
		delete(m.pending, id)
		n++
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (m *mockStore) SyncPending(ctx context.Context) (*store.SyncResult, error) {
	res := &store.SyncResult{Attempted: len(m.pending)}
	if m.offline {
		res.Remaining = res.Attempted
		return res, nil
	}
	for id, r := range m.pending {
		r := r
		if _, err := m.repo.InsertIgnore(ctx, &r); err != nil {
			res.Failed = append(res.Failed, id)
			continue
		}
		delete(m.pending, id)
		res.Synced++
	}
	res.Remaining = res.Attempted - res.Synced
	return res, nil
}

func (m *mockStore) PendingIDs() (map[string]bool, error) {
	out := make(map[string]bool, len(m.pending))
	for id := range m.pending {
		out[id] = true
	}
	return out, nil
}

// ── Fixture ──

type mocks struct {
	registrations *mockRegistrationRepo
	timeSlots     *mockTimeSlotRepo
	schedules     *mockStudentScheduleRepo
	payments      *mockPaymentRepo
	admins        *mockAdminUserRepo
	store         *mockStore
}

func newMocks() (*repository.Repository, *mocks) {
	schedules := newMockStudentScheduleRepo()
	slots := newMockTimeSlotRepo(schedules)
	schedules.slots = func(id string) (*model.TimeSlot, bool) {
		s, ok := slots.slots[id]
		return s, ok
	}
	m := &mocks{
		registrations: newMockRegistrationRepo(),
		timeSlots:     slots,
		schedules:     schedules,
		payments:      newMockPaymentRepo(),
		admins:        newMockAdminUserRepo(),
	}
	m.store = newMockStore(m.registrations)

	repo := &repository.Repository{
		Registration:    m.registrations,
		TimeSlot:        m.timeSlots,
		StudentSchedule: m.schedules,
		Payment:         m.payments,
		AdminUser:       m.admins,
	}
	return repo, m
}
