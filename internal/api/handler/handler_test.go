package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"robolab-portal/internal/dto"
	"robolab-portal/internal/service"
	"robolab-portal/pkg/database"
	pkgerrors "robolab-portal/pkg/errors"
	"robolab-portal/pkg/jwt"
	"robolab-portal/pkg/response"
	"robolab-portal/pkg/validate"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validate.Init(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutErr   error
	logoutJTI   string
	logoutTTL   time.Duration
	meResult    *dto.AdminUserResponse
	meErr       error
	roleResult  *dto.RoleCheckResponse
	roleErr     error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, ttl time.Duration) error {
	m.logoutJTI = jti
	m.logoutTTL = ttl
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.AdminUserResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) CheckRole(_ context.Context, _ string) (*dto.RoleCheckResponse, error) {
	return m.roleResult, m.roleErr
}

// ── Mock RegistrationService ──

type mockRegistrationService struct {
	submitResult *dto.CreateRegistrationResponse
	submitErr    error
	submitCalled bool
	listResult   *dto.RegistrationListResponse
	listErr      error
	getResult    *dto.RegistrationResponse
	getErr       error
	deleteErr    error
	deleteCaller string
	statsResult  *dto.RegistrationStatsResponse
	statsErr     error
	exportBuf    *bytes.Buffer
	exportName   string
	exportErr    error
	syncResult   *dto.SyncResponse
	syncErr      error
}

func (m *mockRegistrationService) Submit(_ context.Context, _ *dto.CreateRegistrationRequest) (*dto.CreateRegistrationResponse, error) {
	m.submitCalled = true
	return m.submitResult, m.submitErr
}
func (m *mockRegistrationService) List(_ context.Context, _ *dto.RegistrationListRequest) (*dto.RegistrationListResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockRegistrationService) GetByID(_ context.Context, _ string) (*dto.RegistrationResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockRegistrationService) Delete(_ context.Context, _, callerID string) error {
	m.deleteCaller = callerID
	return m.deleteErr
}
func (m *mockRegistrationService) Stats(_ context.Context) (*dto.RegistrationStatsResponse, error) {
	return m.statsResult, m.statsErr
}
func (m *mockRegistrationService) Export(_ context.Context, _ *dto.RegistrationListRequest) (*bytes.Buffer, string, error) {
	return m.exportBuf, m.exportName, m.exportErr
}
func (m *mockRegistrationService) Sync(_ context.Context) (*dto.SyncResponse, error) {
	return m.syncResult, m.syncErr
}

// ── Mock TimeSlotService ──

type mockTimeSlotService struct {
	createResult *dto.TimeSlotResponse
	createErr    error
	getResult    *dto.TimeSlotResponse
	getErr       error
	listResult   []dto.TimeSlotResponse
	listErr      error
	updateResult *dto.TimeSlotResponse
	updateErr    error
	deleteErr    error
}

func (m *mockTimeSlotService) Create(_ context.Context, _ *dto.CreateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockTimeSlotService) GetByID(_ context.Context, _ string) (*dto.TimeSlotResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockTimeSlotService) List(_ context.Context, _ *dto.TimeSlotListRequest) ([]dto.TimeSlotResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockTimeSlotService) Update(_ context.Context, _ string, _ *dto.UpdateTimeSlotRequest) (*dto.TimeSlotResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockTimeSlotService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

// ── Mock ScheduleService ──

type mockScheduleService struct {
	assignResult *dto.ScheduleResponse
	assignErr    error
	listResult   []dto.ScheduleResponse
	listErr      error
	removeErr    error
}

func (m *mockScheduleService) Assign(_ context.Context, _ *dto.AssignStudentRequest) (*dto.ScheduleResponse, error) {
	return m.assignResult, m.assignErr
}
func (m *mockScheduleService) List(_ context.Context, _ *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockScheduleService) Remove(_ context.Context, _ string) error {
	return m.removeErr
}

// ── Mock PaymentService ──

type mockPaymentService struct {
	createResult   *dto.PaymentResponse
	createErr      error
	listResult     []dto.PaymentResponse
	listErr        error
	updateResult   *dto.PaymentResponse
	updateErr      error
	deleteErr      error
	summaryResult  *dto.PaymentSummaryResponse
	summaryErr     error
	generateResult *dto.GeneratePaymentsResponse
	generateErr    error
	receiptBody    []byte
	receiptName    string
	receiptErr     error
}

func (m *mockPaymentService) Create(_ context.Context, _ *dto.CreatePaymentRequest) (*dto.PaymentResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockPaymentService) List(_ context.Context, _ *dto.PaymentListRequest) ([]dto.PaymentResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockPaymentService) UpdateStatus(_ context.Context, _ string, _ *dto.UpdatePaymentStatusRequest) (*dto.PaymentResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockPaymentService) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}
func (m *mockPaymentService) Summary(_ context.Context, _ *dto.PaymentSummaryRequest) (*dto.PaymentSummaryResponse, error) {
	return m.summaryResult, m.summaryErr
}
func (m *mockPaymentService) Generate(_ context.Context) (*dto.GeneratePaymentsResponse, error) {
	return m.generateResult, m.generateErr
}
func (m *mockPaymentService) Receipt(_ context.Context, _ string) ([]byte, string, error) {
	return m.receiptBody, m.receiptName, m.receiptErr
}

// ── Mock SystemService ──

type mockSystemService struct {
	report    *database.SchemaReport
	schemaErr error
	health    *dto.HealthResponse
}

func (m *mockSystemService) Schema(_ context.Context) (*database.SchemaReport, error) {
	return m.report, m.schemaErr
}
func (m *mockSystemService) Health(_ context.Context) *dto.HealthResponse {
	return m.health
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "admin")
	c.Set("claims", &jwt.Claims{
		UserID: "test-user-id",
		Role:   "admin",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        "test-jti",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	})
}

// withAuth is a stand-in for the JWT middleware.
func withAuth(c *gin.Context) {
	setAuth(c)
	c.Next()
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func validRegistration() dto.CreateRegistrationRequest {
	return dto.CreateRegistrationRequest{
		ParentName:            "Dana Parent",
		ParentEmail:           "dana@example.com",
		ParentPhone:           "555-010-0000",
		EmergencyContactName:  "Sam Contact",
		EmergencyContactPhone: "555-010-0001",
		ChildName:             "Alex Child",
		ChildAge:              "9",
		ChildGrade:            "4th",
		ChildSchool:           "Elm Elementary",
		PreferredTiming:       "Weekday afternoons",
		InterestLevel:         "beginner",
		HearAboutUs:           "Friend",
		WaiverAgreement:       true,
	}
}

func connectivityErr() error {
	return &pkgerrors.StoreError{Kind: pkgerrors.KindConnectivity, Message: "database is unreachable", Err: errors.New("dial tcp: refused")}
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{AccessToken: "test-access-token", TokenType: "Bearer", ExpiresIn: 900},
	}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "admin@robolab.test", Password: "Test1234!"}))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, "POST", "/auth/login", strings.NewReader("invalid json"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	r := gin.New()
	r.POST("/auth/login", h.Login)
	w := serve(r, "POST", "/auth/login", jsonBody(dto.LoginRequest{Email: "admin@robolab.test", Password: "wrong-password"}))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeUnauthorized {
		t.Errorf("expected code %d, got %d", response.CodeUnauthorized, resp.Code)
	}
}

func TestAuthHandler_Logout_PassesTokenID(t *testing.T) {
	mock := &mockAuthService{}
	h := NewAuthHandler(mock)

	r := gin.New()
	r.POST("/auth/logout", withAuth, h.Logout)
	w := serve(r, "POST", "/auth/logout", nil)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.logoutJTI != "test-jti" {
		t.Errorf("expected jti test-jti, got %q", mock.logoutJTI)
	}
	if mock.logoutTTL < 14*time.Minute || mock.logoutTTL > 15*time.Minute {
		t.Errorf("expected the remaining token lifetime, got %v", mock.logoutTTL)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	r := gin.New()
	r.GET("/auth/me", h.Me)
	w := serve(r, "GET", "/auth/me", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuthHandler_CheckRole(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{
		roleResult: &dto.RoleCheckResponse{UserID: "test-user-id", Role: "admin", HasRole: true},
	})

	r := gin.New()
	r.GET("/auth/role", withAuth, h.CheckRole)
	w := serve(r, "GET", "/auth/role", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if data["hasRole"] != true {
		t.Errorf("expected hasRole true, got %v", data["hasRole"])
	}
}

// ═══════════════════════════════════════════════════════════
// RegistrationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestRegistrationHandler_Submit_Created(t *testing.T) {
	mock := &mockRegistrationService{
		submitResult: &dto.CreateRegistrationResponse{ID: "MABC123-XYZ789", Source: "remote"},
	}
	h := NewRegistrationHandler(mock)

	var loggedID, loggedSource string
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		loggedID = c.GetString("registration_id")
		loggedSource = c.GetString("registration_source")
	})
	r.POST("/registrations", h.Submit)
	w := serve(r, "POST", "/registrations", jsonBody(validRegistration()))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !mock.submitCalled {
		t.Error("expected service to be called")
	}
	if loggedID != "MABC123-XYZ789" || loggedSource != "remote" {
		t.Errorf("access log tags = %q/%q", loggedID, loggedSource)
	}
}

func TestRegistrationHandler_Submit_FieldErrors(t *testing.T) {
	mock := &mockRegistrationService{}
	h := NewRegistrationHandler(mock)

	req := validRegistration()
	req.ChildAge = "3"
	req.ParentEmail = "not-an-email"
	req.WaiverAgreement = false

	r := gin.New()
	r.POST("/registrations", h.Submit)
	w := serve(r, "POST", "/registrations", jsonBody(req))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != response.CodeValidation {
		t.Errorf("expected code %d, got %d", response.CodeValidation, resp.Code)
	}
	for _, field := range []string{"childAge", "parentEmail", "waiverAgreement"} {
		if _, ok := resp.Errors[field]; !ok {
			t.Errorf("expected an error for %s, got %v", field, resp.Errors)
		}
	}
	if mock.submitCalled {
		t.Error("service must not be called for an invalid form")
	}
}

func TestRegistrationHandler_Submit_StoreUnavailable(t *testing.T) {
	h := NewRegistrationHandler(&mockRegistrationService{submitErr: connectivityErr()})

	r := gin.New()
	r.POST("/registrations", h.Submit)
	w := serve(r, "POST", "/registrations", jsonBody(validRegistration()))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestRegistrationHandler_Get_NotFound(t *testing.T) {
	h := NewRegistrationHandler(&mockRegistrationService{getErr: service.ErrRegistrationNotFound})

	r := gin.New()
	r.GET("/registrations/:id", h.Get)
	w := serve(r, "GET", "/registrations/NOPE", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestRegistrationHandler_Delete_Forbidden(t *testing.T) {
	mock := &mockRegistrationService{deleteErr: service.ErrForbidden}
	h := NewRegistrationHandler(mock)

	r := gin.New()
	r.DELETE("/registrations/:id", withAuth, h.Delete)
	w := serve(r, "DELETE", "/registrations/MABC123-XYZ789", nil)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if mock.deleteCaller != "test-user-id" {
		t.Errorf("expected caller test-user-id, got %q", mock.deleteCaller)
	}
}

func TestRegistrationHandler_Delete_PermissionDenied(t *testing.T) {
	denied := &pkgerrors.StoreError{Kind: pkgerrors.KindPermission, Message: "permission denied for table registrations"}
	h := NewRegistrationHandler(&mockRegistrationService{deleteErr: denied})

	r := gin.New()
	r.DELETE("/registrations/:id", withAuth, h.Delete)
	w := serve(r, "DELETE", "/registrations/MABC123-XYZ789", nil)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Details == "" {
		t.Error("expected details on a permission failure")
	}
}

func TestRegistrationHandler_List_InvalidField(t *testing.T) {
	h := NewRegistrationHandler(&mockRegistrationService{})

	r := gin.New()
	r.GET("/registrations", h.List)
	w := serve(r, "GET", "/registrations?field=phone", nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRegistrationHandler_Export(t *testing.T) {
	h := NewRegistrationHandler(&mockRegistrationService{
		exportBuf:  bytes.NewBufferString("xlsx-bytes"),
		exportName: "registrations_20251114.xlsx",
	})

	r := gin.New()
	r.GET("/registrations/export", h.Export)
	w := serve(r, "GET", "/registrations/export", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "registrations_20251114.xlsx") {
		t.Errorf("unexpected content disposition %q", cd)
	}
}

func TestRegistrationHandler_SchemaMismatch(t *testing.T) {
	err := &pkgerrors.StoreError{Kind: pkgerrors.KindMissingColumn, Message: `column "volunteer_interest" does not exist`}
	h := NewRegistrationHandler(&mockRegistrationService{listErr: err})

	r := gin.New()
	r.GET("/registrations", h.List)
	w := serve(r, "GET", "/registrations", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != response.CodeSchemaMismatch {
		t.Errorf("expected code %d, got %d", response.CodeSchemaMismatch, resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// TimeSlot / Schedule / Payment Handler Tests
// ═══════════════════════════════════════════════════════════

func TestTimeSlotHandler_Create_InvalidClock(t *testing.T) {
	h := NewTimeSlotHandler(&mockTimeSlotService{})

	r := gin.New()
	r.POST("/time-slots", h.CreateTimeSlot)
	w := serve(r, "POST", "/time-slots", jsonBody(dto.CreateTimeSlotRequest{
		Name:        "Afternoon",
		StartTime:   "3:30pm",
		EndTime:     "17:00",
		Days:        []string{"Monday"},
		MaxCapacity: 8,
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if _, ok := parseResponse(w).Errors["startTime"]; !ok {
		t.Error("expected a startTime error")
	}
}

func TestTimeSlotHandler_Delete_NotFound(t *testing.T) {
	h := NewTimeSlotHandler(&mockTimeSlotService{deleteErr: service.ErrTimeSlotNotFound})

	r := gin.New()
	r.DELETE("/time-slots/:id", h.DeleteTimeSlot)
	w := serve(r, "DELETE", "/time-slots/0b6c2d0e-8d3c-4a53-9d7e-1f0b7f4f2a11", nil)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestScheduleHandler_Assign_SlotFull(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{assignErr: service.ErrSlotFull})

	r := gin.New()
	r.POST("/schedules", h.Assign)
	w := serve(r, "POST", "/schedules", jsonBody(dto.AssignStudentRequest{
		RegistrationID: "MABC123-XYZ789",
		TimeSlotID:     "0b6c2d0e-8d3c-4a53-9d7e-1f0b7f4f2a11",
		DayOfWeek:      "Monday",
	}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestScheduleHandler_Assign_DayNotInSlot(t *testing.T) {
	h := NewScheduleHandler(&mockScheduleService{assignErr: service.ErrDayNotInSlot})

	r := gin.New()
	r.POST("/schedules", h.Assign)
	w := serve(r, "POST", "/schedules", jsonBody(dto.AssignStudentRequest{
		RegistrationID: "MABC123-XYZ789",
		TimeSlotID:     "0b6c2d0e-8d3c-4a53-9d7e-1f0b7f4f2a11",
		DayOfWeek:      "Friday",
	}))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if _, ok := parseResponse(w).Errors["dayOfWeek"]; !ok {
		t.Error("expected a dayOfWeek error")
	}
}

func TestPaymentHandler_Create_Duplicate(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentService{createErr: service.ErrDuplicatePayment})

	r := gin.New()
	r.POST("/payments", h.Create)
	w := serve(r, "POST", "/payments", jsonBody(dto.CreatePaymentRequest{
		RegistrationID: "MABC123-XYZ789",
		MonthYear:      "2025-11",
	}))

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestPaymentHandler_UpdateStatus_RequiresFlag(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentService{})

	r := gin.New()
	r.PUT("/payments/:id/status", h.UpdateStatus)
	w := serve(r, "PUT", "/payments/abc/status", strings.NewReader(`{"paymentMethod":"cash"}`))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPaymentHandler_Receipt(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentService{
		receiptBody: []byte("<html></html>"),
		receiptName: "receipt_RCP-202511-0001.html",
	})

	r := gin.New()
	r.GET("/payments/:id/receipt", h.Receipt)
	w := serve(r, "GET", "/payments/abc/receipt", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "receipt_RCP-202511-0001.html") {
		t.Errorf("unexpected content disposition %q", cd)
	}
}

// ═══════════════════════════════════════════════════════════
// SystemHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSystemHandler_Schema_Mismatch(t *testing.T) {
	h := NewSystemHandler(&mockSystemService{report: &database.SchemaReport{
		OK:          false,
		Tables:      []database.TableReport{{Table: "student_payments", Exists: false}},
		Remediation: database.Remediation,
	}})

	r := gin.New()
	r.GET("/system/schema", h.Schema)
	w := serve(r, "GET", "/system/schema", nil)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != response.CodeSchemaMismatch {
		t.Errorf("expected code %d, got %d", response.CodeSchemaMismatch, resp.Code)
	}
	if resp.Details != database.Remediation {
		t.Errorf("expected remediation details, got %q", resp.Details)
	}
}

func TestSystemHandler_Health_Degraded(t *testing.T) {
	h := NewSystemHandler(&mockSystemService{health: &dto.HealthResponse{Status: "degraded", Database: "down", Redis: "disabled"}})

	r := gin.New()
	r.GET("/health", h.Health)
	w := serve(r, "GET", "/health", nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}
