package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nanpipat/hr-rebase/internal/dto"
	"github.com/nanpipat/hr-rebase/internal/service"
	"github.com/nanpipat/hr-rebase/pkg/jwt"
	"github.com/nanpipat/hr-rebase/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult *dto.TokenResponse
	loginErr    error
	logoutErr   error
	meResult    *dto.EmployeeResponse
	meErr       error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ string) (*dto.EmployeeResponse, error) {
	return m.meResult, m.meErr
}

// ── Mock CheckinService ──

type mockCheckinService struct {
	submitResult  *dto.CheckinEventResponse
	submitErr     error
	todayResult   *dto.DaySummaryResponse
	todayErr      error
	historyResult []dto.DaySummaryResponse
	historyErr    error
}

func (m *mockCheckinService) Submit(_ context.Context, _, _ string) (*dto.CheckinEventResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockCheckinService) TodayStatus(_ context.Context, _ string) (*dto.DaySummaryResponse, error) {
	return m.todayResult, m.todayErr
}
func (m *mockCheckinService) History(_ context.Context, _ string, _ *dto.HistoryRequest) ([]dto.DaySummaryResponse, error) {
	return m.historyResult, m.historyErr
}

// ── Mock ShiftService ──

type mockShiftService struct {
	createResult  *dto.ShiftTypeResponse
	createErr     error
	updateResult  *dto.ShiftTypeResponse
	updateErr     error
	getResult     *dto.ShiftTypeResponse
	getErr        error
	listResult    []dto.ShiftTypeResponse
	listErr       error
	assignResult  *dto.AssignmentResponse
	assignErr     error
	unassignErr   error
	currentResult *dto.AssignmentResponse
	currentErr    error
	assignments   []dto.AssignmentResponse
	assignmentErr error
}

func (m *mockShiftService) CreateShiftType(_ context.Context, _ *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockShiftService) UpdateShiftType(_ context.Context, _ string, _ *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockShiftService) GetShiftType(_ context.Context, _ string) (*dto.ShiftTypeResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockShiftService) ListShiftTypes(_ context.Context) ([]dto.ShiftTypeResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockShiftService) Assign(_ context.Context, _ *dto.AssignShiftRequest) (*dto.AssignmentResponse, error) {
	return m.assignResult, m.assignErr
}
func (m *mockShiftService) Unassign(_ context.Context, _ string) error {
	return m.unassignErr
}
func (m *mockShiftService) CurrentShiftFor(_ context.Context, _ string, _ time.Time) (*dto.AssignmentResponse, error) {
	return m.currentResult, m.currentErr
}
func (m *mockShiftService) ListAssignments(_ context.Context, _, _ string) ([]dto.AssignmentResponse, error) {
	return m.assignments, m.assignmentErr
}

// ── Mock AttendanceService ──

type mockAttendanceService struct {
	reconcileResult *dto.ReconcileResultResponse
	reconcileErr    error
	summaryResult   *dto.SummaryResponse
	summaryErr      error
	detailResult    *dto.DetailResponse
	detailErr       error
	createCorr      *dto.CorrectionResponse
	createCorrErr   error
	listCorr        []dto.CorrectionResponse
	listCorrErr     error
	decideCorr      *dto.CorrectionResponse
	decideCorrErr   error
}

func (m *mockAttendanceService) Reconcile(_ context.Context, _ *dto.ReconcileRequest) (*dto.ReconcileResultResponse, error) {
	return m.reconcileResult, m.reconcileErr
}
func (m *mockAttendanceService) Summary(_ context.Context, _ string, _ *dto.RangeRequest) (*dto.SummaryResponse, error) {
	return m.summaryResult, m.summaryErr
}
func (m *mockAttendanceService) Detail(_ context.Context, _ string, _ *dto.RangeRequest) (*dto.DetailResponse, error) {
	return m.detailResult, m.detailErr
}
func (m *mockAttendanceService) CreateCorrection(_ context.Context, _ string, _ *dto.CreateCorrectionRequestBody) (*dto.CorrectionResponse, error) {
	return m.createCorr, m.createCorrErr
}
func (m *mockAttendanceService) ListCorrections(_ context.Context, _ string) ([]dto.CorrectionResponse, error) {
	return m.listCorr, m.listCorrErr
}
func (m *mockAttendanceService) DecideCorrection(_ context.Context, _, _ string, _ bool) (*dto.CorrectionResponse, error) {
	return m.decideCorr, m.decideCorrErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportAttendance(_ context.Context, _ *dto.ExportRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// authAs 模拟 JWT 中间件注入上下文
func authAs(employeeID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("employee_id", employeeID)
		c.Set("role", role)
		c.Set("company", "ACME")
		c.Set("claims", &jwt.Claims{EmployeeID: employeeID, Role: role, Company: "ACME"})
		c.Next()
	}
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

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken: "test-access-token",
			ExpiresIn:   7200,
		},
	}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "Test1234",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Email:    "zhangsan@example.com",
		Password: "wrongpass",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.Me) // 未注入 employee_id
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CheckinHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCheckinHandler_Submit_Created(t *testing.T) {
	mock := &mockCheckinService{
		submitResult: &dto.CheckinEventResponse{
			CheckinID:  1,
			EmployeeID: "emp-001",
			Timestamp:  "2024-06-03 09:00:00",
			Direction:  "IN",
		},
	}
	h := NewCheckinHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/checkins", jsonBody(dto.SubmitCheckinRequest{Direction: "IN"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/checkins", authAs("emp-001", "employee"), h.Submit)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestCheckinHandler_Submit_BadDirection(t *testing.T) {
	h := NewCheckinHandler(&mockCheckinService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/checkins", jsonBody(map[string]string{"direction": "SIDEWAYS"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/checkins", authAs("emp-001", "employee"), h.Submit)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestCheckinHandler_Submit_AlreadyCheckedIn(t *testing.T) {
	h := NewCheckinHandler(&mockCheckinService{submitErr: service.ErrAlreadyCheckedIn})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/checkins", jsonBody(dto.SubmitCheckinRequest{Direction: "IN"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/checkins", authAs("emp-001", "employee"), h.Submit)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12004 {
		t.Errorf("expected error code 12004, got %d", resp.Code)
	}
}

func TestCheckinHandler_History_MissingRange(t *testing.T) {
	h := NewCheckinHandler(&mockCheckinService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/checkins/history", nil)

	r := gin.New()
	r.GET("/checkins/history", authAs("emp-001", "employee"), h.History)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ShiftHandler Tests
// ═══════════════════════════════════════════════════════════

func newTestShiftHandler(mock *mockShiftService) *ShiftHandler {
	return NewShiftHandler(mock, time.UTC)
}

func TestShiftHandler_Assign_OverlapConflict(t *testing.T) {
	overlapErr := fmt.Errorf("%w：与分配 assign-001 冲突", service.ErrAssignmentOverlap)
	h := newTestShiftHandler(&mockShiftService{assignErr: overlapErr})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/shift-assignments", jsonBody(dto.AssignShiftRequest{
		EmployeeID:  "11111111-1111-1111-1111-111111111111",
		ShiftTypeID: "22222222-2222-2222-2222-222222222222",
		StartDate:   "2024-06-01",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/shift-assignments", authAs("hr-001", "hr"), h.Assign)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13007 {
		t.Errorf("expected error code 13007, got %d", resp.Code)
	}
}

func TestShiftHandler_CurrentShift_NoAssignment(t *testing.T) {
	// 无生效分配时返回 200 + data 为 null
	h := newTestShiftHandler(&mockShiftService{currentResult: nil})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/shift-assignments/current", nil)

	r := gin.New()
	r.GET("/shift-assignments/current", authAs("emp-001", "employee"), h.CurrentShift)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Data != nil {
		t.Errorf("expected null data, got %v", resp.Data)
	}
}

func TestShiftHandler_CurrentShift_BadDate(t *testing.T) {
	h := newTestShiftHandler(&mockShiftService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/shift-assignments/current?date=06%2F03%2F2024", nil)

	r := gin.New()
	r.GET("/shift-assignments/current", authAs("emp-001", "employee"), h.CurrentShift)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestShiftHandler_CurrentShift_ForbiddenForOthers(t *testing.T) {
	// 普通员工不能代查其他员工
	h := newTestShiftHandler(&mockShiftService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/shift-assignments/current?employee_id=emp-002", nil)

	r := gin.New()
	r.GET("/shift-assignments/current", authAs("emp-001", "employee"), h.CurrentShift)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestShiftHandler_CreateShiftType_ThresholdInvalid(t *testing.T) {
	h := newTestShiftHandler(&mockShiftService{createErr: service.ErrThresholdInvalid})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/shift-types", jsonBody(dto.CreateShiftTypeRequest{
		Name:      "早班",
		StartTime: "09:00",
		EndTime:   "18:00",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/shift-types", authAs("hr-001", "hr"), h.CreateShiftType)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13004 {
		t.Errorf("expected error code 13004, got %d", resp.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AttendanceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAttendanceHandler_Reconcile_EmptyBody(t *testing.T) {
	// 空请求体合法：缺省结算昨天
	mock := &mockAttendanceService{
		reconcileResult: &dto.ReconcileResultResponse{
			Date:    "2024-06-02",
			Created: 3,
		},
	}
	h := NewAttendanceHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/reconcile", nil)

	r := gin.New()
	r.POST("/attendance/reconcile", authAs("hr-001", "hr"), h.Reconcile)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAttendanceHandler_Reconcile_InProgress(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{reconcileErr: service.ErrReconcileInProgress})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/reconcile", jsonBody(dto.ReconcileRequest{Date: "2024-06-02"}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/reconcile", authAs("hr-001", "hr"), h.Reconcile)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 14001 {
		t.Errorf("expected error code 14001, got %d", resp.Code)
	}
}

func TestAttendanceHandler_Summary_SelfOnly(t *testing.T) {
	mock := &mockAttendanceService{
		summaryResult: &dto.SummaryResponse{EmployeeID: "emp-001", TotalDays: 2},
	}
	h := NewAttendanceHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/attendance/summary", nil)

	r := gin.New()
	r.GET("/attendance/summary", authAs("emp-001", "employee"), h.Summary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAttendanceHandler_Summary_ForbiddenForOthers(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/attendance/summary?employee_id=emp-002", nil)

	r := gin.New()
	r.GET("/attendance/summary", authAs("emp-001", "employee"), h.Summary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAttendanceHandler_Summary_PrivilegedQueriesOthers(t *testing.T) {
	mock := &mockAttendanceService{
		summaryResult: &dto.SummaryResponse{EmployeeID: "emp-002"},
	}
	h := NewAttendanceHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/attendance/summary?employee_id=emp-002", nil)

	r := gin.New()
	r.GET("/attendance/summary", authAs("hr-001", "hr"), h.Summary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAttendanceHandler_CreateCorrection_FutureDate(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{createCorrErr: service.ErrCorrectionDateFuture})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/attendance/corrections", jsonBody(dto.CreateCorrectionRequestBody{
		Date:   "2099-01-01",
		Status: "Present",
		Reason: "忘记打卡",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/attendance/corrections", authAs("emp-001", "employee"), h.CreateCorrection)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAttendanceHandler_DecideCorrection_AlreadyDecided(t *testing.T) {
	h := NewAttendanceHandler(&mockAttendanceService{decideCorrErr: service.ErrCorrectionDecided})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/attendance/corrections/corr-001", jsonBody(dto.DecideCorrectionRequest{Approve: true}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/attendance/corrections/:id", authAs("hr-001", "hr"), h.DecideCorrection)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("fake-xlsx-bytes"),
		filename: "考勤记录_2024-06-01_2024-06-30.xlsx",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/attendance/export?from=2024-06-01&to=2024-06-30", nil)

	r := gin.New()
	r.GET("/attendance/export", authAs("hr-001", "hr"), h.ExportAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
	if w.Header().Get("Content-Disposition") == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_MissingRange(t *testing.T) {
	h := NewExportHandler(&mockExportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/attendance/export", nil)

	r := gin.New()
	r.GET("/attendance/export", authAs("hr-001", "hr"), h.ExportAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestExportHandler_NoRecords(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoRecords})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/attendance/export?from=2024-06-01&to=2024-06-30", nil)

	r := gin.New()
	r.GET("/attendance/export", authAs("hr-001", "hr"), h.ExportAttendance)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
