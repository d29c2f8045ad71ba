package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/nanpipat/hr-rebase/internal/model"
)

// ── Mock Repositories ──
//
// 手工编写的内存实现，行为对齐真实仓储：
// 未命中返回 gorm.ErrRecordNotFound，考勤写入撞键返回 gorm.ErrDuplicatedKey

type mockEmployeeRepo struct {
	employees map[string]*model.Employee
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if e, ok := m.employees[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByEmail(_ context.Context, email string) (*model.Employee, error) {
	for _, e := range m.employees {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := m.employees[id]
	return ok, nil
}

func (m *mockEmployeeRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Employee, error) {
	// 内存实现无行锁，与 GetByID 行为一致
	return m.GetByID(ctx, id)
}

type mockShiftTypeRepo struct {
	shiftTypes map[string]*model.ShiftType
	nextID     int
}

func newMockShiftTypeRepo() *mockShiftTypeRepo {
	return &mockShiftTypeRepo{shiftTypes: make(map[string]*model.ShiftType)}
}

func (m *mockShiftTypeRepo) Create(_ context.Context, st *model.ShiftType) error {
	if st.ShiftTypeID == "" {
		m.nextID++
		st.ShiftTypeID = fmt.Sprintf("shift-%03d", m.nextID)
	}
	for _, existing := range m.shiftTypes {
		if existing.Name == st.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	m.shiftTypes[st.ShiftTypeID] = st
	return nil
}

func (m *mockShiftTypeRepo) GetByID(_ context.Context, id string) (*model.ShiftType, error) {
	if st, ok := m.shiftTypes[id]; ok {
		return st, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftTypeRepo) GetByName(_ context.Context, name string) (*model.ShiftType, error) {
	for _, st := range m.shiftTypes {
		if st.Name == name {
			return st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftTypeRepo) List(_ context.Context) ([]model.ShiftType, error) {
	var result []model.ShiftType
	for _, st := range m.shiftTypes {
		result = append(result, *st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockShiftTypeRepo) Update(_ context.Context, st *model.ShiftType) error {
	m.shiftTypes[st.ShiftTypeID] = st
	return nil
}

type mockAssignmentRepo struct {
	assignments map[string]*model.ShiftAssignment
	nextID      int
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.ShiftAssignment)}
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.ShiftAssignment) error {
	if a.AssignmentID == "" {
		m.nextID++
		a.AssignmentID = fmt.Sprintf("assign-%03d", m.nextID)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.assignments[a.AssignmentID] = a
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.ShiftAssignment, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListActiveByEmployee(_ context.Context, employeeID string) ([]model.ShiftAssignment, error) {
	var result []model.ShiftAssignment
	for _, a := range m.assignments {
		if a.EmployeeID == employeeID && a.Status == model.AssignmentStatusActive {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockAssignmentRepo) ListActiveOnDate(_ context.Context, date time.Time, company string) ([]model.ShiftAssignment, error) {
	var result []model.ShiftAssignment
	for _, a := range m.assignments {
		if a.Status != model.AssignmentStatusActive {
			continue
		}
		if a.StartDate.After(date) {
			continue
		}
		if a.EndDate != nil && a.EndDate.Before(date) {
			continue
		}
		if company != "" && a.Company != company {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAssignmentRepo) List(_ context.Context, employeeID, company string) ([]model.ShiftAssignment, error) {
	var result []model.ShiftAssignment
	for _, a := range m.assignments {
		if employeeID != "" && a.EmployeeID != employeeID {
			continue
		}
		if company != "" && a.Company != company {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.After(result[j].StartDate) })
	return result, nil
}

func (m *mockAssignmentRepo) UpdateStatus(_ context.Context, id string, status string) error {
	a, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Status = status
	return nil
}

type mockCheckinRepo struct {
	events []model.CheckinEvent
	nextID int64

	appendErr error // 注入 Append 失败
}

func newMockCheckinRepo() *mockCheckinRepo {
	return &mockCheckinRepo{}
}

func (m *mockCheckinRepo) Append(_ context.Context, event *model.CheckinEvent) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.nextID++
	event.CheckinID = m.nextID
	m.events = append(m.events, *event)
	return nil
}

func (m *mockCheckinRepo) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]model.CheckinEvent, error) {
	var result []model.CheckinEvent
	for _, e := range m.events {
		if e.EmployeeID != employeeID {
			continue
		}
		if e.Timestamp.Before(from) || e.Timestamp.After(to) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.Before(result[j].Timestamp)
		}
		return result[i].CheckinID < result[j].CheckinID
	})
	return result, nil
}

type mockAttendanceRepo struct {
	records map[string]*model.AttendanceRecord // key: employeeID|date
	nextID  int

	createErrFor map[string]error // 按员工注入 Create 失败
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{
		records:      make(map[string]*model.AttendanceRecord),
		createErrFor: make(map[string]error),
	}
}

func attendanceKey(employeeID string, date time.Time) string {
	return employeeID + "|" + date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) Create(_ context.Context, record *model.AttendanceRecord) error {
	if err := m.createErrFor[record.EmployeeID]; err != nil {
		return err
	}
	key := attendanceKey(record.EmployeeID, record.Date)
	if existing, ok := m.records[key]; ok && !existing.Cancelled {
		// 模拟 (employee_id, date) WHERE NOT cancelled 部分唯一索引
		return gorm.ErrDuplicatedKey
	}
	m.nextID++
	record.AttendanceID = fmt.Sprintf("att-%03d", m.nextID)
	m.records[key] = record
	return nil
}

func (m *mockAttendanceRepo) FindActive(_ context.Context, employeeID string, date time.Time) (*model.AttendanceRecord, error) {
	if r, ok := m.records[attendanceKey(employeeID, date)]; ok && !r.Cancelled {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) ListByEmployeeAndRange(_ context.Context, employeeID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.EmployeeID != employeeID || r.Cancelled {
			continue
		}
		if r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.After(result[j].Date) })
	return result, nil
}

func (m *mockAttendanceRepo) ListByRange(_ context.Context, from, to time.Time, company string) ([]model.AttendanceRecord, error) {
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.Cancelled || r.Date.Before(from) || r.Date.After(to) {
			continue
		}
		if company != "" && r.Company != company {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].EmployeeID < result[j].EmployeeID
	})
	return result, nil
}

type mockCorrectionRepo struct {
	requests map[string]*model.CorrectionRequest
	nextID   int
}

func newMockCorrectionRepo() *mockCorrectionRepo {
	return &mockCorrectionRepo{requests: make(map[string]*model.CorrectionRequest)}
}

func (m *mockCorrectionRepo) Create(_ context.Context, req *model.CorrectionRequest) error {
	if req.RequestID == "" {
		m.nextID++
		req.RequestID = fmt.Sprintf("corr-%03d", m.nextID)
	}
	m.requests[req.RequestID] = req
	return nil
}

func (m *mockCorrectionRepo) GetByID(_ context.Context, id string) (*model.CorrectionRequest, error) {
	if r, ok := m.requests[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCorrectionRepo) List(_ context.Context, employeeID string) ([]model.CorrectionRequest, error) {
	var result []model.CorrectionRequest
	for _, r := range m.requests {
		if employeeID != "" && r.EmployeeID != employeeID {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockCorrectionRepo) Update(_ context.Context, req *model.CorrectionRequest) error {
	if _, ok := m.requests[req.RequestID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.requests[req.RequestID] = req
	return nil
}

var errMockWrite = errors.New("模拟写入失败")
