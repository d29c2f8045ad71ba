package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nanpipat/hr-rebase/internal/dto"
	"github.com/nanpipat/hr-rebase/internal/repository"
	"github.com/nanpipat/hr-rebase/pkg/dateutil"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRecords    = errors.New("该区间内无考勤记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel 格式：单 Sheet，一行一条考勤记录，按日期、员工排序
type ExportService interface {
	// ExportAttendance 导出区间考勤记录为 Excel
	ExportAttendance(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	loc    *time.Location
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger, loc *time.Location) ExportService {
	return &exportService{repo: repo, logger: logger, loc: loc}
}

// ═══════════════════════════════════════════════════════════
// ExportAttendance — 导出考勤记录为 Excel
// ═══════════════════════════════════════════════════════════
//
// 表头: | 日期 | 员工 | 公司 | 状态 | 工时 | 迟到 | 早退 |
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportAttendance(ctx context.Context, req *dto.ExportRequest) (*bytes.Buffer, string, error) {
	from, err := dateutil.ParseDate(req.From, s.loc)
	if err != nil {
		return nil, "", ErrDateRangeInvalid
	}
	to, err := dateutil.ParseDate(req.To, s.loc)
	if err != nil {
		return nil, "", ErrDateRangeInvalid
	}
	if to.Before(from) {
		return nil, "", ErrDateRangeInvalid
	}

	records, err := s.repo.Attendance.ListByRange(ctx, from, to, req.Company)
	if err != nil {
		s.logger.Error("查询导出数据失败", zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤记录"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 18)
	f.SetColWidth(sheetName, "C", "C", 16)
	f.SetColWidth(sheetName, "D", "G", 10)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("考勤记录 %s ~ %s", req.From, req.To))
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"日期", "员工", "公司", "状态", "工时", "迟到", "早退"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", "G2", headerStyle)

	// 数据行
	flag := func(b bool) string {
		if b {
			return "是"
		}
		return "否"
	}
	row := 3
	for i := range records {
		r := &records[i]
		name := r.EmployeeID
		if r.Employee != nil {
			name = r.Employee.Name
		}
		f.SetCellValue(sheetName, cell("A", row), r.Date.Format(dateutil.DateLayout))
		f.SetCellValue(sheetName, cell("B", row), name)
		f.SetCellValue(sheetName, cell("C", row), r.Company)
		f.SetCellValue(sheetName, cell("D", row), r.Status)
		f.SetCellValue(sheetName, cell("E", row), r.WorkingHours.StringFixed(2))
		f.SetCellValue(sheetName, cell("F", row), flag(r.LateEntry))
		f.SetCellValue(sheetName, cell("G", row), flag(r.EarlyExit))
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("考勤记录_%s_%s.xlsx", req.From, req.To)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
