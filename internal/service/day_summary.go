package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nanpipat/hr-rebase/internal/model"
)

// 本文件是考勤工时计算的纯函数核心：不碰数据库、不读时钟，
// 时间全部由调用方传入，保证对同一有限流水集重复计算结果恒定。

// daySummary 单个民用日的打卡汇总
type daySummary struct {
	FirstIn     *time.Time
	LastOut     *time.Time
	IsOpen      bool
	WorkedHours decimal.Decimal
}

// computeDaySummary 按时间序扫描单日流水并累计工时
// 维护一个未闭合 IN 指针：遇 OUT 且指针非空则累计 (out − in) 并清空指针；
// 遇 IN 则覆盖指针（被覆盖的无配对 IN 计 0 工时）。
// asOf 非 nil 表示实时查询：末段未闭合的 IN 计入 (asOf − in)；
// asOf 为 nil 表示已关闭的历史日，未闭合 IN 不计工时
func computeDaySummary(events []model.CheckinEvent, asOf *time.Time) daySummary {
	var sum daySummary
	var currentIn *time.Time
	var worked time.Duration

	for i := range events {
		e := &events[i]
		switch e.Direction {
		case model.DirectionIn:
			if sum.FirstIn == nil {
				t := e.Timestamp
				sum.FirstIn = &t
			}
			t := e.Timestamp
			currentIn = &t
		case model.DirectionOut:
			t := e.Timestamp
			sum.LastOut = &t
			if currentIn != nil {
				worked += e.Timestamp.Sub(*currentIn)
				currentIn = nil
			}
		}
	}

	if n := len(events); n > 0 && events[n-1].Direction == model.DirectionIn {
		sum.IsOpen = true
		if asOf != nil && currentIn != nil && asOf.After(*currentIn) {
			worked += asOf.Sub(*currentIn)
		}
	}

	sum.WorkedHours = durationHours(worked)
	return sum
}

// pairWorkedHours 结算配对：每个 IN 按序与其后最早且未被消费的 OUT 配对
// 无后继 OUT 的 IN 计 0 工时（无法估算）；
// first_in 取最早 IN，last_out 取最晚 OUT（可能不存在）
func pairWorkedHours(events []model.CheckinEvent) (firstIn, lastOut *time.Time, hours decimal.Decimal) {
	var ins, outs []time.Time
	for i := range events {
		switch events[i].Direction {
		case model.DirectionIn:
			ins = append(ins, events[i].Timestamp)
		case model.DirectionOut:
			outs = append(outs, events[i].Timestamp)
		}
	}

	if len(ins) > 0 {
		t := ins[0]
		firstIn = &t
	}
	if len(outs) > 0 {
		t := outs[len(outs)-1]
		lastOut = &t
	}

	var worked time.Duration
	j := 0
	for _, in := range ins {
		for j < len(outs) && !outs[j].After(in) {
			j++
		}
		if j >= len(outs) {
			break
		}
		worked += outs[j].Sub(in)
		j++
	}

	return firstIn, lastOut, durationHours(worked)
}

// classifyStatus 按班次阈值划分考勤状态
// 阈值倒置（absent ≥ half_day）时低于两者一律归为缺勤
func classifyStatus(total decimal.Decimal, shift *model.ShiftType) string {
	switch {
	case total.GreaterThanOrEqual(shift.HalfDayHoursThreshold):
		return model.AttendanceStatusPresent
	case total.GreaterThanOrEqual(shift.AbsentHoursThreshold):
		return model.AttendanceStatusHalfDay
	default:
		return model.AttendanceStatusAbsent
	}
}

// durationHours 时长换算为小时数，保留两位小数
func durationHours(d time.Duration) decimal.Decimal {
	if d <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(d.Hours()).Round(2)
}
