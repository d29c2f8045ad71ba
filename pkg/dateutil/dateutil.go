package dateutil

import (
	"fmt"
	"time"
)

// 本包是考勤核心的时间基础件：民用日期运算、打卡日窗口、
// 日期区间重叠判定。所有函数均为纯函数，时区由调用方显式传入。

const (
	// DateLayout 民用日期格式
	DateLayout = "2006-01-02"
	// ClockLayout 时刻格式（到分钟）
	ClockLayout = "15:04"
	// ClockLayoutSec 时刻格式（到秒）
	ClockLayoutSec = "15:04:05"
)

// ParseDate 解析 "2006-01-02" 为指定时区当日零点
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日期 %q: %w", s, err)
	}
	return t, nil
}

// ParseClock 解析 "HH:MM" 或 "HH:MM:SS" 为从零点起算的时长
func ParseClock(s string) (time.Duration, error) {
	var t time.Time
	var err error
	if t, err = time.Parse(ClockLayoutSec, s); err != nil {
		if t, err = time.Parse(ClockLayout, s); err != nil {
			return 0, fmt.Errorf("无效的时刻 %q", s)
		}
	}
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second, nil
}

// DateOf 将时间戳截断为其所在时区的民用日期（当日零点）
func DateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayWindow 返回某民用日期的打卡窗口 [00:00:00, 23:59:59]
// 秒级精度下闭区间覆盖整个民用日
func DayWindow(date time.Time, loc *time.Location) (time.Time, time.Time) {
	start := DateOf(date, loc)
	end := start.Add(24*time.Hour - time.Second)
	return start, end
}

// AtClock 将时刻（从零点起算的时长）落到某民用日期上
// 跨午夜班次的结束时刻由调用方自行 +1 天
func AtClock(date time.Time, clock time.Duration, loc *time.Location) time.Time {
	return DateOf(date, loc).Add(clock)
}

// SameCivilDay 判断两个时间戳是否落在同一民用日
func SameCivilDay(a, b time.Time, loc *time.Location) bool {
	return DateOf(a, loc).Equal(DateOf(b, loc))
}

// RangesOverlap 判定两个闭区间日期范围是否重叠
// end 为 nil 表示无界（+∞）；端点相等视为重叠
// 判定式：aStart ≤ bEnd && bStart ≤ aEnd（无界端按 +∞ 代入）
func RangesOverlap(aStart time.Time, aEnd *time.Time, bStart time.Time, bEnd *time.Time) bool {
	if aEnd != nil && aEnd.Before(bStart) {
		return false
	}
	if bEnd != nil && bEnd.Before(aStart) {
		return false
	}
	return true
}

// ContainsDate 判定闭区间 [start, end]（end 为 nil 表示无界）是否包含 date
func ContainsDate(start time.Time, end *time.Time, date time.Time) bool {
	return RangesOverlap(start, end, date, &date)
}
