package habit

import (
	"math"
	"time"
)

const dayFormat = "2006-01-02"

// Day 将时间归一化到当天零点
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDay 按 2006-01-02 解析日期字符串
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(dayFormat, value, time.Local)
}

func dayKey(t time.Time) string {
	return t.Format(dayFormat)
}

func addDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// daysBetween 返回 from 到 to 的整天数差，to 在前时为负
// 采用四舍五入吸收夏令时带来的 ±1 小时偏差
func daysBetween(from, to time.Time) int {
	return int(math.Round(Day(to).Sub(Day(from)).Hours() / 24))
}

func sameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
