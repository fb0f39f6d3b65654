package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout 前后端约定的日期格式
const DateLayout = "2006-01-02"

// ParseDate 严格解析 YYYY-MM-DD，返回 UTC 零点
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// DateOf 截取某一时刻所在的日历日
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// YearsMonths 计算 start 到 end 的整年整月，结束日早于开始日时借一个月
func YearsMonths(start, end time.Time) (years, months int) {
	years = end.Year() - start.Year()
	months = int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		years--
		months += 12
	}
	if years < 0 {
		return 0, 0
	}
	return years, months
}

// Tenure 返回 "2 years, 3 months" 形式的任职时长，零值单位省略
func Tenure(start, end time.Time) string {
	years, months := YearsMonths(start, end)

	parts := make([]string, 0, 2)
	if years > 0 {
		parts = append(parts, plural(years, "year"))
	}
	if months > 0 {
		parts = append(parts, plural(months, "month"))
	}
	if len(parts) == 0 {
		return "0 months"
	}
	return strings.Join(parts, ", ")
}

// TenureYears 同 Tenure，但返回小数年
func TenureYears(start, end time.Time) float64 {
	years, months := YearsMonths(start, end)
	return float64(years) + float64(months)/12
}

// Age 按生日计算周岁
func Age(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

// IsPastDate 日历日严格早于 today
func IsPastDate(d, today time.Time) bool {
	return DateOf(d).Before(DateOf(today))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
