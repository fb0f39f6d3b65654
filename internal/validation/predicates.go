package validation

import (
	"Pantiss/internal/model"
	"Pantiss/utils"
)

// 以下构造器把字段取值函数和判定组合成 Rule.Valid

func Required[T any](get func(T) string) func(T, Env) bool {
	return func(v T, _ Env) bool { return get(v) != "" }
}

func MinLen[T any](get func(T) string, n int) func(T, Env) bool {
	return func(v T, _ Env) bool { return utils.CharCount(get(v)) >= n }
}

func Matches[T any](get func(T) string, ok func(string) bool) func(T, Env) bool {
	return func(v T, _ Env) bool { return ok(get(v)) }
}

func OneOf[T any](get func(T) string, options []string) func(T, Env) bool {
	return func(v T, _ Env) bool { return model.Contains(options, get(v)) }
}

func Present[T any](get func(T) *model.BlobHandle) func(T, Env) bool {
	return func(v T, _ Env) bool { return get(v).Present() }
}

func MaxWords[T any](get func(T) string, n int) func(T, Env) bool {
	return func(v T, _ Env) bool { return utils.WordCount(get(v)) <= n }
}

// PastDate 合法日期且日历日严格早于 Env.Today
func PastDate[T any](get func(T) string) func(T, Env) bool {
	return func(v T, env Env) bool {
		d, err := utils.ParseDate(get(v))
		if err != nil {
			return false
		}
		return utils.IsPastDate(d, env.Today)
	}
}
