package validation

import (
	"sort"
	"strings"
	"time"
)

// FieldErrors 字段路径 -> 提示信息，例如 email、experiences[1].to_date、general
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields 供 response 包渲染 details
func (f FieldErrors) Fields() map[string]string {
	return f
}

// Add 同一字段只保留第一条
func (f FieldErrors) Add(field, message string) {
	if _, ok := f[field]; !ok {
		f[field] = message
	}
}

// Err 无错误时返回 nil，避免 nil map 装进 error 接口
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// Env 规则执行时依赖的上下文
type Env struct {
	Today         time.Time
	EmailCodeSent bool
	PhoneCodeSent bool
}

// Rule 一条校验规则，When 为空表示总是生效
type Rule[T any] struct {
	Field   string
	When    func(v T, env Env) bool
	Valid   func(v T, env Env) bool
	Message string
}

// Ruleset 一个步骤的全部规则，按声明顺序执行
type Ruleset[T any] struct {
	rules []Rule[T]
}

func NewRuleset[T any](rules ...Rule[T]) *Ruleset[T] {
	return &Ruleset[T]{rules: rules}
}

// Check 执行所有规则，每个字段只记录第一条失败
func (r *Ruleset[T]) Check(v T, env Env) FieldErrors {
	errs := FieldErrors{}
	r.CheckInto(errs, "", v, env)
	return errs
}

// CheckInto 把结果写入 errs，字段名加上 prefix
func (r *Ruleset[T]) CheckInto(errs FieldErrors, prefix string, v T, env Env) {
	for _, rule := range r.rules {
		field := prefix + rule.Field
		if _, failed := errs[field]; failed {
			continue
		}
		if rule.When != nil && !rule.When(v, env) {
			continue
		}
		if !rule.Valid(v, env) {
			errs[field] = rule.Message
		}
	}
}

// Fields 返回规则覆盖的字段（去重，保持顺序）
func (r *Ruleset[T]) Fields() []string {
	seen := make(map[string]bool, len(r.rules))
	fields := make([]string, 0, len(r.rules))
	for _, rule := range r.rules {
		if !seen[rule.Field] {
			seen[rule.Field] = true
			fields = append(fields, rule.Field)
		}
	}
	return fields
}
