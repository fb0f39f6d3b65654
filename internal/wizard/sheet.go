package wizard

import (
	"Pantiss/internal/model"
	"Pantiss/utils"
)

// ExperienceSheet 经历步骤的编辑表，提交前的工作副本
type ExperienceSheet struct {
	Fresher bool                     `json:"fresher"`
	Records []model.EmploymentRecord `json:"records"`
}

// NewExperienceSheet 默认非应届生，带一条空经历
func NewExperienceSheet() ExperienceSheet {
	return ExperienceSheet{Records: []model.EmploymentRecord{{}}}
}

// SetFresher 勾选时清空列表；取消时恢复为一条空经历，之前填写的内容不保留
func (e *ExperienceSheet) SetFresher(on bool) {
	e.Fresher = on
	if on {
		e.Records = []model.EmploymentRecord{}
		return
	}
	e.Records = []model.EmploymentRecord{{}}
}

func (e *ExperienceSheet) Add() {
	e.Records = append(e.Records, model.EmploymentRecord{})
}

func (e *ExperienceSheet) Remove(i int) bool {
	if i < 0 || i >= len(e.Records) {
		return false
	}
	e.Records = append(e.Records[:i:i], e.Records[i+1:]...)
	return true
}

// Update 覆盖第 i 条，客户端传入的 tenure 会被重新计算
func (e *ExperienceSheet) Update(i int, rec model.EmploymentRecord) bool {
	if i < 0 || i >= len(e.Records) {
		return false
	}
	e.Records[i] = WithTenure(rec)
	return true
}

// Form 生成提交用的表单，tenure 统一重新计算
func (e *ExperienceSheet) Form() model.ExperienceForm {
	records := make([]model.EmploymentRecord, len(e.Records))
	for i, rec := range e.Records {
		records[i] = WithTenure(rec)
	}
	return model.ExperienceForm{Fresher: e.Fresher, Experiences: records}
}

// WithTenure 两个日期都合法时计算任职时长，否则置空
func WithTenure(rec model.EmploymentRecord) model.EmploymentRecord {
	rec.Tenure = ""
	from, err := utils.ParseDate(rec.FromDate)
	if err != nil {
		return rec
	}
	to, err := utils.ParseDate(rec.ToDate)
	if err != nil {
		return rec
	}
	rec.Tenure = utils.Tenure(from, to)
	return rec
}
