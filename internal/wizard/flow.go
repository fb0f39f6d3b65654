package wizard

import (
	"Pantiss/internal/model"
)

// Step 向导步骤标识
type Step string

const (
	StepLogin            Step = "login"
	StepSignup           Step = "signup"
	StepJobRole          Step = "job_role"
	StepPersonalDetails  Step = "personal_details"
	StepExperience       Step = "experience"
	StepICard            Step = "icard"
	StepOrganizationType Step = "organization_type"
	StepCompanyDetails   Step = "company_details"
)

// stepTitles 进度条上展示的名称，登录页不展示进度条
var stepTitles = map[Step]string{
	StepSignup:           "Basic Info",
	StepJobRole:          "Job Role",
	StepPersonalDetails:  "Personal Details",
	StepExperience:       "Experience",
	StepICard:            "I-Card",
	StepOrganizationType: "Organization Type",
	StepCompanyDetails:   "Company Details",
}

var flows = map[model.AccountKind][]Step{
	model.KindSeeker:   {StepLogin, StepSignup, StepJobRole, StepPersonalDetails, StepExperience, StepICard},
	model.KindBusiness: {StepLogin, StepSignup, StepOrganizationType, StepCompanyDetails},
}

// Steps 返回某类向导的步骤顺序，调用方不得修改
func Steps(kind model.AccountKind) []Step {
	return flows[kind]
}

func (s Step) Title() string {
	return stepTitles[s]
}

// DashboardRoute 登录或注册完成后前端跳转的页面
func DashboardRoute(kind model.AccountKind) string {
	if kind == model.KindBusiness {
		return "/job-search-engine/job-providers/profile"
	}
	return "/job-search-engine/job-seekers/profile"
}
