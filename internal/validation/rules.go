package validation

import (
	"fmt"

	"Pantiss/internal/model"
	"Pantiss/utils"
)

const (
	MinPasswordLen = 6
	MaxBioWords    = 700

	// GeneralField 不属于具体字段的错误
	GeneralField = "general"
)

// Login 求职者和企业共用
var Login = NewRuleset(
	Rule[model.LoginForm]{Field: "email", Valid: Matches(func(f model.LoginForm) string { return f.Email }, utils.ValidateEmail), Message: "Invalid email address"},
	Rule[model.LoginForm]{Field: "password", Valid: MinLen(func(f model.LoginForm) string { return f.Password }, MinPasswordLen), Message: "Password must be at least 6 characters"},
)

var SeekerSignup = NewRuleset(
	Rule[model.SeekerSignupForm]{Field: "name", Valid: MinLen(func(f model.SeekerSignupForm) string { return f.Name }, 2), Message: "Name must be at least 2 characters"},
	Rule[model.SeekerSignupForm]{Field: "email", Valid: Required(func(f model.SeekerSignupForm) string { return f.Email }), Message: "Email is required"},
	Rule[model.SeekerSignupForm]{Field: "email", Valid: Matches(func(f model.SeekerSignupForm) string { return f.Email }, utils.ValidateEmail), Message: "Invalid email address"},
	Rule[model.SeekerSignupForm]{Field: "mobile", Valid: Required(func(f model.SeekerSignupForm) string { return f.Mobile }), Message: "Mobile number is required"},
	Rule[model.SeekerSignupForm]{Field: "mobile", Valid: Matches(func(f model.SeekerSignupForm) string { return f.Mobile }, utils.ValidatePhone), Message: "Mobile number must be 10 digits"},
	Rule[model.SeekerSignupForm]{Field: "password", Valid: Required(func(f model.SeekerSignupForm) string { return f.Password }), Message: "Password is required"},
	Rule[model.SeekerSignupForm]{Field: "password", Valid: MinLen(func(f model.SeekerSignupForm) string { return f.Password }, MinPasswordLen), Message: "Password must be at least 6 characters"},
	Rule[model.SeekerSignupForm]{Field: "confirm_password", Valid: Required(func(f model.SeekerSignupForm) string { return f.ConfirmPassword }), Message: "Confirm password is required"},
	Rule[model.SeekerSignupForm]{Field: "confirm_password", Valid: func(f model.SeekerSignupForm, _ Env) bool { return f.Password == f.ConfirmPassword }, Message: "Passwords must match"},
	Rule[model.SeekerSignupForm]{
		Field:   "email_otp",
		When:    func(_ model.SeekerSignupForm, env Env) bool { return env.EmailCodeSent },
		Valid:   Matches(func(f model.SeekerSignupForm) string { return f.EmailOTP }, utils.ValidateOTP),
		Message: "Email OTP must be 6 digits",
	},
	Rule[model.SeekerSignupForm]{
		Field:   "mobile_otp",
		When:    func(_ model.SeekerSignupForm, env Env) bool { return env.PhoneCodeSent },
		Valid:   Matches(func(f model.SeekerSignupForm) string { return f.MobileOTP }, utils.ValidateOTP),
		Message: "Mobile OTP must be 6 digits",
	},
)

var BusinessSignup = NewRuleset(
	Rule[model.BusinessSignupForm]{Field: "recruiter_name", Valid: MinLen(func(f model.BusinessSignupForm) string { return f.RecruiterName }, 2), Message: "Name must be at least 2 characters"},
	Rule[model.BusinessSignupForm]{Field: "email", Valid: Required(func(f model.BusinessSignupForm) string { return f.Email }), Message: "Email is required"},
	Rule[model.BusinessSignupForm]{Field: "email", Valid: Matches(func(f model.BusinessSignupForm) string { return f.Email }, utils.ValidateEmail), Message: "Invalid email address"},
	Rule[model.BusinessSignupForm]{Field: "phone", Valid: Required(func(f model.BusinessSignupForm) string { return f.Phone }), Message: "Phone number is required"},
	Rule[model.BusinessSignupForm]{Field: "phone", Valid: Matches(func(f model.BusinessSignupForm) string { return f.Phone }, utils.ValidatePhone), Message: "Phone number must be 10 digits"},
	Rule[model.BusinessSignupForm]{Field: "password", Valid: Required(func(f model.BusinessSignupForm) string { return f.Password }), Message: "Password is required"},
	Rule[model.BusinessSignupForm]{Field: "password", Valid: MinLen(func(f model.BusinessSignupForm) string { return f.Password }, MinPasswordLen), Message: "Password must be at least 6 characters"},
	Rule[model.BusinessSignupForm]{Field: "confirm_password", Valid: Required(func(f model.BusinessSignupForm) string { return f.ConfirmPassword }), Message: "Confirm password is required"},
	Rule[model.BusinessSignupForm]{Field: "confirm_password", Valid: func(f model.BusinessSignupForm, _ Env) bool { return f.Password == f.ConfirmPassword }, Message: "Passwords must match"},
	Rule[model.BusinessSignupForm]{
		Field:   "email_otp",
		When:    func(_ model.BusinessSignupForm, env Env) bool { return env.EmailCodeSent },
		Valid:   Matches(func(f model.BusinessSignupForm) string { return f.EmailOTP }, utils.ValidateOTP),
		Message: "Email OTP must be 6 digits",
	},
	Rule[model.BusinessSignupForm]{
		Field:   "phone_otp",
		When:    func(_ model.BusinessSignupForm, env Env) bool { return env.PhoneCodeSent },
		Valid:   Matches(func(f model.BusinessSignupForm) string { return f.PhoneOTP }, utils.ValidateOTP),
		Message: "Phone OTP must be 6 digits",
	},
)

var JobRole = NewRuleset(
	Rule[model.JobRoleForm]{Field: "job_role", Valid: OneOf(func(f model.JobRoleForm) string { return f.JobRole }, model.JobRoles), Message: "Please select a job role"},
)

var OrganizationType = NewRuleset(
	Rule[model.OrganizationTypeForm]{Field: "organization_type", Valid: OneOf(func(f model.OrganizationTypeForm) string { return f.OrganizationType }, model.OrganizationTypes), Message: "Organization type is required"},
)

var PersonalDetails = NewRuleset(
	Rule[model.PersonalDetailsForm]{Field: "dob", Valid: PastDate(func(f model.PersonalDetailsForm) string { return f.DOB }), Message: "Date of birth must be in the past"},
	Rule[model.PersonalDetailsForm]{Field: "aadhar", Valid: Matches(func(f model.PersonalDetailsForm) string { return f.Aadhar }, utils.ValidateAadhar), Message: "Aadhar number must be 12 digits"},
	Rule[model.PersonalDetailsForm]{Field: "aadhar_file", Valid: Present(func(f model.PersonalDetailsForm) *model.BlobHandle { return f.AadharFile }), Message: "Aadhar file is required"},
	Rule[model.PersonalDetailsForm]{Field: "profile_pic", Valid: Present(func(f model.PersonalDetailsForm) *model.BlobHandle { return f.ProfilePic }), Message: "Profile picture is required"},
	Rule[model.PersonalDetailsForm]{Field: "certificate", Valid: Present(func(f model.PersonalDetailsForm) *model.BlobHandle { return f.Certificate }), Message: "Certificate is required"},
	Rule[model.PersonalDetailsForm]{Field: "license", Valid: Present(func(f model.PersonalDetailsForm) *model.BlobHandle { return f.License }), Message: "License is required"},
	Rule[model.PersonalDetailsForm]{Field: "bio", Valid: Required(func(f model.PersonalDetailsForm) string { return f.Bio }), Message: "Bio is required"},
	Rule[model.PersonalDetailsForm]{Field: "bio", Valid: MaxWords(func(f model.PersonalDetailsForm) string { return f.Bio }, MaxBioWords), Message: "Bio must not exceed 700 words"},
)

var CompanyDetails = NewRuleset(
	Rule[model.CompanyDetailsForm]{Field: "company_name", Valid: MinLen(func(f model.CompanyDetailsForm) string { return f.CompanyName }, 2), Message: "Company name must be at least 2 characters"},
	Rule[model.CompanyDetailsForm]{Field: "company_logo", Valid: Present(func(f model.CompanyDetailsForm) *model.BlobHandle { return f.CompanyLogo }), Message: "Company logo is required"},
	Rule[model.CompanyDetailsForm]{Field: "profile_pic", Valid: Present(func(f model.CompanyDetailsForm) *model.BlobHandle { return f.ProfilePic }), Message: "Profile picture is required"},
	Rule[model.CompanyDetailsForm]{Field: "location", Valid: Required(func(f model.CompanyDetailsForm) string { return f.Location }), Message: "Location is required"},
	Rule[model.CompanyDetailsForm]{Field: "number_of_employees", Valid: OneOf(func(f model.CompanyDetailsForm) string { return f.NumberOfEmployees }, model.EmployeeRanges), Message: "Employee range is required"},
	Rule[model.CompanyDetailsForm]{Field: "company_description", Valid: MinLen(func(f model.CompanyDetailsForm) string { return f.CompanyDescription }, 10), Message: "Description must be at least 10 characters"},
	Rule[model.CompanyDetailsForm]{Field: "address", Valid: MinLen(func(f model.CompanyDetailsForm) string { return f.Address }, 5), Message: "Address must be at least 5 characters"},
	Rule[model.CompanyDetailsForm]{Field: "website", Valid: Matches(func(f model.CompanyDetailsForm) string { return f.Website }, utils.ValidateURL), Message: "Invalid URL"},
)

// EmploymentRecord 单条工作经历，字段名由 Experience 加上 experiences[i]. 前缀
var EmploymentRecord = NewRuleset(
	Rule[model.EmploymentRecord]{Field: "company", Valid: Required(func(r model.EmploymentRecord) string { return r.Company }), Message: "Company name is required"},
	Rule[model.EmploymentRecord]{Field: "role", Valid: Required(func(r model.EmploymentRecord) string { return r.Role }), Message: "Role is required"},
	Rule[model.EmploymentRecord]{Field: "from_date", Valid: Required(func(r model.EmploymentRecord) string { return r.FromDate }), Message: "Start date is required"},
	Rule[model.EmploymentRecord]{Field: "from_date", Valid: PastDate(func(r model.EmploymentRecord) string { return r.FromDate }), Message: "Start date must be in the past"},
	Rule[model.EmploymentRecord]{Field: "to_date", Valid: Required(func(r model.EmploymentRecord) string { return r.ToDate }), Message: "End date is required"},
	Rule[model.EmploymentRecord]{Field: "to_date", Valid: endNotBeforeStart, Message: "End date must be after start date"},
	Rule[model.EmploymentRecord]{Field: "tenure", Valid: Required(func(r model.EmploymentRecord) string { return r.Tenure }), Message: "Tenure is required"},
	Rule[model.EmploymentRecord]{Field: "last_income", Valid: func(r model.EmploymentRecord, _ Env) bool { return r.LastIncome >= 0 }, Message: "Income must be non-negative"},
)

// endNotBeforeStart 开始日期无法解析时由 from_date 规则报错，这里只要求结束日期本身合法
func endNotBeforeStart(r model.EmploymentRecord, _ Env) bool {
	to, err := utils.ParseDate(r.ToDate)
	if err != nil {
		return false
	}
	from, err := utils.ParseDate(r.FromDate)
	if err != nil {
		return true
	}
	return !from.After(to)
}

// Experience 应届生直接通过；否则至少一条经历且每条都合法
func Experience(f model.ExperienceForm, env Env) FieldErrors {
	errs := FieldErrors{}
	if f.Fresher {
		return errs
	}

	if len(f.Experiences) == 0 {
		errs.Add(GeneralField, "At least one experience is required")
	}
	for i, rec := range f.Experiences {
		EmploymentRecord.CheckInto(errs, RecordPrefix(i), rec, env)
	}
	return errs
}

// RecordPrefix experiences[i].
func RecordPrefix(i int) string {
	return fmt.Sprintf("experiences[%d].", i)
}
