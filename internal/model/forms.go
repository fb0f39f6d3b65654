package model

// 各步骤提交的表单，字段名与草稿一致

type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SeekerSignupForm struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Mobile          string `json:"mobile"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	EmailOTP        string `json:"email_otp"`
	MobileOTP       string `json:"mobile_otp"`
}

func (f SeekerSignupForm) MergeInto(d *Draft) {
	s := d.Seeker
	s.Name = f.Name
	s.Email = f.Email
	s.Mobile = f.Mobile
	s.Password = f.Password
	s.ConfirmPassword = f.ConfirmPassword
	s.EmailOTP = f.EmailOTP
	s.MobileOTP = f.MobileOTP
}

type BusinessSignupForm struct {
	RecruiterName   string `json:"recruiter_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	EmailOTP        string `json:"email_otp"`
	PhoneOTP        string `json:"phone_otp"`
}

func (f BusinessSignupForm) MergeInto(d *Draft) {
	b := d.Business
	b.RecruiterName = f.RecruiterName
	b.Email = f.Email
	b.Phone = f.Phone
	b.Password = f.Password
	b.ConfirmPassword = f.ConfirmPassword
	b.EmailOTP = f.EmailOTP
	b.PhoneOTP = f.PhoneOTP
}

type JobRoleForm struct {
	JobRole string `json:"job_role"`
}

func (f JobRoleForm) MergeInto(d *Draft) {
	d.Seeker.JobRole = f.JobRole
}

type OrganizationTypeForm struct {
	OrganizationType string `json:"organization_type"`
}

func (f OrganizationTypeForm) MergeInto(d *Draft) {
	d.Business.OrganizationType = f.OrganizationType
}

type PersonalDetailsForm struct {
	DOB         string      `json:"dob"`
	Aadhar      string      `json:"aadhar"`
	AadharFile  *BlobHandle `json:"aadhar_file"`
	ProfilePic  *BlobHandle `json:"profile_pic"`
	Certificate *BlobHandle `json:"certificate"`
	License     *BlobHandle `json:"license"`
	Bio         string      `json:"bio"`
}

func (f PersonalDetailsForm) MergeInto(d *Draft) {
	s := d.Seeker
	s.DOB = f.DOB
	s.Aadhar = f.Aadhar
	s.AadharFile = f.AadharFile
	s.ProfilePic = f.ProfilePic
	s.Certificate = f.Certificate
	s.License = f.License
	s.Bio = f.Bio
}

// ExperienceForm 由经历编辑表生成，数组整体替换
type ExperienceForm struct {
	Fresher     bool               `json:"fresher"`
	Experiences []EmploymentRecord `json:"experiences"`
}

func (f ExperienceForm) MergeInto(d *Draft) {
	records := make([]EmploymentRecord, len(f.Experiences))
	copy(records, f.Experiences)
	d.Seeker.Experiences = records
}

type CompanyDetailsForm struct {
	CompanyName        string      `json:"company_name"`
	CompanyLogo        *BlobHandle `json:"company_logo"`
	ProfilePic         *BlobHandle `json:"profile_pic"`
	Location           string      `json:"location"`
	NumberOfEmployees  string      `json:"number_of_employees"`
	CompanyDescription string      `json:"company_description"`
	Address            string      `json:"address"`
	Website            string      `json:"website"`
}

func (f CompanyDetailsForm) MergeInto(d *Draft) {
	b := d.Business
	b.CompanyName = f.CompanyName
	b.CompanyLogo = f.CompanyLogo
	b.ProfilePic = f.ProfilePic
	b.Location = f.Location
	b.NumberOfEmployees = f.NumberOfEmployees
	b.CompanyDescription = f.CompanyDescription
	b.Address = f.Address
	b.Website = f.Website
}
