package model

// AccountKind 注册向导 / 账号类型
type AccountKind string

const (
	KindSeeker   AccountKind = "seeker"   // 求职者
	KindBusiness AccountKind = "business" // 企业 / 承包商
)

func (k AccountKind) Valid() bool {
	return k == KindSeeker || k == KindBusiness
}

// BlobHandle 客户端上传后拿到的文件引用，服务端只保存元数据
type BlobHandle struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Present id 非空即视为已上传
func (b *BlobHandle) Present() bool {
	return b != nil && b.ID != ""
}

// EmploymentRecord 一段工作经历，Tenure 由服务端根据起止日期计算
type EmploymentRecord struct {
	Company    string  `json:"company"`
	Role       string  `json:"role"`
	FromDate   string  `json:"from_date"`
	ToDate     string  `json:"to_date"`
	Tenure     string  `json:"tenure"`
	LastIncome float64 `json:"last_income"`
}

// SeekerDraft 求职者注册草稿
type SeekerDraft struct {
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Mobile          string             `json:"mobile"`
	Password        string             `json:"password"`
	ConfirmPassword string             `json:"confirm_password"`
	EmailOTP        string             `json:"email_otp"`
	MobileOTP       string             `json:"mobile_otp"`
	JobRole         string             `json:"job_role"`
	DOB             string             `json:"dob"`
	Aadhar          string             `json:"aadhar"`
	AadharFile      *BlobHandle        `json:"aadhar_file,omitempty"`
	ProfilePic      *BlobHandle        `json:"profile_pic,omitempty"`
	Certificate     *BlobHandle        `json:"certificate,omitempty"`
	License         *BlobHandle        `json:"license,omitempty"`
	Bio             string             `json:"bio"`
	Experiences     []EmploymentRecord `json:"experiences"`
}

// BusinessDraft 企业注册草稿
type BusinessDraft struct {
	RecruiterName      string      `json:"recruiter_name"`
	Email              string      `json:"email"`
	Phone              string      `json:"phone"`
	Password           string      `json:"password"`
	ConfirmPassword    string      `json:"confirm_password"`
	EmailOTP           string      `json:"email_otp"`
	PhoneOTP           string      `json:"phone_otp"`
	OrganizationType   string      `json:"organization_type"`
	CompanyName        string      `json:"company_name"`
	CompanyLogo        *BlobHandle `json:"company_logo,omitempty"`
	ProfilePic         *BlobHandle `json:"profile_pic,omitempty"`
	Location           string      `json:"location"`
	NumberOfEmployees  string      `json:"number_of_employees"`
	CompanyDescription string      `json:"company_description"`
	Address            string      `json:"address"`
	Website            string      `json:"website"`
}

// Draft 一个向导会话只会有其中一个非空
type Draft struct {
	Seeker   *SeekerDraft   `json:"seeker,omitempty"`
	Business *BusinessDraft `json:"business,omitempty"`
}

// NewDraft 按类型创建空草稿
func NewDraft(kind AccountKind) Draft {
	if kind == KindBusiness {
		return Draft{Business: &BusinessDraft{}}
	}
	return Draft{Seeker: &SeekerDraft{Experiences: []EmploymentRecord{}}}
}

// Partial 某一步骤通过校验后的数据，浅合并进草稿
type Partial interface {
	MergeInto(d *Draft)
}
