package model

import (
	"gorm.io/datatypes"
)

// Account 注册完成后的账号，email 在同一 kind 内唯一
type Account struct {
	InternalID
	Timestamps
	PublicID     int64                              `gorm:"uniqueIndex;not null" json:"public_id"`
	Kind         AccountKind                        `gorm:"type:varchar(16);not null;uniqueIndex:idx_accounts_kind_email" json:"kind"`
	Email        string                             `gorm:"type:varchar(255);not null;uniqueIndex:idx_accounts_kind_email" json:"email"`
	PasswordHash string                             `gorm:"type:varchar(72);not null" json:"-"`
	DisplayName  string                             `gorm:"type:varchar(128);not null;default:''" json:"display_name"`
	Contact      string                             `gorm:"type:varchar(16);not null;default:''" json:"contact"`
	AadharCipher string                             `gorm:"type:text" json:"-"` // Aadhar 密文，未配置密钥时为空
	Profile      datatypes.JSONType[AccountProfile] `gorm:"type:jsonb" json:"profile"`
}

// TableName 指定表名
func (Account) TableName() string {
	return "accounts"
}

// AccountProfile 草稿去掉密码和验证码后的快照（JSONB）
type AccountProfile struct {
	Seeker   *SeekerProfile   `json:"seeker,omitempty"`
	Business *BusinessProfile `json:"business,omitempty"`
}

type SeekerProfile struct {
	Name         string             `json:"name"`
	Email        string             `json:"email"`
	Mobile       string             `json:"mobile"`
	JobRole      string             `json:"job_role"`
	DOB          string             `json:"dob"`
	AadharMasked string             `json:"aadhar_masked"`
	AadharFile   *BlobHandle        `json:"aadhar_file,omitempty"`
	ProfilePic   *BlobHandle        `json:"profile_pic,omitempty"`
	Certificate  *BlobHandle        `json:"certificate,omitempty"`
	License      *BlobHandle        `json:"license,omitempty"`
	Bio          string             `json:"bio"`
	Experiences  []EmploymentRecord `json:"experiences"`
}

type BusinessProfile struct {
	RecruiterName      string      `json:"recruiter_name"`
	Email              string      `json:"email"`
	Phone              string      `json:"phone"`
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
