package model

// 步骤校验所用的可选项，/v1/catalog 原样返回

var JobRoles = []string{
	"Software Engineer",
	"Product Manager",
	"Designer",
	"Data Analyst",
}

const (
	OrganizationTypeOrganization   = "organization"
	OrganizationTypeNanoContractor = "nano-contractor"
)

var OrganizationTypes = []string{
	OrganizationTypeOrganization,
	OrganizationTypeNanoContractor,
}

var EmployeeRanges = []string{
	"0-10",
	"10-50",
	"50-100",
	"100-500",
	"500-1000",
	"1000+",
}

// Contains 精确匹配，不做大小写折叠
func Contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
