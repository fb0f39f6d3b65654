package wizard

import (
	"fmt"
	"time"

	"Pantiss/internal/model"
	"Pantiss/utils"
)

const notAvailable = "N/A"

const (
	ICardActionConfirm     = "confirm"
	ICardActionGoToProfile = "go_to_profile"
)

// ICard 求职者信息卡，只读投影
type ICard struct {
	Name            string            `json:"name"`
	Designation     string            `json:"designation"`
	Email           string            `json:"email"`
	Mobile          string            `json:"mobile"`
	ProfilePic      *model.BlobHandle `json:"profile_pic,omitempty"`
	Age             string            `json:"age"`
	TotalExperience string            `json:"total_experience"`
	Confirmed       bool              `json:"confirmed"`
	Action          string            `json:"action"`
	ProfileRoute    string            `json:"profile_route,omitempty"`
}

func BuildICard(d *model.SeekerDraft, confirmed bool, today time.Time) ICard {
	card := ICard{
		Name:            orNA(d.Name),
		Designation:     orNA(d.JobRole),
		Email:           orNA(d.Email),
		Mobile:          orNA(d.Mobile),
		ProfilePic:      d.ProfilePic,
		Age:             AgeLabel(d.DOB, today),
		TotalExperience: TotalExperienceLabel(d.Experiences),
		Confirmed:       confirmed,
		Action:          ICardActionConfirm,
	}
	if confirmed {
		card.Action = ICardActionGoToProfile
		card.ProfileRoute = DashboardRoute(model.KindSeeker)
	}
	return card
}

// AgeLabel "24 years"，生日缺失或不合法时为 N/A
func AgeLabel(dob string, today time.Time) string {
	if dob == "" {
		return notAvailable
	}
	d, err := utils.ParseDate(dob)
	if err != nil {
		return notAvailable
	}
	return fmt.Sprintf("%d years", utils.Age(d, today))
}

// TotalExperienceLabel 各段经历的小数年之和，保留一位
func TotalExperienceLabel(records []model.EmploymentRecord) string {
	if len(records) == 0 {
		return "0 years"
	}
	var total float64
	for _, rec := range records {
		from, err := utils.ParseDate(rec.FromDate)
		if err != nil {
			continue
		}
		to, err := utils.ParseDate(rec.ToDate)
		if err != nil {
			continue
		}
		total += utils.TenureYears(from, to)
	}
	return fmt.Sprintf("%.1f years", total)
}

func orNA(v string) string {
	if v == "" {
		return notAvailable
	}
	return v
}
