package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"Pantiss/internal/model"
)

func TestBuildICard(t *testing.T) {
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	pic := &model.BlobHandle{ID: "pic-1"}

	draft := &model.SeekerDraft{
		Name:       "Asha Rao",
		Email:      "asha@pantiss.in",
		Mobile:     "9876543210",
		JobRole:    "Designer",
		DOB:        "2000-06-16",
		ProfilePic: pic,
		Experiences: []model.EmploymentRecord{
			{FromDate: "2019-01-01", ToDate: "2020-07-01", Tenure: "1 year, 6 months"},
			{FromDate: "2020-08-01", ToDate: "2021-08-01", Tenure: "1 year"},
		},
	}

	card := BuildICard(draft, false, today)
	assert.Equal(t, "Asha Rao", card.Name)
	assert.Equal(t, "Designer", card.Designation)
	assert.Equal(t, "23 years", card.Age)
	assert.Equal(t, "2.5 years", card.TotalExperience)
	assert.Equal(t, ICardActionConfirm, card.Action)
	assert.Empty(t, card.ProfileRoute)
	assert.Same(t, pic, card.ProfilePic)

	confirmed := BuildICard(draft, true, today)
	assert.True(t, confirmed.Confirmed)
	assert.Equal(t, ICardActionGoToProfile, confirmed.Action)
	assert.Equal(t, "/job-search-engine/job-seekers/profile", confirmed.ProfileRoute)
}

func TestICardPlaceholders(t *testing.T) {
	card := BuildICard(&model.SeekerDraft{}, false, time.Now())
	assert.Equal(t, "N/A", card.Name)
	assert.Equal(t, "N/A", card.Designation)
	assert.Equal(t, "N/A", card.Email)
	assert.Equal(t, "N/A", card.Mobile)
	assert.Equal(t, "N/A", card.Age)
	assert.Equal(t, "0 years", card.TotalExperience)
}
