package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"Pantiss/internal/model"
)

type SessionSuite struct {
	suite.Suite
	now time.Time
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
}

func (s *SessionSuite) TestNewSession() {
	s.Run("seeker starts at login with empty draft", func() {
		sess := New("w1", model.KindSeeker, s.now)
		s.Equal(StepLogin, sess.Current())
		s.Require().NotNil(sess.Draft.Seeker)
		s.Nil(sess.Draft.Business)
		s.Empty(sess.Draft.Seeker.Experiences)
		s.False(sess.Sheet.Fresher)
		s.Len(sess.Sheet.Records, 1)
		s.False(sess.CodeState(ChannelEmail).Sent)
	})

	s.Run("business flow order", func() {
		sess := New("w2", model.KindBusiness, s.now)
		s.Equal([]Step{StepLogin, StepSignup, StepOrganizationType, StepCompanyDetails}, sess.Steps())
	})
}

func (s *SessionSuite) TestAdvance() {
	s.Run("merges and moves forward", func() {
		sess := New("w1", model.KindSeeker, s.now)
		s.True(sess.BeginSignup())

		completed := sess.Advance(model.SeekerSignupForm{Name: "Asha", Email: "asha@pantiss.in"})
		s.False(completed)
		s.Equal(StepJobRole, sess.Current())
		s.Equal("Asha", sess.Draft.Seeker.Name)

		sess.Advance(model.JobRoleForm{JobRole: "Designer"})
		s.Equal(StepPersonalDetails, sess.Current())
		s.Equal("Asha", sess.Draft.Seeker.Name, "earlier fields survive a merge")
		s.Equal("Designer", sess.Draft.Seeker.JobRole)
	})

	s.Run("arrays are replaced wholesale", func() {
		sess := New("w1", model.KindSeeker, s.now)
		sess.Position = 4
		sess.Advance(model.ExperienceForm{Experiences: []model.EmploymentRecord{{Company: "A"}, {Company: "B"}}})
		s.Len(sess.Draft.Seeker.Experiences, 2)

		sess.Position = 4
		sess.Advance(model.ExperienceForm{Experiences: []model.EmploymentRecord{{Company: "C"}}})
		s.Len(sess.Draft.Seeker.Experiences, 1)
		s.Equal("C", sess.Draft.Seeker.Experiences[0].Company)
	})

	s.Run("last step signals completion without moving", func() {
		sess := New("w2", model.KindBusiness, s.now)
		sess.Position = 3
		completed := sess.Advance(model.CompanyDetailsForm{CompanyName: "Acme"})
		s.True(completed)
		s.Equal(3, sess.Position)
		s.Equal("Acme", sess.Draft.Business.CompanyName)
	})
}

func (s *SessionSuite) TestRetreat() {
	sess := New("w1", model.KindSeeker, s.now)
	sess.Retreat()
	s.Equal(0, sess.Position, "clamped at the first step")

	sess.Position = 3
	sess.Draft.Seeker.JobRole = "Designer"
	sess.Retreat()
	s.Equal(StepJobRole, sess.Current())
	s.Equal("Designer", sess.Draft.Seeker.JobRole, "retreat never touches the draft")

	sess.Retreat()
	sess.Retreat()
	s.Equal(StepLogin, sess.Current())
}

func (s *SessionSuite) TestMovingClearsICardConfirmation() {
	sess := New("w1", model.KindSeeker, s.now)
	sess.Position = len(sess.Steps()) - 1
	sess.ICardConfirmed = true

	s.True(sess.Advance(nil), "already at the last step")
	s.True(sess.ICardConfirmed, "staying put keeps the confirmation")

	sess.Retreat()
	s.False(sess.ICardConfirmed)
}

func (s *SessionSuite) TestBeginSignupOnlyFromLogin() {
	sess := New("w1", model.KindBusiness, s.now)
	s.True(sess.BeginSignup())
	s.Equal(StepSignup, sess.Current())
	s.False(sess.BeginSignup())
	s.Equal(StepSignup, sess.Current())
}

func (s *SessionSuite) TestViewRedactsSecrets() {
	sess := New("w1", model.KindSeeker, s.now)
	sess.Draft.Seeker.Password = "secret1"
	sess.Draft.Seeker.EmailOTP = "123456"
	sess.Draft.Seeker.Name = "Asha"

	v := sess.View()
	s.Equal("Asha", v.Draft.Seeker.Name)
	s.Empty(v.Draft.Seeker.Password)
	s.Empty(v.Draft.Seeker.EmailOTP)
	s.Equal("secret1", sess.Draft.Seeker.Password, "session itself keeps the value")
	s.Len(v.Steps, 6)
	s.Equal("Basic Info", v.Steps[1].Title)
	s.NotNil(v.Sheet)

	bv := New("w2", model.KindBusiness, s.now).View()
	s.Nil(bv.Sheet)
}

func (s *SessionSuite) TestDashboardRoute() {
	s.Equal("/job-search-engine/job-seekers/profile", DashboardRoute(model.KindSeeker))
	s.Equal("/job-search-engine/job-providers/profile", DashboardRoute(model.KindBusiness))
}
