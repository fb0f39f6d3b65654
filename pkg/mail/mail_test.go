package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	raw := string(Render("no-reply@pantiss.local", CodeMessage("a@b.co", "123456")))

	assert.Contains(t, raw, "To: a@b.co\r\n")
	assert.Contains(t, raw, "Subject: Your Pantiss verification code\r\n")
	assert.Contains(t, raw, "Your verification code is 123456.\r\n")
	assert.False(t, strings.Contains(strings.ReplaceAll(raw, "\r\n", ""), "\n"), "bare LF must not remain")
}

func TestWelcomeMessage(t *testing.T) {
	assert.Contains(t, WelcomeMessage("a@b.co", "Asha", "seeker").Body, "job seeker account")
	assert.Contains(t, WelcomeMessage("a@b.co", "Acme", "business").Body, "business account")
}
