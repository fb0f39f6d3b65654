package utils

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern  = regexp.MustCompile(`^\d{10}$`)
	otpPattern    = regexp.MustCompile(`^\d{6}$`)
	aadharPattern = regexp.MustCompile(`^\d{12}$`)
)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone 10 位数字手机号
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func ValidateOTP(code string) bool {
	return otpPattern.MatchString(code)
}

func ValidateAadhar(aadhar string) bool {
	return aadharPattern.MatchString(aadhar)
}

// ValidateURL 只接受带 host 的 http/https 绝对地址
func ValidateURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}
