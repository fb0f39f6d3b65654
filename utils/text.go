package utils

import (
	"strings"
	"unicode/utf8"
)

// WordCount 按空白切分后的词数
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// CharCount 字符数（非字节数）
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// MaskDigits 只保留末尾 keep 位，例如 XXXXXXXX1234
func MaskDigits(value string, keep int) string {
	if len(value) <= keep {
		return value
	}
	return strings.Repeat("X", len(value)-keep) + value[len(value)-keep:]
}

// MaskEmail 日志用，a***@example.com
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return MaskDigits(email, 0)
	}
	return email[:1] + "***" + email[at:]
}
