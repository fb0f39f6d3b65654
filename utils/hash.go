package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"Pantiss/config"
)

// HashContact hash 化邮箱或手机号用于缓存 key，盐 + ":" + 联系方式，避免明文落入 Redis
func HashContact(value string) string {
	key := config.Cfg.ContactHashSalt

	sum := sha256.Sum256([]byte(key + ":" + strings.ToLower(strings.TrimSpace(value))))

	return hex.EncodeToString(sum[:])
}
