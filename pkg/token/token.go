package token

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/hertz-contrib/jwt"

	"Pantiss/config"
)

const (
	IdentityKey = "uid"
	KindKey     = "kind"
	typeRefresh = "refresh"
)

var (
	ErrNotInitialized = errors.New("token generator is not initialized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrNotRefresh     = errors.New("token is not a refresh token")
)

// 这个实例会被 middleware 和 token 包共同使用
var sharedGenerator *jwt.HertzJWTMiddleware

// Pair 登录和注册成功后返回给客户端
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Claims 从 refresh token 解析出的身份
type Claims struct {
	AccountID string
	Kind      string
}

func Init() error {
	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "pantiss",
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		MaxRefresh:  time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	return nil
}

// GetGenerator 获取共享的 token 生成器（供 middleware 使用）
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// GenerateTokenPair 生成 access token 和 refresh token
func GenerateTokenPair(accountID, kind string) (Pair, error) {
	if sharedGenerator == nil {
		return Pair{}, ErrNotInitialized
	}

	cfg := config.Cfg
	now := time.Now()
	expiresAt := now.Add(time.Duration(cfg.JWTExpireMinutes) * time.Minute)

	access, err := sign(jwtv5.MapClaims{
		IdentityKey: accountID,
		KindKey:     kind,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
		"orig_iat":  now.Unix(),
	})
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := sign(jwtv5.MapClaims{
		IdentityKey: accountID,
		KindKey:     kind,
		"iat":       now.Unix(),
		"type":      typeRefresh,
		"exp":       now.Add(time.Duration(cfg.JWTRefreshDays) * 24 * time.Hour).Unix(),
	})
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(expiresAt.Sub(now).Seconds()),
	}, nil
}

// ValidateRefreshToken 验证 refresh token 并返回身份
func ValidateRefreshToken(tokenString string) (Claims, error) {
	tok, err := jwtv5.Parse(tokenString, func(t *jwtv5.Token) (interface{}, error) {
		return []byte(config.Cfg.JWTSecret), nil
	}, jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}

	if t, _ := claims["type"].(string); t != typeRefresh {
		return Claims{}, ErrNotRefresh
	}

	uid, _ := claims[IdentityKey].(string)
	kind, _ := claims[KindKey].(string)
	if uid == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{AccountID: uid, Kind: kind}, nil
}

func sign(claims jwtv5.MapClaims) (string, error) {
	return jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte(config.Cfg.JWTSecret))
}
