package security

import (
	"Agora/internal/api/config"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret     = []byte("Agora")
	jwtIssuer     = "Agora"
	jwtExpiration = 24 * time.Hour
)

// InitJWT 使用配置覆盖默认的签名密钥与有效期
func InitJWT(cfg config.JWTConfig) {
	if cfg.Secret != "" {
		jwtSecret = []byte(cfg.Secret)
	}
	if cfg.Issuer != "" {
		jwtIssuer = cfg.Issuer
	}
	if cfg.Expiration > 0 {
		jwtExpiration = time.Duration(cfg.Expiration) * time.Hour
	}
}

// GenerateToken 签发 Token，由外部认证服务调用
func GenerateToken(userID uint64, roles []string) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    jwtIssuer,
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("签名 Token 失败: %w", err)
	}
	return tokenString, nil
}

// ValidateToken 验证 Token 字符串并解析出 Claims
func ValidateToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非预期的签名方法: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	}, jwt.WithIssuer(jwtIssuer))
	if err != nil {
		return nil, fmt.Errorf("token 解析失败: %w", err)
	}

	if !token.Valid || claims.UserID == 0 {
		return nil, errors.New("token 无效或已过期")
	}

	return claims, nil
}
