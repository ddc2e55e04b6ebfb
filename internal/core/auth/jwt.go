package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 后端签发的管理员 token 载荷（只读取，不校验签名）
type Claims struct {
	AdminID string `json:"id"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var ErrMissingSubject = errors.New("token carries no admin id")

// Decode 解析 token 取出管理员 ID；签名由后端负责校验，这里信任本地存储的值
func Decode(token string) (*Claims, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, err
	}
	if c.AdminID == "" {
		if c.Subject == "" {
			return nil, ErrMissingSubject
		}
		c.AdminID = c.Subject
	}
	return &c, nil
}

// JWTer 本地签发 token（开发联调 / 测试用）
type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func (j *JWTer) Issue(id, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		AdminID: id,
		Email:   email,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   j.Issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if j.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.TTL))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}
