package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blues/memberadmin/internal/config"
	"github.com/blues/memberadmin/internal/model"
	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Claims 管理员 token 内容
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expiresAt"`
	User      *model.AdminUserModel `json:"user"`
}

// AuthLogic 管理员登录和 token 校验
type AuthLogic struct {
	db       *gorm.DB
	secret   []byte
	lifespan time.Duration
}

// NewAuthLogic 创建认证业务逻辑
func NewAuthLogic(db *gorm.DB, cfg config.AuthConfig) *AuthLogic {
	lifespan := cfg.TokenLifespan()
	if lifespan <= 0 {
		lifespan = 12 * time.Hour
	}
	return &AuthLogic{db: db, secret: []byte(cfg.Secret), lifespan: lifespan}
}

// Login 校验密码并签发 token
func (a *AuthLogic) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrUnauthorized
	}

	var user model.AdminUserModel
	if err := a.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load admin user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrUnauthorized
	}

	token, expiresAt, err := a.GenerateToken(&user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := a.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}
	user.LastLoginAt = &now

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: &user}, nil
}

// GenerateToken 签发 HS256 token
func (a *AuthLogic) GenerateToken(user *model.AdminUserModel) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(a.lifespan)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:   user.Id,
		Username: user.Username,
		Role:     user.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
			Subject:   user.Username,
		},
	})
	token, err := t.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expiresAt, nil
}

// ParseToken 校验签名和有效期
func (a *AuthLogic) ParseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
