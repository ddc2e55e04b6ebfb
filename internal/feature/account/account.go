// Package account 登录（邮箱 + 验证码）、退出、个人设置和仪表盘
package account

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/remote"
	"affiliate-admin/internal/session"
)

var (
	sendOTPRoute   = remote.Route{Name: "admin.sendOtp", Method: http.MethodPost, Path: "user/adminSendOtp"}
	verifyOTPRoute = remote.Route{Name: "admin.verifyOtp", Method: http.MethodPost, Path: "user/adminVerifyOtp", Key: "token"}
	profileRoute   = remote.Route{Name: "admin.get", Path: "user/getAdminById/:id", Key: "user"}
	passwordRoute  = remote.Route{Name: "admin.changePassword", Method: http.MethodPatch, Path: "user/adminChangePassword"}
)

// PasswordChange 设置页的修改密码表单
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type Service struct {
	d        feature.Deps
	ws       *feature.Workspace
	validate *validator.Validate
	log      *zap.Logger
}

func New(d feature.Deps, ws *feature.Workspace) *Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误里用 JSON 字段名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if ws == nil {
		ws = feature.NewWorkspace()
	}
	return &Service{d: d, ws: ws, validate: v, log: log.Named("account")}
}

// SendOTP 记住邮箱（验证码页要用），再让后端发验证码
func (s *Service) SendOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return domain.Invalid("email", "Please enter a valid email address")
	}
	if err := s.d.Email.SetToken(ctx, email); err != nil {
		return err
	}
	_, err := remote.Send(ctx, s.d.Client, nil, sendOTPRoute, "", map[string]string{"email": email})
	return err
}

// VerifyOTP 验证通过后后端返回的 token 同时写入 adminToken 和 token 两个键
func (s *Service) VerifyOTP(ctx context.Context, otp string) error {
	otp = strings.TrimSpace(otp)
	if err := s.validate.Var(otp, "required,len=6,numeric"); err != nil {
		return domain.Invalid("otp", "Please enter a valid 6-digit OTP")
	}
	email, err := s.d.Email.Token(ctx)
	if err != nil {
		return err
	}
	if email == "" {
		return domain.Invalid("email", "Please request an OTP first")
	}

	env, err := remote.Send(ctx, s.d.Client, nil, verifyOTPRoute, "", map[string]string{"email": email, "otp": otp})
	if err != nil {
		return err
	}
	var token string
	if env.Has(verifyOTPRoute.Key) {
		if err := env.Decode(verifyOTPRoute.Key, &token); err != nil {
			return &domain.RejectedError{Status: http.StatusOK, Err: err}
		}
	}
	if token == "" {
		return &domain.RejectedError{Status: http.StatusOK, Message: "Login failed. No token returned."}
	}
	if err := s.d.AdminToken.SetToken(ctx, token); err != nil {
		return err
	}
	if err := s.d.Token.SetToken(ctx, token); err != nil {
		return err
	}
	s.log.Info("admin signed in", zap.String("email", email))
	return nil
}

// Logout 需要确认；清掉两个 token 并卸载所有页面
func (s *Service) Logout(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return domain.ErrNotConfirmed
	}
	err := errors.Join(s.d.AdminToken.ClearToken(ctx), s.d.Token.ClearToken(ctx))
	s.ws.UnmountAll()
	return err
}

// Profile 管理员 ID 取自 token 的 claims
func (s *Service) Profile(ctx context.Context) (*domain.Admin, error) {
	id, err := s.adminID(ctx)
	if err != nil {
		return nil, err
	}
	env, err := remote.Send(ctx, s.d.Client, nil, profileRoute, id, nil)
	if err != nil {
		return nil, err
	}
	if !env.Has(profileRoute.Key) {
		return nil, domain.ErrNotFound
	}
	var a domain.Admin
	if err := env.Decode(profileRoute.Key, &a); err != nil {
		return nil, &domain.RejectedError{Status: http.StatusOK, Err: err}
	}
	return &a, nil
}

// ChangePassword 两次新密码不一致时不发请求
func (s *Service) ChangePassword(ctx context.Context, in PasswordChange) error {
	if err := s.validate.Struct(in); err != nil {
		return validationError(err)
	}
	id, err := s.adminID(ctx)
	if err != nil {
		return err
	}
	body := map[string]string{
		"userId":          id,
		"oldPassword":     in.CurrentPassword,
		"newPassword":     in.NewPassword,
		"confirmPassword": in.ConfirmPassword,
	}
	_, err = remote.Send(ctx, s.d.Client, nil, passwordRoute, "", body)
	return err
}

func (s *Service) Dashboard() []feature.Summary { return s.ws.Dashboard() }

func (s *Service) adminID(ctx context.Context) (string, error) {
	claims, err := s.d.Token.Claims(ctx)
	if errors.Is(err, session.ErrNoToken) {
		return "", &domain.RejectedError{Status: http.StatusUnauthorized, Message: remote.NoTokenMessage}
	}
	if err != nil {
		return "", &domain.RejectedError{Status: http.StatusUnauthorized, Message: "Session expired. Please log in again.", Err: err}
	}
	return claims.AdminID, nil
}

func validationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return domain.Invalid("", "%v", err)
	}
	fe := ves[0]
	if fe.Tag() == "eqfield" {
		return domain.Invalid(fe.Field(), "New passwords do not match.")
	}
	return domain.Invalid(fe.Field(), "%s is required", fe.Field())
}
