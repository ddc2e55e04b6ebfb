package account

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"affiliate-admin/internal/domain"
	"affiliate-admin/internal/feature"
	"affiliate-admin/internal/transport/http/ez"
)

type loginIn struct {
	Email string `json:"email"`
}

type otpIn struct {
	OTP string `json:"otp"`
}

type logoutIn struct {
	Confirm bool `json:"confirm"`
}

type settingsOut struct {
	Profile *domain.Admin `json:"profile"`
}

type dashboardOut struct {
	Screens []feature.Summary `json:"screens"`
}

// Priority 账号相关路由先于各列表页挂载
func (s *Service) Priority() int { return 10 }

// MountPublic 登录前可访问的接口
func (s *Service) MountPublic(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[loginIn, gin.H]{
		Method:   http.MethodPost,
		Path:     "/login",
		Binder:   ez.BindJSON,
		Fallback: "Failed to send OTP. Please try again.",
		Handler: func(c *gin.Context, in *loginIn) (gin.H, error) {
			if err := s.SendOTP(c.Request.Context(), in.Email); err != nil {
				return nil, err
			}
			return gin.H{"next": "/otp"}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[otpIn, gin.H]{
		Method:   http.MethodPost,
		Path:     "/otp",
		Binder:   ez.BindJSON,
		Fallback: "OTP verification failed. Please try again.",
		Handler: func(c *gin.Context, in *otpIn) (gin.H, error) {
			if err := s.VerifyOTP(c.Request.Context(), in.OTP); err != nil {
				return nil, err
			}
			return gin.H{"next": "/admin"}, nil
		},
	})
}

// MountConsole 登录后的接口（分组已挂 RequireSession）
func (s *Service) MountConsole(g *gin.RouterGroup) {
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[logoutIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *logoutIn) (gin.H, error) {
			if err := s.Logout(c.Request.Context(), in.Confirm); err != nil {
				return nil, err
			}
			return gin.H{"redirect": ez.LoginPath}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, settingsOut]{
		Method:   http.MethodGet,
		Path:     "/settings",
		Binder:   ez.BindNone,
		Fallback: "Error fetching user data.",
		Handler: func(c *gin.Context, _ *struct{}) (settingsOut, error) {
			p, err := s.Profile(c.Request.Context())
			if err != nil {
				return settingsOut{}, err
			}
			return settingsOut{Profile: p}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[PasswordChange, gin.H]{
		Method:   http.MethodPatch,
		Path:     "/settings/password",
		Binder:   ez.BindJSON,
		Fallback: "An error occurred while updating the password.",
		Handler: func(c *gin.Context, in *PasswordChange) (gin.H, error) {
			if err := s.ChangePassword(c.Request.Context(), *in); err != nil {
				return nil, err
			}
			return gin.H{"message": "Password updated successfully!"}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, dashboardOut]{
		Method: http.MethodGet,
		Path:   "/dashboard",
		Binder: ez.BindNone,
		Handler: func(_ *gin.Context, _ *struct{}) (dashboardOut, error) {
			return dashboardOut{Screens: s.Dashboard()}, nil
		},
	})
}
