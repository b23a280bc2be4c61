package authsrv

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/credisys/credit-approval/internal/domain"
	"github.com/credisys/credit-approval/internal/dto"
	"github.com/credisys/credit-approval/internal/service"
	"github.com/credisys/credit-approval/pkg/common"
	"github.com/credisys/credit-approval/pkg/password"
)

type authService struct {
	adminUsername     string
	adminPasswordHash string
	jwtSecret         string

	tracer trace.Tracer
	log    *zap.Logger

	loginAttempts metric.Int64Counter
}

func NewAuthService(
	adminUsername string,
	adminPasswordHash string,
	jwtSecret string,
	meter metric.Meter,
	tracer trace.Tracer,
	log *zap.Logger,
) service.AuthService {
	loginAttempts, _ := meter.Int64Counter(
		"auth.login.attempts",
		metric.WithDescription("Number of login attempts"),
		metric.WithUnit("{attempt}"),
	)

	return &authService{
		adminUsername:     adminUsername,
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
		tracer:            tracer,
		log:               log,
		loginAttempts:     loginAttempts,
	}
}

// Login implements service.AuthService.
func (a *authService) Login(ctx context.Context, req dto.Login) (*dto.LoginResponse, error) {
	ctx, span := a.tracer.Start(ctx, "service.Login")
	defer span.End()

	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(a.adminUsername)) == 1
	if !usernameOK || !password.CheckPasswordHash(req.Password, a.adminPasswordHash) {
		a.loginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", false)))
		a.log.Warn("Login rejected",
			zap.String("username", req.Username),
			zap.String("trace_id", span.SpanContext().TraceID().String()),
		)
		return nil, common.ErrInvalidCredentials
	}

	claims := &domain.JwtCustomClaims{
		Username: req.Username,
		Role:     domain.AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			Issuer:    "credit-approval",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(a.jwtSecret))
	if err != nil {
		return nil, err
	}

	a.loginAttempts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", true)))
	return &dto.LoginResponse{Token: signedToken}, nil
}
