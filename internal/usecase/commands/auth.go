package commands

import (
	"context"

	"mobirent/internal/domain/user"
	"mobirent/internal/pkg/errs"
	"mobirent/internal/pkg/jwt"
	"mobirent/internal/pkg/password"
	"mobirent/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound         = errs.New("user not found")
	ErrInvalidCredentials   = errs.New("invalid credentials")
	ErrAuthenticationFailed = errs.New("authentication failed")
	ErrTokenGeneration      = errs.New("token generation failed")
	ErrTokenValidation      = errs.New("token validation failed")
)

// TokenValidator is what the auth middleware needs from the token layer.
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, user.Role, error)
}

type jwtTokenValidator struct {
	svc *jwt.Service
}

func NewTokenValidator(svc *jwt.Service) TokenValidator {
	return &jwtTokenValidator{svc: svc}
}

func (v *jwtTokenValidator) ValidateToken(token string) (uuid.UUID, user.Role, error) {
	claims, err := v.svc.ValidateToken(token)
	if err != nil {
		return uuid.Nil, "", errs.Mark(err, ErrTokenValidation)
	}
	role, err := user.NewRole(claims.Role)
	if err != nil {
		return uuid.Nil, "", errs.Mark(err, ErrTokenValidation)
	}
	return claims.UserID, role, nil
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	UserID      uuid.UUID
	Email       string
	Username    string
	Role        string
	AccessToken string
}

type AuthCommands interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}

type authCommandsImpl struct {
	uow        shared.UnitOfWork
	jwtService *jwt.Service
}

func NewAuthCommands(uow shared.UnitOfWork, jwtService *jwt.Service) AuthCommands {
	return &authCommandsImpl{
		uow:        uow,
		jwtService: jwtService,
	}
}

func (a *authCommandsImpl) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	account, err := a.uow.Reads().UserByEmail(ctx, input.Email)
	if err != nil {
		// Password mismatch and unknown email collapse into one error to
		// prevent account enumeration.
		return nil, ErrInvalidCredentials
	}

	if err := password.ComparePassword(account.PasswordHash(), input.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := a.jwtService.GenerateToken(account.ID(), account.Role())
	if err != nil {
		return nil, errs.Mark(err, ErrTokenGeneration)
	}

	return &LoginResult{
		UserID:      account.ID(),
		Email:       account.Email().Value(),
		Username:    account.Username(),
		Role:        account.Role().String(),
		AccessToken: token,
	}, nil
}
