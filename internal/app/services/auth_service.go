package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avillegas/examcore/internal/app/models"
	"github.com/avillegas/examcore/internal/app/models/dto"
	"github.com/avillegas/examcore/internal/pkg/apperrors"
	"github.com/avillegas/examcore/internal/pkg/auth"
)

// AuthService handles token issuance. Identity verification is the only
// concern here; role resolution against the student/teacher tables stays in
// the domain services.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
}

type authServiceImpl struct {
	userRepo   UserRepository
	tokenRepo  TokenRepository
	jwtService *auth.JWTService
	log        zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo UserRepository, tokenRepo TokenRepository, jwtService *auth.JWTService, log zerolog.Logger) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtService: jwtService,
		log:        log.With().Str("service", "AuthService").Logger(),
	}
}

// Login verifies credentials and issues a token pair
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken exchanges a valid refresh token for a new pair, revoking the
// old one.
func (s *authServiceImpl) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	stored, err := s.tokenRepo.Find(ctx, req.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("error getting refresh token: %w", err)
	}
	if stored == nil || !stored.IsValid(time.Now()) {
		return nil, apperrors.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.tokenRepo.Revoke(ctx, req.RefreshToken); err != nil {
		return nil, fmt.Errorf("error revoking refresh token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("error generating tokens: %w", err)
	}

	if err := s.tokenRepo.Save(ctx, &models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: s.jwtService.GetRefreshTokenExpiry(),
	}); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	s.log.Info().Int64("userId", user.ID).Msg("tokens issued")
	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}
