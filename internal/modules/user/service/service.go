package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"anadara.com/exportmarket/internal/entity"
	"anadara.com/exportmarket/internal/modules/user/dto"
	"anadara.com/exportmarket/internal/modules/user/repository"
	"anadara.com/exportmarket/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
}

type authService struct {
	repo       repository.UserRepository
	rdb        *redis.Client
	secret     string
	tokenTTL   time.Duration
	loginLimit time.Duration
}

func NewAuthService(repo repository.UserRepository, rdb *redis.Client, secret string, tokenTTL, loginLimit time.Duration) AuthService {
	return &authService{
		repo:       repo,
		rdb:        rdb,
		secret:     secret,
		tokenTTL:   tokenTTL,
		loginLimit: loginLimit,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CompanyName:  input.CompanyName,
		Country:      input.Country,
		Role:         input.Role,
		Status:       entity.StatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	allowed, err := checkAndSetRateLimit(ctx, s.rdb, "login:"+email, s.loginLimit)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.New(429, "too many login attempts, try again shortly", apperror.ErrRateLimitExceeded)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(401, "invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.New(401, "invalid credentials", apperror.ErrUnauthorized)
	}

	if user.IsSuspended() {
		return nil, apperror.New(403, "account is suspended", apperror.ErrForbidden)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        dto.ToUserResponse(user),
	}, nil
}
