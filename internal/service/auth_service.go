package service

import (
	"context"
	"errors"

	"raspadinha_backend/internal/domain"
	"raspadinha_backend/internal/logger"
	"raspadinha_backend/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var ErrEmailTaken = errors.New("email already registered")

// AuthService handles registration and login.
type AuthService struct {
	userRepo   *repository.UserRepository
	affiliates *AffiliateService
}

func NewAuthService(db *pgxpool.Pool, affiliates *AffiliateService) *AuthService {
	return &AuthService{
		userRepo:   repository.NewUserRepository(db),
		affiliates: affiliates,
	}
}

// Register creates the user with an empty wallet and returns a session
// token. An optional referral code links the user to an affiliate; a bad
// code is logged and ignored, never failing the registration.
func (s *AuthService) Register(ctx context.Context, email, name, password, referralCode string) (*domain.User, string, error) {
	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u := &domain.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	if referralCode != "" {
		if err := s.affiliates.LinkReferral(ctx, u.ID, referralCode); err != nil {
			logger.Warn("referral link skipped", "user_id", u.ID, "code", referralCode, "error", err)
		}
	}

	token, err := GenerateJWT(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", domain.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrUnauthorized
	}

	token, err := GenerateJWT(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}
