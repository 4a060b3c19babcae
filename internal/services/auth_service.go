package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/hasan-ston/forstudents/internal/config"
	"github.com/hasan-ston/forstudents/internal/models"
	"github.com/hasan-ston/forstudents/internal/repositories"
	"github.com/hasan-ston/forstudents/internal/validator"
)

type authService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	jwtConfig config.JWTConfig
	gate      config.GateConfig
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, jwtConfig config.JWTConfig, gate config.GateConfig) AuthService {
	return &authService{
		repo:      repo,
		logger:    logger,
		validator: v,
		jwtConfig: jwtConfig,
		gate:      gate,
	}
}

type accessTokenClaims struct {
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) Register(ctx context.Context, req *validator.RegisterRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.logger.Info("Registering user", "email", email)

	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, validationFailure(verrs)
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleUser
	if s.gate.IsAdminEmail(email) {
		role = models.RoleAdmin
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Plan:         models.PlanFree,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if role == models.RoleAdmin {
		s.logger.Info("Registered admin from allow-list", "user_id", user.ID, "email", email)
	} else {
		s.logger.Info("User registered", "user_id", user.ID)
	}

	return s.issueToken(ctx, user)
}

func (s *authService) Login(ctx context.Context, req *validator.LoginRequest) (*AuthResult, error) {
	if verrs := s.validator.Validate(req); verrs.HasErrors() {
		return nil, validationFailure(verrs)
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Same error as a wrong password, login must not leak
			// which emails exist.
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return s.issueToken(ctx, user)
}

func (s *authService) issueToken(ctx context.Context, user *models.User) (*AuthResult, error) {
	expiresAt := time.Now().Add(s.jwtConfig.TokenTTL)

	claims := accessTokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	profile, err := s.buildProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: profile}, nil
}

func (s *authService) VerifyToken(tokenString string) (*TokenClaims, error) {
	claims := &accessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	var userID uint
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil || userID == 0 {
		return nil, ErrUnauthorized
	}

	return &TokenClaims{UserID: userID, Email: claims.Email, Role: claims.Role}, nil
}

func (s *authService) GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error) {
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return s.buildProfile(ctx, user)
}

// Promote grants the admin role. Promoting an admin again is a no-op.
func (s *authService) Promote(ctx context.Context, targetID uint) error {
	user, err := s.repo.User().GetByID(ctx, targetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsAdmin() {
		return nil
	}

	if err := s.repo.User().UpdateRole(ctx, targetID, models.RoleAdmin); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.Info("User promoted to admin", "user_id", targetID)
	return nil
}

func (s *authService) buildProfile(ctx context.Context, user *models.User) (*models.UserProfile, error) {
	accessed, err := s.repo.Access().ListDocumentIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accessed documents: %w", err)
	}

	remaining := 0
	if user.HasUnlimitedAccess() {
		remaining = -1 // unlimited
	} else if n := s.gate.FreeDocLimit - len(accessed); n > 0 {
		remaining = n
	}

	return &models.UserProfile{
		ID:                user.ID,
		Email:             user.Email,
		Role:              user.Role,
		Plan:              user.Plan,
		FreeDocsRemaining: remaining,
		AccessedDocIDs:    accessed,
		CreatedAt:         user.CreatedAt,
	}, nil
}

func validationFailure(verrs validator.ValidationErrors) error {
	details := make([]FieldError, 0, len(verrs))
	for _, ve := range verrs {
		details = append(details, FieldError{Field: ve.Field, Message: ve.Message})
	}
	return &ValidationFailure{Details: details}
}
