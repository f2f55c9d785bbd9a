package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
)

var (
	ErrEmailTaken         = fmt.Errorf("%w: email already registered", errs.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", errs.ErrUnauthenticated)
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired refresh token", errs.ErrUnauthenticated)
)

const minPasswordLength = 8

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil || len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: valid email required and password must be at least %d characters", errs.ErrInvalidInput, minPasswordLength)
	}

	db := s.db.WithContext(ctx)
	var existing models.User
	found, err := findOne(db.Where("email = ?", email), &existing)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if found {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleUser
	if s.cfg.IsAdminEmail(email) {
		role = models.RoleAdmin
	}
	user := models.User{
		Email:    email,
		Password: string(hash),
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
		Role:     role,
	}

	if err := db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.generateTokenPair(db, &user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	var user models.User
	found, err := findOne(db.Where("email = ?", normalizeEmail(req.Email)), &user)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !found {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(db, &user)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	db := s.db.WithContext(ctx)
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	found, err := findOne(db.Where("token_hash = ? AND revoked = ?", tokenHash, false), &stored)
	if err != nil {
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	if !found {
		return nil, ErrInvalidToken
	}

	revoke := db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", stored.ID, false).
		Update("revoked", true)
	if revoke.Error != nil {
		return nil, fmt.Errorf("revoke refresh token: %w", revoke.Error)
	}
	if revoke.RowsAffected == 0 || time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.generateTokenPair(db, &user)
}

func (s *AuthService) Logout(ctx context.Context, req *dto.LogoutRequest) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	var user models.User
	found, err := findOne(s.db.WithContext(ctx).Where("id = ?", userID), &user)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%w: user", errs.ErrNotFound)
	}
	resp := userResponse(&user)
	return &resp, nil
}

func (s *AuthService) UpdateUser(ctx context.Context, userID uuid.UUID, req *dto.UpdateMeRequest) (*dto.UserResponse, error) {
	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		phone := strings.ReplaceAll(strings.TrimSpace(*req.Phone), " ", "")
		if phone != "" && !phonePattern.MatchString(phone) {
			return nil, fmt.Errorf("%w: invalid phone number", errs.ErrInvalidInput)
		}
		updates["phone"] = phone
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("update user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, fmt.Errorf("%w: user", errs.ErrNotFound)
		}
	}
	return s.GetUser(ctx, userID)
}

func (s *AuthService) generateTokenPair(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(db, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(db *gorm.DB, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func userResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Phone:    user.Phone,
		Role:     user.Role,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
