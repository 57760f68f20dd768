package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"mingle/internal/apperrors"
	"mingle/internal/models"
	"mingle/internal/repositories"
)

var (
	ErrResendThrottled = errors.New("resend throttled")
	ErrCodeExpired     = errors.New("code expired")
	ErrCodeInvalid     = errors.New("code invalid")
)

const defaultOTPTTL = 10 * time.Minute

// UserService handles registration, OTP verification and login. OTP codes are
// 6 digits, stored only as sha256 digests with an expiry on the user document.
type UserService struct {
	users repositories.UserRepository
	email EmailService
	sms   SMSService
	auth  *AuthService

	otpTTL         time.Duration
	resendCooldown time.Duration
	refreshTTL     time.Duration
}

func NewUserService(users repositories.UserRepository, email EmailService, sms SMSService, auth *AuthService, otpTTL, resendCooldown, refreshTTL time.Duration) *UserService {
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	if resendCooldown <= 0 {
		resendCooldown = time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &UserService{
		users:          users,
		email:          email,
		sms:            sms,
		auth:           auth,
		otpTTL:         otpTTL,
		resendCooldown: resendCooldown,
		refreshTTL:     refreshTTL,
	}
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func hashOTP(otp string) string {
	sum := sha256.Sum256([]byte(otp))
	return hex.EncodeToString(sum[:])
}

// Register creates an unverified account and sends an email OTP (and a mobile
// OTP when a number was given). Delivery failures are logged, not fatal: the
// user can always request a resend.
func (s *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if existing, err := s.users.FindByEmail(ctx, req.Email); err != nil {
		return nil, apperrors.Store("find user by email", err)
	} else if existing != nil {
		return nil, apperrors.Validation("Email already in use")
	}
	if existing, err := s.users.FindByUsername(ctx, req.Username); err != nil {
		return nil, apperrors.Store("find user by username", err)
	} else if existing != nil {
		return nil, apperrors.Validation("Username already taken")
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		Mobile:       req.Mobile,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.Store("create user", err)
	}

	if err := s.sendOTP(ctx, user, models.OTPChannelEmail); err != nil {
		log.Printf("users: send email otp for %s: %v", user.ID, err)
	}
	if user.Mobile != "" {
		if err := s.sendOTP(ctx, user, models.OTPChannelMobile); err != nil {
			log.Printf("users: send mobile otp for %s: %v", user.ID, err)
		}
	}
	return user, nil
}

func (s *UserService) sendOTP(ctx context.Context, user *models.User, channel string) error {
	otp, err := generateOTP()
	if err != nil {
		return err
	}
	now := time.Now()
	if err := s.users.StoreOTP(ctx, user.ID, channel, hashOTP(otp), now, now.Add(s.otpTTL)); err != nil {
		return apperrors.Store("store otp", err)
	}

	switch channel {
	case models.OTPChannelEmail:
		return s.email.SendOTPEmail(user.Email, otp)
	case models.OTPChannelMobile:
		return s.sms.SendOTPSMS(user.Mobile, otp)
	}
	return fmt.Errorf("unknown otp channel %q", channel)
}

// ResendOTP issues a fresh code, throttled per channel.
func (s *UserService) ResendOTP(ctx context.Context, userID, channel string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperrors.Store("find user", err)
	}
	if user == nil {
		return apperrors.ErrNotFound
	}

	var sentAt time.Time
	switch channel {
	case models.OTPChannelEmail:
		sentAt = user.EmailOTPSentAt
	case models.OTPChannelMobile:
		sentAt = user.MobileOTPSentAt
	default:
		return apperrors.Validation("Unknown verification channel")
	}
	if !sentAt.IsZero() && time.Since(sentAt) < s.resendCooldown {
		return ErrResendThrottled
	}
	return s.sendOTP(ctx, user, channel)
}

// VerifyOTP checks the submitted code against the stored digest. On success
// the channel is marked verified and a welcome email goes out.
func (s *UserService) VerifyOTP(ctx context.Context, userID, channel, code string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return apperrors.Store("find user", err)
	}
	if user == nil {
		return apperrors.ErrNotFound
	}

	var storedHash string
	var expires time.Time
	switch channel {
	case models.OTPChannelEmail:
		storedHash, expires = user.EmailOTPHash, user.EmailOTPExpires
	case models.OTPChannelMobile:
		storedHash, expires = user.MobileOTPHash, user.MobileOTPExpires
	default:
		return apperrors.Validation("Unknown verification channel")
	}

	if storedHash == "" || expires.IsZero() {
		return ErrCodeInvalid
	}
	if time.Now().After(expires) {
		return ErrCodeExpired
	}
	if hashOTP(code) != storedHash {
		return ErrCodeInvalid
	}

	if err := s.users.ConfirmOTP(ctx, userID, channel); err != nil {
		return apperrors.Store("confirm otp", err)
	}

	if channel == models.OTPChannelEmail {
		if err := s.email.SendWelcomeEmail(user.Email, user.Name); err != nil {
			log.Printf("users: send welcome email for %s: %v", user.ID, err)
		}
	}
	return nil
}

// Login verifies credentials and returns the user plus an access/refresh
// token pair. The opaque refresh token is stored on the user document.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", "", apperrors.Store("find user by email", err)
	}
	if user == nil || !s.auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", "", apperrors.ErrUnauthenticated
	}

	access, err := s.auth.IssueAccessToken(user)
	if err != nil {
		return nil, "", "", err
	}

	refresh, err := newRefreshToken(32)
	if err != nil {
		return nil, "", "", err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, refresh, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, "", "", apperrors.Store("store refresh token", err)
	}
	return user, access, refresh, nil
}

// Refresh exchanges a stored refresh token for a fresh access/refresh pair.
// Tokens rotate on every use; the presented one stops working immediately.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*models.User, string, string, error) {
	if refreshToken == "" {
		return nil, "", "", apperrors.ErrUnauthenticated
	}
	user, err := s.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, "", "", apperrors.Store("find user by refresh token", err)
	}
	if user == nil || time.Now().After(user.RefreshExpiresAt) {
		return nil, "", "", apperrors.ErrUnauthenticated
	}

	access, err := s.auth.IssueAccessToken(user)
	if err != nil {
		return nil, "", "", err
	}
	refresh, err := newRefreshToken(32)
	if err != nil {
		return nil, "", "", err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, refresh, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, "", "", apperrors.Store("store refresh token", err)
	}
	return user, access, refresh, nil
}

// UserByID looks a user up for handlers that already hold an authenticated ID.
func (s *UserService) UserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Store("find user", err)
	}
	if user == nil {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}
