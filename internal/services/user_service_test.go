package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"mingle/internal/apperrors"
	"mingle/internal/models"
)

// capturingEmail and capturingSMS intercept delivery so tests can read the
// raw codes back out.

type capturingEmail struct {
	otps     map[string]string
	welcomed []string
	fail     bool
}

func (c *capturingEmail) SendOTPEmail(email, otp string) error {
	if c.fail {
		return errors.New("smtp down")
	}
	if c.otps == nil {
		c.otps = make(map[string]string)
	}
	c.otps[email] = otp
	return nil
}

func (c *capturingEmail) SendWelcomeEmail(email, _ string) error {
	c.welcomed = append(c.welcomed, email)
	return nil
}

type capturingSMS struct {
	otps map[string]string
}

func (c *capturingSMS) SendOTPSMS(mobile, otp string) error {
	if c.otps == nil {
		c.otps = make(map[string]string)
	}
	c.otps[mobile] = otp
	return nil
}

type userFixture struct {
	svc   *UserService
	repo  *memUserRepo
	email *capturingEmail
	sms   *capturingSMS
}

func newUserFixture() *userFixture {
	repo := &memUserRepo{users: make(map[string]*models.User)}
	email := &capturingEmail{}
	sms := &capturingSMS{}
	auth := NewAuthService("test-secret", 15*time.Minute)
	svc := NewUserService(repo, email, sms, auth, 10*time.Minute, time.Minute, 24*time.Hour)
	return &userFixture{svc: svc, repo: repo, email: email, sms: sms}
}

func registerReq() *models.RegisterRequest {
	return &models.RegisterRequest{
		Name:     "Alice",
		Username: "alice",
		Email:    "alice@example.com",
		Mobile:   "+15550001111",
		Password: "correct-horse",
	}
}

func TestRegisterSendsOTPToBothChannels(t *testing.T) {
	f := newUserFixture()

	user, err := f.svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("user not assigned an id")
	}
	if user.PasswordHash == "" || user.PasswordHash == "correct-horse" {
		t.Error("password not hashed")
	}
	if user.EmailVerified || user.MobileVerified {
		t.Error("account born verified")
	}

	emailOTP := f.email.otps["alice@example.com"]
	if len(emailOTP) != 6 {
		t.Errorf("email otp = %q, want 6 digits", emailOTP)
	}
	smsOTP := f.sms.otps["+15550001111"]
	if len(smsOTP) != 6 {
		t.Errorf("sms otp = %q, want 6 digits", smsOTP)
	}

	// The raw code never lands in the store, only its digest.
	stored := f.repo.users[user.ID]
	if stored.EmailOTPHash == emailOTP {
		t.Error("raw otp stored")
	}
	if stored.EmailOTPHash != hashOTP(emailOTP) {
		t.Error("stored hash does not match the delivered code")
	}
}

func TestRegisterWithoutMobileSkipsSMS(t *testing.T) {
	f := newUserFixture()
	req := registerReq()
	req.Mobile = ""

	if _, err := f.svc.Register(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if len(f.sms.otps) != 0 {
		t.Errorf("sms sent without a mobile number: %v", f.sms.otps)
	}
}

func TestRegisterEnforcesUniqueness(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, registerReq()); err != nil {
		t.Fatal(err)
	}

	dup := registerReq()
	dup.Username = "alice2"
	if _, err := f.svc.Register(ctx, dup); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("duplicate email: err = %v", err)
	}

	dup = registerReq()
	dup.Email = "other@example.com"
	if _, err := f.svc.Register(ctx, dup); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("duplicate username: err = %v", err)
	}
}

func TestRegisterSurvivesDeliveryFailure(t *testing.T) {
	f := newUserFixture()
	f.email.fail = true

	user, err := f.svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("delivery failure became fatal: %v", err)
	}
	if f.repo.users[user.ID] == nil {
		t.Error("account not created")
	}
}

func TestVerifyOTP(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user, err := f.svc.Register(ctx, registerReq())
	if err != nil {
		t.Fatal(err)
	}
	otp := f.email.otps["alice@example.com"]

	if err := f.svc.VerifyOTP(ctx, user.ID, models.OTPChannelEmail, "000000"); !errors.Is(err, ErrCodeInvalid) {
		t.Errorf("wrong code: err = %v", err)
	}

	if err := f.svc.VerifyOTP(ctx, user.ID, models.OTPChannelEmail, otp); err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if !f.repo.users[user.ID].EmailVerified {
		t.Error("email not marked verified")
	}
	if len(f.email.welcomed) != 1 {
		t.Errorf("welcome emails = %v", f.email.welcomed)
	}

	// A consumed code cannot be replayed.
	if err := f.svc.VerifyOTP(ctx, user.ID, models.OTPChannelEmail, otp); !errors.Is(err, ErrCodeInvalid) {
		t.Errorf("replayed code: err = %v", err)
	}
}

func TestVerifyOTPExpiry(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user, err := f.svc.Register(ctx, registerReq())
	if err != nil {
		t.Fatal(err)
	}

	f.repo.users[user.ID].EmailOTPExpires = time.Now().Add(-time.Second)

	otp := f.email.otps["alice@example.com"]
	if err := f.svc.VerifyOTP(ctx, user.ID, models.OTPChannelEmail, otp); !errors.Is(err, ErrCodeExpired) {
		t.Errorf("expired code: err = %v", err)
	}
}

func TestVerifyOTPUnknownUserAndChannel(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	if err := f.svc.VerifyOTP(ctx, "ghost", models.OTPChannelEmail, "123456"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown user: err = %v", err)
	}

	user, _ := f.svc.Register(ctx, registerReq())
	if err := f.svc.VerifyOTP(ctx, user.ID, "carrier-pigeon", "123456"); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("unknown channel: err = %v", err)
	}
}

func TestResendOTPThrottles(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user, err := f.svc.Register(ctx, registerReq())
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.ResendOTP(ctx, user.ID, models.OTPChannelEmail); !errors.Is(err, ErrResendThrottled) {
		t.Errorf("immediate resend: err = %v", err)
	}

	// Past the cooldown a new code goes out and replaces the digest.
	f.repo.users[user.ID].EmailOTPSentAt = time.Now().Add(-2 * time.Minute)
	oldHash := f.repo.users[user.ID].EmailOTPHash
	if err := f.svc.ResendOTP(ctx, user.ID, models.OTPChannelEmail); err != nil {
		t.Fatalf("resend after cooldown: %v", err)
	}
	if f.repo.users[user.ID].EmailOTPHash == oldHash {
		t.Error("resend did not rotate the stored digest")
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user, err := f.svc.Register(ctx, registerReq())
	if err != nil {
		t.Fatal(err)
	}

	got, access, refresh, err := f.svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("logged in as %s, want %s", got.ID, user.ID)
	}
	if access == "" || refresh == "" {
		t.Error("empty token pair")
	}
	if f.repo.users[user.ID].RefreshToken != refresh {
		t.Error("refresh token not persisted")
	}

	if _, _, _, err := f.svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, _, _, err := f.svc.Login(ctx, "ghost@example.com", "whatever"); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("unknown email: err = %v", err)
	}
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user, err := f.svc.Register(ctx, registerReq())
	if err != nil {
		t.Fatal(err)
	}
	_, _, oldRefresh, err := f.svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatal(err)
	}

	got, access, newRefresh, err := f.svc.Refresh(ctx, oldRefresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("refreshed as %s, want %s", got.ID, user.ID)
	}
	if access == "" || newRefresh == "" {
		t.Error("empty token pair")
	}
	if newRefresh == oldRefresh {
		t.Error("refresh token not rotated")
	}

	// The presented token is single-use.
	if _, _, _, err := f.svc.Refresh(ctx, oldRefresh); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("replayed refresh token: err = %v", err)
	}
	if _, _, _, err := f.svc.Refresh(ctx, newRefresh); err != nil {
		t.Errorf("rotated token rejected: %v", err)
	}
}

func TestRefreshRejectsExpiredAndUnknownTokens(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	user, err := f.svc.Register(ctx, registerReq())
	if err != nil {
		t.Fatal(err)
	}
	_, _, refresh, err := f.svc.Login(ctx, "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatal(err)
	}

	if _, _, _, err := f.svc.Refresh(ctx, "no-such-token"); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("unknown token: err = %v", err)
	}
	if _, _, _, err := f.svc.Refresh(ctx, ""); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("empty token: err = %v", err)
	}

	f.repo.users[user.ID].RefreshExpiresAt = time.Now().Add(-time.Second)
	if _, _, _, err := f.svc.Refresh(ctx, refresh); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Errorf("expired token: err = %v", err)
	}
}
