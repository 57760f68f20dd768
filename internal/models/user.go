package models

import "time"

// OTP delivery channels.
const (
	OTPChannelEmail  = "email"
	OTPChannelMobile = "mobile"
)

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	Mobile       string    `bson:"mobile,omitempty" json:"mobile,omitempty"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	ProfilePhoto string    `bson:"profilePhoto,omitempty" json:"profilePhoto,omitempty"`
	Bio          string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Online       bool      `bson:"online" json:"online"`
	LastActive   time.Time `bson:"lastActive" json:"lastActive"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`

	EmailVerified  bool `bson:"emailVerified" json:"emailVerified"`
	MobileVerified bool `bson:"mobileVerified" json:"mobileVerified"`

	// OTP state, one slot per delivery channel. Hashes only, never raw codes.
	EmailOTPHash     string    `bson:"emailOtpHash,omitempty" json:"-"`
	EmailOTPExpires  time.Time `bson:"emailOtpExpires,omitempty" json:"-"`
	EmailOTPSentAt   time.Time `bson:"emailOtpSentAt,omitempty" json:"-"`
	MobileOTPHash    string    `bson:"mobileOtpHash,omitempty" json:"-"`
	MobileOTPExpires time.Time `bson:"mobileOtpExpires,omitempty" json:"-"`
	MobileOTPSentAt  time.Time `bson:"mobileOtpSentAt,omitempty" json:"-"`

	RefreshToken     string    `bson:"refreshToken,omitempty" json:"-"`
	RefreshExpiresAt time.Time `bson:"refreshExpiresAt,omitempty" json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password" binding:"required,min=8"`
}
