package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTTLMin   int    `yaml:"access_ttl_min"`
	RefreshTTLDays int    `yaml:"refresh_ttl_days"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
	DryRun     bool   `yaml:"dry_run"`
}

type OTPConfig struct {
	TTLMin            int `yaml:"ttl_min"`
	ResendCooldownSec int `yaml:"resend_cooldown_sec"`
}

type RealtimeConfig struct {
	TypingTTLSec   int `yaml:"typing_ttl_sec"`
	PresenceTTLSec int `yaml:"presence_ttl_sec"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Mongo MongoConfig `yaml:"mongo"`
	Redis RedisConfig `yaml:"redis"`
	JWT   JWTConfig   `yaml:"jwt"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	OTP      OTPConfig      `yaml:"otp"`
	Realtime RealtimeConfig `yaml:"realtime"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Mongo.URI == "" {
		cfg.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "mingle"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.JWT.AccessTTLMin <= 0 {
		cfg.JWT.AccessTTLMin = 15
	}
	if cfg.JWT.RefreshTTLDays <= 0 {
		cfg.JWT.RefreshTTLDays = 30
	}
	if cfg.OTP.TTLMin <= 0 {
		cfg.OTP.TTLMin = 10
	}
	if cfg.OTP.ResendCooldownSec <= 0 {
		cfg.OTP.ResendCooldownSec = 60
	}
	if cfg.Realtime.TypingTTLSec <= 0 {
		cfg.Realtime.TypingTTLSec = 15
	}
	if cfg.Realtime.PresenceTTLSec <= 0 {
		cfg.Realtime.PresenceTTLSec = 120
	}
	return &cfg
}

func (c *Config) AccessTTL() time.Duration { return time.Duration(c.JWT.AccessTTLMin) * time.Minute }

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLDays) * 24 * time.Hour
}

func (c *Config) OTPTTL() time.Duration { return time.Duration(c.OTP.TTLMin) * time.Minute }

func (c *Config) TypingTTL() time.Duration {
	return time.Duration(c.Realtime.TypingTTLSec) * time.Second
}

func (c *Config) PresenceTTL() time.Duration {
	return time.Duration(c.Realtime.PresenceTTLSec) * time.Second
}
