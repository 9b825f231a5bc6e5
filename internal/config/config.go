// Package config assembles runtime settings from defaults plus environment
// overrides.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every runtime setting the server needs.
type Config struct {
	// Address the HTTP server binds to.
	Address string
	// DSN for the relational store.
	DatabaseDSN string
	// BcryptCost for new password hashes.
	BcryptCost int
	// TokenTTL bounds session token lifetime.
	TokenTTL time.Duration
	// ResetTTL bounds password reset link lifetime.
	ResetTTL time.Duration
	// FrontendURL is the base for emailed reset links.
	FrontendURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load returns the defaults overlaid with any ACCOUNT_API_* environment
// variables that are set.
func Load() Config {
	cfg := Config{
		Address:     ":8080",
		DatabaseDSN: "file:account-api.db?cache=shared&_pragma=foreign_keys(1)",
		BcryptCost:  10,
		TokenTTL:    time.Hour,
		ResetTTL:    time.Hour,
		FrontendURL: "http://localhost:3000",
		SMTPHost:    "localhost",
		SMTPPort:    587,
		SMTPFrom:    "no-reply@localhost",
	}

	overlayString(&cfg.Address, "ACCOUNT_API_ADDRESS")
	overlayString(&cfg.DatabaseDSN, "ACCOUNT_API_DATABASE_DSN")
	overlayInt(&cfg.BcryptCost, "ACCOUNT_API_BCRYPT_COST")
	overlayDuration(&cfg.TokenTTL, "ACCOUNT_API_TOKEN_TTL")
	overlayDuration(&cfg.ResetTTL, "ACCOUNT_API_RESET_TTL")
	overlayString(&cfg.FrontendURL, "ACCOUNT_API_FRONTEND_URL")
	overlayString(&cfg.SMTPHost, "ACCOUNT_API_SMTP_HOST")
	overlayInt(&cfg.SMTPPort, "ACCOUNT_API_SMTP_PORT")
	overlayString(&cfg.SMTPUsername, "ACCOUNT_API_SMTP_USERNAME")
	overlayString(&cfg.SMTPPassword, "ACCOUNT_API_SMTP_PASSWORD")
	overlayString(&cfg.SMTPFrom, "ACCOUNT_API_SMTP_FROM")

	return cfg
}

func overlayString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func overlayInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func overlayDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
