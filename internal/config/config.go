package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type TrialConfig struct {
	DurationHours  int `mapstructure:"duration_hours"`
	MaxEmployees   int `mapstructure:"max_employees"`
	MaxTimeEntries int `mapstructure:"max_time_entries"`
	MaxInvitations int `mapstructure:"max_invitations"`
}

// Duration returns the trial window length.
func (t TrialConfig) Duration() time.Duration {
	return time.Duration(t.DurationHours) * time.Hour
}

type EmailConfig struct {
	From              string `mapstructure:"from"`
	SMTPHost          string `mapstructure:"smtp_host"`
	SMTPPort          int    `mapstructure:"smtp_port"`
	Username          string `mapstructure:"username"`
	Password          string `mapstructure:"password"`
	InviteURLTemplate string `mapstructure:"invite_url_template"`
}

type BillingConfig struct {
	CheckoutURL   string `mapstructure:"checkout_url"`
	PortalURL     string `mapstructure:"portal_url"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type Config struct {
	DatabaseURL          string        `mapstructure:"database_url"`
	ServerPort           string        `mapstructure:"server_port"`
	JWTSecret            string        `mapstructure:"jwt_secret"`
	OwnerEmail           string        `mapstructure:"owner_email"`
	RequireVerifiedEmail bool          `mapstructure:"require_verified_email"`
	InvitationTTLDays    int           `mapstructure:"invitation_ttl_days"`
	Trial                TrialConfig   `mapstructure:"trial"`
	Email                EmailConfig   `mapstructure:"email"`
	Billing              BillingConfig `mapstructure:"billing"`
}

// InvitationTTL returns the invitation validity window.
func (c *Config) InvitationTTL() time.Duration {
	return time.Duration(c.InvitationTTLDays) * 24 * time.Hour
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Error unmarshalling config: %v", err)
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}

	if config.JWTSecret == "" {
		log.Fatal("JWT secret must be set in the config file")
	}

	if config.InvitationTTLDays == 0 {
		config.InvitationTTLDays = 7
	}
	if config.Trial.DurationHours == 0 {
		config.Trial.DurationHours = 72
	}
	if config.Trial.MaxEmployees == 0 {
		config.Trial.MaxEmployees = 3
	}
	if config.Trial.MaxTimeEntries == 0 {
		config.Trial.MaxTimeEntries = 50
	}
	if config.Trial.MaxInvitations == 0 {
		config.Trial.MaxInvitations = 5
	}

	if config.Email.SMTPPort == 0 {
		config.Email.SMTPPort = 587
	}
	if config.Email.InviteURLTemplate == "" {
		config.Email.InviteURLTemplate = "https://app.hourlyx.app/auth?invite=%s"
	}

	return &config
}
