package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"KursPajak/internal/collector"
	"KursPajak/internal/model"
	"KursPajak/internal/scheduler"
	"KursPajak/internal/window"
)

// EnvPrefix prefixes every environment override, e.g. KURS_TELEGRAM_BOT_TOKEN.
const EnvPrefix = "KURS"

// Config holds all application configuration.
type Config struct {
	Source struct {
		BaseURL   string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
		Currency  string        `yaml:"currency" envconfig:"CURRENCY" validate:"required,len=3,uppercase"`
		Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
		UserAgent string        `yaml:"user_agent" envconfig:"USER_AGENT"`
		Proxy     string        `yaml:"proxy" envconfig:"PROXY" validate:"omitempty,url"`
	} `yaml:"source" envconfig:"SOURCE"`
	Pipeline struct {
		LookbackWeeks *int   `yaml:"lookback_weeks" envconfig:"LOOKBACK_WEEKS" validate:"omitempty,gte=0,lte=52"`
		AnchorWeekday string `yaml:"anchor_weekday" envconfig:"ANCHOR_WEEKDAY" validate:"required"`
	} `yaml:"pipeline" envconfig:"PIPELINE"`
	Schedule struct {
		Cron       string `yaml:"cron" envconfig:"CRON"`
		Timezone   string `yaml:"timezone" envconfig:"TIMEZONE" validate:"required"`
		RunOnStart bool   `yaml:"run_on_start" envconfig:"RUN_ON_START"`
	} `yaml:"schedule" envconfig:"SCHEDULE"`
	Export struct {
		OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
		Filename  string `yaml:"filename" envconfig:"FILENAME"`
	} `yaml:"export" envconfig:"EXPORT"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"CHAT_ID" validate:"required_with=BotToken"`
		APIBase  string `yaml:"api_base" envconfig:"API_BASE" validate:"omitempty,url"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
	Email struct {
		SMTPServer string `yaml:"smtp_server" envconfig:"SMTP_SERVER"`
		SMTPPort   int    `yaml:"smtp_port" envconfig:"SMTP_PORT" validate:"gte=0,lte=65535"`
		SMTPUser   string `yaml:"smtp_user" envconfig:"SMTP_USER"`
		SMTPPass   string `yaml:"smtp_pass" envconfig:"SMTP_PASS"`
		From       string `yaml:"from" envconfig:"FROM"`
		To         string `yaml:"to" envconfig:"TO" validate:"omitempty,email"`
	} `yaml:"email" envconfig:"EMAIL"`
	Log struct {
		Level  string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn error"`
		Format string `yaml:"format" envconfig:"FORMAT" validate:"omitempty,oneof=text json"`
	} `yaml:"log" envconfig:"LOG"`
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = collector.DefaultBaseURL
	}
	if c.Source.Currency == "" {
		c.Source.Currency = model.DefaultCurrency
	}
	c.Source.Currency = strings.ToUpper(strings.TrimSpace(c.Source.Currency))
	if c.Source.Timeout == 0 {
		c.Source.Timeout = 30 * time.Second
	}
	if c.Pipeline.LookbackWeeks == nil {
		weeks := window.DefaultLookbackWeeks
		c.Pipeline.LookbackWeeks = &weeks
	}
	if c.Pipeline.AnchorWeekday == "" {
		c.Pipeline.AnchorWeekday = strings.ToLower(window.DefaultAnchor.String())
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = "Asia/Jakarta"
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "data"
	}
	if c.Export.Filename == "" {
		c.Export.Filename = "kurs_pajak_records.xlsx"
	}
	if c.Telegram.APIBase == "" {
		c.Telegram.APIBase = "https://api.telegram.org"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.From == "" && validator.New().Var(c.Email.SMTPUser, "email") == nil {
		c.Email.From = c.Email.SMTPUser
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks field constraints and the values that need parsing.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.EmailEnabled() {
		if err := validate.Var(c.Email.From, "required,email"); err != nil {
			return fmt.Errorf("email.from: %w", err)
		}
	}
	if _, err := c.Anchor(); err != nil {
		return fmt.Errorf("pipeline.anchor_weekday: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if c.Schedule.Cron != "" {
		if err := scheduler.ValidateSpec(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	return nil
}

// Lookback returns the number of trailing weeks a run covers. An explicit 0
// means only the current week.
func (c *Config) Lookback() int {
	if c.Pipeline.LookbackWeeks == nil {
		return window.DefaultLookbackWeeks
	}
	return *c.Pipeline.LookbackWeeks
}

// Anchor returns the configured first weekday of a publication week.
func (c *Config) Anchor() (time.Weekday, error) {
	return window.ParseWeekday(c.Pipeline.AnchorWeekday)
}

// Location returns the time zone used to decide what "today" is.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Schedule.Timezone)
}

// TelegramEnabled reports whether Telegram delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// EmailEnabled reports whether SMTP delivery is configured.
func (c *Config) EmailEnabled() bool {
	return c.Email.SMTPServer != "" && c.Email.SMTPUser != "" && c.Email.SMTPPass != "" && c.Email.To != ""
}
