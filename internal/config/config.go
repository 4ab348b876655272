package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// GoogleConfig carries the OAuth client credentials and refresh token used
// for Gmail and Calendar access. Token exchange itself is delegated to the
// oauth2 library; the refresh token is treated as an opaque credential.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	CalendarID   string
}

// IMAPConfig configures the fallback mailbox monitor used when Gmail OAuth
// credentials are not available.
type IMAPConfig struct {
	Server   string
	Email    string
	Password string
}

// Config aggregates application-wide configuration values.
type Config struct {
	DatabaseURL string
	LogLevel    string
	LogFormat   string

	SenderEmail      string
	SenderName       string
	CompanyName      string
	CompanyAddress   string
	PrivacyPolicyURL string

	MaxDailyEmails int
	SendStartHour  int
	SendEndHour    int
	SendDelay      time.Duration
	MinConfidence  int
	Timezone       string

	HunterAPIKey string
	ApolloAPIKey string

	Google GoogleConfig
	IMAP   IMAPConfig

	SearchKeywords  []string
	SearchLocations []string
	ScrapePause     time.Duration
	EnrichPause     time.Duration
	EnrichBatchSize int

	MeetingDuration time.Duration
	ReplyLookback   time.Duration

	SendInterval    time.Duration
	MonitorInterval time.Duration
	StatusPort      string
	RateLimitStatus RateLimitConfig
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),

		SenderEmail:      os.Getenv("SENDER_EMAIL"),
		SenderName:       getEnv("SENDER_NAME", "Intersection Data Finance"),
		CompanyName:      getEnv("COMPANY_NAME", "Intersection Data Finance"),
		CompanyAddress:   os.Getenv("COMPANY_ADDRESS"),
		PrivacyPolicyURL: os.Getenv("PRIVACY_POLICY_LINK"),

		MaxDailyEmails: parseInt(getEnv("MAX_DAILY_EMAILS", "10")),
		SendStartHour:  parseInt(getEnv("SEND_START_HOUR", "9")),
		SendEndHour:    parseInt(getEnv("SEND_END_HOUR", "17")),
		SendDelay:      parseDuration(getEnv("SEND_DELAY", "5s"), 5*time.Second),
		MinConfidence:  parseInt(getEnv("MIN_LEAD_SCORE", "70")),
		Timezone:       getEnv("TIMEZONE", "America/Chicago"),

		HunterAPIKey: os.Getenv("HUNTER_API_KEY"),
		ApolloAPIKey: os.Getenv("APOLLO_API_KEY"),

		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			RefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),
			CalendarID:   getEnv("CALENDAR_ID", "primary"),
		},
		IMAP: IMAPConfig{
			Server:   os.Getenv("IMAP_SERVER"),
			Email:    os.Getenv("IMAP_EMAIL"),
			Password: os.Getenv("IMAP_PASSWORD"),
		},

		SearchKeywords:  parseList(getEnv("SEARCH_KEYWORDS", "Oracle PBCS,Oracle EPBCS,Oracle Hyperion,Oracle NSPB,Hyperion Planning")),
		SearchLocations: parseList(getEnv("SEARCH_LOCATIONS", "United States,Remote")),
		ScrapePause:     parseDuration(getEnv("SCRAPE_PAUSE", "5s"), 5*time.Second),
		EnrichPause:     parseDuration(getEnv("ENRICH_PAUSE", "1s"), time.Second),
		EnrichBatchSize: parseInt(getEnv("ENRICH_BATCH_SIZE", "50")),

		MeetingDuration: time.Duration(parseInt(getEnv("MEETING_DURATION_MINUTES", "30"))) * time.Minute,
		ReplyLookback:   parseDuration(getEnv("REPLY_LOOKBACK", "168h"), 7*24*time.Hour),

		SendInterval:    parseDuration(getEnv("SEND_INTERVAL", "15m"), 15*time.Minute),
		MonitorInterval: parseDuration(getEnv("MONITOR_INTERVAL", "30m"), 30*time.Minute),
		StatusPort:      getEnv("STATUS_PORT", "8080"),
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_STATUS", "60/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_STATUS value: %w", err)
	}
	cfg.RateLimitStatus = rl

	if cfg.MaxDailyEmails <= 0 {
		return nil, fmt.Errorf("MAX_DAILY_EMAILS must be positive")
	}
	if cfg.SendStartHour < 0 || cfg.SendEndHour > 24 || cfg.SendStartHour >= cfg.SendEndHour {
		return nil, fmt.Errorf("invalid send window %d-%d", cfg.SendStartHour, cfg.SendEndHour)
	}

	return cfg, nil
}

// RequireDatabase ensures a database DSN is configured.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required; set it to a PostgreSQL DSN")
	}
	return nil
}

// RequireGoogle ensures the Gmail/Calendar credentials are configured.
func (c *Config) RequireGoogle() error {
	g := c.Google
	if g.ClientID == "" || g.ClientSecret == "" || g.RefreshToken == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN are required for Gmail/Calendar access")
	}
	if c.SenderEmail == "" {
		return fmt.Errorf("SENDER_EMAIL is required")
	}
	return nil
}

// RequireEnrichment ensures at least one people-search provider is configured.
func (c *Config) RequireEnrichment() error {
	if c.HunterAPIKey == "" && c.ApolloAPIKey == "" {
		return fmt.Errorf("at least one of HUNTER_API_KEY or APOLLO_API_KEY is required for enrichment")
	}
	return nil
}

// IMAPEnabled reports whether the fallback IMAP monitor is configured.
func (c *Config) IMAPEnabled() bool {
	i := c.IMAP
	return i.Server != "" && i.Email != "" && i.Password != ""
}

// Location resolves the configured timezone, falling back to local time.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseInt(input string) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0
	}
	return n
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil {
		return fallback
	}
	return d
}

func parseList(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
