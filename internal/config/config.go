package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone      = "UTC"
	configPathEnv        = "CRISIS_MONITOR_CONFIG"
	databaseDSNEnv       = "DATABASE_DSN"
	databaseDriverEnv    = "DATABASE_DRIVER"
	classifierAPIKeyEnv  = "CLASSIFIER_API_KEY"
	geminiAPIKeyEnv      = "GEMINI_API_KEY"
	classifierModelEnv   = "CLASSIFIER_MODEL"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChannelEnv   = "TELEGRAM_CHANNEL"
	logLevelEnv          = "LOG_LEVEL"
	pushgatewayURLEnv    = "PUSHGATEWAY_URL"
	defaultAlertTitle    = "🚨 Yeni Gelişme!"
	defaultClassifierURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
)

// ErrMissingCredential marks configuration that no run can proceed without.
var ErrMissingCredential = errors.New("missing required credential")

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Database      DatabaseConfig     `yaml:"database"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	Geocoder      GeocoderConfig     `yaml:"geocoder"`
	Extractor     ExtractorConfig    `yaml:"extractor"`
	Feeds         FeedsConfig        `yaml:"feeds"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Regions       map[string]string  `yaml:"regions"`
	Topics        []TopicConfig      `yaml:"topics"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// SchedulerConfig defines when the pipeline should run. An empty cron
// expression means a single run per process invocation.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// DatabaseConfig selects the SQL driver and connection string.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ClassifierConfig defines how to reach the OpenAI-compatible classifier.
type ClassifierConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"apiKey"`
	Language  string        `yaml:"language"`
	TextLimit int           `yaml:"textLimit"`
	Pacing    time.Duration `yaml:"pacing"`
	Timeout   time.Duration `yaml:"timeout"`
}

// GeocoderConfig points at a Nominatim-compatible search endpoint.
type GeocoderConfig struct {
	Endpoint  string        `yaml:"endpoint"`
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ExtractorConfig tunes article downloads.
type ExtractorConfig struct {
	UserAgent string        `yaml:"userAgent"`
	Timeout   time.Duration `yaml:"timeout"`
}

// FeedsConfig tunes feed downloads.
type FeedsConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	PerSourceCap int           `yaml:"perSourceCap"`
	UserAgent    string        `yaml:"userAgent"`
}

// PipelineConfig carries the budget and gating knobs of a run.
type PipelineConfig struct {
	StaleWindow       time.Duration `yaml:"staleWindow"`
	AcceptLimit       int           `yaml:"acceptLimit"`
	ScanLimit         int           `yaml:"scanLimit"`
	SeverityThreshold int           `yaml:"severityThreshold"`
	PrimaryTopic      string        `yaml:"primaryTopic"`
	PrimaryRegion     string        `yaml:"primaryRegion"`
}

// NotificationConfig encapsulates outbound alert channels.
type NotificationConfig struct {
	Enabled    *bool          `yaml:"enabled"`
	AlertTitle string         `yaml:"alertTitle"`
	Telegram   TelegramConfig `yaml:"telegram"`
}

// IsEnabled defaults to true when the flag is not set.
func (n NotificationConfig) IsEnabled() bool {
	return n.Enabled == nil || *n.Enabled
}

// TelegramConfig wires all data required to broadcast messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	Channel  string `yaml:"channel"`
	Endpoint string `yaml:"endpoint"`
}

// MetricsConfig enables pushing run statistics to a Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgatewayUrl"`
	Job            string `yaml:"job"`
}

// TopicConfig is one topic with its focus rule and regional feeds.
type TopicConfig struct {
	Name    string         `yaml:"name"`
	Focus   string         `yaml:"focus"`
	Regions []RegionConfig `yaml:"regions"`
}

// RegionConfig lists the feeds of a topic in one region.
type RegionConfig struct {
	Name  string   `yaml:"name"`
	Feeds []string `yaml:"feeds"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
// Unreadable or malformed files are fatal.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg, nil
}

// Validate rejects configurations that leave a collaborator without credentials.
func (c Config) Validate() error {
	if c.Classifier.APIKey == "" {
		return fmt.Errorf("classifier api key: %w", ErrMissingCredential)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn: %w", ErrMissingCredential)
	}
	if c.Notifications.IsEnabled() {
		if c.Notifications.Telegram.BotToken == "" || c.Notifications.Telegram.Channel == "" {
			return fmt.Errorf("telegram bot token and channel: %w", ErrMissingCredential)
		}
	}
	if c.Pipeline.AcceptLimit <= 0 || c.Pipeline.ScanLimit <= 0 {
		return fmt.Errorf("pipeline limits must be positive (accept=%d, scan=%d)", c.Pipeline.AcceptLimit, c.Pipeline.ScanLimit)
	}
	if len(c.Topics) == 0 {
		return fmt.Errorf("no topics configured")
	}
	return nil
}

// DefaultPlace returns the configured default place name for a region,
// falling back to the global default.
func (c Config) DefaultPlace(region string) string {
	if place, ok := c.Regions[region]; ok && place != "" {
		return place
	}
	return c.Regions["Global"]
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}

	if v := os.Getenv(classifierAPIKeyEnv); v != "" {
		c.Classifier.APIKey = v
	} else if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.Classifier.APIKey = v
	}
	if v := os.Getenv(classifierModelEnv); v != "" {
		c.Classifier.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChannelEnv); v != "" {
		c.Notifications.Telegram.Channel = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(pushgatewayURLEnv); v != "" {
		c.Metrics.PushgatewayURL = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.File != "" {
		base.Logging.File = override.Logging.File
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	base.Classifier = mergeClassifier(base.Classifier, override.Classifier)

	if override.Geocoder.Endpoint != "" {
		base.Geocoder.Endpoint = override.Geocoder.Endpoint
	}
	if override.Geocoder.UserAgent != "" {
		base.Geocoder.UserAgent = override.Geocoder.UserAgent
	}
	if override.Geocoder.Timeout > 0 {
		base.Geocoder.Timeout = override.Geocoder.Timeout
	}

	if override.Extractor.UserAgent != "" {
		base.Extractor.UserAgent = override.Extractor.UserAgent
	}
	if override.Extractor.Timeout > 0 {
		base.Extractor.Timeout = override.Extractor.Timeout
	}

	if override.Feeds.Timeout > 0 {
		base.Feeds.Timeout = override.Feeds.Timeout
	}
	if override.Feeds.PerSourceCap > 0 {
		base.Feeds.PerSourceCap = override.Feeds.PerSourceCap
	}
	if override.Feeds.UserAgent != "" {
		base.Feeds.UserAgent = override.Feeds.UserAgent
	}

	base.Pipeline = mergePipeline(base.Pipeline, override.Pipeline)

	if override.Notifications.Enabled != nil {
		base.Notifications.Enabled = override.Notifications.Enabled
	}
	if override.Notifications.AlertTitle != "" {
		base.Notifications.AlertTitle = override.Notifications.AlertTitle
	}
	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.Channel != "" {
		base.Notifications.Telegram.Channel = override.Notifications.Telegram.Channel
	}
	if override.Notifications.Telegram.Endpoint != "" {
		base.Notifications.Telegram.Endpoint = override.Notifications.Telegram.Endpoint
	}

	if override.Metrics.PushgatewayURL != "" {
		base.Metrics.PushgatewayURL = override.Metrics.PushgatewayURL
	}
	if override.Metrics.Job != "" {
		base.Metrics.Job = override.Metrics.Job
	}

	for region, place := range override.Regions {
		base.Regions[region] = place
	}

	if len(override.Topics) > 0 {
		base.Topics = override.Topics
	}

	return base
}

func mergeClassifier(base, override ClassifierConfig) ClassifierConfig {
	if override.Endpoint != "" {
		base.Endpoint = override.Endpoint
	}
	if override.Model != "" {
		base.Model = override.Model
	}
	if override.APIKey != "" {
		base.APIKey = override.APIKey
	}
	if override.Language != "" {
		base.Language = override.Language
	}
	if override.TextLimit > 0 {
		base.TextLimit = override.TextLimit
	}
	if override.Pacing > 0 {
		base.Pacing = override.Pacing
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}
	return base
}

func mergePipeline(base, override PipelineConfig) PipelineConfig {
	if override.StaleWindow > 0 {
		base.StaleWindow = override.StaleWindow
	}
	if override.AcceptLimit > 0 {
		base.AcceptLimit = override.AcceptLimit
	}
	if override.ScanLimit > 0 {
		base.ScanLimit = override.ScanLimit
	}
	if override.SeverityThreshold > 0 {
		base.SeverityThreshold = override.SeverityThreshold
	}
	if override.PrimaryTopic != "" {
		base.PrimaryTopic = override.PrimaryTopic
	}
	if override.PrimaryRegion != "" {
		base.PrimaryRegion = override.PrimaryRegion
	}
	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		Database:  DatabaseConfig{Driver: "postgres"},
		Classifier: ClassifierConfig{
			Endpoint:  defaultClassifierURL,
			Model:     "gemini-2.0-flash",
			Language:  "Turkish",
			TextLimit: 300,
			Pacing:    4 * time.Second,
			Timeout:   30 * time.Second,
		},
		Geocoder: GeocoderConfig{
			Endpoint:  "https://nominatim.openstreetmap.org/search",
			UserAgent: "CrisisMonitorApp_Cloud",
			Timeout:   10 * time.Second,
		},
		Extractor: ExtractorConfig{
			UserAgent: "Mozilla/5.0 (compatible; CrisisMonitor/1.0)",
			Timeout:   15 * time.Second,
		},
		Feeds: FeedsConfig{
			Timeout:      20 * time.Second,
			PerSourceCap: 15,
			UserAgent:    "CrisisMonitor/1.0",
		},
		Pipeline: PipelineConfig{
			StaleWindow:       24 * time.Hour,
			AcceptLimit:       10,
			ScanLimit:         60,
			SeverityThreshold: 8,
			PrimaryTopic:      "Gundem",
			PrimaryRegion:     "Global",
		},
		Notifications: NotificationConfig{AlertTitle: defaultAlertTitle},
		Metrics:       MetricsConfig{Job: "crisis_monitor"},
		Regions: map[string]string{
			"Global":  "New York, USA",
			"Germany": "Berlin, Germany",
			"Turkey":  "Ankara, Turkey",
			"USA":     "Washington D.C., USA",
		},
		Topics: defaultTopics(),
	}
}

func defaultTopics() []TopicConfig {
	return []TopicConfig{
		{
			Name:  "Gundem",
			Focus: "Hard news only: conflicts, disasters, politics, economy and public safety. Ignore opinion pieces, live blogs and entertainment.",
			Regions: []RegionConfig{
				{Name: "Global", Feeds: []string{
					"http://feeds.bbci.co.uk/news/world/rss.xml",
					"https://www.aljazeera.com/xml/rss/all.xml",
					"https://rss.nytimes.com/services/xml/rss/nyt/World.xml",
				}},
				{Name: "Turkey", Feeds: []string{
					"https://www.trthaber.com/sondakika.rss",
					"https://www.haberturk.com/rss/manset.xml",
					"https://www.ntv.com.tr/son-dakika.rss",
				}},
				{Name: "Germany", Feeds: []string{
					"https://www.tagesschau.de/xml/rss2/",
					"https://www.spiegel.de/schlagzeilen/index.rss",
				}},
				{Name: "USA", Feeds: []string{
					"http://rss.cnn.com/rss/cnn_topstories.rss",
					"https://feeds.npr.org/1001/rss.xml",
				}},
			},
		},
		{
			Name:  "Futbol",
			Focus: "Football (soccer) match results, transfers and injuries only.",
			Regions: []RegionConfig{
				{Name: "Global", Feeds: []string{"http://feeds.bbci.co.uk/sport/football/rss.xml"}},
				{Name: "Turkey", Feeds: []string{"https://www.fotomac.com.tr/rss/futbol.xml"}},
				{Name: "Germany", Feeds: []string{"https://www.sportschau.de/fussball/index~rss2.xml"}},
				{Name: "USA", Feeds: []string{"https://www.espn.com/espn/rss/soccer/news"}},
			},
		},
		{
			Name:  "Basketbol",
			Focus: "Basketball games, trades and league news only.",
			Regions: []RegionConfig{
				{Name: "Global", Feeds: []string{
					"https://www.espn.com/espn/rss/nba/news",
					"https://www.eurohoops.net/en/feed/",
				}},
				{Name: "Turkey", Feeds: []string{"https://www.fotomac.com.tr/rss/basketbol.xml"}},
				{Name: "Germany", Feeds: []string{"https://www.kicker.de/basketball/startseite/rss"}},
				{Name: "USA", Feeds: []string{"https://www.espn.com/espn/rss/nba/news"}},
			},
		},
		{
			Name:  "Muzik",
			Focus: "Music releases, tours, charts and artist news only.",
			Regions: []RegionConfig{
				{Name: "Global", Feeds: []string{
					"https://www.billboard.com/feed/",
					"https://www.rollingstone.com/music/music-news/feed/",
				}},
				{Name: "Turkey", Feeds: []string{"https://www.hurriyet.com.tr/rss/kelebek"}},
				{Name: "Germany", Feeds: []string{"https://www.rollingstone.de/feed/"}},
				{Name: "USA", Feeds: []string{"https://pitchfork.com/feed/feed-news/rss"}},
			},
		},
	}
}
