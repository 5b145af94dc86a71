package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Gray Logic interaction core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Stage     StageConfig     `yaml:"stage"`
	Naming    NamingConfig    `yaml:"naming"`
	Scan      ScanConfig      `yaml:"scan"`
	Animation AnimationConfig `yaml:"animation"`
	Lights    LightsConfig    `yaml:"lights"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// StageConfig points at the scene description the core operates on.
type StageConfig struct {
	// File is the YAML prim tree loaded into the in-memory scene graph.
	File string `yaml:"file"`

	// Root is the prim path scanned for rooms and doors.
	// Empty means discover one of the common roots (see ScanConfig.Roots).
	Root string `yaml:"root"`

	// Watch reloads the stage when the file changes on disk.
	Watch bool `yaml:"watch"`

	// WatchDebounce collapses bursts of write events (milliseconds).
	WatchDebounce int `yaml:"watch_debounce"`
}

// NamingConfig holds the prim naming conventions that identify doors and panels.
// All matching is case-insensitive substring matching.
type NamingConfig struct {
	DoorKeyword   string `yaml:"door_keyword"`
	SingleSliding string `yaml:"single_sliding"`
	SinglePivot   string `yaml:"single_pivot"`
	DualSliding   string `yaml:"dual_sliding"`
	DualPivot     string `yaml:"dual_pivot"`
	LeftKeyword   string `yaml:"left_keyword"`
	RightKeyword  string `yaml:"right_keyword"`
	PanelKeyword  string `yaml:"panel_keyword"`
}

// ScanConfig bounds the scene traversal.
type ScanConfig struct {
	MaxDepth int      `yaml:"max_depth"`
	Roots    []string `yaml:"roots"`
	Excluded []string `yaml:"excluded"`
}

// AnimationConfig contains door animation defaults.
type AnimationConfig struct {
	// FrameRate is the tick frequency of the frame loop (Hz).
	FrameRate int `yaml:"frame_rate"`

	// BaseRate is progress per second at speed 1.0.
	BaseRate float64 `yaml:"base_rate"`

	// MaxTickDelta caps the elapsed time applied by one tick (milliseconds).
	MaxTickDelta int `yaml:"max_tick_delta"`

	// Easing is one of "linear", "ease-in-out", "ease-out".
	Easing string `yaml:"easing"`

	DefaultSpeed      float64 `yaml:"default_speed"`
	DefaultPivotAngle float64 `yaml:"default_pivot_angle"`
	DefaultDualMode   string  `yaml:"default_dual_mode"`
	DefaultDirection  string  `yaml:"default_direction"`

	// DefaultPanelWidth is used for panels without an authored extent.
	DefaultPanelWidth float64 `yaml:"default_panel_width"`

	// MinWidth floors the derived door width.
	MinWidth float64 `yaml:"min_width"`
}

// LightsConfig locates the lighting hierarchy.
type LightsConfig struct {
	// Root is the prim under which room light groups live.
	// Empty means discover it from the stage.
	Root string `yaml:"root"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// HistoryRetention is how long door events are kept (days). 0 keeps forever.
	HistoryRetention int `yaml:"history_retention"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT bearer token settings for the API.
type JWTConfig struct {
	// Enabled requires a valid bearer token on every /api/v1 request.
	Enabled bool   `yaml:"enabled"`
	Secret  string `yaml:"secret"`
	Issuer  string `yaml:"issuer"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_SECTION_KEY
// For example: GRAYLOGIC_STAGE_FILE, GRAYLOGIC_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration with environment overrides applied.
// It is used by tools that run without a config file.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "site-001",
			Name: "Gray Logic",
		},
		Stage: StageConfig{
			File:          "./data/stage.yaml",
			WatchDebounce: 250,
		},
		Naming: NamingConfig{
			DoorKeyword:   "_Door",
			SingleSliding: "Panel_Single_Sliding",
			SinglePivot:   "Panel_Single_Pivot",
			DualSliding:   "Panel_Dual_Sliding",
			DualPivot:     "Panel_Dual_Pivot",
			LeftKeyword:   "left",
			RightKeyword:  "right",
			PanelKeyword:  "panel",
		},
		Scan: ScanConfig{
			MaxDepth: 10,
			Roots:    []string{"/World", "/Root", "/root", "/Scene", "/scene", "/Set", "/set"},
			Excluded: []string{"/Looks", "/materials", "/Physics", "/Render"},
		},
		Animation: AnimationConfig{
			FrameRate:         60,
			BaseRate:          1.0,
			MaxTickDelta:      250,
			Easing:            "linear",
			DefaultSpeed:      1.0,
			DefaultPivotAngle: 90,
			DefaultDualMode:   "both_sides",
			DefaultDirection:  "push",
			DefaultPanelWidth: 100,
			MinWidth:          50,
		},
		Database: DatabaseConfig{
			Path:             "./data/interaction.db",
			WALMode:          true,
			BusyTimeout:      5,
			HistoryRetention: 30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-interaction",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				Issuer: "graylogic",
			},
		},
	}
}

// envOverrides maps GRAYLOGIC_* variables onto config fields. Empty
// variables are ignored; unparsable numbers leave the field unchanged.
var envOverrides = map[string]func(*Config, string){
	"GRAYLOGIC_STAGE_FILE":     func(c *Config, v string) { c.Stage.File = v },
	"GRAYLOGIC_STAGE_ROOT":     func(c *Config, v string) { c.Stage.Root = v },
	"GRAYLOGIC_LIGHTS_ROOT":    func(c *Config, v string) { c.Lights.Root = v },
	"GRAYLOGIC_DATABASE_PATH":  func(c *Config, v string) { c.Database.Path = v },
	"GRAYLOGIC_MQTT_HOST":      func(c *Config, v string) { c.MQTT.Broker.Host = v },
	"GRAYLOGIC_MQTT_USERNAME":  func(c *Config, v string) { c.MQTT.Auth.Username = v },
	"GRAYLOGIC_MQTT_PASSWORD":  func(c *Config, v string) { c.MQTT.Auth.Password = v },
	"GRAYLOGIC_API_HOST":       func(c *Config, v string) { c.API.Host = v },
	"GRAYLOGIC_API_PORT":       func(c *Config, v string) { setInt(&c.API.Port, v) },
	"GRAYLOGIC_FRAME_RATE":     func(c *Config, v string) { setInt(&c.Animation.FrameRate, v) },
	"GRAYLOGIC_INFLUXDB_TOKEN": func(c *Config, v string) { c.InfluxDB.Token = v },
	"GRAYLOGIC_LOG_LEVEL":      func(c *Config, v string) { c.Logging.Level = v },
	"GRAYLOGIC_JWT_SECRET":     func(c *Config, v string) { c.Security.JWT.Secret = v },
}

func applyEnvOverrides(cfg *Config) {
	for key, set := range envOverrides {
		if v := os.Getenv(key); v != "" {
			set(cfg, v)
		}
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// Stage validation
	if c.Stage.File == "" {
		errs = append(errs, "stage.file is required")
	}
	if c.Stage.Root != "" && !strings.HasPrefix(c.Stage.Root, "/") {
		errs = append(errs, "stage.root must be an absolute prim path")
	}

	// Naming validation
	if strings.TrimSpace(c.Naming.DoorKeyword) == "" {
		errs = append(errs, "naming.door_keyword is required")
	}
	typeKeywords := []struct{ key, value string }{
		{"naming.single_sliding", c.Naming.SingleSliding},
		{"naming.single_pivot", c.Naming.SinglePivot},
		{"naming.dual_sliding", c.Naming.DualSliding},
		{"naming.dual_pivot", c.Naming.DualPivot},
	}
	for _, kw := range typeKeywords {
		if strings.TrimSpace(kw.value) == "" {
			errs = append(errs, kw.key+" is required")
		}
	}

	if c.Scan.MaxDepth < 1 {
		errs = append(errs, "scan.max_depth must be at least 1")
	}

	// Animation validation
	if c.Animation.FrameRate < 1 || c.Animation.FrameRate > 240 {
		errs = append(errs, "animation.frame_rate must be between 1 and 240")
	}
	if c.Animation.BaseRate <= 0 {
		errs = append(errs, "animation.base_rate must be positive")
	}
	if c.Animation.DefaultSpeed < 0 {
		errs = append(errs, "animation.default_speed must not be negative")
	}
	switch c.Animation.Easing {
	case "linear", "ease-in-out", "ease-out":
	default:
		errs = append(errs, "animation.easing must be linear, ease-in-out or ease-out")
	}
	switch c.Animation.DefaultDualMode {
	case "left_fixed", "right_fixed", "both_sides":
	default:
		errs = append(errs, "animation.default_dual_mode must be left_fixed, right_fixed or both_sides")
	}
	switch c.Animation.DefaultDirection {
	case "push", "pull":
	default:
		errs = append(errs, "animation.default_direction must be push or pull")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// Door commands move physical geometry in a shared scene, so a weak
	// secret is rejected whenever auth is switched on.
	const minJWTSecretLength = 32
	if c.Security.JWT.Enabled {
		if c.Security.JWT.Secret == "" {
			errs = append(errs, "security.jwt.secret is required when jwt is enabled (set GRAYLOGIC_JWT_SECRET environment variable)")
		} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
			errs = append(errs, "security.jwt.secret must be at least 32 characters")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetFrameInterval returns the frame loop tick interval.
func (c *Config) GetFrameInterval() time.Duration {
	if c.Animation.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Animation.FrameRate)
}

// GetMaxTickDelta returns the per-tick elapsed time cap.
func (c *Config) GetMaxTickDelta() time.Duration {
	return time.Duration(c.Animation.MaxTickDelta) * time.Millisecond
}

// GetWatchDebounce returns the stage watcher debounce window.
func (c *Config) GetWatchDebounce() time.Duration {
	return time.Duration(c.Stage.WatchDebounce) * time.Millisecond
}
