// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/harissfx/AbsensiESP32/internal/model"
	"github.com/harissfx/AbsensiESP32/internal/ui/styles"
	"github.com/harissfx/AbsensiESP32/internal/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ABSENSI_"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete dashboard configuration.
type Config struct {
	Device   DeviceConfig   `toml:"device" json:"device"`
	Link     LinkConfig     `toml:"link" json:"link"`
	Commands CommandsConfig `toml:"commands" json:"commands"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Log      LogConfig      `toml:"log" json:"log"`
	Metrics  MetricsConfig  `toml:"metrics" json:"metrics"`
}

// DeviceConfig locates the attendance device.
type DeviceConfig struct {
	// Host is the device's address on the local network
	Host string `toml:"host" json:"host"`
	// WSPort is the push channel port (default 81)
	WSPort int `toml:"ws_port" json:"ws_port"`
	// HTTPPort is the command endpoint port (default 80)
	HTTPPort int `toml:"http_port" json:"http_port"`
	// Capacity is the number of user slots (default 50)
	Capacity int `toml:"capacity" json:"capacity"`
}

// LinkConfig tunes the push channel.
type LinkConfig struct {
	ReconnectDelayMs int `toml:"reconnect_delay_ms" json:"reconnect_delay_ms"`
	DialTimeoutMs    int `toml:"dial_timeout_ms" json:"dial_timeout_ms"`
	WriteTimeoutMs   int `toml:"write_timeout_ms" json:"write_timeout_ms"`
	// ReadTimeoutMs closes a silent link (0 = disabled)
	ReadTimeoutMs int `toml:"read_timeout_ms" json:"read_timeout_ms"`
}

// CommandsConfig tunes rename/delete requests.
type CommandsConfig struct {
	// RequestTimeoutMs bounds each request (0 = no client timeout)
	RequestTimeoutMs int `toml:"request_timeout_ms" json:"request_timeout_ms"`
}

// UIConfig contains dashboard settings. It is hot-reloadable.
type UIConfig struct {
	ToastMs          int    `toml:"toast_ms" json:"toast_ms"`
	FlashMs          int    `toml:"flash_ms" json:"flash_ms"`
	RefreshPerMinute int    `toml:"refresh_per_minute" json:"refresh_per_minute"`
	Theme            string `toml:"theme" json:"theme"`
}

// LogConfig sets where logs go.
type LogConfig struct {
	// Path is the log file (empty = ~/.attendance/dashboard.log)
	Path string `toml:"path" json:"path"`
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	// Listen is the address to serve /metrics on (empty = disabled)
	Listen string `toml:"listen" json:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Host:     "192.168.4.1",
			WSPort:   81,
			HTTPPort: 80,
			Capacity: model.DefaultCapacity,
		},
		Link: LinkConfig{
			ReconnectDelayMs: 3000,
			DialTimeoutMs:    5000,
			WriteTimeoutMs:   5000,
			ReadTimeoutMs:    0,
		},
		Commands: CommandsConfig{RequestTimeoutMs: 0},
		UI: UIConfig{
			ToastMs:          2800,
			FlashMs:          1500,
			RefreshPerMinute: 12,
			Theme:            styles.ModeAuto,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns ~/.attendance.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".attendance"), nil
}

// ConfigPathTOML returns the TOML config path.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the JSON config path.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogPath returns ~/.attendance/dashboard.log.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dashboard.log"), nil
}

// ActivePath returns the file Load would read, or "" when none exists.
func ActivePath() string {
	for _, fn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		p, err := fn()
		if err != nil {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the first config file found, falling back to defaults, then
// applies environment overrides and validates.
func Load() (*Config, error) {
	if path := ActivePath(); path != "" {
		return LoadFromPath(path)
	}
	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads a TOML or JSON file (chosen by extension).
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes path over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// SetDefaults fills zero values that have no meaning as zero.
func (c *Config) SetDefaults() {
	d := Default()
	if strings.TrimSpace(c.Device.Host) == "" {
		c.Device.Host = d.Device.Host
	}
	if c.Device.WSPort == 0 {
		c.Device.WSPort = d.Device.WSPort
	}
	if c.Device.HTTPPort == 0 {
		c.Device.HTTPPort = d.Device.HTTPPort
	}
	if c.Device.Capacity == 0 {
		c.Device.Capacity = d.Device.Capacity
	}
	if c.Link.ReconnectDelayMs == 0 {
		c.Link.ReconnectDelayMs = d.Link.ReconnectDelayMs
	}
	if c.Link.DialTimeoutMs == 0 {
		c.Link.DialTimeoutMs = d.Link.DialTimeoutMs
	}
	if c.UI.ToastMs == 0 {
		c.UI.ToastMs = d.UI.ToastMs
	}
	if c.UI.FlashMs == 0 {
		c.UI.FlashMs = d.UI.FlashMs
	}
	if c.UI.RefreshPerMinute == 0 {
		c.UI.RefreshPerMinute = d.UI.RefreshPerMinute
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes cfg to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg to path atomically.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# attendance dashboard configuration\n")
	buf.WriteString("# Environment variables prefixed " + EnvPrefix + " override these values.\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes cfg to path atomically.
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.ContainsAny(c.Device.Host, "/ ") {
		add("device.host", "invalid host '%s', expected a host name or address", c.Device.Host)
	}
	for field, port := range map[string]int{"device.ws_port": c.Device.WSPort, "device.http_port": c.Device.HTTPPort} {
		if port < 1 || port > 65535 {
			add(field, "port %d out of range 1-65535", port)
		}
	}
	if c.Device.Capacity < 1 {
		add("device.capacity", "must be positive, got %d", c.Device.Capacity)
	}

	if c.Link.ReconnectDelayMs < 100 {
		add("link.reconnect_delay_ms", "must be at least 100, got %d", c.Link.ReconnectDelayMs)
	}
	for field, v := range map[string]int{
		"link.dial_timeout_ms":        c.Link.DialTimeoutMs,
		"link.write_timeout_ms":       c.Link.WriteTimeoutMs,
		"link.read_timeout_ms":        c.Link.ReadTimeoutMs,
		"commands.request_timeout_ms": c.Commands.RequestTimeoutMs,
	} {
		if v < 0 {
			add(field, "must not be negative, got %d", v)
		}
	}

	if err := c.UI.Validate(); err != nil {
		errs = append(errs, err.(ValidateErrors)...)
	}

	if c.Metrics.Listen != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Listen); err != nil {
			add("metrics.listen", "invalid address '%s': %v", c.Metrics.Listen, err)
		}
	}

	if len(errs) > 0 {
		sortErrors(errs)
		return errs
	}
	return nil
}

// Validate checks the [ui] section on its own, as hot reload does.
func (u UIConfig) Validate() error {
	var errs ValidateErrors
	if u.ToastMs < 0 {
		errs = append(errs, ValidationError{Field: "ui.toast_ms", Message: fmt.Sprintf("must not be negative, got %d", u.ToastMs)})
	}
	if u.FlashMs < 0 {
		errs = append(errs, ValidationError{Field: "ui.flash_ms", Message: fmt.Sprintf("must not be negative, got %d", u.FlashMs)})
	}
	if !styles.ValidMode(u.Theme) {
		errs = append(errs, ValidationError{Field: "ui.theme", Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light, ascii", u.Theme)})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func sortErrors(errs ValidateErrors) {
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// ApplyEnvOverrides applies ABSENSI_* variables. Unparseable port values
// are ignored.
func (c *Config) ApplyEnvOverrides() {
	if host := os.Getenv(EnvPrefix + "HOST"); host != "" {
		c.Device.Host = host
	}
	if port, ok := envInt(EnvPrefix + "WS_PORT"); ok {
		c.Device.WSPort = port
	}
	if port, ok := envInt(EnvPrefix + "HTTP_PORT"); ok {
		c.Device.HTTPPort = port
	}
	if path := os.Getenv(EnvPrefix + "LOG"); path != "" {
		c.Log.Path = path
	}
	if addr := os.Getenv(EnvPrefix + "METRICS"); addr != "" {
		c.Metrics.Listen = addr
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// PushURL returns the push channel address, e.g. ws://192.168.4.1:81/.
func (c *Config) PushURL() string {
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(c.Device.Host, strconv.Itoa(c.Device.WSPort)), Path: "/"}
	return u.String()
}

// HTTPBaseURL returns the command endpoint root, e.g. http://192.168.4.1.
func (c *Config) HTTPBaseURL() string {
	host := c.Device.Host
	if c.Device.HTTPPort != 80 {
		host = net.JoinHostPort(host, strconv.Itoa(c.Device.HTTPPort))
	}
	u := url.URL{Scheme: "http", Host: host}
	return u.String()
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (l LinkConfig) ReconnectDelay() time.Duration { return ms(l.ReconnectDelayMs) }
func (l LinkConfig) DialTimeout() time.Duration { return ms(l.DialTimeoutMs) }
func (l LinkConfig) WriteTimeout() time.Duration { return ms(l.WriteTimeoutMs) }
func (l LinkConfig) ReadTimeout() time.Duration { return ms(l.ReadTimeoutMs) }

func (c CommandsConfig) RequestTimeout() time.Duration { return ms(c.RequestTimeoutMs) }

func (u UIConfig) ToastDuration() time.Duration { return ms(u.ToastMs) }
func (u UIConfig) FlashDuration() time.Duration { return ms(u.FlashMs) }

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// String renders the config as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return err.Error()
	}
	return buf.String()
}
