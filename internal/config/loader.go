package config

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// lookupFunc returns the raw value for an environment variable name.
type lookupFunc func(name string) string

// Load reads the configuration from the environment, falling back to the
// struct defaults, and validates it.
func Load() (*Config, error) {
	return load(os.Getenv)
}

// Defaults returns the configuration built from struct defaults alone,
// ignoring the environment.
func Defaults() *Config {
	cfg, err := load(func(string) string { return "" })
	if err != nil {
		panic(fmt.Sprintf("invalid default configuration: %v", err))
	}
	return cfg
}

func load(lookup lookupFunc) (*Config, error) {
	cfg := &Config{}
	if err := populate(reflect.ValueOf(cfg).Elem(), lookup); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envField describes how one struct field is sourced.
type envField struct {
	names    []string
	fallback string
	required bool
}

func parseEnvField(f reflect.StructField) (envField, bool) {
	name := f.Tag.Get("env")
	if name == "" {
		return envField{}, false
	}
	ef := envField{
		names:    []string{name},
		fallback: f.Tag.Get("default"),
		required: f.Tag.Get("required") == "true",
	}
	if alt := f.Tag.Get("envAlt"); alt != "" {
		ef.names = append(ef.names, alt)
	}
	return ef, true
}

// resolve returns the first non-empty variable, or the default.
func (ef envField) resolve(lookup lookupFunc) (string, error) {
	for _, n := range ef.names {
		if v := lookup(n); v != "" {
			return v, nil
		}
	}
	if ef.required {
		return "", fmt.Errorf("required environment variable %s is not set", ef.names[0])
	}
	return ef.fallback, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// populate walks nested config sections and assigns every tagged field.
func populate(v reflect.Value, lookup lookupFunc) error {
	t := v.Type()
	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			if err := populate(fv, lookup); err != nil {
				return err
			}
			continue
		}

		ef, ok := parseEnvField(sf)
		if !ok {
			continue
		}
		raw, err := ef.resolve(lookup)
		if err != nil {
			return err
		}
		if raw == "" {
			continue
		}
		if err := assign(fv, raw); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", ef.names[0], raw, err)
		}
	}
	return nil
}

// assign parses raw into the field according to its type.
func assign(fv reflect.Value, raw string) error {
	if fv.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		fv.SetInt(int64(d))
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Slice:
		if fv.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice of %s", fv.Type().Elem())
		}
		fv.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}

// splitList splits a comma separated value, dropping blank items.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// problems collects validation failures.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var p problems

	db := c.Database
	p.check(db.MaxConns > 0, "DB_MAX_CONNS must be positive")
	p.check(db.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
	p.check(db.MaxConns >= db.MinConns, "DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", db.MaxConns, db.MinConns)

	srv := c.Server
	p.check(srv.Port > 0 && srv.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", srv.Port)
	p.check(srv.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(srv.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	p.check(srv.RequestTimeout > 0, "SERVER_REQUEST_TIMEOUT must be positive")

	up := c.Upload
	p.check(up.MaxFileSize > 0, "UPLOAD_MAX_FILE_SIZE must be positive")
	p.check(up.MaxConcurrent > 0, "UPLOAD_MAX_CONCURRENT must be positive")
	p.check(up.MaxWaitTime > 0, "UPLOAD_MAX_WAIT_TIME must be positive")
	p.check(up.Timeout > 0, "UPLOAD_TIMEOUT must be positive")

	dirs := []struct{ name, dir string }{
		{"STORAGE_UPLOAD_DIR", c.Storage.UploadDir},
		{"STORAGE_CONVERTED_DIR", c.Storage.ConvertedDir},
		{"STORAGE_CORRECTED_DIR", c.Storage.CorrectedDir},
		{"STORAGE_LOG_DIR", c.Storage.LogDir},
	}
	for _, d := range dirs {
		p.check(strings.TrimSpace(d.dir) != "", "%s must not be empty", d.name)
	}

	p.check(c.Session.TTL > 0, "SESSION_TTL must be positive")
	p.check(c.Session.SweepInterval > 0, "SESSION_SWEEP_INTERVAL must be positive")

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.UploadLimit > 0, "RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}

	p.check(!c.Security.RequireAPIKey || len(c.Security.APIKeys) > 0,
		"REQUIRE_API_KEY is set but API_KEYS is empty")

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		p.check(false, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.check(false, "LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(p) == 0 {
		return nil
	}
	sort.Strings(p)
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
}

// String renders the config for logs with secrets masked.
func (c *Config) String() string {
	dbURL := "[NOT SET]"
	if c.Database.URL != "" {
		dbURL = "[MASKED]"
	}

	sections := []string{
		fmt.Sprintf("Server: {Host: %q, Port: %d}", c.Server.Host, c.Server.Port),
		fmt.Sprintf("Database: {URL: %s, MaxConns: %d, MinConns: %d}", dbURL, c.Database.MaxConns, c.Database.MinConns),
		fmt.Sprintf("Upload: {MaxFileSize: %d, MaxConcurrent: %d}", c.Upload.MaxFileSize, c.Upload.MaxConcurrent),
		fmt.Sprintf("Session: {TTL: %s, DefaultPreset: %q}", c.Session.TTL, c.Session.DefaultPreset),
		fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d}", c.Rate.Enabled, c.Rate.RequestsPerMinute),
		fmt.Sprintf("Security: {RequireAPIKey: %v, APIKeys: %d configured}", c.Security.RequireAPIKey, len(c.Security.APIKeys)),
		fmt.Sprintf("Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format),
	}
	return "Config{" + strings.Join(sections, ", ") + "}"
}
