package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/euring/internal/store"
)

// LookupFunc resolves one variable, matching os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// MapLookup serves variables from m. Useful in tests and tools that carry
// their own settings.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// Load reads configuration from environment variables, applies defaults and
// validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom is Load with an explicit variable source.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	cfg := &Config{}

	if err := decode(lookup, reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// decode walks v and fills every field tagged env, recursing into nested
// sections. Tags: env (primary name), envAlt (fallback name), default,
// required:"true".
func decode(lookup LookupFunc, v reflect.Value) error {
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct && field.Type != timeType {
			if err := decode(lookup, fv); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		value, found := resolve(lookup, name, field.Tag.Get("envAlt"))
		if !found {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", name)
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fv, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}

	return nil
}

// resolve tries the primary then the alternate name. A variable set to
// blank counts as unset.
func resolve(lookup LookupFunc, names ...string) (string, bool) {
	for _, n := range names {
		if n == "" {
			continue
		}
		if v, ok := lookup(n); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string
	errs = append(errs, c.Catalog.validate()...)
	errs = append(errs, c.Server.validate()...)
	errs = append(errs, c.Batch.validate()...)
	errs = append(errs, c.Recognition.validate()...)
	errs = append(errs, c.Conversion.validate()...)
	errs = append(errs, c.Rate.validate()...)
	errs = append(errs, c.Security.validate()...)
	errs = append(errs, c.Logging.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (c CatalogConfig) validate() []string {
	var errs []string
	switch c.Driver {
	case store.DriverMemory:
	case store.DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, "CATALOG_SQLITE_PATH is required for the sqlite driver")
		}
	case store.DriverPostgres:
		if c.URL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres driver")
		}
		if c.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.MaxConns < c.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.MaxConns, c.MinConns))
		}
	default:
		errs = append(errs, fmt.Sprintf("CATALOG_DRIVER (%q) must be one of: memory, postgres, sqlite", c.Driver))
	}
	if c.RefreshInterval < 0 {
		errs = append(errs, "CATALOG_REFRESH_INTERVAL must be non-negative")
	}
	return errs
}

func (c ServerConfig) validate() []string {
	var errs []string
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Port))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, "SERVER_MAX_BODY_BYTES must be positive")
	}
	return errs
}

func (c BatchConfig) validate() []string {
	var errs []string
	for _, s := range []struct {
		name  string
		value int64
	}{
		{"BATCH_MAX_CONCURRENT", int64(c.MaxConcurrent)},
		{"BATCH_MAX_RECOGNITIONS", int64(c.MaxRecognitions)},
		{"BATCH_MAX_CONVERSIONS", int64(c.MaxConversions)},
		{"BATCH_MAX_ACTIVE", int64(c.MaxActive)},
		{"BATCH_MAX_WAIT", int64(c.MaxWait)},
	} {
		if s.value <= 0 {
			errs = append(errs, s.name+" must be positive")
		}
	}
	return errs
}

func (c RecognitionConfig) validate() []string {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return []string{fmt.Sprintf("RECOGNITION_MIN_CONFIDENCE (%g) must be between 0 and 1", c.MinConfidence)}
	}
	return nil
}

func (c ConversionConfig) validate() []string {
	if c.CenturyPivot < 0 || c.CenturyPivot > 99 {
		return []string{fmt.Sprintf("CONVERSION_CENTURY_PIVOT (%d) must be 0-99", c.CenturyPivot)}
	}
	return nil
}

func (c RateLimitConfig) validate() []string {
	if !c.Enabled {
		return nil
	}
	var errs []string
	if c.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}
	if c.BatchLimit <= 0 {
		errs = append(errs, "RATE_LIMIT_BATCH must be positive when rate limiting is enabled")
	}
	return errs
}

func (c SecurityConfig) validate() []string {
	if c.RequireAPIKey && len(c.APIKeys) == 0 {
		return []string{"REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth"}
	}
	return nil
}

func (c LoggingConfig) validate() []string {
	var errs []string
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Level))
	}
	switch strings.ToLower(c.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Format))
	}
	return errs
}

// String returns a representation safe for logs. The database URL is
// masked and API keys are only counted.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Catalog: {Driver: %q, URL: [MASKED], SQLitePath: %q, RefreshInterval: %s}, ",
		c.Catalog.Driver, c.Catalog.SQLitePath, c.Catalog.RefreshInterval)
	fmt.Fprintf(&b, "Batch: {MaxConcurrent: %d, MaxRecognitions: %d, MaxConversions: %d, MaxActive: %d}, ",
		c.Batch.MaxConcurrent, c.Batch.MaxRecognitions, c.Batch.MaxConversions, c.Batch.MaxActive)
	fmt.Fprintf(&b, "Recognition: {MinConfidence: %g}, Conversion: {CenturyPivot: %d}, ",
		c.Recognition.MinConfidence, c.Conversion.CenturyPivot)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d, BatchLimit: %d}, ",
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.BatchLimit)
	fmt.Fprintf(&b, "Security: {RequireAPIKey: %v, APIKeys: %d}, ",
		c.Security.RequireAPIKey, len(c.Security.APIKeys))
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
