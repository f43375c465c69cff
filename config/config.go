package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const defaultPath = "."

// Refresh token rotation modes.
const (
	RotationRotate = "rotate"
	RotationReuse  = "reuse"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Site identifies the single owner of this server. The base URL doubles
	// as the IndieAuth "me" identity and as the prefix of every entry
	// location and WebSub topic.
	Site *SiteConfig `json:"site" yaml:"site"`

	IndieAuth *IndieAuthConfig `json:"indieauth" yaml:"indieauth"`

	WebMention *WebMentionConfig `json:"webmention" yaml:"webmention"`

	WebSub *WebSubConfig `json:"websub" yaml:"websub"`

	Migrations *MigrationsConfig `json:"migrations" yaml:"migrations"`
}

// SiteConfig defines the owner identity and the published feed.
type SiteConfig struct {
	BaseURL  string `json:"baseUrl" yaml:"baseUrl"`
	FeedPath string `json:"feedPath" yaml:"feedPath"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
}

// IndieAuthConfig defines expiry windows and the refresh rotation policy.
type IndieAuthConfig struct {
	CodeTTL        time.Duration `json:"codeTtl" yaml:"codeTtl"`
	AccessTokenTTL time.Duration `json:"accessTokenTtl" yaml:"accessTokenTtl"`
	// RefreshTokenTTL bounds how long a refresh token may sit unused.
	RefreshTokenTTL time.Duration `json:"refreshTokenTtl" yaml:"refreshTokenTtl"`
	// RotationMode is "rotate" (reissue on use) or "reuse".
	RotationMode string `json:"rotationMode" yaml:"rotationMode"`
}

// WebMentionConfig defines verification policy and outbound delivery bounds.
type WebMentionConfig struct {
	RequireVouch bool `json:"requireVouch" yaml:"requireVouch"`
	// TrustedSkipsBacklink relaxes verification for allow-listed domains.
	TrustedSkipsBacklink bool          `json:"trustedSkipsBacklink" yaml:"trustedSkipsBacklink"`
	DeliveryRetries      int           `json:"deliveryRetries" yaml:"deliveryRetries"`
	DeliveryBackoff      time.Duration `json:"deliveryBackoff" yaml:"deliveryBackoff"`
	FetchTimeout         time.Duration `json:"fetchTimeout" yaml:"fetchTimeout"`
}

// WebSubConfig defines lease bounds and delivery timeouts for the hub.
type WebSubConfig struct {
	DefaultLease    time.Duration `json:"defaultLease" yaml:"defaultLease"`
	MaxLease        time.Duration `json:"maxLease" yaml:"maxLease"`
	DeliveryTimeout time.Duration `json:"deliveryTimeout" yaml:"deliveryTimeout"`
}

// MigrationsConfig controls goose migrations at startup.
type MigrationsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: POSTGRES_SSLMODE -> postgres.sslMode (not postgres.sslmode)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if cfg.Site == nil || cfg.Site.BaseURL == "" {
		return nil, errors.New("site.baseUrl is required")
	}
	cfg.Site.BaseURL = strings.TrimRight(cfg.Site.BaseURL, "/")

	return cfg, nil
}

// ApplyDefaults fills the zero-valued protocol knobs with their defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.IndieAuth == nil {
		cfg.IndieAuth = &IndieAuthConfig{}
	}
	if cfg.IndieAuth.CodeTTL == 0 {
		cfg.IndieAuth.CodeTTL = 10 * time.Minute
	}
	if cfg.IndieAuth.AccessTokenTTL == 0 {
		cfg.IndieAuth.AccessTokenTTL = time.Hour
	}
	if cfg.IndieAuth.RefreshTokenTTL == 0 {
		cfg.IndieAuth.RefreshTokenTTL = 365 * 24 * time.Hour
	}
	if cfg.IndieAuth.RotationMode == "" {
		cfg.IndieAuth.RotationMode = RotationRotate
	}

	if cfg.WebMention == nil {
		cfg.WebMention = &WebMentionConfig{}
	}
	if cfg.WebMention.DeliveryRetries == 0 {
		cfg.WebMention.DeliveryRetries = 3
	}
	if cfg.WebMention.DeliveryBackoff == 0 {
		cfg.WebMention.DeliveryBackoff = time.Second
	}
	if cfg.WebMention.FetchTimeout == 0 {
		cfg.WebMention.FetchTimeout = 30 * time.Second
	}

	if cfg.WebSub == nil {
		cfg.WebSub = &WebSubConfig{}
	}
	if cfg.WebSub.MaxLease == 0 {
		cfg.WebSub.MaxLease = 365 * 24 * time.Hour
	}
	if cfg.WebSub.DefaultLease == 0 || cfg.WebSub.DefaultLease > cfg.WebSub.MaxLease {
		cfg.WebSub.DefaultLease = cfg.WebSub.MaxLease
	}
	if cfg.WebSub.DeliveryTimeout == 0 {
		cfg.WebSub.DeliveryTimeout = 30 * time.Second
	}

	if cfg.Site != nil && cfg.Site.FeedPath == "" {
		cfg.Site.FeedPath = "/feed"
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
