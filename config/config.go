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

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port        int    `json:"port" yaml:"port"`
		MaxBodySize string `json:"maxBodySize" yaml:"maxBodySize"`
		Timeouts    struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Restaurant identity used in call scripts and notification emails.
	Restaurant RestaurantConfig `json:"restaurant" yaml:"restaurant"`

	// Dinodial is the outbound voice call provider.
	Dinodial DinodialConfig `json:"dinodial" yaml:"dinodial"`

	// Inference configures the transcript-extraction fallback model.
	Inference InferenceConfig `json:"inference" yaml:"inference"`

	SMTP SMTPConfig `json:"smtp" yaml:"smtp"`

	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`

	CompletionWait CompletionWaitConfig `json:"completionWait" yaml:"completionWait"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// RestaurantConfig carries restaurant identity for customer-facing text.
type RestaurantConfig struct {
	Name string `json:"name" yaml:"name"`
}

// DinodialConfig configures the voice call provider proxy.
type DinodialConfig struct {
	BaseURL     string        `json:"baseUrl" yaml:"baseUrl"`
	BearerToken string        `json:"bearerToken" yaml:"bearerToken"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
}

// InferenceConfig configures the LLM used as the extraction fallback.
type InferenceConfig struct {
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`
	APIKey  string `json:"apiKey" yaml:"apiKey"`
	Model   string `json:"model" yaml:"model"`

	// MaxConcurrent bounds in-flight fallback requests so scheduler
	// ticks are never starved by slow model calls.
	MaxConcurrent int64 `json:"maxConcurrent" yaml:"maxConcurrent"`

	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// SMTPConfig configures the reservation email transport.
type SMTPConfig struct {
	Host     string        `json:"host" yaml:"host"`
	Port     string        `json:"port" yaml:"port"`
	Username string        `json:"username" yaml:"username"`
	Password string        `json:"password" yaml:"password"`
	From     string        `json:"from" yaml:"from"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// SchedulerConfig configures the two recurring dispatch jobs.
type SchedulerConfig struct {
	ScanInterval   time.Duration `json:"scanInterval" yaml:"scanInterval"`
	NotifyInterval time.Duration `json:"notifyInterval" yaml:"notifyInterval"`

	// RecallCooldown is the minimum gap between recovery calls to the
	// same no-show customer.
	RecallCooldown time.Duration `json:"recallCooldown" yaml:"recallCooldown"`

	// CompletedCallsLimit caps the page size of the completed-calls
	// listing inspected by the notification job.
	CompletedCallsLimit int `json:"completedCallsLimit" yaml:"completedCallsLimit"`

	// ScanWorkers bounds per-tick customer fan-out.
	ScanWorkers int `json:"scanWorkers" yaml:"scanWorkers"`
}

// CompletionWaitConfig bounds the call completion poll loop.
type CompletionWaitConfig struct {
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`
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
			// Example: DINODIAL_BASEURL -> dinodial.baseUrl (not dinodial.baseurl)
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
	cfg.applyDefaults()

	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Scheduler.ScanInterval <= 0 {
		cfg.Scheduler.ScanInterval = 5 * time.Minute
	}
	if cfg.Scheduler.NotifyInterval <= 0 {
		cfg.Scheduler.NotifyInterval = 2 * time.Minute
	}
	if cfg.Scheduler.RecallCooldown <= 0 {
		cfg.Scheduler.RecallCooldown = 30 * time.Minute
	}
	if cfg.Scheduler.CompletedCallsLimit <= 0 {
		cfg.Scheduler.CompletedCallsLimit = 50
	}
	if cfg.Scheduler.ScanWorkers <= 0 {
		cfg.Scheduler.ScanWorkers = 4
	}
	if cfg.CompletionWait.Timeout <= 0 {
		cfg.CompletionWait.Timeout = 5 * time.Minute
	}
	if cfg.CompletionWait.PollInterval <= 0 {
		cfg.CompletionWait.PollInterval = 10 * time.Second
	}
	if cfg.Dinodial.Timeout <= 0 {
		cfg.Dinodial.Timeout = 30 * time.Second
	}
	if cfg.Inference.Timeout <= 0 {
		cfg.Inference.Timeout = 60 * time.Second
	}
	if cfg.Inference.MaxConcurrent <= 0 {
		cfg.Inference.MaxConcurrent = 2
	}
	if cfg.SMTP.Timeout <= 0 {
		cfg.SMTP.Timeout = 10 * time.Second
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
