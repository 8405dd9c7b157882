package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
)

// Service keys under api_keys, in display order.
const (
	ServiceClaude = "claude"
	ServiceOpenAI = "openai"
	ServiceSonar  = "sonar"
	ServiceXAI    = "xai"
)

// Services lists every service that must be configured.
var Services = []string{ServiceClaude, ServiceOpenAI, ServiceSonar, ServiceXAI}

// DisplayNames maps service keys to the provider names users select.
var DisplayNames = map[string]string{
	ServiceClaude: "Claude",
	ServiceOpenAI: "ChatGPT",
	ServiceSonar:  "Sonar",
	ServiceXAI:    "xAI",
}

// Config holds the top-level analyzer configuration.
type Config struct {
	APIKeys          map[string]ProviderConfig `yaml:"api_keys" validate:"required,dive"`
	ModelSettings    ModelSettings             `yaml:"model_settings"`
	AnalysisSettings AnalysisSettings          `yaml:"analysis_settings"`
	OutputSettings   OutputSettings            `yaml:"output_settings"`
	Logging          LoggingConfig             `yaml:"logging"`
}

// ProviderConfig holds credentials and model selection for one service.
// The API key is taken from Key, or from the environment variable named by
// APIKeyEnv.
type ProviderConfig struct {
	Key          string   `yaml:"key" validate:"required_without=APIKeyEnv"`
	APIKeyEnv    string   `yaml:"api_key_env"`
	Model        string   `yaml:"model" validate:"required"`
	BaseURL      string   `yaml:"base_url" validate:"omitempty,url"`
	Capabilities []string `yaml:"capabilities"`
}

// ModelSettings are sampling parameters for providers that accept them.
type ModelSettings struct {
	MaxTokens   int     `yaml:"max_tokens" validate:"gte=1"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
}

// AnalysisSettings controls prompt selection.
type AnalysisSettings struct {
	PromptsDir string `yaml:"prompts_dir"`
}

// OutputSettings controls how results are rendered and saved.
type OutputSettings struct {
	Dir    string `yaml:"dir" validate:"required"`
	Format string `yaml:"format" validate:"oneof=text json"`
	Color  bool   `yaml:"color"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Default returns a Config populated with sensible defaults. It has no
// providers and therefore does not validate on its own.
func Default() *Config {
	return &Config{
		APIKeys: make(map[string]ProviderConfig),
		ModelSettings: ModelSettings{
			MaxTokens:   1000,
			Temperature: 0,
		},
		OutputSettings: OutputSettings{
			Dir:    "results/",
			Format: "text",
			Color:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads and parses a YAML config file at the given path.
// It returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadEnv loads .env files from the config file's directory and the working
// directory, if present. Variables already set in the environment win.
func LoadEnv(configPath string) error {
	candidates := []string{filepath.Join(filepath.Dir(configPath), ".env"), ".env"}
	seen := make(map[string]bool)
	for _, p := range candidates {
		abs, err := filepath.Abs(p)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true

		if _, err := os.Stat(abs); err != nil {
			continue
		}
		if err := godotenv.Load(abs); err != nil {
			return fmt.Errorf("loading %s: %w", abs, err)
		}
	}
	return nil
}

// ResolveAPIKey returns the API key for the named service: the literal key
// if set, else the value of its api_key_env variable.
func (c *Config) ResolveAPIKey(service string) (string, error) {
	p, ok := c.APIKeys[service]
	if !ok {
		return "", fmt.Errorf("service %q not found in config", service)
	}
	if p.Key != "" {
		return p.Key, nil
	}
	if p.APIKeyEnv == "" {
		return "", fmt.Errorf("service %q has no key or api_key_env configured", service)
	}
	key := os.Getenv(p.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("environment variable %s for service %q is not set", p.APIKeyEnv, service)
	}
	return key, nil
}

// Validate checks the config for required fields and resolvable API keys.
// All problems are reported together in a single *analysis.ConfigError.
func (c *Config) Validate() error {
	var errs []error

	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &analysis.ConfigError{Err: err}
		}
		for _, fe := range verrs {
			errs = append(errs, describe(fe))
		}
	}

	for _, service := range Services {
		if _, ok := c.APIKeys[service]; !ok {
			errs = append(errs, fmt.Errorf("api_keys.%s: missing configuration", service))
			continue
		}
		if _, err := c.ResolveAPIKey(service); err != nil {
			errs = append(errs, fmt.Errorf("api_keys.%s: %w", service, err))
		}
	}

	for service, p := range c.APIKeys {
		if _, known := DisplayNames[service]; !known {
			errs = append(errs, fmt.Errorf("api_keys.%s: unknown service", service))
		}
		for _, name := range p.Capabilities {
			if _, err := analysis.ParseCapability(name); err != nil {
				errs = append(errs, fmt.Errorf("api_keys.%s.capabilities: %w", service, err))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &analysis.ConfigError{Err: errors.Join(errs...)}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// describe turns a validator failure into a message keyed by YAML path.
func describe(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	field = strings.ReplaceAll(field, "][", ".")
	field = strings.NewReplacer("[", ".", "]", "").Replace(field)

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "required_without":
		return fmt.Errorf("%s: key or api_key_env is required", field)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "url":
		return fmt.Errorf("%s must be a valid URL, got %q", field, fe.Value())
	case "gte":
		return fmt.Errorf("%s must be >= %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Errorf("%s must be <= %s, got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s failed %q validation", field, fe.Tag())
	}
}
