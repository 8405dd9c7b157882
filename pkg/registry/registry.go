// Package registry dispatches analysis calls to provider adapters by name.
// A Registry is built once at startup and then only read.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jdgilhuly/go_text_analyzer/pkg/adapter"
	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
	"github.com/jdgilhuly/go_text_analyzer/pkg/config"
	"github.com/jdgilhuly/go_text_analyzer/pkg/logging"
	"github.com/jdgilhuly/go_text_analyzer/pkg/prompt"
	"github.com/jdgilhuly/go_text_analyzer/pkg/provider"
)

// ErrEmptyText is reported for empty or whitespace-only input.
var ErrEmptyText = errors.New("text must not be empty")

// Registry holds one adapter per provider name.
type Registry struct {
	adapters map[string]adapter.Adapter
	names    []string
	logger   *zap.Logger
}

// New returns a registry over the given adapters. Names are matched
// case-insensitively and must be unique.
func New(logger *zap.Logger, adapters ...adapter.Adapter) (*Registry, error) {
	r := &Registry{
		adapters: make(map[string]adapter.Adapter, len(adapters)),
		logger:   logging.OrNop(logger),
	}
	for _, a := range adapters {
		key := strings.ToLower(a.Name())
		if _, dup := r.adapters[key]; dup {
			return nil, fmt.Errorf("duplicate adapter %q", a.Name())
		}
		r.adapters[key] = a
		r.names = append(r.names, a.Name())
		r.logger.Debug("adapter registered", zap.String("provider", a.Name()))
	}
	return r, nil
}

// FromConfig builds the four provider adapters from cfg. Any problem is a
// *analysis.ConfigError. Extra options are applied to every adapter after
// the configured ones.
func FromConfig(cfg *config.Config, logger *zap.Logger, opts ...adapter.Option) (*Registry, error) {
	prompts, err := prompt.LoadSet(cfg.AnalysisSettings.PromptsDir)
	if err != nil {
		return nil, &analysis.ConfigError{Err: fmt.Errorf("loading prompts: %w", err)}
	}

	settings := adapter.Settings{
		MaxTokens:   cfg.ModelSettings.MaxTokens,
		Temperature: provider.Float64(cfg.ModelSettings.Temperature),
	}

	adapters := make([]adapter.Adapter, 0, len(config.Services))
	for _, svc := range config.Services {
		pc, ok := cfg.APIKeys[svc]
		if !ok {
			return nil, &analysis.ConfigError{Err: fmt.Errorf("api_keys.%s: missing configuration", svc)}
		}
		key, err := cfg.ResolveAPIKey(svc)
		if err != nil {
			return nil, &analysis.ConfigError{Err: err}
		}

		aopts := []adapter.Option{adapter.WithPrompts(prompts), adapter.WithLogger(logger)}
		if pc.BaseURL != "" {
			aopts = append(aopts, adapter.WithBaseURL(pc.BaseURL))
		}
		if len(pc.Capabilities) > 0 {
			caps := make([]analysis.Capability, 0, len(pc.Capabilities))
			for _, name := range pc.Capabilities {
				c, err := analysis.ParseCapability(name)
				if err != nil {
					return nil, &analysis.ConfigError{Err: fmt.Errorf("api_keys.%s.capabilities: %w", svc, err)}
				}
				caps = append(caps, c)
			}
			aopts = append(aopts, adapter.WithCapabilities(caps...))
		}

		var a *adapter.ChatAdapter
		switch svc {
		case config.ServiceClaude:
			aopts = append(aopts, adapter.WithSettings(settings))
			a, err = adapter.NewClaude(key, pc.Model, append(aopts, opts...)...)
		case config.ServiceOpenAI:
			aopts = append(aopts, adapter.WithSettings(settings))
			a, err = adapter.NewChatGPT(key, pc.Model, append(aopts, opts...)...)
		case config.ServiceSonar:
			a, err = adapter.NewSonar(key, pc.Model, append(aopts, opts...)...)
		case config.ServiceXAI:
			a, err = adapter.NewXAI(key, pc.Model, append(aopts, opts...)...)
		}
		if err != nil {
			return nil, &analysis.ConfigError{Err: err}
		}
		adapters = append(adapters, a)
	}

	r, err := New(logger, adapters...)
	if err != nil {
		return nil, &analysis.ConfigError{Err: err}
	}
	return r, nil
}

// Names returns the registered provider names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the adapter registered under name, case-insensitively.
func (r *Registry) Get(name string) (adapter.Adapter, bool) {
	a, ok := r.adapters[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// Analyze runs one analysis and always returns a Result; failures are
// reported in Result.Error with the capability's empty default filled in.
func (r *Registry) Analyze(ctx context.Context, providerName, capability, text string) (res analysis.Result) {
	start := time.Now()
	c, capErr := analysis.ParseCapability(capability)

	fields := []zap.Field{zap.String("provider", providerName), zap.String("capability", capability)}
	defer func() {
		if p := recover(); p != nil {
			res = analysis.Failure(c, fmt.Errorf("Analysis failed: %v", p))
			r.logger.Error("adapter panicked", append(fields, zap.Any("panic", p))...)
		}
		r.logResult(fields, res, time.Since(start))
	}()

	a, ok := r.Get(providerName)
	if !ok {
		return fail(c, &analysis.UnknownProviderError{Name: providerName})
	}
	if capErr != nil {
		return analysis.Result{Error: capErr.Error()}
	}
	if strings.TrimSpace(text) == "" {
		return analysis.Failure(c, ErrEmptyText)
	}
	if !a.Supports(c) {
		return analysis.Failure(c, &analysis.UnsupportedCapabilityError{Provider: a.Name(), Capability: c.String()})
	}

	switch c {
	case analysis.Sentiment:
		return a.AnalyzeSentiment(ctx, text)
	case analysis.NER:
		return a.AnalyzeNER(ctx, text)
	default:
		return a.AnalyzeClassification(ctx, text)
	}
}

// fail builds a failure result, with a default only when c is known.
func fail(c analysis.Capability, err error) analysis.Result {
	if c == 0 {
		return analysis.Result{Error: err.Error()}
	}
	return analysis.Failure(c, err)
}

func (r *Registry) logResult(fields []zap.Field, res analysis.Result, d time.Duration) {
	fields = append(fields, zap.Duration("duration", d))
	if res.Usage != nil {
		fields = append(fields,
			zap.Int("input_tokens", res.Usage.InputTokens),
			zap.Int("output_tokens", res.Usage.OutputTokens))
	}
	if !res.OK() {
		r.logger.Warn("analysis failed", append(fields, zap.String("error", res.Error))...)
		return
	}
	r.logger.Info("analysis complete", fields...)
}
