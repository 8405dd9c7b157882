// Package adapter puts the three analysis capabilities on top of a provider
// transport. Each adapter owns one provider, one model and one prompt set;
// every failure is returned as an error-carrying analysis.Result.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jdgilhuly/go_text_analyzer/pkg/analysis"
	"github.com/jdgilhuly/go_text_analyzer/pkg/logging"
	"github.com/jdgilhuly/go_text_analyzer/pkg/prompt"
	"github.com/jdgilhuly/go_text_analyzer/pkg/provider"
)

// Adapter is the capability interface every provider exposes.
type Adapter interface {
	// Name returns the provider's display name, e.g. "Claude".
	Name() string
	// Supports reports whether the capability is enabled for this adapter.
	Supports(c analysis.Capability) bool

	AnalyzeSentiment(ctx context.Context, text string) analysis.Result
	AnalyzeNER(ctx context.Context, text string) analysis.Result
	AnalyzeClassification(ctx context.Context, text string) analysis.Result
}

// Settings are the sampling parameters sent with each request. A zero
// MaxTokens and a nil Temperature are left out of the payload.
type Settings struct {
	MaxTokens   int
	Temperature *float64
}

// Option configures a ChatAdapter.
type Option func(*options)

type options struct {
	httpClient   *http.Client
	baseURL      string
	prompts      *prompt.Set
	settings     Settings
	capabilities []analysis.Capability
	logger       *zap.Logger
	now          func() time.Time
}

// WithHTTPClient sets the HTTP client used by the provider transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL overrides the provider's API base URL.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithPrompts sets the prompt set. The built-in prompts are used otherwise.
func WithPrompts(s *prompt.Set) Option {
	return func(o *options) { o.prompts = s }
}

// WithSettings sets the sampling parameters.
func WithSettings(s Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithCapabilities restricts the adapter to the given capabilities. With no
// call, all capabilities are enabled.
func WithCapabilities(cs ...analysis.Capability) Option {
	return func(o *options) { o.capabilities = cs }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the time source used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// ChatAdapter implements Adapter over any provider.Provider.
type ChatAdapter struct {
	name     string
	provider provider.Provider
	model    string
	prompts  *prompt.Set
	settings Settings
	enabled  map[analysis.Capability]bool
	logger   *zap.Logger
	now      func() time.Time
}

// New returns an adapter named name that sends requests for model through p.
func New(name string, p provider.Provider, model string, opts ...Option) (*ChatAdapter, error) {
	o := collect(opts)
	return newChatAdapter(name, p, model, o)
}

func collect(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newChatAdapter(name string, p provider.Provider, model string, o *options) (*ChatAdapter, error) {
	if p == nil {
		return nil, fmt.Errorf("adapter %s: nil provider", name)
	}
	if model == "" {
		return nil, fmt.Errorf("adapter %s: model is required", name)
	}

	prompts := o.prompts
	if prompts == nil {
		var err error
		if prompts, err = prompt.Defaults(); err != nil {
			return nil, fmt.Errorf("adapter %s: %w", name, err)
		}
	}

	a := &ChatAdapter{
		name:     name,
		provider: p,
		model:    model,
		prompts:  prompts,
		settings: o.settings,
		logger:   logging.OrNop(o.logger).With(zap.String("provider", name)),
		now:      o.now,
	}
	if a.now == nil {
		a.now = time.Now
	}
	if len(o.capabilities) > 0 {
		a.enabled = make(map[analysis.Capability]bool, len(o.capabilities))
		for _, c := range o.capabilities {
			a.enabled[c] = true
		}
	}
	return a, nil
}

// Name returns the adapter's display name.
func (a *ChatAdapter) Name() string { return a.name }

// Model returns the model the adapter requests.
func (a *ChatAdapter) Model() string { return a.model }

// Supports reports whether c is enabled.
func (a *ChatAdapter) Supports(c analysis.Capability) bool {
	if a.enabled == nil {
		return c >= analysis.Sentiment && c <= analysis.Classification
	}
	return a.enabled[c]
}

// AnalyzeSentiment returns the positive/neutral/negative breakdown of text.
func (a *ChatAdapter) AnalyzeSentiment(ctx context.Context, text string) analysis.Result {
	return a.Analyze(ctx, analysis.Sentiment, text)
}

// AnalyzeNER returns the named entities found in text.
func (a *ChatAdapter) AnalyzeNER(ctx context.Context, text string) analysis.Result {
	return a.Analyze(ctx, analysis.NER, text)
}

// AnalyzeClassification returns the categories text belongs to.
func (a *ChatAdapter) AnalyzeClassification(ctx context.Context, text string) analysis.Result {
	return a.Analyze(ctx, analysis.Classification, text)
}

// Analyze runs capability c against text: it renders the prompt pair, makes
// one provider call and decodes the reply.
func (a *ChatAdapter) Analyze(ctx context.Context, c analysis.Capability, text string) analysis.Result {
	if !a.Supports(c) {
		return analysis.Failure(c, &analysis.UnsupportedCapabilityError{Provider: a.name, Capability: c.String()})
	}

	system, user, err := a.prompts.Render(c, text)
	if err != nil {
		return analysis.Failure(c, fmt.Errorf("rendering prompt: %w", err))
	}

	req := &provider.Request{
		Model:       a.model,
		System:      system,
		Messages:    []provider.Message{{Role: "user", Content: user}},
		Temperature: a.settings.Temperature,
		MaxTokens:   a.settings.MaxTokens,
	}

	resp, err := a.provider.Complete(ctx, req)
	if err != nil {
		terr := a.transportError(err)
		a.logger.Debug("provider call failed",
			zap.String("capability", c.Slug()),
			zap.Error(terr))
		return analysis.Failure(c, terr)
	}

	model := resp.Model
	if model == "" {
		model = a.model
	}
	usage := &analysis.Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}

	r, err := analysis.Decode(c, resp.Content)
	if err != nil {
		a.logger.Debug("reply did not decode",
			zap.String("capability", c.Slug()),
			zap.Error(err))
		r = analysis.Failure(c, err)
		r.Model, r.Usage = model, usage
		return r
	}

	r.Stamp(a.now())
	r.Model, r.Usage = model, usage
	return r
}

// transportError wraps a provider failure, lifting the HTTP status out of a
// provider.StatusError when there is one.
func (a *ChatAdapter) transportError(err error) error {
	var se *provider.StatusError
	if errors.As(err, &se) {
		return &analysis.TransportError{Provider: a.name, StatusCode: se.StatusCode, Err: errors.New(se.Message)}
	}
	return &analysis.TransportError{Provider: a.name, Err: err}
}
