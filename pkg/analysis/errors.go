package analysis

import (
	"fmt"
	"net/http"
)

// ConfigError reports invalid or incomplete configuration. It is only
// produced at startup and is fatal.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// TransportError reports a failed provider call: a network failure or a
// non-2xx response. StatusCode is zero when no response was received.
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (%d %s): %v",
			e.Provider, e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a reply that is not valid JSON after cleanup, or that
// does not match the capability's schema.
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string { return "parsing response: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// UnsupportedCapabilityError reports an unknown analysis type, or one the
// named provider has been configured not to serve.
type UnsupportedCapabilityError struct {
	Provider   string
	Capability string
}

func (e *UnsupportedCapabilityError) Error() string {
	if e.Provider == "" {
		return "Unknown analysis type: " + e.Capability
	}
	return fmt.Sprintf("%s is not supported by %s", e.Capability, e.Provider)
}

// UnknownProviderError reports a provider name with no registered adapter.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("API client %s not implemented", e.Name)
}
