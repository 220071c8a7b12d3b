// Package apperr holds the error taxonomy shared by dispatch, storage and the API.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNoPhone = errors.New("recipient has no phone number")

// ConfigError reports missing or contradictory configuration. It is raised
// before any network call.
type ConfigError struct {
	Section  string
	Required []string
	Missing  []string
	Reason   string
}

// IsMissing reports whether key is among the missing keys.
func (e *ConfigError) IsMissing(key string) bool {
	for _, m := range e.Missing {
		if m == key {
			return true
		}
	}
	return false
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Section != "" {
		b.WriteString(" ")
		b.WriteString(e.Section)
	}
	if len(e.Missing) > 0 {
		b.WriteString(": missing ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// RepositoryError reports a reminder source that could not be read or parsed.
type RepositoryError struct {
	Path string
	Err  error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Path, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// Provider failure stages.
const (
	StageConnect = "connect"
	StageSend    = "send"
)

// ProviderError reports a failed call to an SMS or mail provider.
type ProviderError struct {
	Provider   string
	Stage      string
	StatusCode int
	Code       int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s failed", e.Provider, e.Stage)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d", e.StatusCode)
		if e.Code != 0 {
			fmt.Fprintf(&b, ", code %d", e.Code)
		}
		b.WriteString(")")
	}
	switch {
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }
