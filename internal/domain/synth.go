package domain

import (
	"errors"
	"fmt"
)

// VersionStatusFailed is the backend status of a version that will never render
const VersionStatusFailed = "failed"

// ChatVersion is the latest generated revision of a chat
type ChatVersion struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	DemoURL string `json:"demoUrl,omitempty"`
}

// Chat is an external generation session. It is only ever observed.
type Chat struct {
	ID            string       `json:"id"`
	Name          string       `json:"name,omitempty"`
	WebURL        string       `json:"webUrl"`
	LatestVersion *ChatVersion `json:"latestVersion,omitempty"`
}

// DemoURL returns the latest version's demo address, if any
func (c *Chat) DemoURL() string {
	if c == nil || c.LatestVersion == nil {
		return ""
	}
	return c.LatestVersion.DemoURL
}

// Failed reports whether the latest version failed to generate
func (c *Chat) Failed() bool {
	return c != nil && c.LatestVersion != nil && c.LatestVersion.Status == VersionStatusFailed
}

// Synthesis is a successfully generated live demo
type Synthesis struct {
	DemoURL string `json:"demoUrl"`
	ChatID  string `json:"chatId"`
	WebURL  string `json:"webUrl"`
}

// SynthesisState is a state of the synthesis polling machine
type SynthesisState string

const (
	SynthesisCreated   SynthesisState = "created"
	SynthesisPolling   SynthesisState = "polling"
	SynthesisSucceeded SynthesisState = "succeeded"
	SynthesisFailed    SynthesisState = "failed"
	SynthesisTimedOut  SynthesisState = "timed_out"
	// SynthesisAborted covers upstream errors before a terminal status was seen
	SynthesisAborted SynthesisState = "aborted"
)

// SynthesisError is returned when a session does not yield a demo URL.
// WebURL is the provider-hosted fallback and may be empty.
type SynthesisError struct {
	State    SynthesisState
	ChatID   string
	WebURL   string
	Attempts int
	Err      error
}

func (e *SynthesisError) Error() string {
	msg := fmt.Sprintf("synthesis %s after %d attempts", e.State, e.Attempts)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SynthesisError) Unwrap() []error {
	errs := []error{}
	switch e.State {
	case SynthesisFailed:
		errs = append(errs, ErrSynthesisFailed)
	case SynthesisTimedOut:
		errs = append(errs, ErrSynthesisTimeout)
	default:
		errs = append(errs, ErrAppGeneration)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// FallbackURL extracts the provider-hosted URL from a synthesis error chain
func FallbackURL(err error) string {
	var se *SynthesisError
	if errors.As(err, &se) {
		return se.WebURL
	}
	return ""
}
