package providers

import "fmt"

// CredentialError means an API key or model identifier was rejected
// before or during the preflight health check.
type CredentialError struct {
	Provider string
	Model    string
	Err      error
}

func (e *CredentialError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("%s credentials rejected for model %q: %v", e.Provider, e.Model, e.Err)
	}
	return fmt.Sprintf("%s credentials rejected: %v", e.Provider, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// CallError means a completion call failed after credentials were
// accepted: transport, quota, or model-side failure.
type CallError struct {
	Provider string
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }
