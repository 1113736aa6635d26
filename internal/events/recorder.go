package events

import (
	"context"
	"sync"
)

// Recorder is an in-process Publisher that remembers everything published.
// Tests use it in place of the rabbit driver.
type Recorder struct {
	mu            sync.Mutex
	Verifications []VerificationMessage
	Resets        []ResetMessage
}

var _ Publisher = (*Recorder)(nil)

func (r *Recorder) PublishVerification(_ context.Context, msg VerificationMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Verifications = append(r.Verifications, msg)
	return nil
}

func (r *Recorder) PublishReset(_ context.Context, msg ResetMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Resets = append(r.Resets, msg)
	return nil
}

// LastVerification returns the most recent verification message, if any.
func (r *Recorder) LastVerification() (VerificationMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Verifications) == 0 {
		return VerificationMessage{}, false
	}
	return r.Verifications[len(r.Verifications)-1], true
}

// LastReset returns the most recent reset message, if any.
func (r *Recorder) LastReset() (ResetMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Resets) == 0 {
		return ResetMessage{}, false
	}
	return r.Resets[len(r.Resets)-1], true
}
