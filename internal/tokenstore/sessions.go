package tokenstore

import (
	"context"
	"errors"
)

// SubjectHasSession reports whether the subject has at least one live
// refresh session. This is the liveness gate the gateway runs per request.
//
// It scans every live refresh entry, which is O(n) in live sessions. Fine at
// the scale this deployment assumes; a subject-indexed layout is the known
// fix if session counts grow.
func SubjectHasSession(ctx context.Context, s Store, subject string) (bool, error) {
	keys, err := s.Keys(ctx, PrefixRefresh)
	if err != nil {
		return false, err
	}

	for _, key := range keys {
		value, err := s.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Expired between the scan and the read.
				continue
			}
			return false, err
		}
		if value == subject {
			return true, nil
		}
	}

	return false, nil
}

// DeleteSessionForSubject removes the first live refresh entry belonging to
// the subject and reports whether one was found. Logout semantics are "drop
// one session", not "drop all": a subject logged in on several devices keeps
// the other sessions.
func DeleteSessionForSubject(ctx context.Context, s Store, subject string) (bool, error) {
	keys, err := s.Keys(ctx, PrefixRefresh)
	if err != nil {
		return false, err
	}

	for _, key := range keys {
		value, err := s.Get(ctx, key)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return false, err
		}
		if value != subject {
			continue
		}
		if err := s.Delete(ctx, key); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}
