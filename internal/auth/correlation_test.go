package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/edustack/coursegate/internal/events"
	"github.com/edustack/coursegate/internal/tokenstore/drivers/memory"
	"github.com/stretchr/testify/require"
)

func newCorrelationService() (*CorrelationService, *events.Recorder) {
	recorder := &events.Recorder{}
	svc := &CorrelationService{
		Store:     memory.NewStore(),
		Publisher: recorder,
	}
	return svc, recorder
}

func samplePayload() SignupPayload {
	return SignupPayload{
		FirstName:   "Alice",
		LastName:    "Nguyen",
		Email:       "a@b.com",
		PhoneNumber: "+61400000000",
		Password:    "plaintext-until-redeemed",
	}
}

func TestBeginSignupPublishesEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, recorder := newCorrelationService()

	token, err := svc.BeginSignup(ctx, samplePayload())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	msg, ok := recorder.LastVerification()
	require.True(t, ok)
	require.Equal(t, "a@b.com", msg.Email)
	require.Equal(t, token, msg.Token)
}

func TestRedeemSignupIsSingleUse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newCorrelationService()

	token, err := svc.BeginSignup(ctx, samplePayload())
	require.NoError(t, err)

	got, err := svc.RedeemSignup(ctx, token)
	require.NoError(t, err)
	require.Equal(t, samplePayload(), got)

	// Immediately redeeming again must fail: no replay.
	_, err = svc.RedeemSignup(ctx, token)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRedeemSignupUnknownToken(t *testing.T) {
	t.Parallel()
	svc, _ := newCorrelationService()

	_, err := svc.RedeemSignup(context.Background(), "nope")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestConcurrentRedeemExactlyOneWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newCorrelationService()

	token, err := svc.BeginSignup(ctx, samplePayload())
	require.NoError(t, err)

	const redeemers = 16
	var wg sync.WaitGroup
	errs := make(chan error, redeemers)

	for range redeemers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RedeemSignup(ctx, token)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins int
	for err := range errs {
		if err == nil {
			wins++
		} else {
			require.True(t, errors.Is(err, ErrTokenNotFound), "unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, wins)
}

func TestResetFlow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, recorder := newCorrelationService()

	token, err := svc.BeginReset(ctx, "alice@example.com")
	require.NoError(t, err)

	msg, ok := recorder.LastReset()
	require.True(t, ok)
	require.Equal(t, "alice@example.com", msg.Email)
	require.Equal(t, token, msg.Token)

	email, err := svc.RedeemReset(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", email)

	_, err = svc.RedeemReset(ctx, token)
	require.ErrorIs(t, err, ErrTokenNotFound)
}
