package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"ADMIN", RoleAdmin, false},
		{"USER", RoleUser, false},
		{"admin", RoleAdmin, false},
		{" user ", RoleUser, false},
		{"", "", true},
		{"ROOT", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrUnknownRole, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		require.Equal(t, tt.want, got)
	}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	admin := Principal{Subject: "root@example.com", Role: RoleAdmin}
	user := Principal{Subject: "alice@example.com", Role: RoleUser}
	anonymous := Principal{}

	require.True(t, Authorize([]Role{RoleAdmin}, admin))
	require.False(t, Authorize([]Role{RoleAdmin}, user))
	require.True(t, Authorize([]Role{RoleAdmin, RoleUser}, user))

	// Empty requirement means "any authenticated principal".
	require.True(t, Authorize(nil, user))
	require.False(t, Authorize(nil, anonymous))

	// Anonymous never passes, even if the requirement list is broad.
	require.False(t, Authorize([]Role{RoleAdmin, RoleUser}, anonymous))
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, ok := PrincipalFromContext(ctx)
	require.False(t, ok)

	p := Principal{Subject: "alice@example.com", Role: RoleUser}
	ctx = ContextWithPrincipal(ctx, p)

	got, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, p, got)
}
