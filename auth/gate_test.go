package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateStartsUnknown(t *testing.T) {
	g := NewGate()
	assert.Equal(t, StateUnknown, g.State())
	assert.Nil(t, g.Identity())
}

func TestGateResolve(t *testing.T) {
	t.Run("restored session", func(t *testing.T) {
		g := NewGate()
		id := &Identity{UserID: "1", Email: "lab@example.com"}
		require.NoError(t, g.Resolve(id))
		assert.Equal(t, StateAuthenticated, g.State())
		assert.Equal(t, id, g.Identity())
	})

	t.Run("no session", func(t *testing.T) {
		g := NewGate()
		require.NoError(t, g.Resolve(nil))
		assert.Equal(t, StateUnauthenticated, g.State())
	})

	t.Run("only once", func(t *testing.T) {
		g := NewGate()
		require.NoError(t, g.Resolve(nil))
		err := g.Resolve(&Identity{UserID: "1"})
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, StateUnauthenticated, g.State())
	})
}

func TestGateSignInAndOut(t *testing.T) {
	g := NewGate()
	assert.ErrorIs(t, g.SignedIn(&Identity{UserID: "1"}), ErrInvalidTransition, "sign-in before resolve")

	require.NoError(t, g.Resolve(nil))
	_, err := g.SignOut()
	assert.ErrorIs(t, err, ErrInvalidTransition, "sign-out while unauthenticated")

	id := &Identity{UserID: "7"}
	require.NoError(t, g.SignedIn(id))
	assert.Equal(t, StateAuthenticated, g.State())
	assert.ErrorIs(t, g.SignedIn(id), ErrInvalidTransition, "double sign-in")

	left, err := g.SignOut()
	require.NoError(t, err)
	assert.Equal(t, id, left)
	assert.Equal(t, StateUnauthenticated, g.State())
	assert.Nil(t, g.Identity())
}

func TestGateSignedInRequiresIdentity(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.Resolve(nil))
	assert.ErrorIs(t, g.SignedIn(nil), ErrInvalidTransition)
	assert.Equal(t, StateUnauthenticated, g.State())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Reason
	}{
		{"invalid credential", ErrInvalidCredential, ReasonInvalidCredential},
		{"rate limited", ErrRateLimited, ReasonRateLimited},
		{"wrapped", errWrap(ErrRateLimited), ReasonRateLimited},
		{"anything else", assert.AnError, ReasonOther},
		{"disabled", ErrSignInDisabled, ReasonOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Classify(tt.err)
			assert.Equal(t, tt.want, f.Reason)
			assert.NotEmpty(t, f.Message)
		})
	}
}
