package token

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/clock"
)

func TestIssueAndParse(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer("test-secret", time.Hour, fake)

	userID := node.Generate()
	raw, err := issuer.Issue(userID, "alice@example.com")
	require.NoError(t, err)

	parsedID, claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, userID, parsedID)
	require.Equal(t, "alice@example.com", claims.Email)
}

func TestParseRejectsExpired(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer("test-secret", time.Hour, fake)

	raw, err := issuer.Issue(node.Generate(), "alice@example.com")
	require.NoError(t, err)

	fake.Advance(2 * time.Hour)
	_, _, err = issuer.Parse(raw)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	raw, err := NewIssuer("secret-a", time.Hour, fake).Issue(node.Generate(), "a@example.com")
	require.NoError(t, err)

	_, _, err = NewIssuer("secret-b", time.Hour, fake).Parse(raw)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = NewIssuer("secret-a", time.Hour, fake).Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
