package config_test

import (
	"testing"

	"github.com/makt28/kumamail/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePort(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"587", "25", "465", "1", "65535"} {
		assert.NoError(t, config.ValidatePort(v), v)
	}
	for _, v := range []string{"0", "65536", "abc", "587x", "", "-1", " 587"} {
		err := config.ValidatePort(v)
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "between 1 and 65535")
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	assert.NoError(t, config.ValidateEmail("a@b.com"))
	assert.NoError(t, config.ValidateEmail("first.last+tag@mail.example.org"))

	for _, v := range []string{"a@b", "a@@b.com", "notanemail", "a b@c.com", ""} {
		assert.Error(t, config.ValidateEmail(v), v)
	}
}

func TestValidateSender(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "bare address", value: "alerts@example.com"},
		{name: "display name", value: "'Uptime Kuma' <alerts@example.com>"},
		{name: "display name without domain dot", value: "'Kuma' <alerts@example>", wantErr: true},
		{name: "double quoted name", value: "\"Kuma\" <alerts@example.com>", wantErr: true},
		{name: "garbage", value: "kuma", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.ValidateSender(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	err := config.ValidateSender("'Kuma' <bad>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'Sender Name' <email@address>")
}

func TestValidateEmails(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.ValidateEmails("a@b.com, c@d.com"))
	assert.Equal(t, []string{"a@b.com", "c@d.com"}, config.SplitAddresses("a@b.com, c@d.com"))

	err := config.ValidateEmails("a@b.com, bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.NotContains(t, err.Error(), "a@b.com")

	assert.Error(t, config.ValidateEmails("a@b.com,"))
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	assert.Error(t, config.ValidateToken("short"))
	assert.NoError(t, config.ValidateToken("longenough1"))
	assert.NoError(t, config.ValidateToken("12345678"))
}

func TestSplitAddresses(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a@x.com", "b@x.com"}, config.SplitAddresses(" a@x.com ,, b@x.com, "))
	assert.Empty(t, config.SplitAddresses(""))
}
