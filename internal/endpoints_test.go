package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/go-wrapblox/pkg/errors"
)

func TestEndpointTable_Defaults(t *testing.T) {
	table, err := NewEndpointTable(nil)
	require.NoError(t, err)

	base, err := table.Resolve(Users)
	require.NoError(t, err)
	assert.Equal(t, "https://users.roblox.com/v1", base)

	base, err = table.Resolve(GroupsV2)
	require.NoError(t, err)
	assert.Equal(t, "https://groups.roblox.com/v2", base)

	assert.Len(t, table.Names(), 20)
}

func TestEndpointTable_UnknownGroup(t *testing.T) {
	table, err := NewEndpointTable(nil)
	require.NoError(t, err)

	_, err = table.Resolve("Nope")
	var cfgErr *pkgerrs.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "apiGroup", cfgErr.Field)
	assert.Contains(t, cfgErr.Message, "Nope")
}

func TestEndpointTable_Overrides(t *testing.T) {
	table, err := NewEndpointTable(map[string]string{
		Users:  "http://127.0.0.1:9000/users/",
		"Echo": "https://echo.test",
	})
	require.NoError(t, err)

	base, err := table.Resolve(Users)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/users", base)

	base, err = table.Resolve("Echo")
	require.NoError(t, err)
	assert.Equal(t, "https://echo.test", base)

	base, err = table.Resolve(Badges)
	require.NoError(t, err)
	assert.Equal(t, "https://badges.roblox.com/v1", base)
}

func TestEndpointTable_InvalidOverride(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
	}{
		{name: "empty name", overrides: map[string]string{"": "https://x.test"}},
		{name: "not http", overrides: map[string]string{"X": "ftp://x.test"}},
		{name: "relative", overrides: map[string]string{"X": "/v1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEndpointTable(tt.overrides)
			var cfgErr *pkgerrs.ConfigurationError
			assert.ErrorAs(t, err, &cfgErr)
		})
	}
}
