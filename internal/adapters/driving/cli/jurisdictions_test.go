package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJurisdictionsCmd_ServiceNotConfigured(t *testing.T) {
	_, err := executeCommand("jurisdictions")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "adapter registry not configured")
}

func TestJurisdictionsCmd_Text(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("jurisdictions")

	require.NoError(t, err)
	assert.Contains(t, out, "United Kingdom")
	assert.Contains(t, out, "coverage 2012-present, [index], 2 indexed")
	assert.Contains(t, out, "Lobbyregister")
	assert.Contains(t, out, "coverage last 12 months, [live]")
}

func TestJurisdictionsCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("jurisdictions", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": "uk"`)
	assert.Contains(t, out, `"supports_live_search": true`)
}
