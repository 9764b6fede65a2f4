package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPCmd_HasServeSubcommand(t *testing.T) {
	var found bool
	for _, c := range mcpCmd.Commands() {
		if c.Name() == "serve" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestMCPServeCmd_HasPortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestMCPServeCmd_RequiresResolver(t *testing.T) {
	_, err := executeCommand("mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolver")
}

func TestMCPServeCmd_HostFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("host")
	require.NotNil(t, flag)
	assert.Equal(t, "127.0.0.1", flag.DefValue)
}
