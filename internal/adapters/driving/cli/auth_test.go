package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/custodia-labs/workplace-mcp/internal/adapters/driven/config/file"
)

func runAuth(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"auth", "set-token"}, args...))
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestAuthSetToken(t *testing.T) {
	t.Run("stores a notion token", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("WORKPLACE_MCP_CONFIG_DIR", dir)

		out, err := runAuth(t, "secret_abc\n", "notion")
		require.NoError(t, err)
		assert.Contains(t, out, "Stored notion token")

		store, err := configfile.NewStore(dir)
		require.NoError(t, err)
		assert.Equal(t, "secret_abc", store.Config().Notion.Token)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := runAuth(t, "tok\n", "sharepoint")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown source")
	})

	t.Run("gdrive is rejected", func(t *testing.T) {
		_, err := runAuth(t, "tok\n", "gdrive")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OAuth token file")
	})
}
