package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	configfile "github.com/custodia-labs/workplace-mcp/internal/adapters/driven/config/file"
	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage provider credentials",
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token <source>",
	Short: "Store an API token for a source",
	Long: `Store an API token for a workplace source in the config file.

The token is read from stdin with echo disabled, so it never appears in
shell history or process listings. Sources: notion, slack, confluence.

The Google Drive source uses an OAuth token file instead; point
GOOGLE_TOKEN_PATH (or [google] token_path) at it.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthSetToken,
}

func init() {
	authCmd.AddCommand(authSetTokenCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthSetToken(cmd *cobra.Command, args []string) error {
	kind, err := domain.ParseProviderKind(args[0])
	if err != nil {
		return fmt.Errorf("unknown source %q (expected notion, slack or confluence)", args[0])
	}
	if kind == domain.ProviderGoogleDrive {
		return fmt.Errorf("google drive uses an OAuth token file; set GOOGLE_TOKEN_PATH instead")
	}

	token, err := readSecret(cmd, fmt.Sprintf("Token for %s: ", kind))
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("empty token")
	}

	store, err := configfile.NewStore(os.Getenv("WORKPLACE_MCP_CONFIG_DIR"))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	err = store.Update(func(cfg *configfile.Config) {
		switch kind {
		case domain.ProviderNotion:
			cfg.Notion.Token = token
		case domain.ProviderSlack:
			cfg.Slack.Token = token
		case domain.ProviderConfluence:
			cfg.Confluence.Token = token
		}
	})
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	cmd.Printf("Stored %s token in %s\n", kind, store.Path())
	return nil
}

// readSecret reads a line without echo when stdin is a terminal, and
// falls back to a plain read when input is piped.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		var line string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
			return "", fmt.Errorf("reading token: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	cmd.PrintErr(prompt)
	secret, err := term.ReadPassword(fd)
	cmd.PrintErrln()
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(string(secret)), nil
}
