package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reviewhub/cmd/cli/authentication"
	"reviewhub/cmd/cli/command/client"
)

var apiURL string

var rootCmd = &cobra.Command{
	Use:   "reviewhub",
	Short: "reviewhub - command line client for the reviewhub API",
	Long: `reviewhub talks to a reviewhub API server and manages its database.

With it you can:
- sign up and obtain an access token
- browse titles and read their reviews and comments
- post reviews and comments
- run schema migrations and promote users (needs DATABASE_URL)

Use "reviewhub [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("REVIEWHUB_API", "http://localhost:8080"), "API server URL")

	rootCmd.AddCommand(authCmd, titleCmd, reviewCmd, commentCmd, migrateCmd, userCmd, importCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *client.HTTPClient {
	return client.NewHTTPClient(apiURL)
}

// authenticatedClient loads the stored token or fails with a login hint.
func authenticatedClient() (*client.HTTPClient, error) {
	creds, err := authentication.GetToken()
	if err != nil {
		return nil, err
	}
	c := newClient()
	c.SetToken(creds.Token)
	return c, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 15*time.Second)
}

func success(format string, args ...any) {
	color.Green("✓ "+format, args...)
}

func heading(format string, args ...any) {
	fmt.Println(color.New(color.Bold).Sprintf(format, args...))
}
