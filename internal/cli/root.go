// Package cli implements the shotctl command line: searching, uploading,
// watching folders and managing a shotsearch library over its HTTP API.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shotsearch/pkg/client"
)

// DefaultServer is used when neither --server nor SHOTSEARCH_URL is set.
const DefaultServer = "http://localhost:8080"

var (
	serverURL      string
	requestTimeout time.Duration
	version        = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "shotctl",
	Short: "Search and manage a shotsearch screenshot library",
	Long: `shotctl talks to a shotsearch server. It searches screenshots by the
text visible in them and by their visual descriptions, uploads new
screenshots and can watch a folder to upload them as they appear.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("SHOTSEARCH_URL", DefaultServer),
		"shotsearch server URL (env SHOTSEARCH_URL)")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", client.DefaultTimeout,
		"per-request timeout")
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}

func newClient() (*client.Client, error) {
	c, err := client.New(serverURL,
		client.WithTimeout(requestTimeout),
		client.WithUserAgent("shotctl/"+version),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid server: %w", err)
	}
	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
