// Package cli provides command-line interface commands for scangate.
// This file implements API key commands for generating keys and the bcrypt
// hashes the API server verifies them against.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/anstrom/scangate/internal/auth"
)

var (
	apiKeyName   string
	apiKeyOutput string
)

// apiKeysCmd represents the apikeys command group
var apiKeysCmd = &cobra.Command{
	Use:     "apikeys",
	Aliases: []string{"apikey", "keys", "key"},
	Short:   "Generate API keys for client authentication",
	Long: `Generate API keys and bcrypt hashes for the scangate API server.

The server never stores keys in plain text. Add the printed hash to
api.auth.key_hashes in the config file, enable api.auth.enabled and hand the
key itself to the client, which sends it in the X-API-Key header.`,
	Example: `  scangate apikeys generate --name "Dashboard"
  scangate apikeys generate --name "CI" --output json
  echo -n "$KEY" | scangate apikeys hash`,
	Run: func(cmd *cobra.Command, args []string) {
		// Show help if no subcommand is provided
		_ = cmd.Help()
	},
}

// apiKeysGenerateCmd creates a new API key
var apiKeysGenerateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"create", "new"},
	Short:   "Generate a new API key",
	Long: `Generate a new random API key together with its bcrypt hash.

The key is displayed only once. Store it somewhere safe; only the hash
belongs in the server configuration.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return executeGenerateAPIKey(cmd.OutOrStdout(), apiKeyName, apiKeyOutput)
	},
}

// apiKeysHashCmd hashes an existing key
var apiKeysHashCmd = &cobra.Command{
	Use:   "hash [key]",
	Short: "Print the bcrypt hash of an existing API key",
	Long: `Print the bcrypt hash of an existing API key for use in api.auth.key_hashes.

The key is read from the argument or, when omitted, from the first line of
standard input so it does not end up in shell history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := ""
		if len(args) == 1 {
			key = args[0]
		} else {
			line, err := readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			key = line
		}
		return executeHashAPIKey(cmd.OutOrStdout(), key)
	},
}

func init() {
	rootCmd.AddCommand(apiKeysCmd)
	apiKeysCmd.AddCommand(apiKeysGenerateCmd)
	apiKeysCmd.AddCommand(apiKeysHashCmd)

	apiKeysGenerateCmd.Flags().StringVarP(&apiKeyName, "name", "n", "", "Name identifying the key's holder")
	apiKeysGenerateCmd.Flags().StringVarP(&apiKeyOutput, "output", "o", "table", "Output format: table or json")
	_ = apiKeysGenerateCmd.MarkFlagRequired("name")
}

func executeGenerateAPIKey(out io.Writer, name, format string) error {
	key, err := auth.GenerateAPIKey(name)
	if err != nil {
		return fmt.Errorf("failed to generate API key: %w", err)
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(key)
	case "table", "":
		displayGeneratedKey(out, key)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use table or json)", format)
	}
}

func displayGeneratedKey(out io.Writer, key *auth.GeneratedAPIKey) {
	table := tablewriter.NewWriter(out)
	table.Header("Name", "Prefix", "Created")
	_ = table.Append([]string{key.Name, key.KeyPrefix, key.CreatedAt.Format("2006-01-02 15:04")})
	_ = table.Render()

	fmt.Fprintf(out, "\nAPI key (shown only once):\n  %s\n", key.Key)
	fmt.Fprintf(out, "\nAdd this hash to your configuration:\n")
	fmt.Fprintf(out, "  api:\n    auth:\n      enabled: true\n      key_hashes:\n        - %q\n", key.Hash)
}

func executeHashAPIKey(out io.Writer, key string) error {
	key = strings.TrimSpace(key)
	if !auth.IsValidAPIKeyFormat(key) {
		return fmt.Errorf("invalid API key format")
	}
	hash, err := auth.HashAPIKey(key)
	if err != nil {
		return fmt.Errorf("failed to hash API key: %w", err)
	}
	fmt.Fprintln(out, hash)
	return nil
}

func readLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		return "", fmt.Errorf("no API key provided")
	}
	return scanner.Text(), nil
}
