// Gensessionkey writes a random 32-byte hex session key for authflow-server.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/authflow/internal/config"
)

var (
	out   string
	force bool
)

var rootCmd = &cobra.Command{
	Use:   "gensessionkey",
	Short: "Generate the session key file",
	Long: `Generate the master key that signs and encrypts session cookies and reset
tokens. The key is written as 64 hex characters with 0600 permissions.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if _, err := os.Stat(out); err == nil && !force {
			return fmt.Errorf("%s already exists; refusing to overwrite (use --force)", out)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
		if err := os.WriteFile(out, []byte(hex.EncodeToString(key)+"\n"), 0o600); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session key written to %s\n", out)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&out, "out", "o", config.Default().SessionKeyFile, "Output file")
	rootCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing key file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
