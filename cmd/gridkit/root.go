package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/livefir/gridkit"
	"github.com/livefir/gridkit/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd is the entry point when gridkit is called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "gridkit",
	Short: "Helpers for tests that drive browsers on a remote grid",
	Long: `gridkit bundles the small utilities browser tests lean on: free ports,
basic auth tokens, random strings, capability lists, API checks and
remote session smoke tests against a Selenium grid.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		gridkit.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: c.SlogLevel()})))
		return nil
	},
}

// SetVersion sets the version reported by --version and the version command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gridkit version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/gridkit/config.yaml)")
	rootCmd.SilenceErrors = true

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newPortCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newRandomCmd())
	rootCmd.AddCommand(newCapsCmd())
	rootCmd.AddCommand(newRequestCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newArtifactsCmd())
}
