package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/livefir/gridkit"
	"github.com/spf13/cobra"
)

func newCapsCmd() *cobra.Command {
	var noEnv bool

	cmd := &cobra.Command{
		Use:   "caps [key=value;...]",
		Short: "Show the capabilities a session would be created with",
		Long: `Show the capabilities a session would be created with. The configured
capabilities are the base; $CAPS and then the optional argument are
merged on top. Secret-looking values are masked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caps := sessionCapabilities(noEnv, args)
			renderCapabilities(cmd, caps)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noEnv, "no-env", false, "ignore $"+gridkit.CapsEnvVar)
	return cmd
}

// sessionCapabilities merges the configured base list with $CAPS and an
// optional override argument, later entries winning
func sessionCapabilities(noEnv bool, args []string) gridkit.Capabilities {
	base := cfg.Capabilities
	if !noEnv {
		if env := os.Getenv(gridkit.CapsEnvVar); strings.Contains(env, "=") {
			base = strings.Join([]string{base, env}, ";")
		}
	}
	if len(args) == 1 {
		return gridkit.MergeCapabilities(base, args[0])
	}
	return gridkit.MergeCapabilities(base, "")
}

func renderCapabilities(cmd *cobra.Command, caps gridkit.Capabilities) {
	out := cmd.OutOrStdout()
	if len(caps) == 0 {
		fmt.Fprintf(out, "%s\n", text.FgYellow.Sprint("No capabilities set"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("CAPABILITY"),
		text.FgHiCyan.Sprint("VALUE"),
	})
	redacted := caps.Redacted()
	for _, k := range redacted.Keys() {
		t.AppendRow(table.Row{k, redacted[k]})
	}
	t.Render()

	platform := caps.Platform()
	if platform == "" {
		platform = "unset"
	}
	fmt.Fprintf(out, "%s %s (mobile: %t)\n", text.FgHiBlue.Sprint("Platform:"), platform, caps.IsMobile())
}
