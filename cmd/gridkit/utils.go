package main

import (
	"fmt"
	"strconv"

	"github.com/livefir/gridkit"
	"github.com/spf13/cobra"
)

func newPortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "port",
		Short: "Print a free local TCP port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := gridkit.FreePort()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), port)
			return nil
		},
	}
}

func newTokenCmd() *cobra.Command {
	var user, pass string
	var header bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Encode user:pass for basic auth",
		Long: `Encode user:pass as base64 for basic auth. Without --user and --pass
the grid credentials from the config are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("user") {
				user = cfg.Grid.Username
			}
			if !cmd.Flags().Changed("pass") {
				pass = cfg.Grid.AccessKey
			}
			out := gridkit.EncodeCredentials(user, pass)
			if header {
				out = gridkit.AuthorizationHeader + ": " + gridkit.BasicAuthHeader(user, pass)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user name")
	cmd.Flags().StringVarP(&pass, "pass", "p", "", "password")
	cmd.Flags().BoolVar(&header, "header", false, "print a complete Authorization header")
	return cmd
}

func newRandomCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "random [size]",
		Short: "Print a random alphanumeric string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid size %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), gridkit.RandomAlphaNumeric(size))
			return nil
		},
	}
}
