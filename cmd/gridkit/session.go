package main

import (
	"fmt"

	"github.com/livefir/gridkit"
	"github.com/livefir/gridkit/webdriver"
	"github.com/spf13/cobra"
)

// dial is swapped out in tests
var dial webdriver.DialFunc

func newSessionCmd() *cobra.Command {
	var (
		url        string
		screenshot bool
	)

	cmd := &cobra.Command{
		Use:   "session [key=value;...]",
		Short: "Create a remote session on the grid and quit it",
		Long: `Create a remote session with the merged capabilities, print its id and
how long the grid took to create it, then quit. With --url the page is
opened first and its title printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ValidateGrid(); err != nil {
				return err
			}

			opts := []webdriver.Option{webdriver.WithLogger(gridkit.Logger())}
			if dial != nil {
				opts = append(opts, webdriver.WithDialer(dial))
			}
			s, err := webdriver.NewSession(cfg.Grid, sessionCapabilities(false, args), opts...)
			if err != nil {
				return err
			}
			defer s.Quit()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "session %s created in %s\n", s.ID, s.CreationTime)

			if url == "" {
				return nil
			}
			h := s.Helper()
			if err := h.Get(url); err != nil {
				return err
			}
			title, err := h.Title()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "title: %s\n", title)

			if screenshot {
				path, err := h.SavePageScreenshot(cfg.ScreenshotsDir, s.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "screenshot: %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "page to open once the session is up")
	cmd.Flags().BoolVar(&screenshot, "screenshot", false, "save a screenshot of --url")
	return cmd
}
