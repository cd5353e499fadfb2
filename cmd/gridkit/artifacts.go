package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/livefir/gridkit"
	"github.com/livefir/gridkit/artifacts"
	"github.com/spf13/cobra"
)

func newArtifactsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts SESSION_ID",
		Short: "Verify the video and command logs recorded for a session",
		Long: `Run the video and command log verification scripts from the scripts
directory against SESSION_ID. Both scripts get the session id and the grid
credentials as arguments and run concurrently.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ValidateScripts(); err != nil {
				return err
			}

			runner := artifacts.NewRunner(cfg.ScriptsDir)
			runner.Logger = gridkit.Logger()
			report, err := runner.CheckAll(cmd.Context(), args[0], cfg.Grid.Username, cfg.Grid.AccessKey)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"CHECK", "EXIT CODE", "RESULT"})
			failed := 0
			for _, row := range []struct {
				name string
				res  *artifacts.Result
			}{
				{artifacts.VideoScript, report.Video},
				{artifacts.CommandLogsScript, report.CommandLogs},
			} {
				result := "ok"
				if !row.res.Success() {
					result = "failed"
					failed++
				}
				t.AppendRow(table.Row{row.name, row.res.ExitCode, result})
			}
			t.Render()

			if failed > 0 {
				return fmt.Errorf("%d artifact check(s) failed for session %s", failed, args[0])
			}
			return nil
		},
	}
}
