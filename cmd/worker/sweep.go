package main

import (
	"fmt"
	"io"
	"time"

	"go-leave/internal/app"
	"go-leave/internal/bootstrap"
	"go-leave/internal/leave"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Cancel expired leave requests once",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseAt(at, time.Now())
			if err != nil {
				return err
			}
			res, err := app.SweepOnce(cmd.Context(), infra, now)
			if err != nil {
				return err
			}
			renderSweep(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "evaluate expiration as of this RFC3339 instant (default now)")
	return cmd
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Sweep periodically and publish the outbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := bootstrap.WaitForSignal(cmd.Context())
			defer stop()
			return app.RunWorker(ctx, infra)
		},
	}
}

func parseAt(v string, fallback time.Time) (time.Time, error) {
	if v == "" {
		return fallback.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at: %w", err)
	}
	return t.UTC(), nil
}

func renderSweep(w io.Writer, res leave.SweepResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"At", "Scanned", "Cancelled", "Skipped", "Failed"})
	t.AppendRow(table.Row{res.At.Format(time.RFC3339), res.Scanned, res.Cancelled, res.Skipped, res.Failed})
	t.Render()

	if len(res.CancelledIDs) == 0 {
		return
	}
	ids := table.NewWriter()
	ids.SetOutputMirror(w)
	ids.AppendHeader(table.Row{"#", "Cancelled request"})
	for i, id := range res.CancelledIDs {
		ids.AppendRow(table.Row{i + 1, id})
	}
	ids.Render()
}
