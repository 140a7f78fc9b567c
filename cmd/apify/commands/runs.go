package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/metalwarrior665/apify-client-go/internal/constants"
	"github.com/metalwarrior665/apify-client-go/pkg/apify"
)

// NewRunsCommand creates the runs command group.
func NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "runs",
		Aliases: []string{"run"},
		Short:   "Manage actor runs",
		Long:    "Inspect, abort and delete actor runs",
	}

	cmd.AddCommand(newRunsGetCommand())
	cmd.AddCommand(newRunsAbortCommand())
	cmd.AddCommand(newRunsDeleteCommand())

	return cmd
}

func newRunsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get RUN_ID",
		Short: "Get run details",
		Long:  "Display status, timing and resource usage of an actor run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			run, err := client.Runs().Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get run: %w", err)
			}

			return render(cmd, run, renderRunTable)
		},
	}
}

func newRunsAbortCommand() *cobra.Command {
	var gracefully bool

	cmd := &cobra.Command{
		Use:   "abort RUN_ID",
		Short: "Abort a run",
		Long:  "Abort a running actor. A graceful abort lets the actor persist its state first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			run, err := client.Runs().Abort(cmd.Context(), args[0], gracefully)
			if err != nil {
				return fmt.Errorf("failed to abort run: %w", err)
			}

			return render(cmd, run, renderRunTable)
		},
	}

	cmd.Flags().BoolVar(&gracefully, "gracefully", false, "let the actor finish its current work")

	return cmd
}

func newRunsDeleteCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete RUN_ID",
		Short: "Delete a run",
		Long:  "Delete a finished actor run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := confirm(cmd, force, fmt.Sprintf("Really delete run %s?", args[0]))
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			_, err = client.Runs().Delete(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete run: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Run %s deleted\n", args[0])

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip confirmation")

	return cmd
}

func renderRunTable(w io.Writer, run *apify.Run) error {
	exitCode := constants.NotAvailable
	if run.ExitCode != nil {
		exitCode = strconv.Itoa(*run.ExitCode)
	}

	rows := [][]string{
		{"ID", run.ID},
		{"Actor ID", run.ActID},
		{"Status", string(run.Status)},
		{"Status Message", formatOptional(run.StatusMessage)},
		{"Started", formatTime(run.StartedAt)},
		{"Finished", formatOptionalTime(run.FinishedAt)},
		{"Duration", (time.Duration(run.Stats.DurationMillis) * time.Millisecond).String()},
		{"Exit Code", exitCode},
		{"Origin", run.Meta.Origin},
		{"Build", run.BuildNumber},
		{"Memory", fmt.Sprintf("%d MB", run.Options.MemoryMbytes)},
		{"Compute Units", strconv.FormatFloat(run.Stats.ComputeUnits, 'f', 4, 64)},
		{"Cost (USD)", strconv.FormatFloat(run.UsageTotalUSD, 'f', 4, 64)},
		{"Dataset", run.DefaultDatasetID},
		{"Key-Value Store", run.DefaultKeyValueStoreID},
		{"Request Queue", run.DefaultRequestQueueID},
	}

	return propertyTable(w, rows)
}
