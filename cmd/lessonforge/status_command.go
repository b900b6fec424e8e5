package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"lessonforge/internal/client"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and project counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client.Client) error {
				status, err := c.Status(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), status)
				}

				out := cmd.OutOrStdout()
				running := "running"
				if !status.Running {
					running = "stopped"
				}
				fmt.Fprintf(out, "Daemon %s (pid %d)\n", running, status.PID)
				fmt.Fprintf(out, "  %-14s %s\n", "Database:", status.ProjectDBPath)
				fmt.Fprintf(out, "  %-14s %s\n", "Lock file:", status.LockFilePath)

				if len(status.ProjectStats) == 0 {
					fmt.Fprintln(out, "  No projects yet.")
					return nil
				}
				statuses := make([]string, 0, len(status.ProjectStats))
				for name := range status.ProjectStats {
					statuses = append(statuses, name)
				}
				sort.Strings(statuses)
				fmt.Fprintln(out, "  Projects:")
				for _, name := range statuses {
					fmt.Fprintf(out, "    %-20s %d\n", name, status.ProjectStats[name])
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	return cmd
}
