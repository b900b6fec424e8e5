package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lessonforge/internal/client"
)

type stageCommand struct {
	use    string
	action string
	short  string
}

var stageCommandDefs = []stageCommand{
	{"generate-content", "generate-content", "Generate the lesson script"},
	{"generate-audio", "generate-audio", "Synthesize the narration audio"},
	{"generate-avatar", "generate-avatar", "Render the talking avatar"},
	{"render", "render", "Composite the final video"},
	{"retry", "retry", "Re-run the stage the project failed at"},
}

func newStageCommands(ctx *commandContext) []*cobra.Command {
	commands := make([]*cobra.Command, 0, len(stageCommandDefs))
	for _, def := range stageCommandDefs {
		def := def
		commands = append(commands, &cobra.Command{
			Use:   def.use + " <project-id>",
			Short: def.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return ctx.withClient(func(c *client.Client) error {
					accepted, err := c.RunStage(cmd.Context(), args[0], def.action)
					if err != nil {
						return explainStageError(err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Started %s for project %s\n", accepted.Target, accepted.ProjectID)
					fmt.Fprintf(cmd.OutOrStdout(), "Track progress with `lessonforge show %s`.\n", accepted.ProjectID)
					return nil
				})
			},
		})
	}
	return commands
}
