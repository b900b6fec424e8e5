package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lessonforge/internal/api"
	"lessonforge/internal/client"
)

func newCreateCommand(ctx *commandContext) *cobra.Command {
	var req api.CreateProjectRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new video project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client.Client) error {
				created, err := c.CreateProject(cmd.Context(), req)
				if err != nil {
					return explainStageError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", created.ID, created.Title)
				fmt.Fprintf(cmd.OutOrStdout(), "Run `lessonforge generate-content %s` to start the pipeline.\n", created.ID)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Title, "title", "", "Project title")
	flags.StringVar(&req.TemplateType, "template", "grammar_lesson", "Lesson template type")
	flags.StringVar(&req.Source.Topic, "topic", "", "Lesson topic")
	flags.StringVar(&req.Source.Level, "level", "", "CEFR level (A1-C2)")
	flags.IntVar(&req.Source.TargetDurationSeconds, "duration", 300, "Target video duration in seconds")
	flags.StringVar(&req.Source.NativeLanguage, "native-language", "", "Learner native language tag")
	flags.StringArrayVar(&req.Source.URLs, "url", nil, "Reference URL for research context (repeatable)")
	flags.StringVar(&req.Source.Mode, "mode", "", "Content generation mode override")
	flags.StringVar(&req.Voice.Provider, "voice-provider", "", "Speech provider name")
	flags.StringVar(&req.Voice.VoiceID, "voice", "", "Voice identifier")
	flags.StringVar(&req.Voice.VoiceName, "voice-name", "", "Voice display name")
	flags.StringVar(&req.Avatar.Provider, "avatar-provider", "", "Avatar provider name")
	flags.StringVar(&req.Avatar.CharacterID, "character", "", "Avatar character identifier")
	flags.StringVar(&req.Avatar.CharacterName, "character-name", "", "Avatar character display name")
	flags.StringVar(&req.Video.AspectRatio, "aspect", "16:9", "Aspect ratio (16:9 or 9:16)")
	flags.StringVar(&req.Video.Resolution, "resolution", "1080p", "Output resolution")
	flags.BoolVar(&req.Video.IncludeIntro, "intro", false, "Include the intro segment")
	flags.BoolVar(&req.Video.IncludeOutro, "outro", false, "Include the outro segment")
	flags.StringVar(&req.Video.LowerThird, "lower-third", "", "Lower-third caption text")
	flags.BoolVar(&req.Video.IncludeProgressBar, "progress-bar", false, "Overlay a lesson progress bar")

	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("level")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var (
		statusFilters []string
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client.Client) error {
				projects, err := c.ListProjects(cmd.Context(), statusFilters...)
				if err != nil {
					return explainStageError(err)
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), api.ProjectListResponse{Projects: projects})
				}
				if len(projects) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
					return nil
				}

				colorize := shouldColorize(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), renderProjectTable(projects, colorize))
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&statusFilters, "status", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print projects as JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project's configuration, progress, and artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client.Client) error {
				p, err := c.GetProject(cmd.Context(), args[0])
				if err != nil {
					return explainStageError(err)
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), p)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintf(out, "%s (%s)\n", p.Title, p.ID)
				fmt.Fprintf(out, "  %-14s %s\n", "Status:", colorizeStatus(statusLabel(p), colorize))
				fmt.Fprintf(out, "  %-14s %s\n", "Template:", p.TemplateType)
				fmt.Fprintf(out, "  %-14s %s (%s)\n", "Topic:", p.Source.Topic, p.Source.Level)
				fmt.Fprintf(out, "  %-14s %ds\n", "Duration:", p.Source.TargetDurationSeconds)
				if p.Voice.VoiceID != "" {
					fmt.Fprintf(out, "  %-14s %s/%s\n", "Voice:", p.Voice.Provider, p.Voice.VoiceID)
				}
				if p.Avatar.CharacterID != "" {
					fmt.Fprintf(out, "  %-14s %s/%s\n", "Avatar:", p.Avatar.Provider, p.Avatar.CharacterID)
				}
				fmt.Fprintf(out, "  %-14s %s %s\n", "Video:", p.Video.AspectRatio, p.Video.Resolution)
				if p.ErrorMessage != "" {
					fmt.Fprintf(out, "  %-14s %s: %s\n", "Error:", p.ErrorStep, p.ErrorMessage)
				}

				if p.LessonContent != nil {
					fmt.Fprintf(out, "  %-14s %s (%d slides, %d questions)\n",
						"Lesson:", p.LessonContent.Objective, p.LessonContent.SlideCount, p.LessonContent.QuestionCount)
				}
				if p.AudioOutput != nil {
					fmt.Fprintf(out, "  %-14s %s (%.0fs)\n", "Narration:", p.AudioOutput.URL, p.AudioOutput.DurationSeconds)
				}
				if p.AvatarOutput != nil {
					formatArtifact("Avatar video", p.AvatarOutput.URL, out)
				}
				if p.FinalOutput != nil {
					formatArtifact("Final video", p.FinalOutput.URL, out)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the project as JSON")
	return cmd
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client.Client) error {
				if err := c.RemoveProject(cmd.Context(), args[0]); err != nil {
					return explainStageError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s\n", args[0])
				return nil
			})
		},
	}
}
