package main

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"lessonforge/internal/api"
)

// renderProjectTable lays out the project listing: truncated IDs, colorized
// status when the writer is a terminal, and wrapped title/topic columns so
// long lesson names do not blow out the row.
func renderProjectTable(projects []api.Project, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "TITLE", "TEMPLATE", "STATUS", "TOPIC", "LEVEL", "UPDATED"})

	for _, p := range projects {
		tw.AppendRow(table.Row{
			shortID(p.ID),
			p.Title,
			p.TemplateType,
			colorizeStatus(statusLabel(p), colorize),
			p.Topic,
			p.Level,
			formatTimestamp(p.UpdatedAt),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "TITLE", WidthMax: 32},
		{Name: "TOPIC", WidthMax: 28},
	})
	return tw.Render()
}
