package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/hive/internal/export"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored sessions and project tasks (needs a persistent store)",
	}
	cmd.AddCommand(newExportTranscriptCmd(root), newExportTasksCmd(root))
	return cmd
}

func newExportTranscriptCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transcript <session-id>",
		Short: "Print a session transcript as JSON, grouped by phase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root.cfg, nil, root.logger)
			if err != nil {
				return err
			}
			defer a.close()

			tr, err := export.ExportTranscript(cmd.Context(), a.store, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), tr)
		},
	}
}

func newExportTasksCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tasks <project-id>",
		Short: "Print the decomposed tasks of a project as a Mermaid diagram or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root.cfg, nil, root.logger)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.store.GetProject(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("project %s: %w", args[0], err)
			}
			tasks, err := a.store.ListTasks(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			switch format {
			case "mermaid":
				_, err = io.WriteString(cmd.OutOrStdout(), export.TaskMermaid(tasks))
				return err
			case "json":
				return writeJSON(cmd.OutOrStdout(), tasks)
			default:
				return fmt.Errorf("unknown format %q (want mermaid or json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "mermaid", "output format: mermaid or json")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
