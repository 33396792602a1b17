package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/hive/internal/deliberation"
)

func newDeliberateCmd(root *rootOptions) *cobra.Command {
	var (
		sessionType string
		input       string
		full        bool
	)

	cmd := &cobra.Command{
		Use:   "deliberate <topic>",
		Short: "Run one deliberation session and print the decision as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := deliberation.Request{
				Topic: strings.Join(args, " "),
				Type:  sessionType,
			}
			if input != "" {
				if err := json.Unmarshal([]byte(input), &req.Input); err != nil {
					return fmt.Errorf("parse --input: %w", err)
				}
			}

			a, err := newApp(root.cfg, nil, root.logger)
			if err != nil {
				return err
			}
			defer a.shutdown(context.Background())

			d, err := a.hive.Deliberate(cmd.Context(), req)
			if err != nil {
				return err
			}

			var out any = d
			if !full {
				out = map[string]any{
					"session_id":              d.SessionID,
					"consensus_reached":       d.ConsensusReached,
					"confidence_score":        d.ConfidenceScore,
					"final_decision":          d.FinalDecision,
					"reasoning":               d.Reasoning,
					"implementation_guidance": d.Guidance,
				}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&sessionType, "type", "t", "", "session type, e.g. requirements_analysis or architecture_design")
	cmd.Flags().StringVarP(&input, "input", "i", "", "JSON object presented to the participants")
	cmd.Flags().BoolVar(&full, "full", false, "print every stage of the session, not just the decision")
	return cmd
}
