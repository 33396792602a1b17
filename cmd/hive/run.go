package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/hive/internal/orchestrator"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var spec orchestrator.ProjectSpec
	var configJSON string

	cmd := &cobra.Command{
		Use:   "run [requirements]",
		Short: "Run a project through every workflow phase, printing progress",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				spec.Requirements = strings.Join(args, " ")
			}
			if spec.Requirements == "" {
				return errors.New("requirements are required (argument or --requirements)")
			}
			if configJSON != "" {
				if err := json.Unmarshal([]byte(configJSON), &spec.Config); err != nil {
					return fmt.Errorf("parse --project-config: %w", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			progress := orchestrator.NewProgressReporter()
			a, err := newApp(root.cfg, progress, root.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var mu sync.Mutex
			printLine := func(line string) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintln(out, line)
			}

			printed := make(chan struct{})
			go func() {
				defer close(printed)
				for ev := range progress.Subscribe() {
					printLine(orchestrator.FormatProgress(ev))
				}
			}()

			id, err := a.runner.CreateProject(ctx, spec)
			if err != nil {
				a.shutdown(context.Background())
				<-printed
				return err
			}
			st, err := a.runner.GetProjectStatus(ctx, id)
			if err == nil {
				printLine(orchestrator.FormatProjectHeader(st.Name, id))
			}

			waitErr := a.runner.Wait(ctx, id)
			if waitErr != nil {
				// Interrupted: cancel the run and let it record the failure.
				_ = a.runner.Cancel(id)
				_ = a.runner.Wait(context.Background(), id)
			}

			final, err := a.runner.GetProjectStatus(context.Background(), id)
			a.shutdown(context.Background())
			<-printed
			if err != nil {
				return err
			}

			if err := writeJSON(out, final); err != nil {
				return err
			}
			if final.Phase == orchestrator.PhaseFailed.String() {
				return fmt.Errorf("project %s failed in %s: %s", id, final.FailedPhase, final.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&spec.Name, "name", "n", "", "project name")
	cmd.Flags().StringVarP(&spec.Description, "description", "d", "", "project description")
	cmd.Flags().StringVarP(&spec.Requirements, "requirements", "r", "", "project requirements")
	cmd.Flags().StringVar(&configJSON, "project-config", "", "JSON object of project configuration")
	return cmd
}
