package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"imagesieve/internal/collection"
	"imagesieve/internal/history"
	"imagesieve/internal/sieve"
)

func newCommitCommand(ctx *commandContext) *cobra.Command {
	var methodFlag string
	var destFlag string

	cmd := &cobra.Command{
		Use:   "commit [dir]",
		Short: "Apply keep decisions: copy, move, or delete into the target tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir, err := ctx.resolveDir(args)
			if err != nil {
				return err
			}

			methodValue := cfg.Sieve.CommitMethod
			if strings.TrimSpace(methodFlag) != "" {
				methodValue = methodFlag
			}
			method, err := collection.ParseMethod(methodValue)
			if err != nil {
				return err
			}

			dest := cfg.Paths.TargetDir
			if strings.TrimSpace(destFlag) != "" {
				dest = destFlag
			}
			if strings.TrimSpace(dest) == "" {
				return fmt.Errorf("no destination given and paths.target_dir is not configured")
			}

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.projectStore()
			if err != nil {
				return err
			}
			lock, err := store.Acquire(dir)
			if err != nil {
				return err
			}
			defer lock.Release()

			historyStore, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer historyStore.Close()

			out := cmd.OutOrStdout()
			bridge := newCLIBridge(out, false)
			session := sieve.NewSession(sieve.Options{
				Config:   cfg,
				Bridge:   bridge,
				Projects: store,
				History:  historyStore,
				Logger:   logger,
			})
			defer session.Close()

			// Reconcile against the live filesystem before committing, so
			// decisions apply to what is actually there.
			session.Scan(dir)
			snapshot := <-bridge.published
			if len(snapshot.Items) == 0 {
				fmt.Fprintln(out, sieve.StatusNoImages)
				return nil
			}

			if err := session.Commit(dest, method); err != nil {
				return err
			}
			failed := 0
			for report := range bridge.reports {
				fmt.Fprintln(out, report.Message)
				if report.Kind == collection.ReportItemError {
					failed++
				}
				if report.Kind == collection.ReportCompleted {
					break
				}
			}

			cfg.Sieve.CommitMethod = string(method)
			cfg.Paths.TargetDir = dest
			if err := ctx.saveSettings(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			if failed > 0 {
				return fmt.Errorf("%d items failed to commit", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&methodFlag, "method", "m", "", "Commit method: copy, move, or delete")
	cmd.Flags().StringVarP(&destFlag, "dest", "d", "", "Destination directory (overrides paths.target_dir)")
	return cmd
}
