package main

import (
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"imagesieve/internal/collection"
	"imagesieve/internal/sieve"
	"imagesieve/internal/watch"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var watchFlag bool

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan a directory, group similar shots, and save the project",
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

			out := cmd.OutOrStdout()
			bridge := newCLIBridge(out, false)
			session := sieve.NewSession(sieve.Options{
				Config:   cfg,
				Bridge:   bridge,
				Projects: store,
				Logger:   logger,
			})
			defer session.Close()

			session.Scan(dir)
			snapshot := <-bridge.published
			printCollection(out, snapshot)

			cfg.Paths.SourceDir = dir
			if err := ctx.saveSettings(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			if !watchFlag && !cfg.Watch.Enabled {
				return nil
			}

			settle := time.Duration(cfg.Watch.SettleMS) * time.Millisecond
			watcher, err := watch.New(dir, settle, session.Scan, logger)
			if err != nil {
				return fmt.Errorf("start watch: %w", err)
			}
			defer watcher.Close()

			fmt.Fprintln(out, "Watching for changes, press Ctrl-C to stop")
			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			for {
				select {
				case snapshot := <-bridge.published:
					printCollection(out, snapshot)
				case <-sigCtx.Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Keep running and re-scan on filesystem changes")
	return cmd
}

func printCollection(out io.Writer, snapshot collection.Collection) {
	if snapshot.NumImages() == 0 {
		fmt.Fprintln(out, sieve.StatusNoImages)
		return
	}

	headers := []string{"#", "File", "Taken", "Size", "Keep", "Similar", "Event"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
	rows := make([][]string, 0, len(snapshot.Items))
	for i := range snapshot.Items {
		item := &snapshot.Items[i]
		eventName := ""
		if event, ok := snapshot.EventFor(item); ok {
			eventName = event.Name
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			item.Path,
			item.DateString(),
			humanize.Bytes(uint64(item.Size)),
			yesNo(item.TakeOver),
			joinIndices(item.Similar),
			eventName,
		})
	}
	fmt.Fprintln(out, renderRows(out, headers, rows, aligns))
	fmt.Fprintf(out, "%d items, %d images\n", len(snapshot.Items), snapshot.NumImages())
}

func joinIndices(indices []int) string {
	if len(indices) == 0 {
		return ""
	}
	parts := make([]string, len(indices))
	for i, index := range indices {
		parts[i] = strconv.Itoa(index)
	}
	return strings.Join(parts, ",")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
