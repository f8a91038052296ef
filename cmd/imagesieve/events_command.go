package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"imagesieve/internal/collection"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string

	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Manage named date ranges on a project",
	}
	eventsCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "Project directory (defaults to paths.source_dir)")

	eventsCmd.AddCommand(newEventsAddCommand(ctx, &dirFlag))
	eventsCmd.AddCommand(newEventsRemoveCommand(ctx, &dirFlag))
	eventsCmd.AddCommand(newEventsListCommand(ctx, &dirFlag))
	return eventsCmd
}

func (c *commandContext) eventsDir(dirFlag *string) (string, error) {
	if dirFlag != nil && *dirFlag != "" {
		return c.resolveDir([]string{*dirFlag})
	}
	return c.resolveDir(nil)
}

func newEventsAddCommand(ctx *commandContext, dirFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <start> <end>",
		Short: "Add an event (dates as YYYY-MM-DD, end inclusive)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			event, err := collection.NewEvent(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			dir, err := ctx.eventsDir(dirFlag)
			if err != nil {
				return err
			}
			store, err := ctx.projectStore()
			if err != nil {
				return err
			}
			c, _, err := store.Load(dir)
			if err != nil {
				return err
			}
			c.Events = append(c.Events, event)
			if err := store.Save(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added event %q (%s to %s)\n",
				event.Name, event.StartString(), event.EndString())
			return nil
		},
	}
}

func newEventsRemoveCommand(ctx *commandContext, dirFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an event by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ctx.eventsDir(dirFlag)
			if err != nil {
				return err
			}
			store, err := ctx.projectStore()
			if err != nil {
				return err
			}
			c, found, err := store.Load(dir)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no project for %s", dir)
			}
			kept := c.Events[:0]
			removed := false
			for _, event := range c.Events {
				if !removed && event.Name == args[0] {
					removed = true
					continue
				}
				kept = append(kept, event)
			}
			if !removed {
				return fmt.Errorf("no event named %q", args[0])
			}
			c.Events = kept
			if err := store.Save(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed event %q\n", args[0])
			return nil
		},
	}
}

func newEventsListCommand(ctx *commandContext, dirFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the project's events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := ctx.eventsDir(dirFlag)
			if err != nil {
				return err
			}
			store, err := ctx.projectStore()
			if err != nil {
				return err
			}
			c, _, err := store.Load(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(c.Events) == 0 {
				fmt.Fprintln(out, "No events")
				return nil
			}
			rows := make([][]string, 0, len(c.Events))
			for _, event := range c.Events {
				rows = append(rows, []string{event.Name, event.StartString(), event.EndString()})
			}
			fmt.Fprintln(out, renderRows(out, []string{"Name", "Start", "End"}, rows, nil))
			return nil
		},
	}
}
