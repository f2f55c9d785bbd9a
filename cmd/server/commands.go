package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			slog.Info("migration complete")
			return nil
		},
	}
}

func contentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage the health content library",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Upsert content items from a YAML file, matched by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.content.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			slog.Info("content imported", "file", args[0], "items", n)
			return nil
		},
	})
	return cmd
}

func subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "Subscription maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "expire",
		Short: "Mark active subscriptions past their end date as expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.subscriptions.ExpireLapsed(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			slog.Info("subscriptions expired", "count", n)
			return nil
		},
	})
	return cmd
}

func remindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Reminder maintenance",
	}

	var window time.Duration
	notify := &cobra.Command{
		Use:   "notify",
		Short: "Text owners about open reminders due within the window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()
			n, err := a.notifier.SendDueReminders(ctx, time.Now(), window)
			if err != nil {
				return err
			}
			slog.Info("reminder notifications sent", "count", n, "window", window.String())
			return nil
		},
	}
	notify.Flags().DurationVar(&window, "window", 24*time.Hour, "How far ahead to look for due reminders")
	cmd.AddCommand(notify)
	return cmd
}
