package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/timelyapp/timely/internal/model"
)

func init() {
	typesCmd := &cobra.Command{Use: "types", Short: "Meeting type operations"}

	var name, platform, description string
	var duration int

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a reusable meeting type",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := model.ParsePlatform(platform)
			if err != nil {
				return err
			}
			t := model.MeetingType{
				ID:              uuid.NewString(),
				Name:            name,
				DurationMinutes: duration,
				Platform:        p,
				Description:     description,
				CreatedAt:       time.Now().UTC(),
			}
			ctx := context.Background()
			if err := a.store.AddMeetingType(ctx, t); err != nil {
				return err
			}
			if err := a.store.Flush(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, t.ID)
			return nil
		},
	}
	addCmd.Flags().StringVarP(&name, "name", "n", "", "Type name (required)")
	addCmd.Flags().IntVarP(&duration, "duration", "d", 30, "Default duration in minutes")
	addCmd.Flags().StringVarP(&platform, "platform", "p", string(model.PlatformGoogleMeet), "Platform label")
	addCmd.Flags().StringVar(&description, "description", "", "Description")
	_ = addCmd.MarkFlagRequired("name")
	typesCmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List meeting types",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Load(context.Background()); err != nil {
				return err
			}
			for _, t := range a.store.MeetingTypes() {
				_, _ = fmt.Fprintf(os.Stdout, "%s  %3dm  %-15s  %s\n", t.ID, t.DurationMinutes, t.Platform, t.Name)
			}
			return nil
		},
	}
	typesCmd.AddCommand(listCmd)

	rootCmd.AddCommand(typesCmd)
}
