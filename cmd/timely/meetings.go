package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/timelyapp/timely/internal/model"
)

func splitEmails(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if e := strings.TrimSpace(part); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func init() {
	meetingsCmd := &cobra.Command{Use: "meetings", Short: "Meeting operations"}

	var title, start, platform, participants, meetingType string
	var duration int

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Save a meeting without provisioning a link",
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
			startAt, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("invalid --start, want RFC3339: %w", err)
			}

			m := model.Meeting{
				ID:              uuid.NewString(),
				Title:           title,
				StartTime:       startAt,
				DurationMinutes: duration,
				Platform:        p,
				Participants:    splitEmails(participants),
				MeetingType:     meetingType,
				CreatedAt:       time.Now().UTC(),
			}
			ctx := context.Background()
			if err := a.store.AddMeeting(ctx, m); err != nil {
				return err
			}
			if err := a.store.Flush(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, m.ID)
			return nil
		},
	}
	addCmd.Flags().StringVarP(&title, "title", "t", "", "Meeting title (required)")
	addCmd.Flags().StringVarP(&start, "start", "s", "", "Start time, RFC3339 (required)")
	addCmd.Flags().IntVarP(&duration, "duration", "d", 30, "Duration in minutes")
	addCmd.Flags().StringVarP(&platform, "platform", "p", string(model.PlatformInPerson), "Platform label")
	addCmd.Flags().StringVar(&participants, "participants", "", "Comma-separated participant emails")
	addCmd.Flags().StringVar(&meetingType, "type", "", "Meeting type name")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("start")
	meetingsCmd.AddCommand(addCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Load(context.Background()); err != nil {
				return err
			}
			for _, m := range a.store.Meetings() {
				_, _ = fmt.Fprintf(os.Stdout, "%s  %s  %3dm  %-15s  %s\n",
					m.ID, m.StartTime.Format(time.RFC3339), m.DurationMinutes, m.Platform, m.Title)
			}
			return nil
		},
	}
	meetingsCmd.AddCommand(listCmd)

	rootCmd.AddCommand(meetingsCmd)
}
