package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/timelyapp/timely/internal/invite"
	"github.com/timelyapp/timely/internal/model"
	"github.com/timelyapp/timely/internal/orchestrator"
)

func init() {
	var title, start, platform, participants, meetingType, icsPath string
	var duration int

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Provision a meeting link, save the meeting, and compose the invite",
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
			emails := splitEmails(participants)

			orc := orchestrator.New(a.providers, a.log)
			orc.SetTitle(title)
			orc.SetPlatform(p)
			orc.SetTiming(orchestrator.Draft{StartTime: startAt, DurationMinutes: duration})
			orc.SetParticipants(emails)

			settled := make(chan orchestrator.Snapshot, 1)
			orc.Subscribe(func(s orchestrator.Snapshot) {
				select {
				case settled <- s:
				default:
				}
			})

			ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPTimeout+5*time.Second)
			defer cancel()
			if err := orc.RequestLink(ctx, a.cfg.Timezone); err != nil {
				return err
			}

			var snap orchestrator.Snapshot
			select {
			case snap = <-settled:
			case <-ctx.Done():
				return ctx.Err()
			}
			if snap.State == orchestrator.StateFailed {
				return errors.New(snap.Failure)
			}

			m := model.Meeting{
				ID:              uuid.NewString(),
				Title:           title,
				StartTime:       startAt,
				DurationMinutes: duration,
				Platform:        p,
				Participants:    emails,
				MeetingType:     meetingType,
				CreatedAt:       time.Now().UTC(),
			}
			if err := a.store.AddMeeting(ctx, m); err != nil {
				return err
			}
			if err := a.store.Flush(ctx); err != nil {
				return err
			}

			inv := invite.Compose(m, snap.Link, a.auth.CurrentEmail())
			if icsPath != "" {
				if err := os.WriteFile(icsPath, []byte(inv.ICS), 0o644); err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintln(os.Stdout, m.ID)
			if snap.Link != nil && snap.Link.JoinURL != "" {
				_, _ = fmt.Fprintln(os.Stdout, snap.Link.JoinURL)
				if snap.Link.Sandbox {
					_, _ = fmt.Fprintln(os.Stderr, "warning: sandbox link, will not resolve to a real meeting")
				}
			}
			return nil
		},
	}
	scheduleCmd.Flags().StringVarP(&title, "title", "t", "", "Meeting title (required)")
	scheduleCmd.Flags().StringVarP(&start, "start", "s", "", "Start time, RFC3339 (required)")
	scheduleCmd.Flags().IntVarP(&duration, "duration", "d", 30, "Duration in minutes")
	scheduleCmd.Flags().StringVarP(&platform, "platform", "p", string(model.PlatformGoogleMeet), "Platform label")
	scheduleCmd.Flags().StringVar(&participants, "participants", "", "Comma-separated participant emails")
	scheduleCmd.Flags().StringVar(&meetingType, "type", "", "Meeting type name")
	scheduleCmd.Flags().StringVar(&icsPath, "ics", "", "Write the ICS invite to this path")
	_ = scheduleCmd.MarkFlagRequired("title")
	_ = scheduleCmd.MarkFlagRequired("start")

	rootCmd.AddCommand(scheduleCmd)
}
