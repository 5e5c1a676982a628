package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/timelyapp/timely/internal/model"
)

func init() {
	availCmd := &cobra.Command{Use: "availability", Short: "Weekly availability operations"}

	var days, dayStart, dayEnd, tz string

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Replace the weekly availability window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var workDays []time.Weekday
			for _, name := range strings.Split(days, ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				d, err := model.ParseWeekday(name)
				if err != nil {
					return err
				}
				workDays = append(workDays, d)
			}
			start, err := model.ParseMinuteOfDay(dayStart)
			if err != nil {
				return err
			}
			end, err := model.ParseMinuteOfDay(dayEnd)
			if err != nil {
				return err
			}
			if tz == "" {
				tz = a.cfg.Timezone
			}

			avail := model.Availability{WorkDays: workDays, DayStart: start, DayEnd: end, Timezone: tz}
			ctx := context.Background()
			if err := a.store.ReplaceAvailability(ctx, avail); err != nil {
				return err
			}
			if err := a.store.Flush(ctx); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "availability updated")
			return nil
		},
	}
	setCmd.Flags().StringVar(&days, "days", "Monday,Tuesday,Wednesday,Thursday,Friday", "Comma-separated working days")
	setCmd.Flags().StringVar(&dayStart, "start", "09:00", "Day start, HH:MM")
	setCmd.Flags().StringVar(&dayEnd, "end", "17:00", "Day end, HH:MM")
	setCmd.Flags().StringVar(&tz, "tz", "", "IANA timezone (defaults to configured timezone)")
	availCmd.AddCommand(setCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored availability window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Load(context.Background()); err != nil {
				return err
			}
			avail := a.store.Availability()
			names := make([]string, len(avail.WorkDays))
			for i, d := range avail.WorkDays {
				names[i] = d.String()
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s %s-%s (%s)\n",
				strings.Join(names, ","), avail.DayStart, avail.DayEnd, avail.Timezone)
			return nil
		},
	}
	availCmd.AddCommand(showCmd)

	rootCmd.AddCommand(availCmd)
}
