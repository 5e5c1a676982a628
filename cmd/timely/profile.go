package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/timelyapp/timely/internal/model"
)

func init() {
	profileCmd := &cobra.Command{Use: "profile", Short: "User profile operations"}

	var first, last, email, purpose, preference, calendarProvider, phone string
	var onboarded bool

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Merge profile fields into the user document",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if userFlag == "" {
				return model.ErrAuthenticationRequired
			}

			p := model.UserProfile{
				ID:                   userFlag,
				FirstName:            first,
				LastName:             last,
				Email:                email,
				Purpose:              purpose,
				SchedulingPreference: preference,
				CalendarProvider:     calendarProvider,
				OnboardingCompleted:  onboarded,
				PhoneNumber:          phone,
				CreatedAt:            time.Now().UTC(),
			}
			if err := a.gateway.SaveProfile(context.Background(), userFlag, p); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "profile saved")
			return nil
		},
	}
	setCmd.Flags().StringVar(&first, "first", "", "First name")
	setCmd.Flags().StringVar(&last, "last", "", "Last name")
	setCmd.Flags().StringVarP(&email, "email", "e", "", "Email (required)")
	setCmd.Flags().StringVar(&purpose, "purpose", "", "Usage purpose")
	setCmd.Flags().StringVar(&preference, "preference", "", "Scheduling preference")
	setCmd.Flags().StringVar(&calendarProvider, "calendar", "", "Calendar provider")
	setCmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	setCmd.Flags().BoolVar(&onboarded, "onboarded", false, "Mark onboarding as completed")
	_ = setCmd.MarkFlagRequired("email")
	profileCmd.AddCommand(setCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the stored profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if userFlag == "" {
				return model.ErrAuthenticationRequired
			}

			p, err := a.gateway.LoadProfile(context.Background(), userFlag)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s <%s>\n", p.DisplayName(), p.Email)
			if p.Purpose != "" {
				_, _ = fmt.Fprintf(os.Stdout, "purpose: %s\n", p.Purpose)
			}
			_, _ = fmt.Fprintf(os.Stdout, "onboarding completed: %t\n", p.OnboardingCompleted)
			return nil
		},
	}
	profileCmd.AddCommand(showCmd)

	rootCmd.AddCommand(profileCmd)
}
