package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	authCmd := &cobra.Command{Use: "auth", Short: "Identity operations"}

	var email, password, firstName, lastName string

	signinCmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with email and password, printing the user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.auth.SignIn(context.Background(), email, password); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, a.auth.CurrentUserID())
			return nil
		},
	}
	signinCmd.Flags().StringVarP(&email, "email", "e", "", "Account email (required)")
	signinCmd.Flags().StringVarP(&password, "password", "p", "", "Account password (required)")
	_ = signinCmd.MarkFlagRequired("email")
	_ = signinCmd.MarkFlagRequired("password")
	authCmd.AddCommand(signinCmd)

	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account, printing the user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.auth.SignUp(context.Background(), email, password, firstName, lastName); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, a.auth.CurrentUserID())
			return nil
		},
	}
	signupCmd.Flags().StringVarP(&email, "email", "e", "", "Account email (required)")
	signupCmd.Flags().StringVarP(&password, "password", "p", "", "Account password (required)")
	signupCmd.Flags().StringVar(&firstName, "first", "", "First name")
	signupCmd.Flags().StringVar(&lastName, "last", "", "Last name")
	_ = signupCmd.MarkFlagRequired("email")
	_ = signupCmd.MarkFlagRequired("password")
	authCmd.AddCommand(signupCmd)

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Send a password reset mail",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.auth.SendPasswordReset(context.Background(), email); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "reset mail requested")
			return nil
		},
	}
	resetCmd.Flags().StringVarP(&email, "email", "e", "", "Account email (required)")
	_ = resetCmd.MarkFlagRequired("email")
	authCmd.AddCommand(resetCmd)

	rootCmd.AddCommand(authCmd)
}
