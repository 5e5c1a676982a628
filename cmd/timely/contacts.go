package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	contactsCmd := &cobra.Command{Use: "contacts", Short: "Contact operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts derived from meeting participants",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Load(context.Background()); err != nil {
				return err
			}
			for _, c := range a.store.Contacts() {
				_, _ = fmt.Fprintf(os.Stdout, "%-30s  %-30s  %d meetings\n", c.DisplayName, c.Email, c.MeetingCount)
			}
			return nil
		},
	}
	contactsCmd.AddCommand(listCmd)

	rootCmd.AddCommand(contactsCmd)
}
