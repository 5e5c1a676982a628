package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	userFlag string
	rootCmd  = &cobra.Command{
		Use:   "timely",
		Short: "CLI client for the Timely scheduling backend",
	}
)

func main() {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User ID (obtained from 'timely auth signin')")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
