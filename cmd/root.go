package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kasuwa",
	Short: "Kasuwa inventory CLI",
	Long:  "Operational commands for the Kasuwa inventory and stock reservation service.",
}

// Execute runs the root command. Applies registered custom commands first.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
