package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hazemfarra/argus/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize argus configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure argus and generates a .argus.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
