package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "pcap-api",
	Short: "Query pcap captures and decode the results to pdml",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
}
