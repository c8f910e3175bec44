package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kubev2v/pcap-query/internal/cli"
)

func main() {
	command := NewPcapCtlCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewPcapCtlCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pcap [flags] [options]",
		Short: "pcap submits and inspects pcap query jobs.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdFixed())
	cmd.AddCommand(cli.NewCmdGet())
	cmd.AddCommand(cli.NewCmdKill())
	cmd.AddCommand(cli.NewCmdPdml())
	cmd.AddCommand(cli.NewCmdRaw())

	return cmd
}
