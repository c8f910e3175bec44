package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func NewCmdKill() *cobra.Command {
	o := DefaultGlobalOptions()
	cmd := &cobra.Command{
		Use:   "kill JOB_ID",
		Short: "Kill a running pcap job.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			status, err := o.Client().Kill(ctx, args[0])
			if err != nil {
				return fmt.Errorf("killing job/%s: %w", args[0], err)
			}
			return printStatuses(cmd.OutOrStdout(), tableFormat, *status)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}
