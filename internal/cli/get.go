package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	api "github.com/kubev2v/pcap-query/api/v1alpha1"
)

type GetOptions struct {
	GlobalOptions

	Output string
	State  string
	Config bool
}

func DefaultGetOptions() *GetOptions {
	return &GetOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdGet() *cobra.Command {
	o := DefaultGetOptions()
	cmd := &cobra.Command{
		Use:   "get [JOB_ID]",
		Short: "Display one or all of your pcap jobs.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd, args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *GetOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
	fs.StringVar(&o.State, "state", o.State, "Only list jobs in this state.")
	fs.BoolVar(&o.Config, "config", o.Config, "Show the submitted query of the job instead of its status.")
}

func (o *GetOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(args) == 1 && o.State != "" {
		return fmt.Errorf("--state cannot be used with a job id")
	}
	if len(args) == 0 && o.Config {
		return fmt.Errorf("--config requires a job id")
	}
	return validateOutput(o.Output)
}

func (o *GetOptions) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c := o.Client()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		statuses, err := c.List(ctx, strings.ToUpper(o.State))
		if err != nil {
			return fmt.Errorf("listing jobs: %w", err)
		}
		return printStatuses(out, o.Output, statuses...)
	}

	if o.Config {
		cfg, err := c.Configuration(ctx, args[0])
		if err != nil {
			return fmt.Errorf("reading job/%s: %w", args[0], err)
		}
		return printObject(out, o.Output, cfg)
	}

	status, err := c.Status(ctx, args[0])
	if err != nil {
		return fmt.Errorf("reading job/%s: %w", args[0], err)
	}
	return printStatuses(out, o.Output, []api.PcapStatus{*status}...)
}
