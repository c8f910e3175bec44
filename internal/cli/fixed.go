package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	api "github.com/kubev2v/pcap-query/api/v1alpha1"
)

type FixedOptions struct {
	GlobalOptions

	Output         string
	IpSrcAddr      string
	IpDstAddr      string
	IpSrcPort      int
	IpDstPort      int
	Protocol       string
	PacketFilter   string
	IncludeReverse bool
	StartTimeMs    int64
	EndTimeMs      int64
	NumReducers    int
}

func DefaultFixedOptions() *FixedOptions {
	return &FixedOptions{
		GlobalOptions: DefaultGlobalOptions(),
		IpSrcPort:     -1,
		IpDstPort:     -1,
		StartTimeMs:   -1,
		EndTimeMs:     -1,
	}
}

func NewCmdFixed() *cobra.Command {
	o := DefaultFixedOptions()
	cmd := &cobra.Command{
		Use:   "fixed [flags]",
		Short: "Submit a fixed filter pcap query.",
		Args:  cobra.NoArgs,
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

func (o *FixedOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
	fs.StringVar(&o.IpSrcAddr, "ip-src-addr", o.IpSrcAddr, "Source address of the packets.")
	fs.StringVar(&o.IpDstAddr, "ip-dst-addr", o.IpDstAddr, "Destination address of the packets.")
	fs.IntVar(&o.IpSrcPort, "ip-src-port", o.IpSrcPort, "Source port of the packets.")
	fs.IntVar(&o.IpDstPort, "ip-dst-port", o.IpDstPort, "Destination port of the packets.")
	fs.StringVar(&o.Protocol, "protocol", o.Protocol, "Protocol number or name.")
	fs.StringVar(&o.PacketFilter, "packet-filter", o.PacketFilter, "Free form packet filter expression.")
	fs.BoolVar(&o.IncludeReverse, "include-reverse", o.IncludeReverse, "Also match the reverse direction.")
	fs.Int64Var(&o.StartTimeMs, "start-time-ms", o.StartTimeMs, "Start of the time window in epoch milliseconds.")
	fs.Int64Var(&o.EndTimeMs, "end-time-ms", o.EndTimeMs, "End of the time window in epoch milliseconds. Defaults to now.")
	fs.IntVar(&o.NumReducers, "num-reducers", o.NumReducers, "Number of reducers used by the job.")
}

func (o *FixedOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	return validateOutput(o.Output)
}

// Request builds the api request. Flags left at their default are not sent.
func (o *FixedOptions) Request(fs *pflag.FlagSet) api.FixedPcapRequest {
	req := api.FixedPcapRequest{}
	if fs.Changed("ip-src-addr") {
		req.IpSrcAddr = &o.IpSrcAddr
	}
	if fs.Changed("ip-dst-addr") {
		req.IpDstAddr = &o.IpDstAddr
	}
	if fs.Changed("ip-src-port") {
		req.IpSrcPort = &o.IpSrcPort
	}
	if fs.Changed("ip-dst-port") {
		req.IpDstPort = &o.IpDstPort
	}
	if fs.Changed("protocol") {
		req.Protocol = &o.Protocol
	}
	if fs.Changed("packet-filter") {
		req.PacketFilter = &o.PacketFilter
	}
	if fs.Changed("include-reverse") {
		req.IncludeReverse = &o.IncludeReverse
	}
	if fs.Changed("start-time-ms") {
		req.StartTimeMs = &o.StartTimeMs
	}
	if fs.Changed("end-time-ms") {
		req.EndTimeMs = &o.EndTimeMs
	}
	if fs.Changed("num-reducers") {
		req.NumReducers = &o.NumReducers
	}
	return req
}

func (o *FixedOptions) Run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	status, err := o.Client().Fixed(ctx, o.Request(cmd.Flags()))
	if err != nil {
		return fmt.Errorf("submitting query: %w", err)
	}
	return printStatuses(cmd.OutOrStdout(), o.Output, *status)
}
