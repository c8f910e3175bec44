package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type PageOptions struct {
	GlobalOptions

	Page   int
	Output string
	File   string
}

func DefaultPageOptions() *PageOptions {
	return &PageOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Page:          1,
		Output:        jsonFormat,
	}
}

func (o *PageOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.IntVarP(&o.Page, "page", "p", o.Page, "Result page, starting at 1.")
}

func (o *PageOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.Page < 1 {
		return fmt.Errorf("page must be greater than 0")
	}
	return nil
}

func NewCmdPdml() *cobra.Command {
	o := DefaultPageOptions()
	cmd := &cobra.Command{
		Use:   "pdml JOB_ID",
		Short: "Display one result page of a job decoded as pdml.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			if o.Output != jsonFormat && o.Output != yamlFormat {
				return fmt.Errorf("output format must be one of %s, %s", jsonFormat, yamlFormat)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			doc, err := o.Client().Pdml(ctx, args[0], o.Page)
			if err != nil {
				return fmt.Errorf("reading job/%s page %d: %w", args[0], o.Page, err)
			}
			return printObject(cmd.OutOrStdout(), o.Output, doc)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join([]string{jsonFormat, yamlFormat}, ", ")))
	return cmd
}

func NewCmdRaw() *cobra.Command {
	o := DefaultPageOptions()
	cmd := &cobra.Command{
		Use:   "raw JOB_ID",
		Short: "Download one result page of a job as a pcap file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return o.download(ctx, cmd.OutOrStdout(), args[0])
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	cmd.Flags().StringVarP(&o.File, "file", "f", o.File, "Output file. Defaults to pcap_<JOB_ID>_<PAGE>.pcap.")
	return cmd
}

func (o *PageOptions) download(ctx context.Context, out io.Writer, jobID string) error {
	r, err := o.Client().Raw(ctx, jobID, o.Page)
	if err != nil {
		return fmt.Errorf("reading job/%s page %d: %w", jobID, o.Page, err)
	}
	defer r.Close()

	file := o.File
	if file == "" {
		file = fmt.Sprintf("pcap_%s_%d.pcap", jobID, o.Page)
	}
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}

	fmt.Fprintf(out, "%d bytes written to %s\n", n, file)
	return nil
}
