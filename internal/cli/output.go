package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"

	api "github.com/kubev2v/pcap-query/api/v1alpha1"
)

const (
	jsonFormat  = "json"
	yamlFormat  = "yaml"
	tableFormat = "table"
)

var legalOutputTypes = []string{jsonFormat, yamlFormat, tableFormat}

func validateOutput(output string) error {
	if len(output) > 0 && !funk.Contains(legalOutputTypes, output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

// printObject writes v as json or yaml. Any other format falls back to json.
func printObject(w io.Writer, output string, v any) error {
	var (
		marshalled []byte
		err        error
	)
	switch output {
	case yamlFormat:
		marshalled, err = yaml.Marshal(v)
	default:
		marshalled, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshalling resource: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", marshalled)
	return err
}

func printStatuses(w io.Writer, output string, statuses ...api.PcapStatus) error {
	if output == jsonFormat || output == yamlFormat {
		if len(statuses) == 1 {
			return printObject(w, output, statuses[0])
		}
		return printObject(w, output, statuses)
	}

	tw := tabwriter.NewWriter(w, 0, 8, 1, '\t', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPERCENT\tPAGES\tDESCRIPTION")
	for _, s := range statuses {
		pages := "-"
		if s.PageTotal != nil {
			pages = fmt.Sprintf("%d", *s.PageTotal)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%s\t%s\n", s.JobId, s.JobStatus, s.PercentComplete, pages, s.Description)
	}
	return tw.Flush()
}
