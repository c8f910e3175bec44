package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Canonical names of the fixed filter fields.
const (
	FieldSrcAddr        = "ip_src_addr"
	FieldDstAddr        = "ip_dst_addr"
	FieldSrcPort        = "ip_src_port"
	FieldDstPort        = "ip_dst_port"
	FieldProtocol       = "protocol"
	FieldIncludeReverse = "include_reverse"
	FieldPacketFilter   = "packet_filter"
)

const nanosPerMilli = int64(time.Millisecond)

// FixedRequest is a fixed filter query. A nil pointer means the caller did not set the field.
type FixedRequest struct {
	BasePath              *string
	BaseInterimResultPath *string
	FinalOutputPath       *string
	StartTimeMs           *int64
	EndTimeMs             *int64
	NumReducers           *int

	IPSrcAddr      *string
	IPDstAddr      *string
	IPSrcPort      *int
	IPDstPort      *int
	Protocol       *string
	IncludeReverse *bool
	PacketFilter   *string
}

type Entry struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Predicate is a conjunction of field matches. The zero value matches everything.
type Predicate struct {
	Entries []Entry `json:"entries,omitempty"`
}

// Build returns the conjunction of every field set on the request, in canonical order.
// The raw packet filter, when present, is the last term.
func Build(req FixedRequest) Predicate {
	var p Predicate
	p.addString(FieldSrcAddr, req.IPSrcAddr)
	p.addString(FieldDstAddr, req.IPDstAddr)
	p.addInt(FieldSrcPort, req.IPSrcPort)
	p.addInt(FieldDstPort, req.IPDstPort)
	p.addString(FieldProtocol, req.Protocol)
	if req.IncludeReverse != nil {
		p.Entries = append(p.Entries, Entry{Field: FieldIncludeReverse, Value: strconv.FormatBool(*req.IncludeReverse)})
	}
	p.addString(FieldPacketFilter, req.PacketFilter)
	return p
}

func (p *Predicate) addString(field string, v *string) {
	if v != nil {
		p.Entries = append(p.Entries, Entry{Field: field, Value: *v})
	}
}

func (p *Predicate) addInt(field string, v *int) {
	if v != nil {
		p.Entries = append(p.Entries, Entry{Field: field, Value: strconv.Itoa(*v)})
	}
}

func (p Predicate) MatchAll() bool {
	return len(p.Entries) == 0
}

func (p Predicate) Get(field string) (string, bool) {
	for _, e := range p.Entries {
		if e.Field == field {
			return e.Value, true
		}
	}
	return "", false
}

// Map returns the predicate as field/value pairs. It is never nil.
func (p Predicate) Map() map[string]string {
	m := make(map[string]string, len(p.Entries))
	for _, e := range p.Entries {
		m[e.Field] = e.Value
	}
	return m
}

func (p Predicate) String() string {
	terms := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		if e.Field == FieldPacketFilter {
			terms = append(terms, fmt.Sprintf("(%s)", e.Value))
			continue
		}
		terms = append(terms, fmt.Sprintf("%s == '%s'", e.Field, e.Value))
	}
	return strings.Join(terms, " and ")
}

// Defaults are the process-wide values used for request fields left unset.
type Defaults struct {
	BasePath              string
	BaseInterimResultPath string
	FinalOutputPath       string
	NumReducers           int
	PageSize              int
}

// JobConfig is a fully defaulted query as handed to the execution backend.
type JobConfig struct {
	BasePath              string    `json:"base_path"`
	BaseInterimResultPath string    `json:"base_interim_result_path"`
	FinalOutputPath       string    `json:"final_output_path"`
	StartTimeNs           int64     `json:"start_time_ns"`
	EndTimeNs             int64     `json:"end_time_ns"`
	NumReducers           int       `json:"num_reducers"`
	RecordsPerFile        int       `json:"records_per_file"`
	Predicate             Predicate `json:"predicate"`
}

// NewJobConfig applies request level defaults. An unset end time is now.
func NewJobConfig(req FixedRequest, d Defaults, now time.Time) JobConfig {
	cfg := JobConfig{
		BasePath:              valueOr(req.BasePath, d.BasePath),
		BaseInterimResultPath: valueOr(req.BaseInterimResultPath, d.BaseInterimResultPath),
		FinalOutputPath:       valueOr(req.FinalOutputPath, d.FinalOutputPath),
		NumReducers:           valueOr(req.NumReducers, d.NumReducers),
		RecordsPerFile:        d.PageSize,
		Predicate:             Build(req),
	}

	cfg.StartTimeNs = valueOr(req.StartTimeMs, 0) * nanosPerMilli
	cfg.EndTimeNs = valueOr(req.EndTimeMs, now.UnixMilli()) * nanosPerMilli

	return cfg
}

func valueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
