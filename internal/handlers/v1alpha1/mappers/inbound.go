package mappers

import (
	"github.com/kubev2v/pcap-query/api/v1alpha1"
	"github.com/kubev2v/pcap-query/internal/filter"
	"github.com/kubev2v/pcap-query/internal/job"
)

func FixedRequestFromApi(req v1alpha1.FixedPcapRequest) filter.FixedRequest {
	return filter.FixedRequest{
		BasePath:              req.BasePath,
		BaseInterimResultPath: req.BaseInterimResultPath,
		FinalOutputPath:       req.FinalOutputPath,
		StartTimeMs:           req.StartTimeMs,
		EndTimeMs:             req.EndTimeMs,
		NumReducers:           req.NumReducers,
		IPSrcAddr:             req.IpSrcAddr,
		IPDstAddr:             req.IpDstAddr,
		IPSrcPort:             req.IpSrcPort,
		IPDstPort:             req.IpDstPort,
		Protocol:              req.Protocol,
		IncludeReverse:        req.IncludeReverse,
		PacketFilter:          req.PacketFilter,
	}
}

// JobStateFromApi returns nil for an empty state, which selects every job.
func JobStateFromApi(s string) (*job.State, bool) {
	if s == "" {
		return nil, true
	}
	status, ok := v1alpha1.StringToJobStatus(s)
	if !ok {
		return nil, false
	}
	state := job.State(status)
	return &state, true
}
