package v1alpha1

// JobStatus is the string form of a pcap job state.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusKilled    JobStatus = "KILLED"
)

// FixedPcapRequest defines model for a fixed filter pcap query.
type FixedPcapRequest struct {
	BasePath              *string `json:"basePath,omitempty"`
	BaseInterimResultPath *string `json:"baseInterimResultPath,omitempty"`
	FinalOutputPath       *string `json:"finalOutputPath,omitempty"`
	StartTimeMs           *int64  `json:"startTimeMs,omitempty" validate:"omitempty,gte=0"`
	EndTimeMs             *int64  `json:"endTimeMs,omitempty" validate:"omitempty,gte=0"`
	NumReducers           *int    `json:"numReducers,omitempty" validate:"omitempty,gt=0"`
	IpSrcAddr             *string `json:"ipSrcAddr,omitempty" validate:"omitempty,ip_addr"`
	IpDstAddr             *string `json:"ipDstAddr,omitempty" validate:"omitempty,ip_addr"`
	IpSrcPort             *int    `json:"ipSrcPort,omitempty" validate:"omitempty,gte=0,lte=65535"`
	IpDstPort             *int    `json:"ipDstPort,omitempty" validate:"omitempty,gte=0,lte=65535"`
	Protocol              *string `json:"protocol,omitempty" validate:"omitempty,protocol"`
	IncludeReverse        *bool   `json:"includeReverse,omitempty"`
	PacketFilter          *string `json:"packetFilter,omitempty" validate:"omitempty,packet_filter"`
}

// PcapStatus defines model for the public status of a pcap job.
type PcapStatus struct {
	JobId           string    `json:"jobId"`
	JobStatus       JobStatus `json:"jobStatus"`
	Description     string    `json:"description"`
	PercentComplete float64   `json:"percentComplete"`
	PageTotal       *int      `json:"pageTotal,omitempty"`
}

// PcapConfiguration defines model for the submitted query of a job.
type PcapConfiguration struct {
	BasePath              string            `json:"basePath"`
	BaseInterimResultPath string            `json:"baseInterimResultPath"`
	FinalOutputPath       string            `json:"finalOutputPath"`
	StartTimeMs           int64             `json:"startTimeMs"`
	EndTimeMs             int64             `json:"endTimeMs"`
	NumReducers           int               `json:"numReducers"`
	RecordsPerFile        int               `json:"recordsPerFile"`
	Fields                map[string]string `json:"fields"`
}

// Pdml is the decoded form of one result page.
type Pdml struct {
	Version     string   `json:"version"`
	Creator     string   `json:"creator"`
	Time        string   `json:"time"`
	CaptureFile string   `json:"captureFile"`
	Packets     []Packet `json:"packets"`
}

type Packet struct {
	Protos []Proto `json:"protos"`
}

type Proto struct {
	Name     string  `json:"name"`
	Pos      string  `json:"pos"`
	Showname string  `json:"showname"`
	Size     string  `json:"size"`
	Hide     string  `json:"hide"`
	Fields   []Field `json:"fields,omitempty"`
}

// Field is a protocol field. Fields nest without depth limit.
type Field struct {
	Name          string  `json:"name"`
	Pos           string  `json:"pos"`
	Showname      string  `json:"showname"`
	Size          string  `json:"size"`
	Value         string  `json:"value"`
	Show          string  `json:"show"`
	Hide          string  `json:"hide,omitempty"`
	Unmaskedvalue string  `json:"unmaskedvalue,omitempty"`
	Fields        []Field `json:"fields,omitempty"`
}

// Error defines model for Error.
type Error struct {
	Message   string  `json:"message"`
	RequestId *string `json:"requestId,omitempty"`
}
