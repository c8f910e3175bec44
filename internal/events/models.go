package events

// JobEvent is published when a pcap job is submitted or killed.
type JobEvent struct {
	Owner       string `json:"owner"`
	JobID       string `json:"job_id"`
	State       string `json:"state"`
	Description string `json:"description,omitempty"`
	Filter      string `json:"filter,omitempty"`
}
