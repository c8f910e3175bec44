package v1alpha1

func StringToJobStatus(s string) (JobStatus, bool) {
	switch s {
	case string(JobStatusRunning):
		return JobStatusRunning, true
	case string(JobStatusSucceeded):
		return JobStatusSucceeded, true
	case string(JobStatusFailed):
		return JobStatusFailed, true
	case string(JobStatusKilled):
		return JobStatusKilled, true
	default:
		return "", false
	}
}
