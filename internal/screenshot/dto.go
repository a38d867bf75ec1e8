package screenshot

// CaptureRequestDTO asks the backend to relay a capture to one employee's
// desktop agent.
type CaptureRequestDTO struct {
	EmployeeID int64  `json:"employee_id"`
	TimeLogID  *int64 `json:"time_log_id"`
}

// BatchCaptureRequestDTO relays captures to several employees at once.
type BatchCaptureRequestDTO struct {
	EmployeeIDs []int64 `json:"employee_ids"`
	TimeLogID   *int64  `json:"time_log_id"`
}

// CaptureOutcome is one employee's result inside a batch.
type CaptureOutcome struct {
	EmployeeID int64       `json:"employee_id"`
	Success    bool        `json:"success"`
	Screenshot *Screenshot `json:"screenshot,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// BatchResult aggregates a batch capture. One employee's failure never
// aborts the rest of the batch.
type BatchResult struct {
	Outcomes  []CaptureOutcome `json:"outcomes"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}
