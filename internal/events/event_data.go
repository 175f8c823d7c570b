package events

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// ScanStartedData contains data for ScanStarted events
type ScanStartedData struct {
	ScanID  string `json:"scan_id"`
	Symbols int    `json:"symbols"`
	Trigger string `json:"trigger"`
}

// EventType returns the event type for ScanStartedData
func (d *ScanStartedData) EventType() EventType {
	return ScanStarted
}

// StockScoredData contains data for StockScored events
type StockScoredData struct {
	ScanID         string  `json:"scan_id"`
	Symbol         string  `json:"symbol"`
	Recommendation string  `json:"recommendation"`
	OverallScore   float64 `json:"overall_score"`
	MeetsCriteria  bool    `json:"meets_criteria"`
}

// EventType returns the event type for StockScoredData
func (d *StockScoredData) EventType() EventType {
	return StockScored
}

// ScanCompletedData contains data for ScanCompleted events
type ScanCompletedData struct {
	ScanID     string `json:"scan_id"`
	Scanned    int    `json:"scanned"`
	Scored     int    `json:"scored"`
	Qualified  int    `json:"qualified"`
	Failed     int    `json:"failed"`
	Malformed  int    `json:"malformed"`
	DurationMs int64  `json:"duration_ms"`
}

// EventType returns the event type for ScanCompletedData
func (d *ScanCompletedData) EventType() EventType {
	return ScanCompleted
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
