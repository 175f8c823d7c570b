// Package events provides event management functionality.
package events

import "time"

// EventType identifies a kind of event
type EventType string

const (
	// ScanStarted is emitted when a screening scan begins
	ScanStarted EventType = "SCAN_STARTED"
	// StockScored is emitted for every stock that passes the screening gate
	StockScored EventType = "STOCK_SCORED"
	// ScanCompleted is emitted when a scan finishes
	ScanCompleted EventType = "SCAN_COMPLETED"
	// BackupCompleted is emitted after a database backup is uploaded
	BackupCompleted EventType = "BACKUP_COMPLETED"
	// ErrorOccurred is emitted when a background operation fails
	ErrorOccurred EventType = "ERROR_OCCURRED"
)

// AllEventTypes lists every event type, in emission order of a typical scan
var AllEventTypes = []EventType{
	ScanStarted,
	StockScored,
	ScanCompleted,
	BackupCompleted,
	ErrorOccurred,
}

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
