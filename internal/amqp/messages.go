package amqp

import (
	"encoding/json"
	"time"
)

// ReportPublishedMessage announces a saved report snapshot to downstream
// consumers (document rendering, member messaging). It carries only the
// snapshot id and period metadata; consumers fetch the full snapshot.
type ReportPublishedMessage struct {
	SnapshotID  string    `json:"snapshot_id"`
	ReportType  string    `json:"report_type"`
	PeriodStart string    `json:"period_start"`
	PeriodEnd   string    `json:"period_end"`
	CreatedBy   string    `json:"created_by"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewReportPublishedMessage(snapshotID, reportType, periodStart, periodEnd, createdBy string) *ReportPublishedMessage {
	return &ReportPublishedMessage{
		SnapshotID:  snapshotID,
		ReportType:  reportType,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		CreatedBy:   createdBy,
		Timestamp:   time.Now(),
	}
}

func (m *ReportPublishedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportPublishedMessageFromJSON(data []byte) (*ReportPublishedMessage, error) {
	var msg ReportPublishedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
