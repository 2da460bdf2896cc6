package statsstore

import "time"

// RunRecord is one finalized fastpasta run, kept as an optional SQL-backed
// history on top of the file-based stats comparison of spec.md §6.
type RunRecord struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"id"`
	StartedAt    time.Time `gorm:"column:started_at" json:"started_at"`
	FinishedAt   time.Time `gorm:"column:finished_at" json:"finished_at"`
	InputPath    string    `gorm:"column:input_path" json:"input_path"`
	RDHSeen      uint64    `gorm:"column:rdh_seen" json:"rdh_seen"`
	RDHFiltered  uint64    `gorm:"column:rdh_filtered" json:"rdh_filtered"`
	PayloadBytes uint64    `gorm:"column:payload_bytes" json:"payload_bytes"`
	ErrorCount   uint64    `gorm:"column:error_count" json:"error_count"`
	HasFatal     bool      `gorm:"column:has_fatal" json:"has_fatal"`
	SnapshotJSON []byte    `gorm:"column:snapshot_json" json:"snapshot_json"`
}

// TableName pins the GORM table name independent of the struct name.
func (RunRecord) TableName() string { return "run_records" }
