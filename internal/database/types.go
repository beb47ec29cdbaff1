package database

import (
	"time"

	"github.com/google/uuid"
)

// Item is one row of the item catalog.
type Item struct {
	ItemID    uint32
	Name      string
	IconID    uint32
	StackSize uint32
	CanBeHQ   bool
}

// Tomestone kinds as stored in the tomestones table.
const (
	TomestoneKindEvergreen    = 1
	TomestoneKindStandard     = 2
	TomestoneKindDiscontinued = 4
)

// Tomestones holds the item ids currently filling each tomestone role. A zero
// id means the role has no released tomestone.
type Tomestones struct {
	Evergreen    uint32
	Discontinued uint32
	Standard     uint32
	Limited      uint32
	WeeklyLimit  uint32
}

// HistoryEntry records one chat alert delivery.
type HistoryEntry struct {
	HistoryID    int64     `json:"history_id"`
	BatchID      uuid.UUID `json:"batch_id"`
	AlertID      string    `json:"alert_id"`
	RuleID       uuid.UUID `json:"rule_id"`
	SubjectIndex int       `json:"subject_index"`
	SubjectName  string    `json:"subject_name"`
	Held         uint32    `json:"held"`
	Cap          uint32    `json:"cap"`
	Message      string    `json:"message"`
	Channels     []string  `json:"channels"`
	SentAt       time.Time `json:"sent_at"`
}
