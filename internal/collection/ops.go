package collection

import (
	"fmt"
	"time"

	"pulse-cli/internal/model"
)

// Phase is the lifecycle of one keyed operation.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePending   Phase = "pending"
	PhaseCommitted Phase = "committed"
	PhaseFailed    Phase = "failed"
)

// OpState is the last known state of an operation key.
type OpState struct {
	Key     string    `json:"key"`
	Phase   Phase     `json:"phase"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}

const KeyCreate = "create"

func UpdateKey(id model.ID) string { return fmt.Sprintf("update-%s", id) }
func DeleteKey(id model.ID) string { return fmt.Sprintf("delete-%s", id) }
func StatusKey(id model.ID) string { return fmt.Sprintf("status-%s", id) }

// recordKeys are the mutually exclusive keys of one record.
func recordKeys(id model.ID) []string {
	return []string{UpdateKey(id), DeleteKey(id), StatusKey(id)}
}
