// Package task defines the delegated-work Task entity.
package task

import (
	"encoding/json"

	"github.com/Strob0t/AgentRelay/internal/domain/agent"
	"github.com/Strob0t/AgentRelay/internal/domain/fault"
)

// Status represents the current state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Known reports whether s is a defined task status.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the task can no longer change state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task represents a unit of work delegated from one agent to another.
// Created by the delegator; mutated only by the component performing the
// work; terminal once Status is completed or failed.
type Task struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	DelegatedBy *agent.Identity `json:"delegated_by,omitempty"`
	CompletedBy *agent.Identity `json:"completed_by,omitempty"`
	// CompletedAt is epoch milliseconds; zero until terminal.
	CompletedAt int64           `json:"completed_at,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Err         *fault.Details  `json:"error,omitempty"`
}

// Error is the caller-visible error of a failed delegation.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the outcome of a delegation flow. Status is the caller-visible
// signal; no exception escapes the flow.
type Result struct {
	TaskID      string          `json:"task_id"`
	Status      Status          `json:"status"`
	Output      json.RawMessage `json:"output,omitempty"`
	CompletedBy *agent.Identity `json:"completed_by,omitempty"`
	CompletedAt int64           `json:"completed_at,omitempty"`
	Error       *Error          `json:"error,omitempty"`
}
