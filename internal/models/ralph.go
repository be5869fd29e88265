// Package models defines the core data types for Ralph.
package models

import "time"

// RalphStatus represents the lifecycle state of a Ralph loop.
type RalphStatus string

const (
	RalphStatusIdle       RalphStatus = "idle"
	RalphStatusActive     RalphStatus = "active"
	RalphStatusStopping   RalphStatus = "stopping"
	RalphStatusCompleted  RalphStatus = "completed"
	RalphStatusCancelled  RalphStatus = "cancelled"
	RalphStatusMaxReached RalphStatus = "max_reached"
	RalphStatusError      RalphStatus = "error"
)

// Terminal reports whether the status is final. No further iterations
// occur once a loop reaches a terminal status.
func (s RalphStatus) Terminal() bool {
	switch s {
	case RalphStatusCompleted, RalphStatusCancelled, RalphStatusMaxReached, RalphStatusError:
		return true
	default:
		return false
	}
}

// TaskProgress is a snapshot of checklist progress in a project file.
type TaskProgress struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Percentage returns completion as 0-100.
func (p TaskProgress) Percentage() float64 {
	if p.Total == 0 {
		return 0.0
	}
	return float64(p.Completed) / float64(p.Total) * 100.0
}

// AllDone reports whether every task is checked off.
func (p TaskProgress) AllDone() bool {
	return p.Total > 0 && p.Completed >= p.Total
}

// IterationResult captures a single loop iteration. Results are
// append-only: once added to RalphState.Iterations they are never mutated.
type IterationResult struct {
	Number              int          `json:"number"`
	StartedAt           time.Time    `json:"started_at"`
	EndedAt             time.Time    `json:"ended_at"`
	DurationSeconds     float64      `json:"duration_seconds"`
	ExitCode            int          `json:"exit_code"`
	InputTokens         int          `json:"input_tokens"`
	OutputTokens        int          `json:"output_tokens"`
	CacheReadTokens     int          `json:"cache_read_tokens"`
	CacheCreationTokens int          `json:"cache_creation_tokens"`
	CostUSD             float64      `json:"cost_usd"`
	ToolCalls           int          `json:"tool_calls"`
	Model               string       `json:"model,omitempty"`
	ResultText          string       `json:"result_text,omitempty"`
	PromiseFound        bool         `json:"promise_found"`
	TimedOut            bool         `json:"timed_out"`
	StopReason          string       `json:"stop_reason,omitempty"`
	TasksBefore         TaskProgress `json:"tasks_before"`
	TasksAfter          TaskProgress `json:"tasks_after"`
}

// RalphState is the persisted source of truth for a loop. The runner is
// the sole regular writer; stop/cancel commands perform best-effort
// status writes that the runner reconciles by re-reading before every
// save of its own.
type RalphState struct {
	Status             RalphStatus       `json:"status"`
	ProjectFile        string            `json:"project_file"`
	ProjectPath        string            `json:"project_path"`
	Iteration          int               `json:"iteration"`
	MaxIterations      int               `json:"max_iterations"`
	CompletionPromise  string            `json:"completion_promise,omitempty"`
	PermissionMode     string            `json:"permission_mode"`
	Model              string            `json:"model,omitempty"`
	MaxBudgetUSD       float64           `json:"max_budget_usd,omitempty"`
	StartedAt          time.Time         `json:"started_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	EndedAt            *time.Time        `json:"ended_at,omitempty"`
	IterationStartedAt *time.Time        `json:"iteration_started_at,omitempty"`
	TasksTotal         int               `json:"tasks_total"`
	TasksCompleted     int               `json:"tasks_completed"`
	ErrorMessage       string            `json:"error_message,omitempty"`
	Iterations         []IterationResult `json:"iterations"`
}

// Validate checks if the state is well-formed.
func (s *RalphState) Validate() error {
	validation := &ValidationErrors{}
	if s.ProjectFile == "" {
		validation.AddMessage("project_file", "project_file is required")
	}
	if s.ProjectPath == "" {
		validation.AddMessage("project_path", "project_path is required")
	}
	if s.Iteration < 0 {
		validation.AddMessage("iteration", "iteration must be >= 0")
	}
	if s.MaxIterations < 0 {
		validation.AddMessage("max_iterations", "max_iterations must be >= 0")
	}
	if s.TasksCompleted > s.TasksTotal {
		validation.AddMessage("tasks_completed", "tasks_completed cannot exceed tasks_total")
	}
	switch s.Status {
	case RalphStatusIdle, RalphStatusActive, RalphStatusStopping,
		RalphStatusCompleted, RalphStatusCancelled, RalphStatusMaxReached, RalphStatusError:
	default:
		validation.AddMessage("status", "invalid ralph status")
	}
	return validation.Err()
}

// TaskProgressSnapshot returns the current task counters as TaskProgress.
func (s *RalphState) TaskProgressSnapshot() TaskProgress {
	return TaskProgress{Total: s.TasksTotal, Completed: s.TasksCompleted}
}

// TotalCostUSD sums cost across recorded iterations.
func (s *RalphState) TotalCostUSD() float64 {
	total := 0.0
	for _, it := range s.Iterations {
		total += it.CostUSD
	}
	return total
}

// TotalTokens sums input and output tokens across recorded iterations.
func (s *RalphState) TotalTokens() (in, out int) {
	for _, it := range s.Iterations {
		in += it.InputTokens
		out += it.OutputTokens
	}
	return in, out
}

// TotalToolCalls sums tool invocations across recorded iterations.
func (s *RalphState) TotalToolCalls() int {
	total := 0
	for _, it := range s.Iterations {
		total += it.ToolCalls
	}
	return total
}
