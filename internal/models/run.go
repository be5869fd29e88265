package models

import "time"

// RunRecord is a finished loop run as stored in the history database.
// One record summarizes a whole run; per-iteration detail lives in the
// state file while the run is of interest and is folded into totals here.
type RunRecord struct {
	ID             string      `json:"id"`
	ProjectPath    string      `json:"project_path"`
	ProjectFile    string      `json:"project_file"`
	Status         RalphStatus `json:"status"`
	Iterations     int         `json:"iterations"`
	TasksTotal     int         `json:"tasks_total"`
	TasksCompleted int         `json:"tasks_completed"`
	InputTokens    int         `json:"input_tokens"`
	OutputTokens   int         `json:"output_tokens"`
	CostUSD        float64     `json:"cost_usd"`
	ToolCalls      int         `json:"tool_calls"`
	Model          string      `json:"model,omitempty"`
	ErrorMessage   string      `json:"error_message,omitempty"`
	StartedAt      time.Time   `json:"started_at"`
	EndedAt        *time.Time  `json:"ended_at,omitempty"`
}

// NewRunRecord folds a terminal loop state into a history record.
func NewRunRecord(s *RalphState) *RunRecord {
	in, out := s.TotalTokens()
	record := &RunRecord{
		ProjectPath:    s.ProjectPath,
		ProjectFile:    s.ProjectFile,
		Status:         s.Status,
		Iterations:     len(s.Iterations),
		TasksTotal:     s.TasksTotal,
		TasksCompleted: s.TasksCompleted,
		InputTokens:    in,
		OutputTokens:   out,
		CostUSD:        s.TotalCostUSD(),
		ToolCalls:      s.TotalToolCalls(),
		Model:          s.Model,
		ErrorMessage:   s.ErrorMessage,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
	}
	if record.Model == "" {
		for _, it := range s.Iterations {
			if it.Model != "" {
				record.Model = it.Model
				break
			}
		}
	}
	return record
}
