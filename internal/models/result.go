package models

import "time"

// ResultSet holds the rows of a SELECT in column order.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

type TableLoad struct {
	TableName string `json:"table_name"`
	File      string `json:"file"`
	Rows      int64  `json:"rows"`
}

type RunSummary struct {
	RunID      string      `json:"run_id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Tables     []string    `json:"tables"`
	Loads      []TableLoad `json:"loads"`
	Reports    int         `json:"reports"`
}

type SchedulerStatus struct {
	IsRunning   bool        `json:"is_running"`
	Busy        bool        `json:"busy"`
	Schedule    string      `json:"schedule"`
	Runs        int         `json:"runs"`
	LastRun     string      `json:"last_run,omitempty"`
	NextRun     string      `json:"next_run,omitempty"`
	LastError   string      `json:"last_error,omitempty"`
	LastSummary *RunSummary `json:"last_summary,omitempty"`
}
