package session

import (
	"sort"
	"time"
)

// ReportEntry is one task's line in the final report.
type ReportEntry struct {
	TaskID       string `json:"task_id"`
	Status       Status `json:"status"`
	Layer        int    `json:"layer"`
	AttemptCount int    `json:"attempt_count"`
	Message      string `json:"message,omitempty"`
	RootCause    string `json:"root_cause,omitempty"`
}

// Report summarizes a finished session: every task's terminal status,
// with each skipped task naming the fatal task that caused it.
type Report struct {
	SessionID string         `json:"session_id"`
	State     State          `json:"state"`
	Duration  time.Duration  `json:"duration"`
	Counts    map[Status]int `json:"counts"`
	Tasks     []ReportEntry  `json:"tasks"`
}

// BuildReport renders the session into its final report, ordered by
// layer then task id.
func BuildReport(s *Session) *Report {
	entries := make([]ReportEntry, 0, len(s.Results))
	for _, r := range s.Results {
		entries = append(entries, ReportEntry{
			TaskID:       r.TaskID,
			Status:       r.Status,
			Layer:        r.Layer,
			AttemptCount: r.AttemptCount,
			Message:      r.Message,
			RootCause:    r.RootCause,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Layer != entries[j].Layer {
			return entries[i].Layer < entries[j].Layer
		}
		return entries[i].TaskID < entries[j].TaskID
	})

	end := s.EndedAt
	if end.IsZero() {
		end = time.Now()
	}
	return &Report{
		SessionID: s.ID,
		State:     s.State,
		Duration:  end.Sub(s.StartedAt),
		Counts:    s.CountByStatus(),
		Tasks:     entries,
	}
}

// Succeeded reports whether every task reached Succeeded.
func (r *Report) Succeeded() bool {
	if r.State != StateCompleted {
		return false
	}
	for _, e := range r.Tasks {
		if e.Status != StatusSucceeded {
			return false
		}
	}
	return true
}
