package lifecycle

import (
	"gestaoacoes/cmd/internal/domain/entity"
	"math"
)

// Summary aggregates a collection of actions by effective status.
type Summary struct {
	Total            int
	Completed        int
	Pending          int
	Delayed          int
	AwaitingApproval int
	ByStatus         map[entity.ActionStatus]int
	CompletionRate   int
}

// Summarize is a pure function of the given collection; nothing is cached.
func Summarize(actions []*entity.Action, now int64) *Summary {
	s := &Summary{ByStatus: make(map[entity.ActionStatus]int, len(entity.ActionStatuses))}
	for _, st := range entity.ActionStatuses {
		s.ByStatus[st] = 0
	}

	for _, a := range actions {
		status := EffectiveStatus(a, now)
		s.ByStatus[status]++
		s.Total++

		switch status {
		case entity.StatusCompleted:
			s.Completed++
		case entity.StatusDelayed:
			s.Delayed++
		case entity.StatusAwaitingApproval:
			s.AwaitingApproval++
		default:
			s.Pending++
		}
	}

	s.CompletionRate = CompletionRate(s.Completed, s.Total)
	return s
}

// CompletionRate is round(100 * completed / total), or 0 for an empty set.
func CompletionRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}
