package lifecycle

import (
	"gestaoacoes/cmd/internal/domain/entity"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0, CompletionRate(0, 0))
	assert.Equal(t, 33, CompletionRate(1, 3))
	assert.Equal(t, 67, CompletionRate(2, 3))
	assert.Equal(t, 50, CompletionRate(1, 2))
	assert.Equal(t, 100, CompletionRate(4, 4))
}

func TestSummarize(t *testing.T) {
	now := int64(1000)
	actions := []*entity.Action{
		{Status: entity.StatusCompleted, EndDate: 500},
		{Status: entity.StatusPending, EndDate: 500},
		{Status: entity.StatusPending, EndDate: 2000},
		{Status: entity.StatusAwaitingApproval, EndDate: 500},
	}

	s := Summarize(actions, now)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 1, s.Delayed)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.AwaitingApproval)
	assert.Equal(t, 25, s.CompletionRate)
	assert.Equal(t, 0, s.ByStatus[entity.StatusNotViewed])
	assert.Len(t, s.ByStatus, len(entity.ActionStatuses))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 0)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.CompletionRate)
}
