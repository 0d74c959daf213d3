//go:build unit

package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/squarefactory/cobalt-api/mocks"
	"github.com/squarefactory/cobalt-api/policy"
	"github.com/squarefactory/cobalt-api/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const user = "alice"

var (
	// Saturday noon: the only time the off-hours values apply.
	weekendOfficeHours = time.Date(2023, 10, 7, 12, 0, 0, 0, time.UTC)
	// Tuesday noon
	weekday = time.Date(2023, 10, 3, 12, 0, 0, 0, time.UTC)
	// Sunday 23:00
	weekendNight = time.Date(2023, 10, 8, 23, 0, 0, 0, time.UTC)
)

func jobsOf(users ...string) []*scheduler.Job {
	jobs := make([]*scheduler.Job, 0, len(users))
	for i, u := range users {
		jobs = append(jobs, &scheduler.Job{ID: i + 1, User: u})
	}
	return jobs
}

func TestNew(t *testing.T) {
	tests := []struct {
		occupancy float64
		valid     bool
	}{
		{occupancy: 0, valid: false},
		{occupancy: -0.5, valid: false},
		{occupancy: 1.01, valid: false},
		{occupancy: 0.01, valid: true},
		{occupancy: 0.5, valid: true},
		{occupancy: 1, valid: true},
	}
	for _, tt := range tests {
		config := policy.DefaultConfig()
		config.MaxOccupancy = tt.occupancy

		p, err := policy.New(config)

		if tt.valid {
			assert.NoError(t, err, tt.occupancy)
			assert.NotNil(t, p)
		} else {
			assert.True(t, errors.Is(err, policy.ErrInvalidOccupancy), tt.occupancy)
		}
	}
}

func TestApplyOffHours(t *testing.T) {
	// Arrange
	p, err := policy.New(policy.DefaultConfig())
	require.NoError(t, err)
	q := &scheduler.Queue{
		Name:       "default",
		TotalNodes: 10,
		MaxTime:    6 * time.Hour,
		Jobs:       jobsOf(user, user, "bob"),
	}

	// Act
	queues := p.Apply([]*scheduler.Queue{q}, user, weekendOfficeHours)

	// Assert
	require.Len(t, queues, 1)
	assert.Equal(t, 3, q.MaxUserNodes)
	assert.Equal(t, 2*time.Hour, q.MaxTime)
}

func TestApplyOfficeRegime(t *testing.T) {
	p, err := policy.New(policy.DefaultConfig())
	require.NoError(t, err)

	for _, now := range []time.Time{weekday, weekendNight} {
		q := &scheduler.Queue{Name: "default", TotalNodes: 10, MaxTime: 6 * time.Hour}

		queues := p.Apply([]*scheduler.Queue{q}, user, now)

		require.Len(t, queues, 1)
		// ceil(10 * 0.25)
		assert.Equal(t, 3, q.MaxUserNodes, now)
		assert.Equal(t, 30*time.Minute, q.MaxTime, now)
	}
}

func TestApplyZeroCapacityQueue(t *testing.T) {
	p, err := policy.New(policy.DefaultConfig())
	require.NoError(t, err)
	q := &scheduler.Queue{Name: "empty", TotalNodes: 0, MaxTime: time.Hour}

	queues := p.Apply([]*scheduler.Queue{q}, user, weekendOfficeHours)

	require.Len(t, queues, 1)
	assert.Equal(t, 1, q.MaxUserNodes)
}

func TestApplyDropsFullQueues(t *testing.T) {
	// Arrange
	p, err := policy.New(policy.DefaultConfig())
	require.NoError(t, err)
	full := &scheduler.Queue{Name: "full", TotalNodes: 2, MaxTime: time.Hour, Jobs: jobsOf(user)}
	free := &scheduler.Queue{Name: "free", TotalNodes: 2, MaxTime: time.Minute}

	// Act
	queues := p.Apply([]*scheduler.Queue{full, free}, user, weekendOfficeHours)

	// Assert
	require.Len(t, queues, 1)
	assert.Same(t, free, queues[0])
	assert.Equal(t, 0, full.MaxUserNodes)
	// the queue's own limit is lower than the policy ceiling
	assert.Equal(t, time.Minute, free.MaxTime)
}

func TestQueues(t *testing.T) {
	// Arrange
	executor := mocks.NewExecutor(t)
	executor.On("Exec", mock.Anything, "qstat", "-Q", "-l").
		Return("Name: default\nTotalNodes: 10\nMaxTime: 06:00:00\n", nil)
	executor.On("Exec", mock.Anything, "qstat", "-f", "-l").
		Return("JobID: 1\nUser: alice\nQueue: default\n\nJobID: 2\nUser: alice\nQueue: default\n", nil)
	cobalt := scheduler.NewCobalt(executor, user)
	p, err := policy.New(
		policy.DefaultConfig(),
		policy.WithClock(func() time.Time { return weekendOfficeHours }),
	)
	require.NoError(t, err)

	// Act
	queues, err := p.Queues(context.Background(), cobalt)

	// Assert
	require.NoError(t, err)
	require.Len(t, queues, 1)
	assert.Equal(t, 3, queues[0].MaxUserNodes)
	assert.Equal(t, 2*time.Hour, queues[0].MaxTime)
}
