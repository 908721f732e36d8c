package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJob(t *testing.T) {
	t.Parallel()

	t.Run("valid payload", func(t *testing.T) {
		t.Parallel()

		job, err := ParseJob([]byte(`{"id":"j1","files":["uploads/a.jpg","uploads/b.jpg"]}`))

		require.NoError(t, err)
		assert.Equal(t, "j1", job.ID)
		assert.Equal(t, []string{"uploads/a.jpg", "uploads/b.jpg"}, job.Files)
	})

	t.Run("not JSON", func(t *testing.T) {
		t.Parallel()

		job, err := ParseJob([]byte("not json"))

		assert.Error(t, err)
		assert.Nil(t, job)
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()

		_, err := ParseJob([]byte(`{"files":["a.jpg"]}`))

		assert.ErrorIs(t, err, ErrEmptyJobID)
	})

	t.Run("no files", func(t *testing.T) {
		t.Parallel()

		_, err := ParseJob([]byte(`{"id":"j1","files":[]}`))

		assert.ErrorIs(t, err, ErrNoJobFiles)
	})

	t.Run("empty file path", func(t *testing.T) {
		t.Parallel()

		_, err := ParseJob([]byte(`{"id":"j1","files":["a.jpg",""]}`))

		assert.ErrorIs(t, err, ErrEmptyJobFile)
	})
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from JobStatus
		next JobStatus
		want bool
	}{
		{"absent to questions_ready", "", JobStatusQuestionsReady, true},
		{"questions_ready to completed", JobStatusQuestionsReady, JobStatusCompleted, true},
		{"questions_ready to abandoned", JobStatusQuestionsReady, JobStatusAbandoned, true},
		{"absent to completed skips a stage", "", JobStatusCompleted, false},
		{"absent to abandoned skips a stage", "", JobStatusAbandoned, false},
		{"completed never reverts", JobStatusCompleted, JobStatusQuestionsReady, false},
		{"completed is terminal", JobStatusCompleted, JobStatusAbandoned, false},
		{"abandoned is terminal", JobStatusAbandoned, JobStatusCompleted, false},
		{"questions_ready does not repeat", JobStatusQuestionsReady, JobStatusQuestionsReady, false},
		{"unknown target status", JobStatusQuestionsReady, JobStatus("failed"), false},
		{"unknown source status", JobStatus("failed"), JobStatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.next))
		})
	}
}

func TestIsValidJobStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidJobStatus(JobStatusQuestionsReady))
	assert.True(t, IsValidJobStatus(JobStatusCompleted))
	assert.True(t, IsValidJobStatus(JobStatusAbandoned))
	assert.False(t, IsValidJobStatus(""))
	assert.False(t, IsValidJobStatus(JobStatus("pending")))
}
