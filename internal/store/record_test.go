package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menupick/menupick/internal/domain"
)

func TestRecordStoreKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "questions:j1", QuestionsKey("j1"))
	assert.Equal(t, "menu_text:j1", MenuTextKey("j1"))
	assert.Equal(t, "status:j1", StatusKey("j1"))
	assert.Equal(t, "user_preferences:j1", PreferencesKey("j1"))
	assert.Equal(t, "result:j1", ResultKey("j1"))
}

func TestRecordStoreStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("absent before first write", func(t *testing.T) {
		t.Parallel()
		records := NewRecordStore(NewMemoryStore())

		_, err := records.GetStatus(ctx, "j1")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("forward transitions succeed", func(t *testing.T) {
		t.Parallel()
		records := NewRecordStore(NewMemoryStore())

		require.NoError(t, records.SetStatus(ctx, "j1", domain.JobStatusQuestionsReady))
		require.NoError(t, records.SetStatus(ctx, "j1", domain.JobStatusCompleted))

		status, err := records.GetStatus(ctx, "j1")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusCompleted, status)
	})

	t.Run("skipping a stage is rejected", func(t *testing.T) {
		t.Parallel()
		records := NewRecordStore(NewMemoryStore())

		err := records.SetStatus(ctx, "j1", domain.JobStatusCompleted)

		assert.ErrorIs(t, err, ErrStatusTransition)
	})

	t.Run("reverting is rejected", func(t *testing.T) {
		t.Parallel()
		records := NewRecordStore(NewMemoryStore())

		require.NoError(t, records.SetStatus(ctx, "j1", domain.JobStatusQuestionsReady))
		require.NoError(t, records.SetStatus(ctx, "j1", domain.JobStatusCompleted))

		err := records.SetStatus(ctx, "j1", domain.JobStatusQuestionsReady)

		assert.ErrorIs(t, err, ErrStatusTransition)
	})

	t.Run("abandoned follows questions_ready only", func(t *testing.T) {
		t.Parallel()
		records := NewRecordStore(NewMemoryStore())

		require.NoError(t, records.SetStatus(ctx, "j1", domain.JobStatusQuestionsReady))
		require.NoError(t, records.SetStatus(ctx, "j1", domain.JobStatusAbandoned))

		err := records.SetStatus(ctx, "j1", domain.JobStatusCompleted)
		assert.ErrorIs(t, err, ErrStatusTransition)
	})
}

func TestRecordStorePreferences(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("absent until written", func(t *testing.T) {
		t.Parallel()
		records := NewRecordStore(NewMemoryStore())

		_, err := records.GetPreferences(ctx, "j1")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("written exactly once, first value wins", func(t *testing.T) {
		t.Parallel()
		records := NewRecordStore(NewMemoryStore())

		require.NoError(t, records.SetPreferences(ctx, "j1", domain.Preferences{"1": "Vegetarian"}))

		err := records.SetPreferences(ctx, "j1", domain.Preferences{"1": "Vegan"})
		assert.ErrorIs(t, err, ErrAlreadySet)

		prefs, err := records.GetPreferences(ctx, "j1")
		require.NoError(t, err)
		assert.Equal(t, domain.Preferences{"1": "Vegetarian"}, prefs)
	})
}

func TestRecordStoreQuestionsRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	records := NewRecordStore(NewMemoryStore())

	questions := domain.QuestionSet{
		"1": {Question: "What type of meal are you in the mood for?", Answers: []string{"Something light"}},
	}
	require.NoError(t, records.SetQuestions(ctx, "j1", questions))

	got, err := records.GetQuestions(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, questions, got)

	// Repeated reads with no further writes return the same value.
	raw1, err := records.GetQuestionsRaw(ctx, "j1")
	require.NoError(t, err)
	raw2, err := records.GetQuestionsRaw(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, raw1, raw2)
}

func TestRecordStoreJobIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	records := NewRecordStore(NewMemoryStore())

	require.NoError(t, records.SetMenuText(ctx, "j1", "menu one"))
	require.NoError(t, records.SetMenuText(ctx, "j2", "menu two"))

	text1, err := records.GetMenuText(ctx, "j1")
	require.NoError(t, err)
	text2, err := records.GetMenuText(ctx, "j2")
	require.NoError(t, err)

	assert.Equal(t, "menu one", text1)
	assert.Equal(t, "menu two", text2)
}
