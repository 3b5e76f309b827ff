package actors

import (
	"testing"
	"time"

	"thewherewhat/internal/models"
	"thewherewhat/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnSuggestionActor(t *testing.T) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSuggestionActor(nil, nil, nil)
	})
	return system, system.Root.Spawn(props)
}

func createTestSuggestion(t *testing.T, system *actor.ActorSystem, pid *actor.PID, title string) *models.Suggestion {
	t.Helper()
	result := ask(t, system, pid, &CreateSuggestionMsg{
		Title:       title,
		Description: "Would be nice",
		Fingerprint: "author-x",
	})
	suggestion, ok := result.(*models.Suggestion)
	require.True(t, ok, "expected suggestion, got %T: %v", result, result)
	return suggestion
}

func TestCreateSuggestionValidation(t *testing.T) {
	system, pid := spawnSuggestionActor(t)

	result := ask(t, system, pid, &CreateSuggestionMsg{Title: "Hi", Fingerprint: "author-x"})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)

	// Whitespace does not count toward the minimum length.
	result = ask(t, system, pid, &CreateSuggestionMsg{Title: "  ab  ", Fingerprint: "author-x"})
	appErr, ok = result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrInvalidInput, appErr.Code)

	suggestion := createTestSuggestion(t, system, pid, "  Dark mode  ")
	assert.Equal(t, "Dark mode", suggestion.Title)
	assert.Equal(t, 0, suggestion.Votes)
}

func TestToggleSuggestionVote(t *testing.T) {
	system, pid := spawnSuggestionActor(t)
	suggestion := createTestSuggestion(t, system, pid, "Dark mode")

	toggle := ask(t, system, pid, &ToggleSuggestionVoteMsg{SuggestionID: suggestion.ID, Fingerprint: "voter-y"}).(*ToggleResult)
	assert.Equal(t, 1, toggle.Votes)
	assert.True(t, toggle.Voted)

	voted := ask(t, system, pid, &GetSuggestionVoteMsg{SuggestionID: suggestion.ID, Fingerprint: "voter-y"})
	assert.True(t, voted.(bool))

	// Second toggle retracts the vote
	toggle = ask(t, system, pid, &ToggleSuggestionVoteMsg{SuggestionID: suggestion.ID, Fingerprint: "voter-y"}).(*ToggleResult)
	assert.Equal(t, 0, toggle.Votes)
	assert.False(t, toggle.Voted)

	voted = ask(t, system, pid, &GetSuggestionVoteMsg{SuggestionID: suggestion.ID, Fingerprint: "voter-y"})
	assert.False(t, voted.(bool))

	// Toggling an unknown suggestion fails
	result := ask(t, system, pid, &ToggleSuggestionVoteMsg{SuggestionID: uuid.New(), Fingerprint: "voter-y"})
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrNotFound, appErr.Code)
}

func TestSuggestionVotesAreIndependent(t *testing.T) {
	system, pid := spawnSuggestionActor(t)
	suggestion := createTestSuggestion(t, system, pid, "Dark mode")

	ask(t, system, pid, &ToggleSuggestionVoteMsg{SuggestionID: suggestion.ID, Fingerprint: "voter-a"})
	ask(t, system, pid, &ToggleSuggestionVoteMsg{SuggestionID: suggestion.ID, Fingerprint: "voter-b"})
	toggle := ask(t, system, pid, &ToggleSuggestionVoteMsg{SuggestionID: suggestion.ID, Fingerprint: "voter-c"}).(*ToggleResult)
	assert.Equal(t, 3, toggle.Votes)

	// voter-b retracting leaves the others in place
	toggle = ask(t, system, pid, &ToggleSuggestionVoteMsg{SuggestionID: suggestion.ID, Fingerprint: "voter-b"}).(*ToggleResult)
	assert.Equal(t, 2, toggle.Votes)
	assert.False(t, toggle.Voted)

	voted := ask(t, system, pid, &GetSuggestionVoteMsg{SuggestionID: suggestion.ID, Fingerprint: "voter-a"})
	assert.True(t, voted.(bool))
}

func TestListSuggestionsOrdering(t *testing.T) {
	system, pid := spawnSuggestionActor(t)

	first := createTestSuggestion(t, system, pid, "First idea")
	time.Sleep(2 * time.Millisecond)
	second := createTestSuggestion(t, system, pid, "Second idea")
	time.Sleep(2 * time.Millisecond)
	third := createTestSuggestion(t, system, pid, "Third idea")

	ask(t, system, pid, &ToggleSuggestionVoteMsg{SuggestionID: second.ID, Fingerprint: "voter-a"})
	ask(t, system, pid, &ToggleSuggestionVoteMsg{SuggestionID: second.ID, Fingerprint: "voter-b"})
	ask(t, system, pid, &ToggleSuggestionVoteMsg{SuggestionID: first.ID, Fingerprint: "voter-a"})

	list := ask(t, system, pid, &ListSuggestionsMsg{}).([]*models.Suggestion)
	require.Len(t, list, 3)

	// Most voted first; the unvoted newest one trails.
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, third.ID, list[2].ID)
}

func TestListSuggestionsTieBreaksOnRecency(t *testing.T) {
	system, pid := spawnSuggestionActor(t)

	older := createTestSuggestion(t, system, pid, "Older idea")
	time.Sleep(2 * time.Millisecond)
	newer := createTestSuggestion(t, system, pid, "Newer idea")

	list := ask(t, system, pid, &ListSuggestionsMsg{}).([]*models.Suggestion)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}
