package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
)

func titles(notes []model.NoteSummary) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}

func TestNotes_Search(t *testing.T) {
	notes, _ := freshNotes(t)
	ctx := context.Background()

	for _, title := range []string{"Groceries", "Gym plan", "Reading list", "grocery budget"} {
		require.NoError(t, notes.CreateOrUpdate(ctx, title, ""))
	}

	got, err := notes.Search(ctx, "groc")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Groceries", "grocery budget"}, titles(got))

	got, err = notes.Search(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNotes_SearchBlankQueryListsAll(t *testing.T) {
	notes, _ := freshNotes(t)
	ctx := context.Background()

	require.NoError(t, notes.CreateOrUpdate(ctx, "A", ""))
	require.NoError(t, notes.CreateOrUpdate(ctx, "B", ""))

	got, err := notes.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(got))
}
