package application

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ericfisherdev/hiddenote/internal/domain/model"
)

// summaries adapts a note listing to fuzzy.Source.
type summaries []model.NoteSummary

func (s summaries) String(i int) string { return s[i].Title }
func (s summaries) Len() int            { return len(s) }

// Search filters the listing by title. Matching is fuzzy and case-insensitive;
// best matches come first and equal scores keep ListAll order. A blank query
// returns the full listing.
func (n *Notes) Search(ctx context.Context, query string) ([]model.NoteSummary, error) {
	all, err := n.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return all, nil
	}

	matches := fuzzy.FindFrom(query, summaries(all))

	result := make([]model.NoteSummary, 0, len(matches))
	for _, m := range matches {
		result = append(result, all[m.Index])
	}
	return result, nil
}
