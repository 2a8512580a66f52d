package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Page represents one page of a cursor-paginated endpoint.
type Page struct {
	Items        []json.RawMessage `json:"Items"`
	ShowNextPage bool              `json:"ShowNextPage"`
}

// Fetcher is the interface the API client must implement for
// single-page fetching.
type Fetcher interface {
	// FetchPage fetches page number page (starting at 1).
	FetchPage(ctx context.Context, page int) (Page, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc func(ctx context.Context, page int) (Page, error)

// FetchPage implements Fetcher.
func (f FetchFunc) FetchPage(ctx context.Context, page int) (Page, error) {
	return f(ctx, page)
}

// FetchAll fetches every page from fetcher in order, accumulating items
// until the first empty page or the first false ShowNextPage cursor.
// Any page failure aborts the fetch and returns only the error, so a
// caller never sees a partial item sequence. The endpoint string is
// used only for logging.
func FetchAll(ctx context.Context, endpoint string, fetcher Fetcher) ([]json.RawMessage, error) {
	start := time.Now()

	var items []json.RawMessage
	pages := 0

	for page := 1; ; page++ {
		p, err := fetcher.FetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		pages++

		if len(p.Items) == 0 {
			break
		}
		items = append(items, p.Items...)

		log.Debug().
			Str("endpoint", endpoint).
			Int("page", page).
			Int("items", len(p.Items)).
			Bool("show_next_page", p.ShowNextPage).
			Msg("Fetched page")

		if !p.ShowNextPage {
			break
		}
	}

	log.Debug().
		Str("endpoint", endpoint).
		Int("pages", pages).
		Int("items", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return items, nil
}
