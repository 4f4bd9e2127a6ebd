package pages

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// Strategy is one way of reading a record list from a page. Strategies are
// tried in order and the first non-empty result is used.
type Strategy[T any] struct {
	Name    string
	Extract func(doc *goquery.Document) []T
}

// Run applies strategies in order and de-duplicates the winning result by key,
// keeping the first occurrence. Records with an empty key are kept as-is.
func Run[T any](logger arbor.ILogger, kind string, doc *goquery.Document, strategies []Strategy[T], key func(T) string) []T {
	for _, strategy := range strategies {
		records := strategy.Extract(doc)
		if len(records) == 0 {
			logger.Debug().Str("records", kind).Str("strategy", strategy.Name).Msg("Strategy found nothing")
			continue
		}

		records = dedupe(records, key)
		logger.Debug().
			Str("records", kind).
			Str("strategy", strategy.Name).
			Int("count", len(records)).
			Msg("Records extracted")
		return records
	}
	return nil
}

func dedupe[T any](records []T, key func(T) string) []T {
	seen := make(map[string]bool, len(records))
	out := make([]T, 0, len(records))
	for _, r := range records {
		k := key(r)
		if k != "" {
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		out = append(out, r)
	}
	return out
}
