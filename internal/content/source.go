// Package content supplies question and answer cards for the exchange game.
package content

import (
	"context"
	"strings"

	"DegensAgainstDecency/internal/game/card"

	"github.com/google/uuid"
)

// Source generates card text. Generate may fail; Fallback never does and
// always returns a non-empty corpus.
type Source interface {
	Generate(ctx context.Context, kind card.Kind, count int) ([]card.TextCard, error)
	Fallback(kind card.Kind) []card.TextCard
}

// Acquire asks src for count cards of kind and never fails: on error the
// fallback corpus is used, and a short result is topped up from it until
// min is reached.
func Acquire(ctx context.Context, src Source, kind card.Kind, count, min int) []card.TextCard {
	generated, err := src.Generate(ctx, kind, count)
	if err != nil {
		generated = nil
	}
	out := clean(generated, kind, count)
	if len(out) >= min {
		return out
	}

	seen := make(map[string]bool, len(out))
	for _, c := range out {
		seen[normalize(c.Text)] = true
	}
	target := count
	if target < min {
		target = min
	}
	for _, c := range clean(src.Fallback(kind), kind, 0) {
		if len(out) >= target {
			break
		}
		if seen[normalize(c.Text)] {
			continue
		}
		seen[normalize(c.Text)] = true
		out = append(out, c)
	}
	return out
}

// clean drops blank and duplicate text, fixes the kind and fills missing ids.
// limit 0 keeps everything.
func clean(cards []card.TextCard, kind card.Kind, limit int) []card.TextCard {
	out := make([]card.TextCard, 0, len(cards))
	texts := make(map[string]bool, len(cards))
	ids := make(map[string]bool, len(cards))
	for _, c := range cards {
		if limit > 0 && len(out) >= limit {
			break
		}
		text := strings.TrimSpace(c.Text)
		key := normalize(text)
		if key == "" || texts[key] {
			continue
		}
		texts[key] = true
		id := c.ID
		if id == "" || ids[id] {
			id = uuid.NewString()
		}
		ids[id] = true
		out = append(out, card.TextCard{ID: id, Text: text, Kind: kind})
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
