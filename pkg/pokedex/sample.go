package pokedex

import (
	"context"
	"math/rand"

	"github.com/nkarpova/pokedeck/pkg/domain"
)

// RandomSample fetches up to count distinct random Pokemon. Each id is looked
// up concurrently and a failed lookup is dropped, never retried, so the
// result may be smaller than count. Ids are unique within one call.
func (c *Client) RandomSample(ctx context.Context, count int) []domain.Pokemon {
	if count > c.maxID {
		count = c.maxID
	}

	picked := make(map[int]struct{}, count)
	ids := make([]int, 0, count)
	for len(ids) < count {
		id := rand.Intn(c.maxID) + 1
		if _, dup := picked[id]; dup {
			continue
		}
		picked[id] = struct{}{}
		ids = append(ids, id)
	}

	results := make([]*domain.Pokemon, len(ids))
	done := make(chan struct{})
	for i, id := range ids {
		go func(i, id int) {
			p, err := c.PokemonByID(ctx, id)
			if err == nil {
				results[i] = p
			}
			done <- struct{}{}
		}(i, id)
	}
	for range ids {
		<-done
	}
	close(done)

	out := make([]domain.Pokemon, 0, len(ids))
	for _, p := range results {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
