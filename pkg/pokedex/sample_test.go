package pokedex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/nkarpova/pokedeck/pkg/domain"
)

func TestRandomSample_UniqueIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/pokemon/")) //nolint:errcheck
		json.NewEncoder(w).Encode(domain.Pokemon{ID: id, Name: "poke-" + strconv.Itoa(id)}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL)
	sample := c.RandomSample(context.Background(), 20)
	if len(sample) != 20 {
		t.Fatalf("got %d pokemon, want 20", len(sample))
	}
	seen := map[int]bool{}
	for _, p := range sample {
		if seen[p.ID] {
			t.Errorf("duplicate id %d in sample", p.ID)
		}
		seen[p.ID] = true
		if p.ID < 1 || p.ID > 1010 {
			t.Errorf("id %d outside directory range", p.ID)
		}
	}
}

func TestRandomSample_DropsFailuresWithoutRetry(t *testing.T) {
	var mu sync.Mutex
	requested := map[int]int{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/pokemon/")) //nolint:errcheck
		mu.Lock()
		requested[id]++
		mu.Unlock()
		if id%3 == 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(domain.Pokemon{ID: id, Name: "poke-" + strconv.Itoa(id)}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL)
	sample := c.RandomSample(context.Background(), 20)

	mu.Lock()
	defer mu.Unlock()
	if len(requested) != 20 {
		t.Errorf("requested %d distinct ids, want 20", len(requested))
	}
	for id, n := range requested {
		if n != 1 {
			t.Errorf("id %d requested %d times, want exactly 1 (no retries)", id, n)
		}
	}
	for _, p := range sample {
		if p.ID%3 == 0 {
			t.Errorf("id %d should have failed but is in the sample", p.ID)
		}
	}
	if len(sample) > 20 {
		t.Errorf("sample size %d exceeds request of 20", len(sample))
	}
}

func TestRandomSample_CountClampedToDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/pokemon/")) //nolint:errcheck
		json.NewEncoder(w).Encode(domain.Pokemon{ID: id}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.maxID = 5
	sample := c.RandomSample(context.Background(), 50)
	if len(sample) != 5 {
		t.Errorf("got %d pokemon, want the full directory of 5", len(sample))
	}
}
