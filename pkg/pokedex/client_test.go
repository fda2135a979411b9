package pokedex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nkarpova/pokedeck/pkg/domain"
	"github.com/nkarpova/pokedeck/pkg/httperr"
)

func TestPokemonByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pokemon/25" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(domain.Pokemon{ //nolint:errcheck
			ID:     25,
			Name:   "pikachu",
			Height: 4,
			Weight: 60,
			Types:  []domain.TypeSlot{{Slot: 1, Type: domain.NamedRef{Name: "electric"}}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	p, err := c.PokemonByID(context.Background(), 25)
	if err != nil {
		t.Fatalf("PokemonByID() error: %v", err)
	}
	if p.Name != "pikachu" {
		t.Errorf("Name = %q, want %q", p.Name, "pikachu")
	}
	if got := p.TypeNames(); len(got) != 1 || got[0] != "electric" {
		t.Errorf("TypeNames() = %v, want [electric]", got)
	}
}

func TestPokemonByName_Lowercases(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(domain.Pokemon{ID: 6, Name: "charizard"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.PokemonByName(context.Background(), "Charizard"); err != nil {
		t.Fatalf("PokemonByName() error: %v", err)
	}
	if gotPath != "/pokemon/charizard" {
		t.Errorf("request path = %q, want %q", gotPath, "/pokemon/charizard")
	}
}

func TestPokemonByID_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found")) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.PokemonByID(context.Background(), 99999)
	if err == nil {
		t.Fatal("expected error for missing pokemon")
	}
	if !httperr.IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
}

func TestList_SendsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "1000" {
			t.Errorf("limit = %q, want %q", got, "1000")
		}
		if got := r.URL.Query().Get("offset"); got != "0" {
			t.Errorf("offset = %q, want %q", got, "0")
		}
		json.NewEncoder(w).Encode(domain.PokemonPage{ //nolint:errcheck
			Count:   2,
			Results: []domain.NamedRef{{Name: "bulbasaur"}, {Name: "ivysaur"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	page, err := c.List(context.Background(), 1000, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(page.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(page.Results))
	}
}

// fakeDirectory serves a small listing plus detail records, and can be told
// to fail specific names.
func fakeDirectory(t *testing.T, names []string, failing map[string]bool) *httptest.Server {
	t.Helper()
	byName := make(map[string]domain.Pokemon, len(names))
	for i, name := range names {
		byName[name] = domain.Pokemon{ID: i + 1, Name: name}
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/pokemon" {
			page := domain.PokemonPage{Count: len(names)}
			for _, name := range names {
				page.Results = append(page.Results, domain.NamedRef{Name: name})
			}
			json.NewEncoder(w).Encode(page) //nolint:errcheck
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/pokemon/")
		if failing[name] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		p, ok := byName[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(p) //nolint:errcheck
	}))
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	srv := fakeDirectory(t, []string{"charmander", "charmeleon", "charizard", "pikachu"}, nil)
	defer srv.Close()

	c := New(srv.URL)
	results, err := c.Search(context.Background(), "CHAR", 20)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	// Successful fetches keep listing order.
	want := []string{"charmander", "charmeleon", "charizard"}
	for i, name := range want {
		if results[i].Name != name {
			t.Errorf("results[%d].Name = %q, want %q", i, results[i].Name, name)
		}
	}
}

func TestSearch_CapsMatches(t *testing.T) {
	names := make([]string, 30)
	for i := range names {
		names[i] = "poke-" + string(rune('a'+i))
	}
	srv := fakeDirectory(t, names, nil)
	defer srv.Close()

	c := New(srv.URL)
	results, err := c.Search(context.Background(), "poke", 20)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 20 {
		t.Errorf("got %d results, want cap of 20", len(results))
	}
}

func TestSearch_DropsFailedDetails(t *testing.T) {
	srv := fakeDirectory(t, []string{"charmander", "charmeleon", "charizard"},
		map[string]bool{"charmeleon": true})
	defer srv.Close()

	c := New(srv.URL)
	results, err := c.Search(context.Background(), "char", 20)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (one dropped)", len(results))
	}
	if results[0].Name != "charmander" || results[1].Name != "charizard" {
		t.Errorf("results = [%s %s], want [charmander charizard]",
			results[0].Name, results[1].Name)
	}
}

func TestSearch_ListingFailureIsHard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Search(context.Background(), "char", 20); err == nil {
		t.Fatal("expected error when the listing itself fails")
	}
}

func TestPokemonByType_CapsMembers(t *testing.T) {
	var detailCalls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/type/13" {
			detail := domain.TypeDetail{ID: 13, Name: "electric"}
			for i := 0; i < 50; i++ {
				detail.Pokemon = append(detail.Pokemon, struct {
					Pokemon domain.NamedRef `json:"pokemon"`
				}{Pokemon: domain.NamedRef{Name: "member-" + string(rune('a'+i%26)) + string(rune('a'+i/26))}})
			}
			json.NewEncoder(w).Encode(detail) //nolint:errcheck
			return
		}
		detailCalls.Add(1)
		json.NewEncoder(w).Encode(domain.Pokemon{ID: 1, Name: strings.TrimPrefix(r.URL.Path, "/pokemon/")}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL)
	members, err := c.PokemonByType(context.Background(), 13, 30)
	if err != nil {
		t.Fatalf("PokemonByType() error: %v", err)
	}
	if len(members) != 30 {
		t.Errorf("got %d members, want 30", len(members))
	}
	if got := detailCalls.Load(); got != 30 {
		t.Errorf("made %d detail fetches, want 30", got)
	}
}
