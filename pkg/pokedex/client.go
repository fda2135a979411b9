// Package pokedex is a read-only client for the public PokeAPI creature
// directory, plus the pure display helpers derived from its data.
package pokedex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nkarpova/pokedeck/pkg/domain"
	"github.com/nkarpova/pokedeck/pkg/httperr"
)

// DefaultBaseURL is the public PokeAPI v2 endpoint.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// maxPokemonID is the highest Pokemon id considered when sampling randomly.
const maxPokemonID = 1010

// Client is the PokeAPI directory client. The directory is read-only and
// unauthenticated; every request carries a fixed timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxID      int
}

// New creates a new directory client.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxID: maxPokemonID,
	}
}

// Types returns all Pokemon types for the filter dropdown.
func (c *Client) Types(ctx context.Context) (*domain.TypesResponse, error) {
	var resp domain.TypesResponse
	if err := c.get(ctx, "/type", &resp); err != nil {
		return nil, fmt.Errorf("pokedex.Types: %w", err)
	}
	return &resp, nil
}

// TypeDetail returns one type with its member list.
func (c *Client) TypeDetail(ctx context.Context, id int) (*domain.TypeDetail, error) {
	var detail domain.TypeDetail
	if err := c.get(ctx, "/type/"+strconv.Itoa(id), &detail); err != nil {
		return nil, fmt.Errorf("pokedex.TypeDetail: %w", err)
	}
	return &detail, nil
}

// PokemonByID fetches a full creature record by numeric id.
func (c *Client) PokemonByID(ctx context.Context, id int) (*domain.Pokemon, error) {
	var p domain.Pokemon
	if err := c.get(ctx, "/pokemon/"+strconv.Itoa(id), &p); err != nil {
		return nil, fmt.Errorf("pokedex.PokemonByID: %w", err)
	}
	return &p, nil
}

// PokemonByName fetches a full creature record by exact name.
// The directory only knows lowercase names.
func (c *Client) PokemonByName(ctx context.Context, name string) (*domain.Pokemon, error) {
	var p domain.Pokemon
	if err := c.get(ctx, "/pokemon/"+url.PathEscape(strings.ToLower(name)), &p); err != nil {
		return nil, fmt.Errorf("pokedex.PokemonByName: %w", err)
	}
	return &p, nil
}

// List returns one page of the full directory listing.
func (c *Client) List(ctx context.Context, limit, offset int) (*domain.PokemonPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var page domain.PokemonPage
	if err := c.get(ctx, "/pokemon?"+params.Encode(), &page); err != nil {
		return nil, fmt.Errorf("pokedex.List: %w", err)
	}
	return &page, nil
}

// PokemonByType resolves a type's member list to full records, capped at cap
// entries. Members are fetched concurrently; individual failures drop that
// member.
func (c *Client) PokemonByType(ctx context.Context, typeID, cap int) ([]domain.Pokemon, error) {
	detail, err := c.TypeDetail(ctx, typeID)
	if err != nil {
		return nil, fmt.Errorf("pokedex.PokemonByType: %w", err)
	}

	names := make([]string, 0, cap)
	for _, member := range detail.Pokemon {
		names = append(names, member.Pokemon.Name)
		if len(names) == cap {
			break
		}
	}
	return c.fetchByNames(ctx, names), nil
}

// searchListLimit is the page size used to enumerate names for a search.
const searchListLimit = 1000

// Search lists a large directory page, filters it by case-insensitive
// substring match on name, and fetches full detail for at most cap matches.
// Individual detail fetches that fail drop that entry; only the listing
// itself failing is a hard error.
func (c *Client) Search(ctx context.Context, query string, cap int) ([]domain.Pokemon, error) {
	page, err := c.List(ctx, searchListLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("pokedex.Search: %w", err)
	}

	needle := strings.ToLower(query)
	var matches []string
	for _, ref := range page.Results {
		if strings.Contains(strings.ToLower(ref.Name), needle) {
			matches = append(matches, ref.Name)
			if len(matches) == cap {
				break
			}
		}
	}

	return c.fetchByNames(ctx, matches), nil
}

// fetchByNames resolves names to full records concurrently, keeping the
// successful results in request order.
func (c *Client) fetchByNames(ctx context.Context, names []string) []domain.Pokemon {
	results := make([]*domain.Pokemon, len(names))
	done := make(chan struct{})
	for i, name := range names {
		go func(i int, name string) {
			p, err := c.PokemonByName(ctx, name)
			if err == nil {
				results[i] = p
			}
			done <- struct{}{}
		}(i, name)
	}
	for range names {
		<-done
	}
	close(done)

	out := make([]domain.Pokemon, 0, len(names))
	for _, p := range results {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &httperr.Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return &httperr.Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
