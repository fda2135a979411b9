package domain

import (
	"time"

	"github.com/google/uuid"
)

// CaughtPokemon is one record in a trainer's collection. The creature fields
// are a denormalized snapshot captured at catch time and never re-synced.
type CaughtPokemon struct {
	ID          uuid.UUID `json:"id"`
	PokemonID   int       `json:"pokemonId"`
	PokemonName string    `json:"pokemonName"`
	Types       []string  `json:"types"`
	ImageURL    string    `json:"imageUrl"`
	Weight      int       `json:"weight"`
	Height      int       `json:"height"`
	Abilities   []string  `json:"abilities"`
	CaughtAt    time.Time `json:"caughtAt"`
}

// CatchRequest is the snapshot payload sent when catching a Pokemon.
type CatchRequest struct {
	PokemonID   int      `json:"pokemonId"`
	PokemonName string   `json:"pokemonName"`
	Types       []string `json:"types,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Weight      int      `json:"weight,omitempty"`
	Height      int      `json:"height,omitempty"`
	Abilities   []string `json:"abilities,omitempty"`
}
