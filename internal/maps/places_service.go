// README: Address search for location registration (Google Places or simulated).
package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

const maxAddressResults = 4

// AddressResult is one candidate address for a search term.
type AddressResult struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
	PlaceID string `json:"place_id,omitempty"`
}

// AddressSearcher finds addresses matching a free-text term.
type AddressSearcher interface {
	SearchAddress(ctx context.Context, term string) ([]AddressResult, error)
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// SearchAddress runs a Places text search biased to Korea.
func (s *PlacesService) SearchAddress(ctx context.Context, term string) ([]AddressResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	resp, err := s.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    term,
		Language: "ko",
		Region:   "KR",
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	results := make([]AddressResult, 0, maxAddressResults)
	for _, r := range resp.Results {
		if r.FormattedAddress == "" {
			continue
		}
		results = append(results, AddressResult{
			Name:    r.Name,
			Address: r.FormattedAddress,
			PlaceID: r.PlaceID,
		})
		if len(results) >= maxAddressResults {
			break
		}
	}
	return results, nil
}

// PlaceholderSearcher fabricates street addresses from the term so the
// registration flow works without a Places key.
type PlaceholderSearcher struct{}

func (PlaceholderSearcher) SearchAddress(_ context.Context, term string) ([]AddressResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	suffixes := []string{"1번길 123", "2번길 456", "3번길 789", "중앙로 100"}
	out := make([]AddressResult, 0, len(suffixes))
	for _, s := range suffixes {
		out = append(out, AddressResult{Address: term + " " + s})
	}
	return out, nil
}
