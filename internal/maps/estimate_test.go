package maps

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPlaceholderEstimator(t *testing.T) {
	tests := []struct {
		name         string
		origin       string
		destination  string
		wantDistance int
		wantDuration int
	}{
		{
			name:         "empty addresses clamp to minimum",
			wantDistance: 3000,
			wantDuration: 270, // 3000 / 11.11 = 270.02
		},
		{
			name:         "korean addresses count runes not bytes",
			origin:       "서울시 강남구 테헤란로 123", // 16 runes
			destination:  "서울시 강남구 선릉로 456",  // 15 runes
			wantDistance: 3000 + 31*100,
			wantDuration: 549, // 6100 / 11.11 = 549.05
		},
		{
			name:         "long addresses clamp to maximum",
			origin:       strings.Repeat("a", 100),
			destination:  strings.Repeat("b", 100),
			wantDistance: 15000,
			wantDuration: 1350, // 15000 / 11.11 = 1350.13
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlaceholderEstimator{}.Estimate(context.Background(), tt.origin, tt.destination)
			if err != nil {
				t.Fatalf("Estimate() error = %v", err)
			}
			if got.DistanceMeters != tt.wantDistance {
				t.Errorf("DistanceMeters = %d, want %d", got.DistanceMeters, tt.wantDistance)
			}
			if got.DurationSeconds != tt.wantDuration {
				t.Errorf("DurationSeconds = %d, want %d", got.DurationSeconds, tt.wantDuration)
			}
		})
	}
}

type failingEstimator struct{}

func (failingEstimator) Estimate(context.Context, string, string) (Estimate, error) {
	return Estimate{}, errors.New("quota exceeded")
}

func TestFallbackEstimator(t *testing.T) {
	f := FallbackEstimator{Primary: failingEstimator{}, Secondary: PlaceholderEstimator{}}
	got, err := f.Estimate(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if got.DistanceMeters != 3000 {
		t.Errorf("expected placeholder distance, got %d", got.DistanceMeters)
	}

	f = FallbackEstimator{Secondary: PlaceholderEstimator{}}
	if _, err := f.Estimate(context.Background(), "a", "b"); err != nil {
		t.Errorf("nil primary should use secondary, got %v", err)
	}
}

func TestPlaceholderSearcher(t *testing.T) {
	got, err := PlaceholderSearcher{}.SearchAddress(context.Background(), " 역삼동 ")
	if err != nil {
		t.Fatalf("SearchAddress() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 results, got %d", len(got))
	}
	if got[0].Address != "역삼동 1번길 123" {
		t.Errorf("unexpected first address %q", got[0].Address)
	}

	got, _ = PlaceholderSearcher{}.SearchAddress(context.Background(), "  ")
	if len(got) != 0 {
		t.Errorf("blank term should return nothing, got %v", got)
	}
}
