package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()
	bundles := cat.Bundles()
	require.Len(t, bundles, 3)

	assert.Equal(t, TicketBundle{Kind: KindThirtyPack, BaseRides: 30, BonusRides: 4, Price: 540000}, bundles[0])
	assert.Equal(t, TicketBundle{Kind: KindTenPack, BaseRides: 10, BonusRides: 1, Price: 180000}, bundles[1])
	assert.Equal(t, TicketBundle{Kind: KindSingle, BaseRides: 1, BonusRides: 0, Price: 18000}, bundles[2])
	assert.Equal(t, "KRW", cat.Currency)
}

func TestDecodeCatalog_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantKinds []Kind
	}{
		{
			name: "array",
			payload: `[
				{"ticket_count": 1, "bonus_ticket_count": 0, "ticket_price": 18000},
				{"ticket_count": 10, "bonus_ticket_count": 1, "ticket_price": 18000},
				{"ticket_count": 30, "bonus_ticket_count": 4, "ticket_price": 18000}
			]`,
			wantKinds: []Kind{KindThirtyPack, KindTenPack, KindSingle},
		},
		{
			name:      "single object",
			payload:   `{"ticket_count": 1, "bonus_ticket_count": 0, "ticket_price": 18000}`,
			wantKinds: []Kind{KindSingle},
		},
		{
			name:      "envelope",
			payload:   ` {"tickets": [{"ticket_count": 1, "ticket_price": 20000}, {"ticket_count": 20, "bonus_ticket_count": 2, "ticket_price": 19000}]}`,
			wantKinds: []Kind{"20-pack", KindSingle},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := DecodeCatalog([]byte(tt.payload), "KRW")
			require.NoError(t, err)

			var kinds []Kind
			for _, b := range cat.Bundles() {
				kinds = append(kinds, b.Kind)
			}
			assert.Equal(t, tt.wantKinds, kinds)
		})
	}
}

func TestDecodeCatalog_PricePerRideIsMultiplied(t *testing.T) {
	cat, err := DecodeCatalog([]byte(`[{"ticket_count":1,"ticket_price":18000},{"ticket_count":10,"bonus_ticket_count":1,"ticket_price":18000}]`), "")
	require.NoError(t, err)

	bundles := cat.Bundles()
	require.Len(t, bundles, 2)
	assert.Equal(t, int64(180000), bundles[0].Price)
	assert.Equal(t, "KRW", cat.Currency)
}

func TestDecodeCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty", "   "},
		{"scalar", "42"},
		{"broken json", `[{"ticket_count":1,`},
		{"missing price", `[{"ticket_count":1}]`},
		{"missing count", `{"ticket_price":18000}`},
		{"no single ride", `[{"ticket_count":10,"ticket_price":18000}]`},
		{"price overflows", `[{"ticket_count":1,"ticket_price":18000},{"ticket_count":10,"ticket_price":9223372036854775807}]`},
		{"negative bonus", `[{"ticket_count":1,"ticket_price":18000},{"ticket_count":10,"bonus_ticket_count":-2,"ticket_price":18000}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCatalog([]byte(tt.payload), "KRW")
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}
