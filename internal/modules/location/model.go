// README: Saved pickup/drop-off places per user.
package location

import (
	"time"

	"ridepass/internal/types"
)

// MaxLocations is how many places one user may keep.
const MaxLocations = 8

type Location struct {
	ID        types.ID  `json:"id"`
	UserID    types.ID  `json:"-"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Defaults are the places a new user starts with.
func Defaults() []Location {
	return []Location{
		{ID: "loc1", Name: "집", Address: "서울시 강남구 테헤란로 123", Thumbnail: "https://images.unsplash.com/photo-1518780664697-55e3ad937233?w=200&q=80"},
		{ID: "loc2", Name: "학교", Address: "서울시 강남구 선릉로 456", Thumbnail: "https://images.unsplash.com/photo-1580582932707-520aed937b7b?w=200&q=80"},
		{ID: "loc3", Name: "축구교실", Address: "서울시 강남구 영동대로 789", Thumbnail: "https://images.unsplash.com/photo-1575361204480-aadea25e6e68?w=200&q=80"},
		{ID: "loc4", Name: "할머니 집", Address: "서울시 서초구 서초대로 321", Thumbnail: "https://images.unsplash.com/photo-1510627489930-0c1b0bfb6785?w=200&q=80"},
	}
}
