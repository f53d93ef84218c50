package ai

import (
	"context"
)

// IntentParser turns a free-text booking request into a structured intent.
// It allows swapping Gemini for another provider.
type IntentParser interface {
	// ParseBookingIntent reads the parent's message. hints carries the
	// current time and the user's saved place names.
	ParseBookingIntent(ctx context.Context, message string, hints Hints) (*BookingIntent, error)
}
