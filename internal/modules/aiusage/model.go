// README: Monthly allowance of booking-assistant requests per user.
package aiusage

import "errors"

// ErrInsufficientTokens is returned when a user has no assistant requests left this month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the number of assistant requests granted per month.
const DefaultTokens = 100

const monthLayout = "2006-01"
