// README: Common value objects shared across modules (IDs, money).
package types

// ID is an opaque record identifier (user uid, location id, booking id ...).
type ID string

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

const DefaultCurrency = "KRW"

func KRW(amount int64) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}
