package topics

const (
	// Odds
	QuoteUpdates = "odds_quote_updates"

	// DLQ
	QuoteUpdatesDLQ = "odds_quote_updates_dlq"
)
