package publisher

// Publisher represents an optional secondary channel for new matches,
// alongside the Telegram notifications.
type Publisher interface {
	// Publish publishes a new-match payload
	Publish(message []byte) error

	// Close closes the publisher connection
	Close() error
}
