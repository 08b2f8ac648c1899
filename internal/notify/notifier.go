package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mkowalczyk/olxwatch/helpers"
	"mkowalczyk/olxwatch/internal/scraper"
	"mkowalczyk/olxwatch/internal/store"
	"mkowalczyk/olxwatch/logger"
	"mkowalczyk/olxwatch/services/publisher"
)

// excerptLimit caps the description snippet in a notification
const excerptLimit = 300

// Sender delivers one message to one chat
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Notifier formats new matches and fans them out to every subscriber.
// Delivery failures are isolated per subscriber; one unreachable chat never
// blocks the rest of the batch. When a publisher is configured, each match
// is also pushed to its stream.
type Notifier struct {
	sender      Sender
	subscribers *store.SubscriberStore
	publisher   publisher.Publisher
	log         *logger.Logger
}

// NewNotifier creates a notifier; pub may be nil
func NewNotifier(sender Sender, subscribers *store.SubscriberStore, pub publisher.Publisher) *Notifier {
	return &Notifier{
		sender:      sender,
		subscribers: subscribers,
		publisher:   pub,
		log:         logger.ForNotifier(),
	}
}

// FormatMessage renders one offer as a notification body
func FormatMessage(o scraper.Offer) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📱 %s\n", o.Title)
	if o.Price != nil {
		fmt.Fprintf(&b, "💰 %d zł\n", *o.Price)
	} else if o.PriceText != "" {
		fmt.Fprintf(&b, "💰 %s\n", o.PriceText)
	}
	if o.Location != "" {
		fmt.Fprintf(&b, "📍 %s\n", o.Location)
	}
	if o.URL != "" {
		fmt.Fprintf(&b, "🔗 %s\n", o.URL)
	}
	if o.Excerpt != "" {
		fmt.Fprintf(&b, "\n%s\n", helpers.TruncateRunes(o.Excerpt, excerptLimit))
	}
	fmt.Fprintf(&b, "\nID: %s", o.ID)

	return b.String()
}

// NotifyAll sends every offer to every current subscriber
func (n *Notifier) NotifyAll(ctx context.Context, offers []scraper.Offer) {
	for _, offer := range offers {
		n.publish(offer)

		text := FormatMessage(offer)
		for _, chatID := range n.subscribers.List() {
			if err := n.sender.SendMessage(ctx, chatID, text); err != nil {
				n.log.Warn().
					Err(err).
					Int64("chat_id", chatID).
					Str("offer_id", offer.ID).
					Msg("Failed to deliver notification")
			}
		}
	}
}

func (n *Notifier) publish(offer scraper.Offer) {
	if n.publisher == nil {
		return
	}
	payload, err := json.Marshal(offer)
	if err != nil {
		n.log.Error().Err(err).Str("offer_id", offer.ID).Msg("Failed to marshal offer for publishing")
		return
	}
	if err := n.publisher.Publish(payload); err != nil {
		n.log.Warn().Err(err).Str("offer_id", offer.ID).Msg("Failed to publish offer to stream")
	}
}
