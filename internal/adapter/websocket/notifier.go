package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/centrifugal/centrifuge"
	"github.com/pscheid92/campusfind/internal/adapter/metrics"
	"github.com/pscheid92/campusfind/internal/domain"
)

const (
	historySize = 50
	historyTTL  = 24 * time.Hour
)

// Notifier delivers events to the recipient's notification channel. A short
// history is kept so reconnecting clients can recover missed notifications.
type Notifier struct {
	node      *centrifuge.Node
	wsMetrics *metrics.WebSocketMetrics
}

var _ domain.EventPublisher = (*Notifier)(nil)

func NewNotifier(node *centrifuge.Node, wsMetrics *metrics.WebSocketMetrics) *Notifier {
	return &Notifier{node: node, wsMetrics: wsMetrics}
}

func (n *Notifier) Publish(_ context.Context, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	channel := NotificationsChannel(event.RecipientID)
	if _, err := n.node.Publish(channel, data, centrifuge.WithHistory(historySize, historyTTL)); err != nil {
		return fmt.Errorf("publish to channel %s: %w", channel, err)
	}

	if n.wsMetrics != nil {
		n.wsMetrics.MessagesPublished.WithLabelValues(string(event.Type)).Inc()
	}
	return nil
}
