// Package notification delivers run outcomes to external channels
// (webhooks, chat, etc.) so a failed refresh is noticed before anyone
// reads a stale sheet.
package notification

import (
	"context"
	"fmt"
	"log"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// RunSucceeded builds the alert published after every destination was
// refreshed.
func RunSucceeded(symbols, universeRows int, freshness string) Alert {
	return Alert{
		Level:   AlertInfo,
		Title:   "screener run completed",
		Message: fmt.Sprintf("%d symbols, %d universe rows. %s", symbols, universeRows, freshness),
	}
}

// RunFailed builds the alert published when a run aborts. Destination
// tables keep their previous content in that case.
func RunFailed(err error) Alert {
	return Alert{
		Level:   AlertCritical,
		Title:   "screener run failed",
		Message: err.Error(),
	}
}

// LogNotifier is a simple notifier that logs alerts (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

// Multi fans an alert out to several backends; delivery failures are
// logged, never escalated — a dead webhook must not fail the run.
type Multi struct {
	backends []Notifier
}

// NewMulti creates a fan-out notifier.
func NewMulti(backends ...Notifier) *Multi {
	return &Multi{backends: backends}
}

func (m *Multi) Send(ctx context.Context, alert Alert) error {
	for _, n := range m.backends {
		if err := n.Send(ctx, alert); err != nil {
			log.Printf("[notify] backend delivery failed: %v", err)
		}
	}
	return nil
}
