// Package notification provides alert delivery to external channels
// (Telegram, log output) for simulated trade events.
package notification

import (
	"context"
	"fmt"
	"log"

	"papertrader/internal/model"
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

// TradeAlert builds an alert describing a simulated fill.
func TradeAlert(trade model.Trade) Alert {
	var msg string
	if trade.Side == model.SideBuy {
		msg = fmt.Sprintf("price %.6f, qty %.6f, invested %.2f USD",
			trade.Price, trade.Qty, trade.Amount)
	} else {
		msg = fmt.Sprintf("price %.6f, profit %.2f USD, new balance %.2f USD",
			trade.Price, trade.Profit, trade.Balance)
	}
	return Alert{
		Level:   AlertInfo,
		Title:   fmt.Sprintf("[%s] %s", trade.Symbol, trade.Side),
		Message: msg,
	}
}

// LogNotifier is a simple notifier that logs alerts (the default when no
// Telegram credentials are configured).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}
