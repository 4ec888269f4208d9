// Package alerts records low stock events and mails a daily digest of them.
package alerts

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"slices"
	"strings"
	"time"

	"github.com/rogerio-castellano/ecommerce-analytics/internal/models"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const DailyLowStockKey = "inventory:lowstock:daily"

// EventStore is the list the events wait in until the daily summary.
type EventStore interface {
	Push(ctx context.Context, key string, v any) error
	Drain(ctx context.Context, key string) ([]string, error)
}

type ProductGetter interface {
	GetByID(ctx context.Context, id int64) (models.Product, error)
}

// Sender delivers mail. *gomail.Dialer implements it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Notifier struct {
	log      *zap.Logger
	store    EventStore
	products ProductGetter
}

// NewNotifier returns a notifier that logs every event and, when store is not
// nil, queues it for the daily summary.
func NewNotifier(log *zap.Logger, store EventStore, products ProductGetter) *Notifier {
	return &Notifier{log: log, store: store, products: products}
}

func (n *Notifier) NotifyLowStock(ctx context.Context, ev models.LowStockEvent) error {
	fields := []zap.Field{
		zap.Int64("product_id", ev.ProductID),
		zap.Int("quantity", ev.Quantity),
		zap.Int("threshold", ev.Threshold),
	}
	if n.products != nil && ev.ProductName == "" {
		if p, err := n.products.GetByID(ctx, ev.ProductID); err == nil {
			ev.ProductName = p.Name
			fields = append(fields, zap.String("product", p.Name), zap.String("sku", p.SKU))
		}
	}
	n.log.Warn("low stock", fields...)

	if n.store == nil {
		return nil
	}
	if err := n.store.Push(ctx, DailyLowStockKey, ev); err != nil {
		return fmt.Errorf("failed to queue low stock event: %w", err)
	}
	return nil
}

type Summary struct {
	store  EventStore
	sender Sender
	from   string
	to     []string
	log    *zap.Logger
}

func NewSummary(store EventStore, sender Sender, from string, to []string, log *zap.Logger) *Summary {
	return &Summary{store: store, sender: sender, from: from, to: to, log: log}
}

// NewSMTPSender returns a gomail dialer. Empty user disables authentication.
func NewSMTPSender(host string, port int, user, password string) *gomail.Dialer {
	d := gomail.NewDialer(host, port, user, password)
	if user == "" {
		d.Auth = nil
	}
	return d
}

// Start sends the first summary at the next 23:59 local time and then once
// every interval until ctx is done. A non-positive interval means daily.
func (s *Summary) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	timer := time.NewTimer(time.Until(firstRun(time.Now())))
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := s.Send(ctx); err != nil {
			s.log.Error("failed to send low stock summary", zap.Error(err))
		}
		timer.Reset(interval)
	}
}

func firstRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Send drains the queued events and mails them. Nothing is sent when the
// queue is empty.
func (s *Summary) Send(ctx context.Context) error {
	entries, err := s.store.Drain(ctx, DailyLowStockKey)
	if err != nil {
		return fmt.Errorf("failed to read low stock events: %w", err)
	}

	var events []models.LowStockEvent
	for _, item := range entries {
		var ev models.LowStockEvent
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			s.log.Warn("skipping malformed low stock event", zap.String("entry", item))
			continue
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to...)
	m.SetHeader("Subject", fmt.Sprintf("Daily Low Stock Report (%d events)", len(events)))
	m.SetBody("text/html", SummaryHTML(events))

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.log.Info("daily low stock summary sent", zap.Int("events", len(events)))
	return nil
}

// SummaryHTML renders the digest: the lowest quantity seen per product and
// the full event log.
func SummaryHTML(events []models.LowStockEvent) string {
	lowest := map[int64]models.LowStockEvent{}
	for _, ev := range events {
		if cur, ok := lowest[ev.ProductID]; !ok || ev.Quantity < cur.Quantity {
			lowest[ev.ProductID] = ev
		}
	}
	products := make([]models.LowStockEvent, 0, len(lowest))
	for _, ev := range lowest {
		products = append(products, ev)
	}
	slices.SortFunc(products, func(a, b models.LowStockEvent) int {
		if c := cmp.Compare(a.Quantity, b.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})

	var sb strings.Builder
	sb.WriteString("<h2>Daily Low Stock Summary</h2>")
	fmt.Fprintf(&sb, "<p>Total events: <strong>%d</strong></p>", len(events))

	sb.WriteString("<h3>By Product</h3><ul>")
	for _, ev := range products {
		fmt.Fprintf(&sb, "<li>%s: lowest quantity %d (threshold %d)</li>", eventLabel(ev), ev.Quantity, ev.Threshold)
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h3>Full Log</h3><ul>")
	for _, ev := range events {
		fmt.Fprintf(&sb, "<li>%s down to <b>%d</b> at %s</li>",
			eventLabel(ev), ev.Quantity, html.EscapeString(ev.Time.Format(time.RFC822)))
	}
	sb.WriteString("</ul>")
	return sb.String()
}

func eventLabel(ev models.LowStockEvent) string {
	if ev.ProductName == "" {
		return fmt.Sprintf("product %d", ev.ProductID)
	}
	return fmt.Sprintf("%s (product %d)", html.EscapeString(ev.ProductName), ev.ProductID)
}
