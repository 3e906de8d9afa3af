package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PresenceMetrics tracks the live connection registry.
type PresenceMetrics interface {
	// UserConnected is called once per installed connection.
	UserConnected(ctx context.Context)
	// UserDisconnected is called when a connection leaves the roster, either
	// by disconnect or by eviction.
	UserDisconnected(ctx context.Context, reason string)
	// EventDropped counts events a slow or closed connection could not accept.
	EventDropped(ctx context.Context, event string)
}

type presenceMetrics struct {
	online  metric.Int64UpDownCounter
	removed metric.Int64Counter
	dropped metric.Int64Counter
}

// NewPresenceMetrics creates the presence instruments prefixed with namespace.
func NewPresenceMetrics(meterProvider metric.MeterProvider, namespace string) (PresenceMetrics, error) {
	meter := meterProvider.Meter(namespace)

	online, err := meter.Int64UpDownCounter(
		fmt.Sprintf("%s_presence_online_users", namespace),
		metric.WithDescription("Number of users currently connected"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create online users gauge: %w", err)
	}

	removed, err := meter.Int64Counter(
		fmt.Sprintf("%s_presence_disconnects_total", namespace),
		metric.WithDescription("Total number of connections removed from the roster"),
		metric.WithUnit("{connection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create disconnect counter: %w", err)
	}

	dropped, err := meter.Int64Counter(
		fmt.Sprintf("%s_presence_dropped_events_total", namespace),
		metric.WithDescription("Total number of events dropped for slow or closed connections"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dropped events counter: %w", err)
	}

	return &presenceMetrics{online: online, removed: removed, dropped: dropped}, nil
}

func (p *presenceMetrics) UserConnected(ctx context.Context) {
	p.online.Add(ctx, 1)
}

func (p *presenceMetrics) UserDisconnected(ctx context.Context, reason string) {
	p.online.Add(ctx, -1)
	p.removed.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (p *presenceMetrics) EventDropped(ctx context.Context, event string) {
	p.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

// NoOpPresenceMetrics is used when metrics are disabled.
type NoOpPresenceMetrics struct{}

// NewNoOpPresenceMetrics creates a no-op PresenceMetrics implementation.
func NewNoOpPresenceMetrics() PresenceMetrics {
	return &NoOpPresenceMetrics{}
}

func (NoOpPresenceMetrics) UserConnected(ctx context.Context)                   {}
func (NoOpPresenceMetrics) UserDisconnected(ctx context.Context, reason string) {}
func (NoOpPresenceMetrics) EventDropped(ctx context.Context, event string)      {}
