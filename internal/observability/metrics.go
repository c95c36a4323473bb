package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/cory-johannsen/warband/internal/game/battle"

// BattleMetrics records combat activity through OpenTelemetry counters.
// With no global meter provider installed every instrument is a no-op.
type BattleMetrics struct {
	damage    metric.Int64Counter
	killed    metric.Int64Counter
	destroyed metric.Int64Counter
	spells    metric.Int64Counter
}

// NewBattleMetrics creates the battle instruments on the global meter provider.
//
// Postcondition: Returns usable metrics or a non-nil error.
func NewBattleMetrics() (*BattleMetrics, error) {
	return NewBattleMetricsWithMeter(otel.Meter(instrumentationName))
}

// NewBattleMetricsWithMeter creates the battle instruments on m.
//
// Precondition: m must be non-nil.
func NewBattleMetricsWithMeter(m metric.Meter) (*BattleMetrics, error) {
	bm := &BattleMetrics{}
	var err error

	bm.damage, err = m.Int64Counter(
		"battle.damage.dealt",
		metric.WithDescription("Hit points removed by attacks and spells"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating damage counter: %w", err)
	}

	bm.killed, err = m.Int64Counter(
		"battle.creatures.killed",
		metric.WithDescription("Stack members killed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating killed counter: %w", err)
	}

	bm.destroyed, err = m.Int64Counter(
		"battle.units.destroyed",
		metric.WithDescription("Combat units reduced to zero count"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating destroyed counter: %w", err)
	}

	bm.spells, err = m.Int64Counter(
		"battle.spells",
		metric.WithDescription("Spell applications by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating spell counter: %w", err)
	}

	return bm, nil
}

// RecordStrike counts damage and kills dealt by a creature.
func (m *BattleMetrics) RecordStrike(creature string, damage, killed int) {
	attrs := metric.WithAttributes(attribute.String("creature", creature))
	m.damage.Add(context.Background(), int64(damage), attrs)
	m.killed.Add(context.Background(), int64(killed), attrs)
}

// RecordUnitDestroyed counts a unit death.
func (m *BattleMetrics) RecordUnitDestroyed(creature string, mirrorImage bool) {
	m.destroyed.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("creature", creature),
		attribute.Bool("mirror_image", mirrorImage),
	))
}

// RecordSpell counts a spell application attempt.
func (m *BattleMetrics) RecordSpell(spell string, applied bool) {
	m.spells.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("spell", spell),
		attribute.Bool("applied", applied),
	))
}
