package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonitorFirstObservationContinues(t *testing.T) {
	m := NewMonitor(0.001)
	assert.Equal(t, Improving, m.Observe(1e12), "previous starts at +Inf")
}

func TestMonitorImprovementSequence(t *testing.T) {
	// Objective sequence 10.0, 9.5, 9.0001, 9.0000 with epsilon 0.001:
	// deltas are +Inf, 0.5, 0.4999, and 0.0001, where the last one stalls.
	m := NewMonitor(0.001)

	decisions := []Decision{
		m.Observe(10.0),
		m.Observe(9.5),
		m.Observe(9.0001),
		m.Observe(9.0000),
	}
	assert.Equal(t, []Decision{Improving, Improving, Improving, Stalled}, decisions)
}

func TestMonitorUpdatesPreviousUnconditionally(t *testing.T) {
	m := NewMonitor(0.001)
	m.Observe(10)
	m.Observe(10.5) // regression still records the new value
	assert.Equal(t, 10.5, m.Previous())
}

func TestMonitorRegression(t *testing.T) {
	m := NewMonitor(0.001)
	m.Observe(5)
	assert.Equal(t, Regressed, m.Observe(6))
}

func TestMonitorStallBoundary(t *testing.T) {
	tests := []struct {
		name   string
		second float64
		want   Decision
	}{
		{"just above epsilon", 10 - 0.0011, Improving},
		{"exactly epsilon", 10 - 0.001, Stalled},
		{"zero delta", 10, Stalled},
		{"negative delta", 10.000001, Regressed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor(0.001)
			m.Observe(10)
			assert.Equal(t, tt.want, m.Observe(tt.second))
		})
	}
}

func TestMonitorInfinityInitialization(t *testing.T) {
	m := NewMonitor(0.001)
	assert.True(t, math.IsInf(m.Previous(), 1))
}
