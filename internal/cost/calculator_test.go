package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculator_Call(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	// One million tokens each way at haiku pricing.
	got := calc.Call("claude-haiku-4-5-20251001", 1_000_000, 1_000_000)
	assert.InDelta(t, 4.80, got, 1e-9)
}

func TestCalculator_UnknownModelIsFree(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	assert.Zero(t, calc.Call("mystery-model", 1_000_000, 1_000_000))
	assert.Zero(t, calc.EstimatedCall("mystery-model"))
}

func TestCalculator_EstimatedCall(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	want := calc.Call("claude-haiku-4-5-20251001", EstimatedInputTokens, EstimatedOutputTokens)
	assert.InDelta(t, want, calc.EstimatedCall("claude-haiku-4-5-20251001"), 1e-12)
	assert.Greater(t, want, 0.0)
}

func TestCalculator_ZeroTokens(t *testing.T) {
	calc := NewCalculator(DefaultRates())

	assert.Zero(t, calc.Call("claude-haiku-4-5-20251001", 0, 0))
}
