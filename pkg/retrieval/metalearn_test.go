package retrieval

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetaLearner_LazyDefaultState(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)

	state, err := learner.GetState(context.Background(), "fresh-user")
	require.NoError(t, err)
	require.Equal(t, 0.6, state.InternalWeight)
	require.Equal(t, 0.4, state.ExternalWeight)
	require.Equal(t, 0.01, state.LearningRate)
	require.Equal(t, int64(0), state.TotalQueries)
	require.Equal(t, 0.5, state.AvgSatisfaction)
	require.Equal(t, StrategyBalanced, state.Strategy)
}

func TestMetaLearner_GetStateValidation(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)

	_, err := learner.GetState(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidUserID)
}

func TestMetaLearner_UpdateValidation(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)
	ctx := context.Background()

	require.ErrorIs(t, learner.Update(ctx, "", 0.5), ErrInvalidUserID)
	require.ErrorIs(t, learner.Update(ctx, "u1", -0.1), ErrInvalidSatisfaction)
	require.ErrorIs(t, learner.Update(ctx, "u1", 1.1), ErrInvalidSatisfaction)
}

func TestMetaLearner_WeightSumInvariant(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		require.NoError(t, learner.Update(ctx, "u1", rng.Float64()))

		state, err := learner.GetState(ctx, "u1")
		require.NoError(t, err)
		require.InDelta(t, 1.0, state.InternalWeight+state.ExternalWeight, 1e-9,
			"weights must sum to 1.0 after update %d", i)
		require.GreaterOrEqual(t, state.InternalWeight, 0.3)
		require.LessOrEqual(t, state.InternalWeight, 0.8)
	}
}

func TestMetaLearner_EMADirection(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)
	ctx := context.Background()

	// Fresh user starts at avgSatisfaction 0.5. Two high scores push
	// the EMA up, one low score pulls it back down.
	prev := 0.5
	for _, satisfaction := range []float64{0.9, 0.9} {
		require.NoError(t, learner.Update(ctx, "u1", satisfaction))
		state, err := learner.GetState(ctx, "u1")
		require.NoError(t, err)
		require.Greater(t, state.AvgSatisfaction, prev)
		prev = state.AvgSatisfaction
	}

	require.NoError(t, learner.Update(ctx, "u1", 0.2))
	state, err := learner.GetState(ctx, "u1")
	require.NoError(t, err)
	require.Less(t, state.AvgSatisfaction, prev)
}

func TestMetaLearner_EMAStep(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)
	ctx := context.Background()

	require.NoError(t, learner.Update(ctx, "u1", 0.9))
	state, err := learner.GetState(ctx, "u1")
	require.NoError(t, err)
	require.InDelta(t, 0.5*0.9+0.9*0.1, state.AvgSatisfaction, 1e-9)
	require.Equal(t, int64(1), state.TotalQueries)
}

func TestMetaLearner_LearningRateAdaptation(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)
	ctx := context.Background()

	// A large satisfaction swing grows the rate.
	require.NoError(t, learner.Update(ctx, "u1", 1.0))
	state, err := learner.GetState(ctx, "u1")
	require.NoError(t, err)
	require.InDelta(t, 0.01*1.05, state.LearningRate, 1e-9)

	// A near-average observation decays it. avgSatisfaction is now
	// 0.55, so feed something within 0.05 of that.
	priorRate := state.LearningRate
	require.NoError(t, learner.Update(ctx, "u1", state.AvgSatisfaction+0.01))
	state, err = learner.GetState(ctx, "u1")
	require.NoError(t, err)
	require.InDelta(t, priorRate*0.95, state.LearningRate, 1e-9)
}

func TestMetaLearner_LearningRateBounds(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)
	ctx := context.Background()

	// Alternate extremes to grow the rate toward the ceiling.
	for i := 0; i < 100; i++ {
		satisfaction := 0.0
		if i%2 == 0 {
			satisfaction = 1.0
		}
		require.NoError(t, learner.Update(ctx, "volatile", satisfaction))
	}
	state, err := learner.GetState(ctx, "volatile")
	require.NoError(t, err)
	require.LessOrEqual(t, state.LearningRate, 0.05)

	// Steady feedback decays the rate toward the floor.
	for i := 0; i < 300; i++ {
		state, err := learner.GetState(ctx, "steady")
		require.NoError(t, err)
		require.NoError(t, learner.Update(ctx, "steady", state.AvgSatisfaction))
	}
	state, err = learner.GetState(ctx, "steady")
	require.NoError(t, err)
	require.GreaterOrEqual(t, state.LearningRate, 0.005)
}

func TestMetaLearner_StrategyClassification(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		sequence []float64
		want     string
	}{
		{"high satisfaction goes conservative", repeat(1.0, 30), StrategyConservative},
		{"low satisfaction goes aggressive", repeat(0.1, 30), StrategyAggressive},
		{"middling satisfaction stays balanced", repeat(0.7, 30), StrategyBalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			learner := NewMetaLearner(newTestRepo(), nil)
			for _, s := range tt.sequence {
				require.NoError(t, learner.Update(ctx, "u1", s))
			}
			state, err := learner.GetState(ctx, "u1")
			require.NoError(t, err)
			require.Equal(t, tt.want, state.Strategy)
		})
	}
}

func TestMetaLearner_AdaptiveWeights(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)
	ctx := context.Background()

	// Fresh user: defaults with baseline confidence.
	weights := learner.AdaptiveWeights(ctx, "u1")
	require.Equal(t, WeightSourceDefault, weights.Source)
	require.Equal(t, 0.5, weights.Confidence)
	require.Equal(t, 0.6, weights.Internal)

	// Past 10 queries the weights count as learned.
	for i := 0; i < 15; i++ {
		require.NoError(t, learner.Update(ctx, "u1", 0.5))
	}
	weights = learner.AdaptiveWeights(ctx, "u1")
	require.Equal(t, WeightSourceLearned, weights.Source)

	// Many queries with high satisfaction: optimized, high confidence.
	for i := 0; i < 60; i++ {
		require.NoError(t, learner.Update(ctx, "u2", 0.95))
	}
	weights = learner.AdaptiveWeights(ctx, "u2")
	require.Equal(t, WeightSourceOptimized, weights.Source)
	require.Greater(t, weights.Confidence, 0.6)
	require.LessOrEqual(t, weights.Confidence, 0.95)
}

func TestMetaLearner_FusionWeightsGating(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)
	ctx := context.Background()

	// Low confidence falls back to defaults regardless of state.
	internal, external := learner.FusionWeights(ctx, "fresh")
	require.Equal(t, 0.6, internal)
	require.Equal(t, 0.4, external)

	// High-confidence user gets the learned pair.
	for i := 0; i < 60; i++ {
		require.NoError(t, learner.Update(ctx, "u1", 0.95))
	}
	state, err := learner.GetState(ctx, "u1")
	require.NoError(t, err)

	internal, external = learner.FusionWeights(ctx, "u1")
	require.Equal(t, state.InternalWeight, internal)
	require.Equal(t, state.ExternalWeight, external)
	require.InDelta(t, 1.0, internal+external, 1e-9)
}

func TestMetaLearner_Reset(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		require.NoError(t, learner.Update(ctx, "u1", 0.95))
	}
	require.NoError(t, learner.Reset(ctx, "u1"))

	state, err := learner.GetState(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 0.6, state.InternalWeight)
	require.Equal(t, 0.4, state.ExternalWeight)
	require.Equal(t, 0.01, state.LearningRate)
	require.Equal(t, 0.5, state.AvgSatisfaction)
	require.Equal(t, StrategyBalanced, state.Strategy)
	// The query counter survives a reset.
	require.Equal(t, int64(20), state.TotalQueries)
}

func TestMetaLearner_ConfiguredParams(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil, WithLearnerParams(LearnerParams{
		InternalWeight: 0.7,
		ExternalWeight: 0.3,
		EMAAlpha:       0.5,
	}))
	ctx := context.Background()

	// A fresh user starts from the configured weight pair.
	state, err := learner.GetState(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 0.7, state.InternalWeight)
	require.Equal(t, 0.3, state.ExternalWeight)

	// The configured alpha drives the EMA step: 0.5*0.5 + 1.0*0.5.
	require.NoError(t, learner.Update(ctx, "u1", 1.0))
	state, err = learner.GetState(ctx, "u1")
	require.NoError(t, err)
	require.InDelta(t, 0.75, state.AvgSatisfaction, 1e-9)

	// The low-confidence fallback returns the configured pair too.
	internal, external := learner.FusionWeights(ctx, "fresh")
	require.Equal(t, 0.7, internal)
	require.Equal(t, 0.3, external)

	// Reset restores the configured pair, not the package defaults.
	require.NoError(t, learner.Reset(ctx, "u1"))
	state, err = learner.GetState(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 0.7, state.InternalWeight)
	require.Equal(t, 0.3, state.ExternalWeight)
}

func TestMetaLearner_ConfiguredClamps(t *testing.T) {
	learner := NewMetaLearner(newTestRepo(), nil, WithLearnerParams(LearnerParams{
		MinWeight: 0.45,
		MaxWeight: 0.55,
		MinRate:   0.002,
		MaxRate:   0.1,
	}))
	ctx := context.Background()

	// Alternating extremes push the weight against both clamps and grow
	// the learning rate past the stock 0.05 ceiling.
	sawRateAboveStockCeiling := false
	for i := 0; i < 200; i++ {
		satisfaction := 0.0
		if i%2 == 0 {
			satisfaction = 1.0
		}
		require.NoError(t, learner.Update(ctx, "u1", satisfaction))

		state, err := learner.GetState(ctx, "u1")
		require.NoError(t, err)
		require.GreaterOrEqual(t, state.InternalWeight, 0.45)
		require.LessOrEqual(t, state.InternalWeight, 0.55)
		require.GreaterOrEqual(t, state.LearningRate, 0.002)
		require.LessOrEqual(t, state.LearningRate, 0.1)
		if state.LearningRate > 0.05 {
			sawRateAboveStockCeiling = true
		}
	}
	require.True(t, sawRateAboveStockCeiling)
}

func TestClamp(t *testing.T) {
	if got := clamp(0.2, 0.3, 0.8); got != 0.3 {
		t.Errorf("clamp below: got %v", got)
	}
	if got := clamp(0.9, 0.3, 0.8); got != 0.8 {
		t.Errorf("clamp above: got %v", got)
	}
	if got := clamp(0.5, 0.3, 0.8); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("clamp inside: got %v", got)
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
