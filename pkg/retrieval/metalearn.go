package retrieval

import (
	"context"
	"math"
	"time"

	"github.com/mnemo/mnemo/pkg/store"
)

// Meta-learning defaults and clamps.
const (
	DefaultInternalWeight = 0.6
	DefaultExternalWeight = 0.4
	DefaultLearningRate   = 0.01

	minWeight = 0.3
	maxWeight = 0.8
	minRate   = 0.005
	maxRate   = 0.05

	emaAlpha           = 0.1
	stabilityThreshold = 0.05
)

// LearnerParams are the meta-learning tunables. Zero-valued fields
// fall back to the package defaults.
type LearnerParams struct {
	InternalWeight float64
	ExternalWeight float64
	MinWeight      float64
	MaxWeight      float64
	MinRate        float64
	MaxRate        float64
	EMAAlpha       float64
}

func (p LearnerParams) withDefaults() LearnerParams {
	if p.InternalWeight <= 0 {
		p.InternalWeight = DefaultInternalWeight
	}
	if p.ExternalWeight <= 0 {
		p.ExternalWeight = 1.0 - p.InternalWeight
	}
	if p.MinWeight <= 0 {
		p.MinWeight = minWeight
	}
	if p.MaxWeight <= 0 {
		p.MaxWeight = maxWeight
	}
	if p.MinRate <= 0 {
		p.MinRate = minRate
	}
	if p.MaxRate <= 0 {
		p.MaxRate = maxRate
	}
	if p.EMAAlpha <= 0 {
		p.EMAAlpha = emaAlpha
	}
	return p
}

// LearnerOption configures a MetaLearner.
type LearnerOption func(*MetaLearner)

// WithLearnerParams overrides the learner's tunables.
func WithLearnerParams(p LearnerParams) LearnerOption {
	return func(m *MetaLearner) {
		m.params = p.withDefaults()
	}
}

// MetaLearner owns per-user adaptive state and updates it from
// feedback with a single-step online rule. All state lives in the
// store; concurrent updates rely on the store's atomic per-document
// update rather than in-process locking.
type MetaLearner struct {
	repo   *Repository
	params LearnerParams
	logger retrievalLogger
	now    func() time.Time
}

// NewMetaLearner creates a meta-learner.
func NewMetaLearner(repo *Repository, logger retrievalLogger, opts ...LearnerOption) *MetaLearner {
	if logger == nil {
		logger = nopLogger{}
	}
	m := &MetaLearner{
		repo:   repo,
		params: LearnerParams{}.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// defaultState returns the lazily created state for a new user.
func (m *MetaLearner) defaultState(userID string) *MetaLearningState {
	return &MetaLearningState{
		UserID:          userID,
		InternalWeight:  m.params.InternalWeight,
		ExternalWeight:  m.params.ExternalWeight,
		LearningRate:    DefaultLearningRate,
		TotalQueries:    0,
		AvgSatisfaction: 0.5,
		Strategy:        StrategyBalanced,
		LastUpdated:     m.now(),
	}
}

// GetState returns a user's meta-learning state, creating the default
// lazily for users who have none. Reads have no side effects; the
// default is persisted on the first update.
func (m *MetaLearner) GetState(ctx context.Context, userID string) (*MetaLearningState, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	state, err := m.repo.GetLearningState(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return m.defaultState(userID), nil
		}
		return nil, err
	}
	return state, nil
}

// Update applies one feedback observation to a user's state. It is
// called only by the feedback recorder. The whole rule executes inside
// the store's atomic update so concurrent instances stay consistent.
func (m *MetaLearner) Update(ctx context.Context, userID string, satisfaction float64) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	if satisfaction < 0 || satisfaction > 1 {
		return ErrInvalidSatisfaction
	}

	return m.repo.UpdateLearningState(ctx, userID, func(prior *MetaLearningState) (*MetaLearningState, error) {
		if prior == nil {
			prior = m.defaultState(userID)
		}
		next := *prior

		next.AvgSatisfaction = prior.AvgSatisfaction*(1-m.params.EMAAlpha) + satisfaction*m.params.EMAAlpha

		delta := (satisfaction - prior.AvgSatisfaction) * prior.LearningRate
		if satisfaction > prior.AvgSatisfaction {
			// Improving: small conservative step toward what works.
			next.InternalWeight = prior.InternalWeight + delta*0.1
		} else {
			// Regressing: larger step to explore an alternative mix.
			next.InternalWeight = prior.InternalWeight - delta*0.2
		}
		next.InternalWeight = clamp(next.InternalWeight, m.params.MinWeight, m.params.MaxWeight)
		next.ExternalWeight = 1.0 - next.InternalWeight

		if math.Abs(satisfaction-prior.AvgSatisfaction) < stabilityThreshold {
			next.LearningRate = math.Max(m.params.MinRate, prior.LearningRate*0.95)
		} else {
			next.LearningRate = math.Min(m.params.MaxRate, prior.LearningRate*1.05)
		}

		switch {
		case next.AvgSatisfaction > 0.8:
			next.Strategy = StrategyConservative
		case next.AvgSatisfaction > 0.6:
			next.Strategy = StrategyBalanced
		default:
			next.Strategy = StrategyAggressive
		}

		next.TotalQueries = prior.TotalQueries + 1
		next.LastUpdated = m.now()

		return &next, nil
	})
}

// AdaptiveWeights returns the fusion weights to use for a user right
// now. Confidence grows with query volume and good, stable
// satisfaction; the provenance label follows the same progression.
// Any error reading state falls back to the defaults.
func (m *MetaLearner) AdaptiveWeights(ctx context.Context, userID string) AdaptiveWeights {
	defaults := AdaptiveWeights{
		Internal:   m.params.InternalWeight,
		External:   m.params.ExternalWeight,
		Confidence: 0.5,
		Source:     WeightSourceDefault,
	}

	state, err := m.GetState(ctx, userID)
	if err != nil {
		m.logger.Warn("adaptive weights unavailable, using defaults", "userId", userID, "error", err)
		return defaults
	}

	confidence := 0.5
	if state.TotalQueries > 50 {
		confidence = math.Min(0.95, 0.5+float64(state.TotalQueries)/1000*0.5)
	}
	if state.AvgSatisfaction > 0.7 && state.TotalQueries > 20 {
		confidence = math.Min(0.95, confidence+0.2)
	}

	source := WeightSourceDefault
	if state.TotalQueries > 10 {
		source = WeightSourceLearned
	}
	if state.TotalQueries > 50 && state.AvgSatisfaction > 0.7 {
		source = WeightSourceOptimized
	}

	return AdaptiveWeights{
		Internal:   state.InternalWeight,
		External:   state.ExternalWeight,
		Confidence: confidence,
		Source:     source,
	}
}

// FusionWeights returns the weight pair the fusion engine should apply:
// the learned pair when confidence is high enough, the defaults
// otherwise.
func (m *MetaLearner) FusionWeights(ctx context.Context, userID string) (internal, external float64) {
	adaptive := m.AdaptiveWeights(ctx, userID)
	if adaptive.Confidence > 0.6 {
		return adaptive.Internal, adaptive.External
	}
	return m.params.InternalWeight, m.params.ExternalWeight
}

// Reset restores a user's weights and learning parameters to defaults
// while keeping the query counter.
func (m *MetaLearner) Reset(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}

	return m.repo.UpdateLearningState(ctx, userID, func(prior *MetaLearningState) (*MetaLearningState, error) {
		next := m.defaultState(userID)
		if prior != nil {
			next.TotalQueries = prior.TotalQueries
		}
		return next, nil
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
