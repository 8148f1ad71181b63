package retrieval

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FeedbackInput is a user satisfaction signal tied to a query and the
// results it produced.
type FeedbackInput struct {
	Query        string   `json:"query" validate:"required"`
	UserID       string   `json:"userId" validate:"required"`
	ResultIDs    []string `json:"resultIds"`
	Satisfaction float64  `json:"satisfaction" validate:"gte=0,lte=1"`
	Feedback     string   `json:"feedback,omitempty"`
}

// FeedbackRecorder validates and persists feedback events and forwards
// each satisfaction signal to the meta-learner. Feedback submission is
// the sole trigger for online learning updates.
type FeedbackRecorder struct {
	repo     *Repository
	learner  *MetaLearner
	observer Observer
	logger   retrievalLogger
	validate *validator.Validate
	now      func() time.Time
}

// NewFeedbackRecorder creates a feedback recorder.
func NewFeedbackRecorder(repo *Repository, learner *MetaLearner, observer Observer, logger retrievalLogger) *FeedbackRecorder {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &FeedbackRecorder{
		repo:     repo,
		learner:  learner,
		observer: observer,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Submit records a feedback event and applies it to the user's
// learning state. The event is persisted first; the learner update is
// best-effort, retried once and on repeated failure logged with enough
// context to replay offline. Submit succeeds once the event is durable.
func (f *FeedbackRecorder) Submit(ctx context.Context, input *FeedbackInput) (*FeedbackEvent, error) {
	if err := f.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", validationError(input), err)
	}

	event := &FeedbackEvent{
		ID:           uuid.New().String(),
		Query:        input.Query,
		UserID:       input.UserID,
		ResultIDs:    input.ResultIDs,
		Satisfaction: input.Satisfaction,
		Feedback:     input.Feedback,
		Timestamp:    f.now(),
	}

	if err := f.repo.AppendFeedback(ctx, event); err != nil {
		return nil, fmt.Errorf("retrieval: persist feedback: %w", err)
	}
	f.observer.FeedbackRecorded()

	if err := f.forwardToLearner(ctx, input.UserID, input.Satisfaction); err != nil {
		prior, _ := f.learner.GetState(ctx, input.UserID)
		f.logger.Error("meta-learner update lost, replay offline",
			"userId", input.UserID,
			"satisfaction", input.Satisfaction,
			"priorState", prior,
			"error", err)
	} else {
		f.observer.LearnerUpdated()
	}

	return event, nil
}

// forwardToLearner applies the update, retrying once on failure.
func (f *FeedbackRecorder) forwardToLearner(ctx context.Context, userID string, satisfaction float64) error {
	err := f.learner.Update(ctx, userID, satisfaction)
	if err == nil {
		return nil
	}
	f.logger.Warn("meta-learner update failed, retrying", "userId", userID, "error", err)
	return f.learner.Update(ctx, userID, satisfaction)
}

// Recent returns a user's feedback events from the trailing window,
// newest first.
func (f *FeedbackRecorder) Recent(ctx context.Context, userID string, window time.Duration, limit int) ([]*FeedbackEvent, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if window <= 0 {
		window = 7 * 24 * time.Hour
	}
	return f.repo.ListFeedback(ctx, userID, f.now().Add(-window), limit)
}

// validationError maps an invalid input to the matching sentinel.
func validationError(input *FeedbackInput) error {
	switch {
	case input.UserID == "":
		return ErrInvalidUserID
	case input.Query == "":
		return ErrInvalidQuery
	default:
		return ErrInvalidSatisfaction
	}
}
