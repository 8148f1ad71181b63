package retrieval

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Quality thresholds from the reporting heuristics.
const (
	highConfidence  = 0.7
	highFusedScore  = 0.5
	highMinResults  = 3
	lowConfidence   = 0.4
	lowFusedScore   = 0.3
	lowMinResults   = 2
	reportScanLimit = 500
)

// PerformanceReport aggregates metrics over a trailing window. It is
// used only for offline reporting, never by the online loop.
type PerformanceReport struct {
	UserID        string         `json:"userId,omitempty"`
	Window        time.Duration  `json:"window"`
	QueryCount    int            `json:"queryCount"`
	AvgConfidence float64        `json:"avgConfidence"`
	AvgFusedScore float64        `json:"avgFusedScore"`
	AvgResponseMs float64        `json:"avgResponseMs"`
	AvgInternal   float64        `json:"avgInternalCount"`
	AvgExternal   float64        `json:"avgExternalCount"`
	QualityCounts map[string]int `json:"qualityCounts"`
	GeneratedAt   time.Time      `json:"generatedAt"`
}

// PerformanceRecorder appends per-query telemetry and serves
// trailing-window reports.
type PerformanceRecorder struct {
	repo   *Repository
	logger retrievalLogger
	now    func() time.Time
}

// NewPerformanceRecorder creates a performance recorder.
func NewPerformanceRecorder(repo *Repository, logger retrievalLogger) *PerformanceRecorder {
	if logger == nil {
		logger = nopLogger{}
	}
	return &PerformanceRecorder{repo: repo, logger: logger, now: time.Now}
}

// Record derives the metric's result quality and appends it.
func (p *PerformanceRecorder) Record(ctx context.Context, metric *PerformanceMetric) error {
	if metric.UserID == "" {
		return ErrInvalidUserID
	}
	if metric.ID == "" {
		metric.ID = uuid.New().String()
	}
	if metric.Timestamp.IsZero() {
		metric.Timestamp = p.now()
	}
	metric.ResultQuality = classifyQuality(metric)
	return p.repo.AppendMetric(ctx, metric)
}

// classifyQuality thresholds a metric into high, medium or low.
func classifyQuality(m *PerformanceMetric) string {
	total := m.InternalCount + m.ExternalCount
	switch {
	case m.AvgConfidence > highConfidence && total >= highMinResults && m.AvgFusedScore > highFusedScore:
		return QualityHigh
	case m.AvgConfidence < lowConfidence || total < lowMinResults || m.AvgFusedScore < lowFusedScore:
		return QualityLow
	default:
		return QualityMedium
	}
}

// UserReport aggregates a user's metrics over the trailing window.
func (p *PerformanceRecorder) UserReport(ctx context.Context, userID string, window time.Duration) (*PerformanceReport, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return p.report(ctx, userID, window)
}

// SystemReport aggregates all users' metrics over the trailing window.
func (p *PerformanceRecorder) SystemReport(ctx context.Context, window time.Duration) (*PerformanceReport, error) {
	return p.report(ctx, "", window)
}

func (p *PerformanceRecorder) report(ctx context.Context, userID string, window time.Duration) (*PerformanceReport, error) {
	if window <= 0 {
		window = 24 * time.Hour
	}

	metrics, err := p.repo.ListMetrics(ctx, userID, p.now().Add(-window), reportScanLimit)
	if err != nil {
		return nil, err
	}

	report := &PerformanceReport{
		UserID:        userID,
		Window:        window,
		QueryCount:    len(metrics),
		QualityCounts: map[string]int{},
		GeneratedAt:   p.now(),
	}
	if len(metrics) == 0 {
		return report, nil
	}

	var conf, fusedScore, respMs, internal, external float64
	for _, m := range metrics {
		conf += m.AvgConfidence
		fusedScore += m.AvgFusedScore
		respMs += float64(m.ResponseTimeMs)
		internal += float64(m.InternalCount)
		external += float64(m.ExternalCount)
		report.QualityCounts[m.ResultQuality]++
	}

	n := float64(len(metrics))
	report.AvgConfidence = conf / n
	report.AvgFusedScore = fusedScore / n
	report.AvgResponseMs = respMs / n
	report.AvgInternal = internal / n
	report.AvgExternal = external / n

	return report, nil
}
