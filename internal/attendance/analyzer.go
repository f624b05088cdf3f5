package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultWindowDays is the look-back window when a query sets none.
const DefaultWindowDays = 30

// Alert tiers and the trend threshold. They are independent of each other.
const (
	CriticalBelow  = 75.0
	WarningBelow   = 85.0
	DecliningBelow = 80.0
)

// AlertLevel grades an attendance percentage.
type AlertLevel string

const (
	AlertCritical AlertLevel = "CRITICAL"
	AlertWarning  AlertLevel = "WARNING"
	AlertSuccess  AlertLevel = "SUCCESS"
)

// Trend is the coarse direction label attached to a window.
type Trend string

const (
	TrendDeclining Trend = "DECLINING"
	TrendStable    Trend = "STABLE"
)

// Alert is a human-readable notice derived from a percentage.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Message string     `json:"message"`
	Action  string     `json:"action"`
}

// WindowResult is the attendance summary for one student over a window.
type WindowResult struct {
	StudentID  int64     `json:"student_id"`
	SubjectID  int64     `json:"subject_id,omitempty"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Total      int       `json:"total"`
	Attended   int       `json:"attended"`
	Percentage float64   `json:"percentage"`
	Alerts     []Alert   `json:"alerts"`
	Trend      Trend     `json:"trend"`
}

// Query selects the student, optional subject, and window for Trend.
type Query struct {
	StudentID  int64
	SubjectID  int64
	WindowDays int
	Now        time.Time
}

var alertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gradecast",
	Subsystem: "attendance",
	Name:      "alerts_total",
	Help:      "Total attendance alerts by level",
}, []string{"level"})

// Analyzer computes attendance windows from a record store. It holds no state
// between calls.
type Analyzer struct {
	store  RecordStore
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer reading from store.
func NewAnalyzer(store RecordStore, logger *slog.Logger) *Analyzer {
	return &Analyzer{store: store, logger: logger}
}

// Trend computes the percentage of attended records in [Now-WindowDays, Now]
// and derives the alert and trend. A window without records scores 100.
// Store errors are returned unchanged.
func (a *Analyzer) Trend(ctx context.Context, q Query) (*WindowResult, error) {
	if q.WindowDays <= 0 {
		q.WindowDays = DefaultWindowDays
	}
	if q.Now.IsZero() {
		q.Now = time.Now()
	}

	to := Day(q.Now)
	from := to.AddDate(0, 0, -q.WindowDays)

	statuses, err := a.store.Statuses(ctx, RecordFilter{
		StudentID: q.StudentID,
		SubjectID: q.SubjectID,
		From:      from,
		To:        to,
	})
	if err != nil {
		return nil, err
	}

	attended := 0
	for _, s := range statuses {
		if s.Attended() {
			attended++
		}
	}

	pct := Percentage(attended, len(statuses))
	alert := AlertFor(pct)
	alertsRaised.WithLabelValues(string(alert.Level)).Inc()

	a.logger.Debug("attendance window computed",
		"student_id", q.StudentID,
		"subject_id", q.SubjectID,
		"records", len(statuses),
		"percentage", pct,
		"alert", alert.Level,
	)

	return &WindowResult{
		StudentID:  q.StudentID,
		SubjectID:  q.SubjectID,
		From:       from,
		To:         to,
		Total:      len(statuses),
		Attended:   attended,
		Percentage: pct,
		Alerts:     []Alert{alert},
		Trend:      TrendFor(pct),
	}, nil
}

// Percentage returns attended/total*100, or 100 when total is zero.
func Percentage(attended, total int) float64 {
	if total == 0 {
		return 100.0
	}
	return float64(attended) / float64(total) * 100
}

// AlertFor derives the alert for a percentage.
func AlertFor(pct float64) Alert {
	switch {
	case pct < CriticalBelow:
		return Alert{
			Level:   AlertCritical,
			Message: fmt.Sprintf("Attendance below 75%% (%.1f%%)", pct),
			Action:  "Immediate intervention required",
		}
	case pct < WarningBelow:
		return Alert{
			Level:   AlertWarning,
			Message: fmt.Sprintf("Attendance declining (%.1f%%)", pct),
			Action:  "Monitor closely",
		}
	default:
		return Alert{
			Level:   AlertSuccess,
			Message: fmt.Sprintf("Good attendance (%.1f%%)", pct),
			Action:  "Maintain current level",
		}
	}
}

// TrendFor labels a percentage as declining or stable.
func TrendFor(pct float64) Trend {
	if pct < DecliningBelow {
		return TrendDeclining
	}
	return TrendStable
}
