package school

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/haskel/gradecast/internal/analytics"
	"github.com/haskel/gradecast/internal/dataset"
)

// DashboardSize is how many recent performance records Dashboard returns.
const DashboardSize = 10

// Predictor scores a feature vector.
type Predictor interface {
	Predict(ctx context.Context, f dataset.FeatureVector) (*analytics.PredictionResult, error)
}

// Trainer retrains and persists the model.
type Trainer interface {
	FitAndPersist(ctx context.Context) (*analytics.TrainingResult, error)
}

// GradeInput is one grade submission.
type GradeInput struct {
	StudentID int64
	SubjectID int64
	Features  dataset.FeatureVector
	// UserID is the operator the completion notification goes to.
	UserID string
}

// GradeOutcome is the result of RecordGrade.
type GradeOutcome struct {
	Student     Student                     `json:"student"`
	Subject     Subject                     `json:"subject"`
	Grade       GradeRecord                 `json:"grade"`
	Performance PerformanceRecord           `json:"performance"`
	Prediction  *analytics.PredictionResult `json:"prediction"`
}

// PerformanceView pairs a performance record with its student.
type PerformanceView struct {
	Student Student           `json:"student"`
	Record  PerformanceRecord `json:"record"`
}

// Dashboard is the analytics overview.
type Dashboard struct {
	Students int               `json:"students"`
	Subjects int               `json:"subjects"`
	Recent   []PerformanceView `json:"recent"`
}

// Service runs the grade workflows on top of the collaborators.
type Service struct {
	registry  Registry
	grades    GradeBook
	notifier  Notifier
	predictor Predictor
	trainer   Trainer
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a Service.
func NewService(registry Registry, grades GradeBook, notifier Notifier, predictor Predictor, trainer Trainer, logger *slog.Logger) *Service {
	return &Service{
		registry:  registry,
		grades:    grades,
		notifier:  notifier,
		predictor: predictor,
		trainer:   trainer,
		logger:    logger,
		now:       time.Now,
	}
}

// Registry returns the student and subject registry.
func (s *Service) Registry() Registry {
	return s.registry
}

// RecordGrade resolves the student and subject, predicts the final grade,
// stores the grade and the student's performance record, and notifies the
// operator. Unknown IDs return ErrStudentNotFound or ErrSubjectNotFound.
func (s *Service) RecordGrade(ctx context.Context, in GradeInput) (*GradeOutcome, error) {
	student, err := s.registry.Student(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	subject, err := s.registry.Subject(ctx, in.SubjectID)
	if err != nil {
		return nil, err
	}

	pred, err := s.predictor.Predict(ctx, in.Features)
	if err != nil {
		return nil, err
	}

	now := s.now()
	grade := GradeRecord{
		StudentID:            student.ID,
		SubjectID:            subject.ID,
		AssignmentScore:      in.Features.AssignmentScore,
		ExamScore:            in.Features.ExamScore,
		AttendancePercentage: in.Features.AttendancePercentage,
		ParticipationScore:   in.Features.ParticipationScore,
		FinalGrade:           pred.PredictedGrade,
		UpdatedAt:            now,
	}
	if err := s.grades.UpsertGrade(ctx, grade); err != nil {
		return nil, fmt.Errorf("failed to save grade: %w", err)
	}

	perf, err := s.grades.UpsertPerformance(ctx, PerformanceRecord{
		StudentID:       student.ID,
		PredictedGrade:  pred.PredictedGrade,
		RiskLevel:       pred.RiskLevel,
		Recommendations: pred.Recommendation,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save performance: %w", err)
	}

	if err := s.notify(ctx, in.UserID, fmt.Sprintf("ML Analysis completed for %s", student.FullName())); err != nil {
		return nil, err
	}

	s.logger.Info("grade recorded",
		"student_id", student.ID,
		"subject_id", subject.ID,
		"grade", pred.PredictedGrade,
		"risk", pred.RiskLevel,
	)

	return &GradeOutcome{
		Student:     student,
		Subject:     subject,
		Grade:       grade,
		Performance: perf,
		Prediction:  pred,
	}, nil
}

// Retrain retrains the model and notifies userID with the held-out MSE.
func (s *Service) Retrain(ctx context.Context, userID string) (*analytics.TrainingResult, error) {
	res, err := s.trainer.FitAndPersist(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.notify(ctx, userID, fmt.Sprintf("ML Model retrained successfully. MSE: %.2f", res.MSE)); err != nil {
		return nil, err
	}
	return res, nil
}

// Dashboard returns registry counts and the most recent performance records.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	students, err := s.registry.Students(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := s.registry.Subjects(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.grades.RecentPerformance(ctx, DashboardSize)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	views := make([]PerformanceView, 0, len(recent))
	for _, p := range recent {
		views = append(views, PerformanceView{Student: byID[p.StudentID], Record: p})
	}

	return &Dashboard{
		Students: len(students),
		Subjects: len(subjects),
		Recent:   views,
	}, nil
}

// Notifications returns the latest notifications for userID.
func (s *Service) Notifications(ctx context.Context, userID string, limit int) ([]Notification, error) {
	return s.notifier.Recent(ctx, userID, limit)
}

func (s *Service) notify(ctx context.Context, userID, message string) error {
	err := s.notifier.Notify(ctx, Notification{
		UserID:    userID,
		Message:   message,
		CreatedAt: s.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
