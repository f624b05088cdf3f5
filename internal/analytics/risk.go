package analytics

// RiskLevel is the tier assigned to a predicted grade.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Tier boundaries. A grade equal to a boundary belongs to the better tier.
const (
	LowRiskMinGrade    = 80.0
	MediumRiskMinGrade = 65.0
)

const (
	recommendationLow    = "Excellent performance! Keep up the good work."
	recommendationMedium = "Good performance. Focus on improving weaker areas."
	recommendationHigh   = "Needs attention. Consider additional tutoring and study support."
)

// Classify maps a predicted grade to its risk tier and recommendation.
func Classify(grade float64) (RiskLevel, string) {
	switch {
	case grade >= LowRiskMinGrade:
		return RiskLow, recommendationLow
	case grade >= MediumRiskMinGrade:
		return RiskMedium, recommendationMedium
	default:
		return RiskHigh, recommendationHigh
	}
}
