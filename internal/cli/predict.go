package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/gradecast/internal/dataset"
	"github.com/haskel/gradecast/internal/logger"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a final grade and risk tier",
	Long: `Predict a final grade from the four scores using the stored model,
training one first if none exists.

Example:
  gradecast predict --assignment 85 --exam 78 --attendance 92 --participation 70`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

var predictFlags dataset.FeatureVector

func init() {
	f := predictCmd.Flags()
	f.Float64Var(&predictFlags.AssignmentScore, "assignment", 0, "assignment score")
	f.Float64Var(&predictFlags.ExamScore, "exam", 0, "exam score")
	f.Float64Var(&predictFlags.AttendancePercentage, "attendance", 0, "attendance percentage")
	f.Float64Var(&predictFlags.ParticipationScore, "participation", 0, "participation score")
	for _, name := range []string{"assignment", "exam", "attendance", "participation"} {
		_ = predictCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := logger.New(logLevel("warn"), cfg.Logging.Format)
	ctx := context.Background()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.predictor.Predict(ctx, predictFlags)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(res)
	}

	fmt.Fprintln(out, titleStyle.Render("Grade prediction"))
	fmt.Fprintln(out, field("Predicted grade", fmt.Sprintf("%.2f", res.PredictedGrade)))
	fmt.Fprintln(out, field("Risk", badge(string(res.RiskLevel), riskColor(res.RiskLevel))))
	fmt.Fprintln(out, field("Recommendation", res.Recommendation))
	return nil
}
