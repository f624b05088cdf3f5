package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haskel/gradecast/internal/logger"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the grade model and persist it",
	Long: `Generate the synthetic dataset, fit the configured regressor, report the
held-out mean squared error and write the model to the configured store.
Any stored model is replaced.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
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

	res, err := a.trainer.FitAndPersist(ctx)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	info, err := a.models.Info(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return json.NewEncoder(out).Encode(map[string]any{
			"mse":         res.MSE,
			"train_size":  res.TrainSize,
			"test_size":   res.TestSize,
			"duration_ms": res.Duration.Milliseconds(),
			"location":    info.Location,
		})
	}

	fmt.Fprintln(out, titleStyle.Render("Model trained"))
	fmt.Fprintln(out, field("Model", cfg.Model.Type))
	fmt.Fprintln(out, field("Samples", fmt.Sprintf("%d train / %d test", res.TrainSize, res.TestSize)))
	fmt.Fprintln(out, field("MSE", fmt.Sprintf("%.4f", res.MSE)))
	fmt.Fprintln(out, field("Duration", res.Duration.String()))
	fmt.Fprintln(out, field("Stored at", info.Backend+" "+info.Location))
	return nil
}
