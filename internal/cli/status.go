package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/gradecast/internal/server"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server health, model state and process usage",
	Long:  `Query the running gradecast server for model lifecycle state, artifact info and process stats.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := NewClient()
	if err := client.Health(); err != nil {
		return err
	}

	data, status, err := client.Get("/status")
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, apiError(data, string(data)))
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		fmt.Fprintln(out, string(data))
		return nil
	}

	var st server.StatusResponse
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render("gradecast "+st.Version))
	fmt.Fprintln(out, field("Model state", st.Model.State))
	if art := st.Model.Artifact; art != nil {
		location := art.Backend + " " + art.Location
		if !art.Exists {
			location += " (not stored)"
		}
		fmt.Fprintln(out, field("Artifact", location))
		if art.Exists {
			fmt.Fprintln(out, field("Updated", art.UpdatedAt.Format(time.RFC3339)))
		}
	}
	if st.Model.Error != "" {
		fmt.Fprintln(out, field("Store error", st.Model.Error))
	}

	if sys := st.System; sys != nil {
		if p := sys.Process; p != nil {
			fmt.Fprintln(out, field("Process", fmt.Sprintf("pid %d, %.1f MB RSS, %d goroutines, up %s",
				p.PID, float64(p.RSSBytes)/1024/1024, p.Goroutines, time.Duration(p.UptimeSeconds)*time.Second)))
		}
		if m := sys.Memory; m != nil {
			fmt.Fprintln(out, field("Host memory", fmt.Sprintf("%.1f%%", m.UsagePercent)))
		}
		for path, d := range sys.Storage {
			fmt.Fprintln(out, field("Disk "+path, fmt.Sprintf("%.1f%%", d.UsagePercent)))
		}
	}

	return nil
}
