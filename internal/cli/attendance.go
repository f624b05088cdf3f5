package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haskel/gradecast/internal/attendance"
)

var attendanceCmd = &cobra.Command{
	Use:   "attendance <student-id>",
	Short: "Show a student's attendance trend",
	Long: `Query the running server for a student's attendance percentage over a
sliding window, with the alert and trend derived from it.

Examples:
  gradecast attendance 12
  gradecast attendance 12 --subject 3 --days 14`,
	Args: cobra.ExactArgs(1),
	RunE: runAttendance,
}

var (
	attendanceSubject int64
	attendanceDays    int
)

func init() {
	attendanceCmd.Flags().Int64Var(&attendanceSubject, "subject", 0, "limit to one subject")
	attendanceCmd.Flags().IntVar(&attendanceDays, "days", 0, "window length in days (server default when 0)")
	rootCmd.AddCommand(attendanceCmd)
}

func attendancePath(studentID string, subject int64, days int) (string, error) {
	id, err := strconv.ParseInt(studentID, 10, 64)
	if err != nil || id < 1 {
		return "", fmt.Errorf("invalid student id: %s", studentID)
	}

	q := url.Values{}
	if subject > 0 {
		q.Set("subject", strconv.FormatInt(subject, 10))
	}
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}

	path := fmt.Sprintf("/v1/students/%d/attendance", id)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return path, nil
}

func runAttendance(cmd *cobra.Command, args []string) error {
	path, err := attendancePath(args[0], attendanceSubject, attendanceDays)
	if err != nil {
		return err
	}

	data, status, err := NewClient().Get(path)
	if err != nil {
		return fmt.Errorf("failed to get attendance: %w", err)
	}
	if status == http.StatusNotFound {
		return fmt.Errorf("%s", apiError(data, "not found"))
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, apiError(data, string(data)))
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		fmt.Fprintln(out, string(data))
		return nil
	}

	var res attendance.WindowResult
	if err := json.Unmarshal(data, &res); err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Attendance for student %d", res.StudentID)))
	fmt.Fprintln(out, field("Window", res.From.Format("2006-01-02")+" .. "+res.To.Format("2006-01-02")))
	fmt.Fprintln(out, field("Attended", fmt.Sprintf("%d / %d", res.Attended, res.Total)))
	fmt.Fprintln(out, field("Percentage", fmt.Sprintf("%.1f%%", res.Percentage)))
	fmt.Fprintln(out, field("Trend", string(res.Trend)))
	for _, a := range res.Alerts {
		fmt.Fprintln(out, field("Alert", badge(string(a.Level), alertColor(a.Level))+" "+a.Message))
		fmt.Fprintln(out, field("Action", a.Action))
	}
	return nil
}
