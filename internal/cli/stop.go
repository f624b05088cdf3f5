package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running gradecast server",
	Long:  `Stop the gradecast server by sending SIGTERM to the process specified in the PID file.`,
	RunE:  runStop,
}

var pidFile string

func init() {
	stopCmd.Flags().StringVar(&pidFile, "pid-file", "", "PID file path (overrides config)")
	rootCmd.AddCommand(stopCmd)
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("PID file not found: %s (server may not be running)", path)
		}
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid < 1 {
		return 0, fmt.Errorf("invalid PID in file: %s", pidStr)
	}
	return pid, nil
}

func runStop(cmd *cobra.Command, args []string) error {
	pidPath := pidFile
	if pidPath == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pidPath = cfg.Server.PIDFile
	}

	if pidPath == "" {
		return fmt.Errorf("no PID file specified (use --pid-file or configure in config)")
	}

	pid, err := readPID(pidPath)
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("process not found: %d", pid)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send signal: %w", err)
	}

	if jsonOut {
		fmt.Fprintf(cmd.OutOrStdout(), `{"status":"stopped","pid":%d}`+"\n", pid)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Sent SIGTERM to process %d\n", pid)
	}

	return nil
}
