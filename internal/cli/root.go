package cli

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// Connection and output options shared by every command. The client-side
// ones default from GRADECAST_* variables so credentials stay off the
// command line.
var (
	cfgFile  string
	host     string
	port     int
	jsonOut  bool
	verbose  bool
	user     string
	password string

	// Version is stamped by main.
	Version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "gradecast",
	Short: "Student grade prediction and attendance analytics",
	Long: `Gradecast predicts a student's final grade from assignment, exam,
attendance and participation scores, classifies the result into a risk tier
with a recommendation, and reports attendance trends over a sliding window.

Client commands (status, attendance) talk to a running server; train and
predict work directly against the configured model store.`,
	SilenceUsage: true,
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file path (default $GRADECAST_CONFIG)")
	flags.StringVar(&host, "host", envOr("GRADECAST_HOST", "localhost"), "server host")
	flags.IntVarP(&port, "port", "p", envInt("GRADECAST_PORT", 8080), "server port")
	flags.BoolVar(&jsonOut, "json", false, "output in JSON format")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&user, "user", os.Getenv("GRADECAST_USER"), "basic auth username")
	flags.StringVar(&password, "password", os.Getenv("GRADECAST_PASSWORD"), "basic auth password")
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return n
	}
	return fallback
}

// SetVersion stamps the version reported by --version.
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

// GetServerURL is the base URL of the server the client commands target.
func GetServerURL() string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// IsJSON reports whether --json was given.
func IsJSON() bool {
	return jsonOut
}

// logLevel returns the level for local commands: debug with --verbose,
// otherwise the configured level.
func logLevel(configured string) string {
	if verbose {
		return "debug"
	}
	return configured
}
