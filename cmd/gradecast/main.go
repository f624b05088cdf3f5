// Command gradecast serves and queries the grade prediction and attendance
// analytics API.
package main

import "github.com/haskel/gradecast/internal/cli"

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
