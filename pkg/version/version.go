// pkg/version/version.go

package version

import "fmt"

var (
	version   = "0.3-dev"
	revision  = "unknown"
	buildDate = "unknown"
)

// Version returns the version in format - `VERSION (BUILDDATE REVISION)`
// revision and buildDate are set with -ldflags "-X" by the Makefile
func Version() string {
	return fmt.Sprintf("%v (%v %v)", version, buildDate, revision)
}
