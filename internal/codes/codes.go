package codes

import (
	"github.com/node4good/gypninja/internal/errors"
)

// Process exit codes.
const (
	Success       = 0
	BuildFailed   = 1
	Configuration = 2
	Cycle         = 3
	IO            = 4
	Environment   = 5
	Usage         = 64
)

// ExitCodes maps exit codes to their descriptions
var ExitCodes = map[int]string{
	Success:       "Success",
	BuildFailed:   "Build failed",
	Configuration: "Configuration error",
	Cycle:         "Dependency cycle",
	IO:            "I/O error",
	Environment:   "Environment error",
	Usage:         "Usage error",
}

// FromError returns the exit code for err. Cycles are checked before
// configuration errors since they carry both marks.
func FromError(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.IsCycle(err):
		return Cycle
	case errors.IsConfiguration(err):
		return Configuration
	case errors.IsIO(err):
		return IO
	case errors.IsEnvironment(err):
		return Environment
	case errors.IsBuild(err):
		return BuildFailed
	}

	return BuildFailed
}

// GetErrorMessage returns the description for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ExitCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}
