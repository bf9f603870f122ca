package launcher

import (
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/climonitor/climonitor/internal/protocol"
)

// NewIdentity builds a Launcher Identity for the current process.
func NewIdentity(tool, workingDir string) protocol.LauncherIdentity {
	return protocol.LauncherIdentity{
		LauncherID: uuid.NewString(),
		Tool:       tool,
		PID:        os.Getpid(),
		WorkingDir: workingDir,
		StartedAt:  time.Now(),
	}
}
