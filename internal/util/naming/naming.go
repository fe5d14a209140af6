package naming

// Naming functions for run-scoped resources and published artifacts.
// Everything a deployment creates follows consistent naming patterns to
// enable easy identification and cleanup.

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Channel returns the name for an ephemeral notification-channel pair. It
// embeds the environment name, the run timestamp, and a random suffix so it
// never collides with a concurrent or prior run's channels.
func Channel(env string, at time.Time, suffix string) string {
	return fmt.Sprintf("%s-%s-%s", env, at.UTC().Format("20060102-150405"), suffix)
}

// RunSuffix returns a short random identifier for one run.
func RunSuffix() string {
	return uuid.NewString()[:8]
}

// TemplateKey returns the storage key for a published template artifact,
// content-addressed with a prefix of its document hash.
func TemplateKey(prefix, name, hash string) string {
	short := hash
	if len(short) > 12 {
		short = short[:12]
	}
	if prefix == "" {
		return fmt.Sprintf("%s.%s.template", name, short)
	}
	return fmt.Sprintf("%s/%s.%s.template", prefix, name, short)
}

// RootStack returns the name of the top-level deployed stack for an
// environment.
func RootStack(env string) string {
	return env
}
