package compose

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// DirPublisher writes rendered artifacts to a local directory. Used by the
// render-only command path, where no remote storage is involved.
type DirPublisher struct {
	Dir string
}

// Publish implements Publisher. The file name embeds a short content hash
// so successive renders never silently overwrite a different artifact.
func (p *DirPublisher) Publish(_ context.Context, name string, body []byte) (string, error) {
	if err := os.MkdirAll(p.Dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	sum := sha256.Sum256(body)
	path := filepath.Join(p.Dir, fmt.Sprintf("%s.%s.template", name, hex.EncodeToString(sum[:4])))
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return "", fmt.Errorf("failed to write template %s: %w", name, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}
