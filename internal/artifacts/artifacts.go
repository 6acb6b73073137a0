// Per-attempt artifact directory: screenshots plus the structured attempt
// log, everything an operator needs to audit one run.

package artifacts

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

type Dir struct {
	path string
}

// NewDir creates root/<date>_<attemptID>/.
func NewDir(root, attemptID string) (*Dir, error) {
	path := filepath.Join(root, fmt.Sprintf("%s_%s", time.Now().Format("2006-01-02"), attemptID))
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("could not create artifact directory: %w", err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) Path() string {
	return d.path
}

// Capture takes a screenshot into the attempt directory and returns its path.
func (d *Dir) Capture(sess interface{ Screenshot(path string) error }, name string) (string, error) {
	timestamp := time.Now().Format("15-04-05")
	path := filepath.Join(d.path, fmt.Sprintf("%s_%s.png", name, timestamp))
	if err := sess.Screenshot(path); err != nil {
		log.Printf("⚠️ Failed to capture screenshot %s: %v", name, err)
		return "", err
	}
	log.Printf("📸 Screenshot saved: %s", path)
	return path, nil
}

// WriteJSON persists a structured record (the AttemptResult) next to the
// screenshots and returns its path.
func (d *Dir) WriteJSON(name string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("could not marshal %s: %w", name, err)
	}
	path := filepath.Join(d.path, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("could not write %s: %w", path, err)
	}
	return path, nil
}
