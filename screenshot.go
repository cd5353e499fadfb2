package gridkit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SaveScreenshot writes png to dir as "<name>-<timestamp>.png" and returns
// the path. The directory is created when missing.
func SaveScreenshot(dir, name string, png []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create screenshots directory %s: %w", dir, err)
	}

	filename := fmt.Sprintf("%s-%s.png", sanitizeName(name), time.Now().Format("20060102-150405.000"))
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", fmt.Errorf("failed to save screenshot: %w", err)
	}

	Logger().Info("screenshot saved", "path", path, "bytes", len(png))
	return path, nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "screenshot"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
