package gridkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveScreenshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	png := []byte{0x89, 'P', 'N', 'G'}

	path, err := SaveScreenshot(dir, "login page/after submit", png)
	if err != nil {
		t.Fatalf("SaveScreenshot failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("saved to %s, want directory %s", path, dir)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "login_page_after_submit-") || !strings.HasSuffix(base, ".png") {
		t.Errorf("unexpected file name %q", base)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading screenshot: %v", err)
	}
	if string(got) != string(png) {
		t.Error("screenshot content differs")
	}
}

func TestSanitizeName(t *testing.T) {
	if got := sanitizeName("  "); got != "screenshot" {
		t.Errorf("sanitizeName(blank) = %q", got)
	}
	if got := sanitizeName("a:b"); got != "a_b" {
		t.Errorf("sanitizeName(a:b) = %q", got)
	}
}
