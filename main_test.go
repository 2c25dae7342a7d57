package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/internal/testutil"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/geodata"
)

func writeConfig(t *testing.T, dir string, server *testutil.FileServer, ipTags string) string {
	t.Helper()
	path := filepath.Join(dir, "required_rules.json")
	body := fmt.Sprintf(`{
  "geosite_files": {
    "geosite.dat": {"url": %q, "required_tags": ["category-ru", "Google"]}
  },
  "geoip_files": {
    "geoip.dat": {"url": %q, "required_tags": [%s]}
  }
}`, server.FileURL("/geosite.dat"), server.FileURL("/geoip.dat"), ipTags)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newServer(t *testing.T) *testutil.FileServer {
	t.Helper()
	return testutil.StartFileServer(t, map[string]testutil.Response{
		"/geosite.dat": testutil.List(t, geodata.KindSite, "CATEGORY-RU", "google", "youtube"),
		"/geoip.dat":   testutil.List(t, geodata.KindIP, "us", "de"),
	})
}

func TestMissingGeoIPTagFailsRelease(t *testing.T) {
	tmpDir := t.TempDir()
	server := newServer(t)
	configPath := writeConfig(t, tmpDir, server, `"cn", "us"`)
	outputDir := filepath.Join(tmpDir, "release-assets")
	summaryPath := filepath.Join(tmpDir, "step-summary.md")
	t.Setenv("GITHUB_STEP_SUMMARY", summaryPath)

	code := run([]string{
		"--config", configPath,
		"--output-dir", outputDir,
		"--log-file", filepath.Join(tmpDir, "check.log"),
	})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}

	summary, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("read step summary: %v", err)
	}
	if !strings.Contains(string(summary), "geoip.dat: missing tag 'cn'") {
		t.Errorf("step summary does not name the missing tag:\n%s", summary)
	}
	if strings.Contains(string(summary), "'us'") {
		t.Errorf("present tag reported as missing:\n%s", summary)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "geoip.dat")); !os.IsNotExist(err) {
		t.Errorf("geoip.dat must not be published, stat error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "geosite.dat")); err != nil {
		t.Errorf("geosite.dat should be published: %v", err)
	}

	logContent, err := os.ReadFile(filepath.Join(tmpDir, "check.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(logContent), "loaded rules") {
		t.Error("log file does not contain the rules summary")
	}
}

func TestAllTagsPresentPasses(t *testing.T) {
	tmpDir := t.TempDir()
	server := newServer(t)
	configPath := writeConfig(t, tmpDir, server, `"US", "de"`)
	outputDir := filepath.Join(tmpDir, "release-assets")
	summaryPath := filepath.Join(tmpDir, "step-summary.md")
	t.Setenv("GITHUB_STEP_SUMMARY", summaryPath)

	code := run([]string{
		"--config", configPath,
		"--output-dir", outputDir,
		"--log-file", filepath.Join(tmpDir, "check.log"),
	})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("read output dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if strings.Join(names, ",") != "geoip.dat,geosite.dat" {
		t.Errorf("output dir contains %v", names)
	}
	if _, err := os.Stat(summaryPath); !os.IsNotExist(err) {
		t.Error("step summary must only be written on failure")
	}
}

func TestGateModeLeavesNoFiles(t *testing.T) {
	tmpDir := t.TempDir()
	server := newServer(t)
	configPath := writeConfig(t, tmpDir, server, `"us"`)
	t.Setenv("GEODATA_LOG_FILE", filepath.Join(tmpDir, "check.log"))
	t.Setenv("GITHUB_STEP_SUMMARY", "")

	if code := run([]string{"--config", configPath}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "required_rules.json" && e.Name() != "check.log" {
			t.Errorf("unexpected file left behind: %s", e.Name())
		}
	}
}
