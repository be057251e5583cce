package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/adfit/internal/config"
	"github.com/ppiankov/adfit/internal/models"
	"github.com/ppiankov/adfit/internal/registry"
)

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

// --- getStoragePath tests ---

func TestGetStoragePathRelative(t *testing.T) {
	got, err := getStoragePath(".adfit")
	if err != nil {
		t.Fatalf("getStoragePath: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
	if !strings.HasSuffix(got, ".adfit") {
		t.Errorf("expected path ending with .adfit, got %q", got)
	}
}

func TestGetStoragePathAbsolute(t *testing.T) {
	got, err := getStoragePath("/tmp/adfit-test")
	if err != nil {
		t.Fatalf("getStoragePath: %v", err)
	}
	if got != "/tmp/adfit-test" {
		t.Errorf("getStoragePath(/tmp/adfit-test) = %q, want /tmp/adfit-test", got)
	}
}

func TestGetStoragePathTilde(t *testing.T) {
	got, err := getStoragePath("~/adfit-data")
	if err != nil {
		t.Fatalf("getStoragePath: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, "adfit-data")
	if got != want {
		t.Errorf("getStoragePath(~/adfit-data) = %q, want %q", got, want)
	}
}

// --- generateOutput tests ---

func minimalReport() *models.CheckReport {
	asset := models.FileAsset{
		Path:            "campaign/billboard_750x200.jpg",
		FileName:        "billboard_750x200.jpg",
		FolderPath:      "campaign",
		Dimensions:      "750x200",
		SizeKB:          90,
		FileFormat:      "jpg",
		ColorSpaceValid: true,
	}
	return &models.CheckReport{
		RunID:           "0b7e0f6c-1d2a-4c55-9a4e-0f3a9b1c2d3e",
		Timestamp:       time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		RegistryVersion: "2025.1",
		Assets: []models.AssetReport{
			{
				Asset: asset,
				Compatible: []models.PlacementResult{
					{MatchCandidate: models.MatchCandidate{Network: "onet", PlacementKey: "billboard", SizeLimit: 150}},
				},
			},
		},
		Groups: []models.MultiFileGroup{},
		Summary: models.CheckSummary{
			TotalAssets:         1,
			PlacedAssets:        1,
			PlacementsByNetwork: map[string]int{"onet": 1},
			AssetsByFormat:      map[string]int{"jpg": 1},
		},
		Recommendations: []models.Recommendation{},
	}
}

func TestGenerateOutputText(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output.txt")

	if err := generateOutput(minimalReport(), "text", out); err != nil {
		t.Fatalf("generateOutput(text): %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "billboard_750x200.jpg [PLACED]") {
		t.Errorf("text output missing asset line:\n%s", data)
	}
}

func TestGenerateOutputJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output.json")

	if err := generateOutput(minimalReport(), "json", out); err != nil {
		t.Fatalf("generateOutput(json): %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var decoded models.CheckReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not a check report: %v", err)
	}
	if decoded.Summary.PlacedAssets != 1 {
		t.Errorf("PlacedAssets = %d, want 1", decoded.Summary.PlacedAssets)
	}
}

func TestGenerateOutputBothToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "output.txt")

	if err := generateOutput(minimalReport(), "both", out); err != nil {
		t.Fatalf("generateOutput(both): %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "JSON Output") {
		t.Error("'both' format missing JSON separator")
	}
	if !strings.Contains(content, `"registry_version": "2025.1"`) {
		t.Error("'both' format missing JSON body")
	}
}

func TestGenerateOutputBothToStdout(t *testing.T) {
	chdirForTest(t, t.TempDir())

	out := captureStdout(t, func() {
		if err := generateOutput(minimalReport(), "both", ""); err != nil {
			t.Errorf("generateOutput(both): %v", err)
		}
	})

	if !strings.Contains(out, "AdFit Creative Compatibility Report") {
		t.Error("stdout missing text report")
	}
	if _, err := os.Stat("adfit-report.json"); err != nil {
		t.Errorf("expected adfit-report.json next to the run: %v", err)
	}
}

func TestGenerateOutputUnsupported(t *testing.T) {
	err := generateOutput(minimalReport(), "xml", "")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("error = %q, want 'unsupported format'", err.Error())
	}
}

// --- loadRegistry tests ---

func TestLoadRegistryDefault(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())

	reg, err := loadRegistry()
	if err != nil {
		t.Fatalf("loadRegistry: %v", err)
	}
	if reg.Version() != registry.Default().Version() {
		t.Errorf("Version = %q, want embedded %q", reg.Version(), registry.Default().Version())
	}
}

func TestLoadRegistryFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specs.yaml")
	data := `version: "test-1"
networks:
  local:
    square:
      display_name: Square
      dimensions: ["100x100"]
      max_size_kb: 50
      allowed_formats: [png]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c := config.DefaultConfig()
	c.RegistryFile = path
	withTestConfig(t, c)

	reg, err := loadRegistry()
	if err != nil {
		t.Fatalf("loadRegistry: %v", err)
	}
	if reg.Version() != "test-1" || !reg.HasNetwork("local") {
		t.Errorf("unexpected registry: version %q networks %v", reg.Version(), reg.Networks())
	}
}

func TestLoadRegistryInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "specs.yaml")
	data := `version: "bad"
networks:
  local:
    square:
      dimensions: []
      max_size_kb: 0
      allowed_formats: [png]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	c := config.DefaultConfig()
	c.RegistryFile = path
	withTestConfig(t, c)

	_, err := loadRegistry()
	if code := HandleError(err); code != ExitInvalidInput {
		t.Errorf("HandleError(%v) = %d, want %d", err, code, ExitInvalidInput)
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	c := config.DefaultConfig()
	c.RegistryFile = filepath.Join(t.TempDir(), "missing.yaml")
	withTestConfig(t, c)

	_, err := loadRegistry()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// --- collectAssets tests ---

func TestCollectAssetsNoPaths(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())

	_, _, err := collectAssets(context.Background(), nil, "")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCollectAssetsManifest(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())

	path := filepath.Join(t.TempDir(), "assets.json")
	data := `{"assets": [{"path": "campaign/rect_300x250.png", "dimensions": "300x250", "size_kb": 80, "file_format": "png"}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	assets, banners, err := collectAssets(context.Background(), nil, path)
	if err != nil {
		t.Fatalf("collectAssets: %v", err)
	}
	if len(assets) != 1 || assets[0].Dimensions != "300x250" {
		t.Errorf("assets = %+v", assets)
	}
	if banners != nil {
		t.Errorf("manifest mode should not produce banner reports")
	}
}

func TestCollectAssetsBadManifest(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())

	path := filepath.Join(t.TempDir(), "assets.json")
	if err := os.WriteFile(path, []byte("[unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := collectAssets(context.Background(), nil, path)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCollectAssetsFromDirectory(t *testing.T) {
	withTestConfig(t, config.DefaultConfig())

	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "rect_300x250.png"), 300, 250)
	writeBannerZip(t, filepath.Join(dir, "HTML5_970x210.zip"))

	assets, banners, err := collectAssets(context.Background(), []string{dir}, "")
	if err != nil {
		t.Fatalf("collectAssets: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("len(assets) = %d, want 2", len(assets))
	}
	if len(banners) != 1 {
		t.Errorf("len(banners) = %d, want 1", len(banners))
	}
}
