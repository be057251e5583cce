package collector

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/adfit/internal/models"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	writeFile(t, path, buf.Bytes())
}

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	writeFile(t, path, buf.Bytes())
}

func writeGIF(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Black, color.White})
	require.NoError(t, gif.Encode(&buf, img, nil))
	writeFile(t, path, buf.Bytes())
}

func writeBanner(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("index.html")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<html><body><a href="__CLICKTHRU__" target="_top">go</a></body></html>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	writeFile(t, path, buf.Bytes())
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, 8, c.config.MaxConcurrency)
	assert.Positive(t, c.config.Timeout)
	assert.NotNil(t, c.log)

	c = New(Config{MaxConcurrency: 2})
	assert.Equal(t, 2, c.config.MaxConcurrency)
}

func TestCollectFromPathsErrors(t *testing.T) {
	c := New(Config{})
	ctx := context.Background()

	_, err := c.CollectFromPaths(ctx, nil)
	assert.Error(t, err)

	_, err = c.CollectFromPaths(ctx, []string{"/nonexistent/file.png"})
	assert.Error(t, err)

	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	writeFile(t, txt, []byte("hello"))
	_, err = c.CollectFromPaths(ctx, []string{txt})
	assert.Error(t, err, "unsupported file given directly")

	_, err = c.CollectFromPaths(ctx, []string{dir})
	assert.Error(t, err, "directory without creatives")
}

func TestCollectKeepsWalkOrder(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 6; i++ {
		writePNG(t, filepath.Join(dir, "Spincube", fmt.Sprintf("side%d.png", i)), 48, 48)
	}
	writeFile(t, filepath.Join(dir, "readme.txt"), []byte("skip me"))

	res, err := New(Config{MaxConcurrency: 4}).CollectFromPaths(context.Background(), []string{dir})
	require.NoError(t, err)

	require.Len(t, res.Assets, 6)
	for i, a := range res.Assets {
		assert.Equal(t, fmt.Sprintf("side%d.png", i+1), a.FileName)
		assert.Equal(t, models.FormatSpincube, a.DetectedFormat)
		assert.True(t, strings.HasSuffix(a.FolderPath, "/Spincube"), a.FolderPath)
	}
	assert.Empty(t, res.Failed)
}

func TestCollectAnalyzesEachKind(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "a_rect.jpg"), 300, 250)
	writeGIF(t, filepath.Join(dir, "b_sky.gif"), 160, 600)
	writeBanner(t, filepath.Join(dir, "c_HTML5_970x210_leaderboard.zip"))
	writeFile(t, filepath.Join(dir, "d_broken.png"), []byte("not an image"))

	res, err := New(Config{}).CollectFromPaths(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, res.Assets, 3)

	jpg := res.Assets[0]
	assert.Equal(t, "300x250", jpg.Dimensions)
	assert.Equal(t, models.FileFormatJPG, jpg.FileFormat)
	assert.True(t, jpg.ColorSpaceValid)
	assert.Equal(t, models.FormatNone, jpg.DetectedFormat)
	assert.Len(t, jpg.Fingerprint, 64)
	assert.Positive(t, jpg.SizeKB)

	gifAsset := res.Assets[1]
	assert.Equal(t, "160x600", gifAsset.Dimensions)
	assert.Equal(t, models.FileFormatGIF, gifAsset.FileFormat)

	banner := res.Assets[2]
	assert.Equal(t, models.FileFormatHTML5, banner.FileFormat)
	assert.Equal(t, "970x210", banner.Dimensions)
	assert.Equal(t, models.FormatHTML5, banner.DetectedFormat)
	require.Contains(t, res.Banners, banner.Path)
	assert.True(t, res.Banners[banner.Path].Valid)

	require.Len(t, res.Failed, 1)
	assert.Contains(t, res.Failed[0].Error(), "d_broken.png")
}

func TestCollectAllFailed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.png"), []byte("nope"))

	_, err := New(Config{}).CollectFromPaths(context.Background(), []string{dir})
	assert.Error(t, err)
}

func TestCollectUnreadableArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banner_300x250.zip")
	writeFile(t, path, []byte("garbage"))

	asset, banner, err := AnalyzeFile(path)
	require.NoError(t, err)
	require.NotNil(t, banner)
	assert.False(t, banner.IsPackaged)
	assert.Empty(t, asset.FileFormat, "unreadable archives are not html5")
	assert.Empty(t, asset.Dimensions)
}

func TestCollectSkipsHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, ".cache", "x_300x250.png"), 300, 250)
	writePNG(t, filepath.Join(dir, "__MACOSX", "y.png"), 300, 250)
	writePNG(t, filepath.Join(dir, "keep.png"), 300, 250)

	res, err := New(Config{}).CollectFromPaths(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, res.Assets, 1)
	assert.Equal(t, "keep.png", res.Assets[0].FileName)
}

func TestCollectCanceled(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 10, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{}).CollectFromPaths(ctx, []string{dir})
	assert.Error(t, err)
}

func TestRGBColorModel(t *testing.T) {
	assert.True(t, rgbColorModel(color.YCbCrModel))
	assert.True(t, rgbColorModel(color.RGBAModel))
	assert.False(t, rgbColorModel(color.CMYKModel))
}

func TestSizeKB(t *testing.T) {
	assert.Equal(t, 0, SizeKB(0))
	assert.Equal(t, 1, SizeKB(1))
	assert.Equal(t, 1, SizeKB(1024))
	assert.Equal(t, 2, SizeKB(1025))
	assert.Equal(t, 650, SizeKB(650*1024))
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint([]byte("creative"))
	assert.Equal(t, a, Fingerprint([]byte("creative")))
	assert.NotEqual(t, a, Fingerprint([]byte("creative2")))
}
