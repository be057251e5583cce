// Package html5 validates the structure and markup of packaged HTML5
// banners.
package html5

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/ppiankov/adfit/internal/models"
)

const (
	// MaxFiles is the largest number of files an archive may carry
	MaxFiles = 40
	// MaxDepth is the deepest directory nesting allowed; root is depth 0
	MaxDepth = 2
	// ClickThruPlaceholder must appear in the root document
	ClickThruPlaceholder = "__CLICKTHRU__"
	// MaxMarkupBytes caps how much of the root document is decompressed
	MaxMarkupBytes = 2 << 20
	// maxListedURLs caps the offenders quoted in one message
	maxListedURLs = 3
)

var errMarkupTooLarge = fmt.Errorf("uncompressed size exceeds %d KB", MaxMarkupBytes>>10)

// AllowedExtensions lists the file types a banner may contain
var AllowedExtensions = map[string]bool{
	"htm": true, "html": true, "css": true, "js": true,
	"gif": true, "png": true, "jpg": true, "jpeg": true,
	"svg": true, "webp": true, "avif": true,
	"woff": true, "woff2": true, "ttf": true, "eot": true,
	"json": true, "txt": true, "xml": true,
}

// ProhibitedCalls are script calls a banner must not make
var ProhibitedCalls = []string{
	"window.open(",
	"Enabler.exit(",
	"Enabler.exitOverride(",
	"Enabler.close(",
	"ExitApi.exit(",
	"mraid.open(",
	"mraid.close(",
}

// AllowedHosts are the CDNs absolute URLs may point at
var AllowedHosts = []string{
	"s0.2mdn.net",
	"tpc.googlesyndication.com",
	"ajax.googleapis.com",
	"fonts.googleapis.com",
	"fonts.gstatic.com",
	"cdnjs.cloudflare.com",
	"cdn.jsdelivr.net",
	"code.createjs.com",
	"www.w3.org",
}

var (
	dimensionPattern = regexp.MustCompile(`(?i)(\d+)x(\d+)`)
	urlPattern       = regexp.MustCompile(`(?i)https?://[a-z0-9.-]+[^\s"'<>()]*`)
)

// Validate inspects a banner archive. name is the archive's file name and
// is only used for dimension extraction.
func Validate(name string, data []byte) models.BannerReport {
	report := models.BannerReport{
		Issues:   []string{},
		Warnings: []string{},
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		report.Issues = append(report.Issues, "archive could not be read")
		return report
	}
	report.IsPackaged = true

	if dim, ok := ExtractDimensions(name); ok {
		report.Dimensions = dim
	} else {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("No {width}x{height} dimensions found in archive name %q", path.Base(name)))
	}

	files := memberFiles(zr)
	report.FileCount = len(files)

	roots := checkStructure(files, &report)
	if len(report.Issues) > 0 {
		return finish(report)
	}

	root := roots[0]
	report.RootDocument = root.Name
	markup, err := readMember(root)
	if err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("%s could not be read: %v", root.Name, err))
		return finish(report)
	}
	checkMarkup(markup, &report)

	return finish(report)
}

// ExtractDimensions returns the first {width}x{height} token in name
func ExtractDimensions(name string) (string, bool) {
	m := dimensionPattern.FindStringSubmatch(path.Base(name))
	if m == nil {
		return "", false
	}
	return m[1] + "x" + m[2], true
}

func finish(report models.BannerReport) models.BannerReport {
	report.Valid = len(report.Issues) == 0
	return report
}

// memberFiles returns the archive's files, skipping directories and
// archiver metadata.
func memberFiles(zr *zip.Reader) []*zip.File {
	var files []*zip.File
	for _, f := range zr.File {
		name := strings.TrimPrefix(f.Name, "./")
		if f.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
			continue
		}
		if strings.HasPrefix(name, "__MACOSX/") || path.Base(name) == ".DS_Store" {
			continue
		}
		files = append(files, f)
	}
	return files
}

// checkStructure records structural issues and returns the root markup
// documents.
func checkStructure(files []*zip.File, report *models.BannerReport) []*zip.File {
	if len(files) > MaxFiles {
		report.Issues = append(report.Issues,
			fmt.Sprintf("Archive contains %d files (maximum %d)", len(files), MaxFiles))
	}

	var roots []*zip.File
	var tooDeep, badExt []string
	for _, f := range files {
		name := strings.TrimPrefix(f.Name, "./")
		depth := strings.Count(name, "/")
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))

		if depth == 0 && (ext == "html" || ext == "htm") {
			roots = append(roots, f)
		}
		if depth > MaxDepth {
			tooDeep = append(tooDeep, name)
		}
		if !AllowedExtensions[ext] {
			badExt = append(badExt, name)
		}
	}

	switch len(roots) {
	case 0:
		report.Issues = append(report.Issues, "No .html/.htm file at the archive root")
	case 1:
	default:
		names := make([]string, 0, len(roots))
		for _, r := range roots {
			names = append(names, r.Name)
		}
		report.Issues = append(report.Issues,
			fmt.Sprintf("Archive root contains %d markup files (%s); exactly one is allowed", len(roots), strings.Join(names, ", ")))
	}
	for _, name := range tooDeep {
		report.Issues = append(report.Issues,
			fmt.Sprintf("%s is nested more than %d directory levels deep", name, MaxDepth))
	}
	for _, name := range badExt {
		report.Issues = append(report.Issues,
			fmt.Sprintf("%s has a file type that is not allowed", name))
	}

	return roots
}

func readMember(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, MaxMarkupBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxMarkupBytes {
		return "", errMarkupTooLarge
	}
	return string(data), nil
}

// markupTags is what the tokenizer saw outside comments and raw text.
type markupTags struct {
	html    bool
	body    bool
	anchors []html.Token
}

func scanTags(markup string) markupTags {
	var tags markupTags
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return tags
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		switch tok.Data {
		case "html":
			tags.html = true
		case "body":
			tags.body = true
		case "a":
			tags.anchors = append(tags.anchors, tok)
		}
	}
}

func targetsTop(tok html.Token) bool {
	for _, attr := range tok.Attr {
		if attr.Key == "target" {
			return strings.EqualFold(strings.TrimSpace(attr.Val), "_top")
		}
	}
	return false
}

// checkMarkup records markup issues for the root document.
func checkMarkup(markup string, report *models.BannerReport) {
	tags := scanTags(markup)
	if !tags.html {
		report.Issues = append(report.Issues, "Missing <html> tag")
	}
	if !tags.body {
		report.Issues = append(report.Issues, "Missing <body> tag")
	}
	if !strings.Contains(markup, ClickThruPlaceholder) {
		report.Issues = append(report.Issues, "Missing "+ClickThruPlaceholder+" placeholder")
	}

	anchors := tags.anchors
	switch len(anchors) {
	case 0:
		report.Issues = append(report.Issues, "No <a> tag found; exactly one clickable anchor is required")
	case 1:
		if !targetsTop(anchors[0]) {
			report.Issues = append(report.Issues, `The <a> tag must carry target="_top"`)
		}
	default:
		report.Issues = append(report.Issues,
			fmt.Sprintf("Found %d <a> tags; exactly one is allowed", len(anchors)))
	}

	for _, call := range ProhibitedCalls {
		if strings.Contains(markup, call) {
			report.Issues = append(report.Issues, fmt.Sprintf("Prohibited call %s found", strings.TrimSuffix(call, "(")+"()"))
		}
	}

	if offenders := externalURLs(markup); len(offenders) > 0 {
		listed := offenders
		if len(listed) > maxListedURLs {
			listed = listed[:maxListedURLs]
		}
		msg := fmt.Sprintf("%d external URL(s) outside the allowed CDNs: %s", len(offenders), strings.Join(listed, ", "))
		if len(offenders) > maxListedURLs {
			msg += fmt.Sprintf(" (and %d more)", len(offenders)-maxListedURLs)
		}
		report.Issues = append(report.Issues, msg)
	}
}

// externalURLs returns distinct absolute URLs whose host is not allowed,
// in order of first appearance.
func externalURLs(markup string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, raw := range urlPattern.FindAllString(markup, -1) {
		if seen[raw] || hostAllowed(raw) {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	return out
}

func hostAllowed(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, allowed := range AllowedHosts {
		if host == allowed {
			return true
		}
	}
	return false
}
