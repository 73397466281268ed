package web2pdf

import (
	"fmt"
	"regexp"
	"strings"
)

// unsafeRunPattern matches runs of characters that are not filesystem-safe.
var unsafeRunPattern = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// maxSafeNameLen bounds the URL-derived part of an artifact name.
const maxSafeNameLen = 150

// safeName derives a filesystem-safe name from a URL: the scheme is dropped,
// the remainder truncated, and every run of unsafe characters collapsed to a
// single underscore.
func safeName(rawURL string) string {
	base := strings.TrimSpace(rawURL)
	if i := strings.Index(base, "://"); i >= 0 {
		base = base[i+3:]
	}
	if len(base) > maxSafeNameLen {
		base = base[:maxSafeNameLen]
	}
	base = unsafeRunPattern.ReplaceAllString(base, "_")
	if base == "" {
		return "page"
	}
	return base
}

// artifactName builds the per-page PDF file name from the 1-based ordinal
// and the target URL, e.g. "003_scholar.google.com_scholar_start_20.pdf".
func artifactName(ordinal int, rawURL string) string {
	return fmt.Sprintf("%03d_%s.pdf", ordinal, safeName(rawURL))
}
