package harvest

import (
	"net/url"
	"regexp"
	"strings"
)

// linkPattern matches bare and markdown-embedded links in comment bodies.
var linkPattern = regexp.MustCompile(`https?://[^\s)">]+`)

// driveFilePattern captures the file ID of a Google Drive share link.
var driveFilePattern = regexp.MustCompile(`drive\.google\.com/file/d/([^/?#]+)`)

// ExtractCandidates pulls every plausible download link out of a comment
// body, in order of appearance. Links are rewritten to their direct-download
// form where the host has a known share-page format. When strict is set, only
// links whose host appears in trusted survive.
func ExtractCandidates(body string, strict bool, trusted []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, raw := range linkPattern.FindAllString(body, -1) {
		candidate := strings.TrimRight(raw, `.,;:!?'"`+"`")
		candidate = rewriteDirectDownload(candidate)
		if candidate == "" || seen[candidate] {
			continue
		}
		if strict && !hostTrusted(candidate, trusted) {
			continue
		}
		seen[candidate] = true
		out = append(out, candidate)
	}
	return out
}

// rewriteDirectDownload converts share-page links into ones that return the
// file bytes directly. Unknown hosts pass through untouched.
func rewriteDirectDownload(link string) string {
	if m := driveFilePattern.FindStringSubmatch(link); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1]
	}
	if strings.Contains(link, "dropbox.com/") {
		if strings.Contains(link, "dl=0") {
			return strings.Replace(link, "dl=0", "dl=1", 1)
		}
	}
	return link
}

func hostTrusted(link string, trusted []string) bool {
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, t := range trusted {
		if host == t || strings.HasSuffix(host, "."+t) {
			return true
		}
	}
	return false
}
