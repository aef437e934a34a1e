package fs

import "strings"

// Manifest field caps, matching the widest values each field can occupy in
// a record.
const (
	maxDocIDLen = 63
	maxTitleLen = 4095
	maxURLLen   = 8191
)

// ManifestRecord is one parsed manifest line.
type ManifestRecord struct {
	DocID string
	Title string
	URL   string
}

// ExtractString pulls the quoted value of `"key":` out of a manifest line.
// This is deliberately not a JSON parser: the manifest is machine-written
// one record per line, and a substring scan is all the format needs. A
// backslash passes the following byte through literally. Returns false when
// the key or its opening quote is missing.
func ExtractString(line, key string, max int) (string, bool) {
	pat := `"` + key + `":`
	i := strings.Index(line, pat)
	if i < 0 {
		return "", false
	}
	p := i + len(pat)
	for p < len(line) && (line[p] == ' ' || line[p] == '\t') {
		p++
	}
	if p >= len(line) || line[p] != '"' {
		return "", false
	}
	p++

	var b strings.Builder
	for p < len(line) && line[p] != '"' && b.Len() < max {
		if line[p] == '\\' && p+1 < len(line) {
			p++
		}
		b.WriteByte(line[p])
		p++
	}
	return b.String(), true
}

// ParseManifestLine extracts doc_id, title and url from one line. A line
// without doc_id yields false and is skipped by the caller. A missing title
// falls back to the doc_id; a missing url becomes empty.
func ParseManifestLine(line string) (ManifestRecord, bool) {
	id, ok := ExtractString(line, "doc_id", maxDocIDLen)
	if !ok {
		return ManifestRecord{}, false
	}
	rec := ManifestRecord{DocID: id}

	if title, ok := ExtractString(line, "title", maxTitleLen); ok && title != "" {
		rec.Title = title
	} else {
		rec.Title = id
	}
	rec.URL, _ = ExtractString(line, "url", maxURLLen)
	return rec, true
}
