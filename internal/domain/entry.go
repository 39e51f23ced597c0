package domain

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// Entry is one item read from a feed source during a run.
type Entry struct {
	Title       string
	Link        string
	PublishedAt *time.Time
	SourceID    string
}

// EntryKey identifies a logical news item across runs.
type EntryKey string

// NewEntryKey digests the topic and canonical link into a stable document id.
func NewEntryKey(topic, link string) EntryKey {
	sum := md5.Sum([]byte(topic + CanonicalLink(link)))
	return EntryKey(hex.EncodeToString(sum[:]))
}

// String returns the hex digest.
func (k EntryKey) String() string {
	return string(k)
}

// CanonicalLink normalises scheme and host casing and drops the fragment.
// Links that do not parse as absolute URLs are only trimmed.
func CanonicalLink(link string) string {
	link = strings.TrimSpace(link)
	parsed, err := url.Parse(link)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return link
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	parsed.RawFragment = ""
	return parsed.String()
}
