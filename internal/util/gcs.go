package util

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const maxPartLength = 60

var unsafePart = regexp.MustCompile(`[^a-z0-9_\-]`)

func SanitizePart(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = unsafePart.ReplaceAllString(s, "")
	if len(s) > maxPartLength {
		s = s[:maxPartLength]
	}
	if s == "" {
		return "unknown"
	}
	return s
}

// ExportObjectName builds exports/<user>/<timestamp>_<title>_<id>.mp3.
func ExportObjectName(userID uint, title, id string, now time.Time) string {
	return fmt.Sprintf(
		"%s/%s_%s_%s.mp3",
		ExportPrefix(userID),
		now.UTC().Format("20060102T150405"),
		SanitizePart(title),
		id,
	)
}

func ExportPrefix(userID uint) string {
	return fmt.Sprintf("exports/%d", userID)
}

// Builds a simple GCS URL. Private buckets need a signed URL instead.
func PublicGCSURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
