package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation for uploads and queries

// MaxUploadBytes caps uploaded document size (20 MiB).
const MaxUploadBytes = 20 << 20

// MaxQueryLength caps free-text search queries.
const MaxQueryLength = 200

var identityRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// allowed upload content types: documents and screenshots
var allowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"text/plain":      true,
}

// ValidateIdentity checks the resolved identity format. The empty identity
// is valid: it denotes an unauthenticated caller.
func ValidateIdentity(identity string) error {
	if identity == "" {
		return nil
	}
	if !identityRe.MatchString(identity) {
		return fmt.Errorf("invalid identity format")
	}
	return nil
}

// ValidateContentType checks an upload's declared content type against the allow-list.
func ValidateContentType(contentType string) error {
	// strip parameters like "; charset=utf-8"
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if !allowedContentTypes[strings.ToLower(base)] {
		return fmt.Errorf("unsupported content type: %s (allowed: pdf, png, jpeg, webp, plain text)", contentType)
	}
	return nil
}

// ValidateUploadSize rejects empty and oversized uploads.
func ValidateUploadSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("empty upload")
	}
	if size > MaxUploadBytes {
		return fmt.Errorf("upload too large: %d bytes (max %d)", size, MaxUploadBytes)
	}
	return nil
}

// ValidateQuery bounds search query length; empty queries are fine.
func ValidateQuery(query string) error {
	if len(query) > MaxQueryLength {
		return fmt.Errorf("query too long: %d characters (max %d)", len(query), MaxQueryLength)
	}
	return nil
}
