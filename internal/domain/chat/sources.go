package chat

import "net/url"

// RawCitation is a grounding citation as returned by the model, before
// deduplication. URI may be empty on malformed citations.
type RawCitation struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// Source is a display-ready citation attached to a chat reply.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// DedupeSources turns raw grounding citations into a unique source list.
// Citations without a URI are dropped; duplicates (exact URI match) keep the
// first occurrence's title; output preserves first-occurrence order. The
// result is empty, never nil, so callers can key rendering off emptiness.
func DedupeSources(raw []RawCitation) []Source {
	out := make([]Source, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, c := range raw {
		if c.URI == "" {
			continue
		}
		if _, ok := seen[c.URI]; ok {
			continue
		}
		seen[c.URI] = struct{}{}

		title := c.Title
		if title == "" {
			title = fallbackTitle(c.URI)
		}
		out = append(out, Source{Title: title, URI: c.URI})
	}
	return out
}

func fallbackTitle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "Source"
	}
	return u.Hostname()
}
