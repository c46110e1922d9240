package analysis

import (
	"context"
	"io"
)

// Client port (interface for the AI analyzer)
type Client interface {
	Analyze(ctx context.Context, fileURL string) (*FullAnalysisResult, error)
}

// DocumentStore port (interface for uploaded document storage)
type DocumentStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}
