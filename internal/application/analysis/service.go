package analysis

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"

	apphistory "github.com/bryanwahyu/legalsense/internal/application/history"
	domain "github.com/bryanwahyu/legalsense/internal/domain/analysis"
	"github.com/bryanwahyu/legalsense/internal/domain/history"
)

// Service implements the upload use-case: store the document, run the AI
// analyzer on it, then record the outcome in the caller's history.
type Service struct {
	Client    domain.Client
	Documents domain.DocumentStore
	History   *apphistory.Service
}

// AnalyzeCommand carries one uploaded document.
type AnalyzeCommand struct {
	Identity     history.Identity
	DocumentName string
	ContentType  string
	Body         io.Reader
	Size         int64
}

// AnalyzeResult is the upload response: the fresh analysis plus the
// caller's updated history (empty for unauthenticated callers).
type AnalyzeResult struct {
	Result      *domain.FullAnalysisResult `json:"result"`
	History     []history.Record           `json:"history"`
	DocumentURL string                     `json:"document_url"`
}

// AnalyzeDocument stores the upload, asks the analyzer for a full result and
// validates it at the boundary before anything is persisted. Analyzer or
// storage failures propagate; only the history write is fire-and-forget.
func (s *Service) AnalyzeDocument(ctx context.Context, cmd AnalyzeCommand) (AnalyzeResult, error) {
	key := documentKey(cmd.Identity, cmd.DocumentName)

	url, err := s.Documents.Put(ctx, key, cmd.ContentType, cmd.Body, cmd.Size)
	if err != nil {
		return AnalyzeResult{}, fmt.Errorf("storing document: %w", err)
	}

	result, err := s.Client.Analyze(ctx, url)
	if err != nil {
		return AnalyzeResult{}, err
	}
	if err := result.Validate(); err != nil {
		return AnalyzeResult{}, err
	}

	recs := s.History.Create(ctx, cmd.Identity, cmd.DocumentName, url, result)

	return AnalyzeResult{Result: result, History: recs, DocumentURL: url}, nil
}

func documentKey(identity history.Identity, documentName string) string {
	owner := string(identity)
	if owner == "" {
		owner = "guest"
	}
	return fmt.Sprintf("%s/%s%s", owner, uuid.New().String(), filepath.Ext(documentName))
}
