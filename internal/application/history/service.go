package history

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/bryanwahyu/legalsense/internal/application"
	"github.com/bryanwahyu/legalsense/internal/domain/analysis"
	domain "github.com/bryanwahyu/legalsense/internal/domain/history"
)

// SummaryFallback is stored as the snippet when the analyzer returned no summary lines.
const SummaryFallback = "No summary available"

// DefaultAICategory is stored when the analyzer omitted a category.
const DefaultAICategory = "General"

// Service implements use-cases for the per-identity analysis history.
//
// Failure policy: persistence errors never reach the caller. Reads degrade
// to an empty collection, writes are logged and swallowed, and the returned
// sequence always reflects the intended post-write state. History is a
// convenience record, so durability is traded for responsiveness.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
}

//
// ==== USE CASES ====
//

// List returns the identity's collection, newest-first. Unauthenticated
// callers and unknown identities get an empty sequence, never an error.
func (s *Service) List(ctx context.Context, identity domain.Identity) []domain.Record {
	if identity == "" {
		return []domain.Record{}
	}
	recs, err := s.Repo.Load(ctx, identity)
	if err != nil {
		log.Printf("history load failed identity=%s: %v", identity, err)
		return []domain.Record{}
	}
	if recs == nil {
		recs = []domain.Record{}
	}
	return recs
}

// Create builds a record from the analysis result, prepends it, truncates
// the collection to the most recent MaxRecords and persists it. With no
// identity this is a no-op: unauthenticated callers never accumulate
// history and no durable write happens.
func (s *Service) Create(ctx context.Context, identity domain.Identity, documentName, documentURL string, result *analysis.FullAnalysisResult) []domain.Record {
	if identity == "" {
		return []domain.Record{}
	}

	rec := domain.Record{
		ID:             domain.RecordID(uuid.New().String()),
		CreatedAt:      s.Clock.Now().UnixMilli(),
		DocumentName:   documentName,
		FraudScore:     result.FraudAnalysis.FraudScore,
		AICategory:     aiCategory(result),
		SummarySnippet: snippet(result),
		DocumentURL:    documentURL,
		Payload:        result,
	}

	recs := append([]domain.Record{rec}, s.List(ctx, identity)...)
	if len(recs) > domain.MaxRecords {
		recs = recs[:domain.MaxRecords]
	}

	if err := s.Repo.Save(ctx, identity, recs); err != nil {
		// likely a quota/capacity problem; the caller still gets the intended state
		log.Printf("history save failed identity=%s: %v", identity, err)
	}
	return recs
}

// Delete removes the record with the given id and returns the remainder.
// Deleting an unknown id is a no-op, not an error.
func (s *Service) Delete(ctx context.Context, identity domain.Identity, id domain.RecordID) []domain.Record {
	if identity == "" {
		return []domain.Record{}
	}

	recs := s.List(ctx, identity)
	kept := make([]domain.Record, 0, len(recs))
	for _, r := range recs {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(recs) {
		return kept
	}

	if err := s.Repo.Save(ctx, identity, kept); err != nil {
		log.Printf("history save failed identity=%s: %v", identity, err)
	}
	return kept
}

// Clear removes the identity's whole collection.
func (s *Service) Clear(ctx context.Context, identity domain.Identity) []domain.Record {
	if identity == "" {
		return []domain.Record{}
	}
	if err := s.Repo.Clear(ctx, identity); err != nil {
		log.Printf("history clear failed identity=%s: %v", identity, err)
	}
	return []domain.Record{}
}

// Get finds one record by id, nil when absent.
func (s *Service) Get(ctx context.Context, identity domain.Identity, id domain.RecordID) *domain.Record {
	for _, r := range s.List(ctx, identity) {
		if r.ID == id {
			return &r
		}
	}
	return nil
}

// helpers

func aiCategory(result *analysis.FullAnalysisResult) string {
	if result.LegalSummary.Category != "" {
		return result.LegalSummary.Category
	}
	return DefaultAICategory
}

func snippet(result *analysis.FullAnalysisResult) string {
	if len(result.LegalSummary.Summary) > 0 && result.LegalSummary.Summary[0] != "" {
		return result.LegalSummary.Summary[0]
	}
	return SummaryFallback
}
