package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bryanwahyu/legalsense/internal/domain/analysis"
	domain "github.com/bryanwahyu/legalsense/internal/domain/history"
)

// fakeRepo is an in-memory Repository with injectable failures.
type fakeRepo struct {
	stored  map[domain.Identity][]domain.Record
	loadErr error
	saveErr error
	saves   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stored: make(map[domain.Identity][]domain.Record)}
}

func (f *fakeRepo) Load(ctx context.Context, identity domain.Identity) ([]domain.Record, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.stored[identity], nil
}

func (f *fakeRepo) Save(ctx context.Context, identity domain.Identity, records []domain.Record) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored[identity] = records
	return nil
}

func (f *fakeRepo) Clear(ctx context.Context, identity domain.Identity) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	delete(f.stored, identity)
	return nil
}

// stepClock hands out strictly increasing timestamps, one millisecond apart.
type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func newService(repo *fakeRepo) *Service {
	return &Service{Repo: repo, Clock: &stepClock{now: time.UnixMilli(1_700_000_000_000)}}
}

func result(score int, summary ...string) *analysis.FullAnalysisResult {
	return &analysis.FullAnalysisResult{
		LegalSummary:  analysis.LegalSummary{Category: "Legal Contract", Summary: summary},
		FraudAnalysis: analysis.FraudAnalysis{FraudScore: score},
	}
}

func TestCreate_PrependsNewestFirst(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	svc.Create(ctx, "u1", "first.pdf", "", result(10, "first"))
	recs := svc.Create(ctx, "u1", "second.pdf", "", result(20, "second"))

	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].DocumentName != "second.pdf" || recs[1].DocumentName != "first.pdf" {
		t.Errorf("expected newest-first order, got [%s %s]", recs[0].DocumentName, recs[1].DocumentName)
	}
	if recs[0].CreatedAt < recs[1].CreatedAt {
		t.Errorf("createdAt not non-increasing: %d then %d", recs[0].CreatedAt, recs[1].CreatedAt)
	}
	if recs[0].ID == recs[1].ID {
		t.Error("record ids must be unique")
	}
}

func TestCreate_TruncatesToTwenty(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	var recs []domain.Record
	for i := 0; i < 25; i++ {
		recs = svc.Create(ctx, "u1", fmt.Sprintf("doc-%02d.pdf", i), "", result(10, "s"))
	}

	if len(recs) != domain.MaxRecords {
		t.Fatalf("expected %d records after 25 creates, got %d", domain.MaxRecords, len(recs))
	}
	// the 20 most recent are doc-24 down to doc-05
	if recs[0].DocumentName != "doc-24.pdf" {
		t.Errorf("newest record should be doc-24.pdf, got %s", recs[0].DocumentName)
	}
	if recs[len(recs)-1].DocumentName != "doc-05.pdf" {
		t.Errorf("oldest retained record should be doc-05.pdf, got %s", recs[len(recs)-1].DocumentName)
	}
	if len(repo.stored["u1"]) != domain.MaxRecords {
		t.Errorf("persisted collection should also be capped, got %d", len(repo.stored["u1"]))
	}
}

func TestCreate_UnauthenticatedIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)

	recs := svc.Create(context.Background(), "", "doc.pdf", "", result(10, "s"))

	if len(recs) != 0 {
		t.Errorf("expected empty sequence for unauthenticated create, got %d records", len(recs))
	}
	if repo.saves != 0 {
		t.Errorf("expected no durable write, got %d saves", repo.saves)
	}
}

func TestCreate_DerivedFields(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	recs := svc.Create(ctx, "u1", "doc.pdf", "http://docs/doc.pdf", result(42, "line one", "line two"))
	if recs[0].SummarySnippet != "line one" {
		t.Errorf("snippet should be the first summary line, got %q", recs[0].SummarySnippet)
	}
	if recs[0].FraudScore != 42 {
		t.Errorf("expected fraud score 42, got %d", recs[0].FraudScore)
	}

	// no summary lines: fallback constant
	recs = svc.Create(ctx, "u1", "empty.pdf", "", result(0))
	if recs[0].SummarySnippet != SummaryFallback {
		t.Errorf("expected fallback snippet, got %q", recs[0].SummarySnippet)
	}

	// analyzer omitted the category: stored default
	res := result(0, "s")
	res.LegalSummary.Category = ""
	recs = svc.Create(ctx, "u1", "nocat.pdf", "", res)
	if recs[0].AICategory != DefaultAICategory {
		t.Errorf("expected default category, got %q", recs[0].AICategory)
	}
}

func TestCreate_SaveFailureReturnsIntendedState(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("quota exceeded")
	svc := newService(repo)

	recs := svc.Create(context.Background(), "u1", "doc.pdf", "", result(10, "s"))

	if len(recs) != 1 || recs[0].DocumentName != "doc.pdf" {
		t.Errorf("return value must reflect the intended post-write state, got %+v", recs)
	}
}

func TestList_CorruptStoreDegradesToEmpty(t *testing.T) {
	repo := newFakeRepo()
	repo.loadErr = errors.New("decoding stored history: unexpected end of JSON input")
	svc := newService(repo)

	recs := svc.List(context.Background(), "u1")
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected empty (non-nil) sequence on corrupt store, got %v", recs)
	}
}

func TestList_UnknownIdentityIsEmpty(t *testing.T) {
	svc := newService(newFakeRepo())

	recs := svc.List(context.Background(), "nobody")
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected empty sequence, got %v", recs)
	}
}

func TestDelete_IsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	svc.Create(ctx, "u1", "keep.pdf", "", result(10, "s"))
	recs := svc.Create(ctx, "u1", "drop.pdf", "", result(10, "s"))
	target := recs[0].ID

	first := svc.Delete(ctx, "u1", target)
	second := svc.Delete(ctx, "u1", target)

	if len(first) != 1 || first[0].DocumentName != "keep.pdf" {
		t.Fatalf("expected only keep.pdf after delete, got %+v", first)
	}
	if len(second) != len(first) || second[0].ID != first[0].ID {
		t.Errorf("second delete of the same id must yield the same sequence")
	}
}

func TestDelete_LastRecordLeavesEmptyCollection(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	recs := svc.Create(ctx, "u1", "only.pdf", "", result(10, "s"))
	remaining := svc.Delete(ctx, "u1", recs[0].ID)

	if len(remaining) != 0 {
		t.Fatalf("expected empty remainder, got %d", len(remaining))
	}
	// the persisted collection is empty, not absent
	stored, ok := repo.stored["u1"]
	if !ok {
		t.Fatal("collection row should still exist after deleting the last record")
	}
	if len(stored) != 0 {
		t.Errorf("persisted collection should be empty, got %d", len(stored))
	}
}

func TestClear_RemovesCollection(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	svc.Create(ctx, "u1", "doc.pdf", "", result(10, "s"))
	recs := svc.Clear(ctx, "u1")

	if len(recs) != 0 {
		t.Errorf("expected empty sequence after clear, got %d", len(recs))
	}
	if _, ok := repo.stored["u1"]; ok {
		t.Error("expected the stored collection to be removed")
	}
}

func TestGet_FindsById(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	recs := svc.Create(ctx, "u1", "doc.pdf", "", result(10, "s"))

	if got := svc.Get(ctx, "u1", recs[0].ID); got == nil || got.DocumentName != "doc.pdf" {
		t.Errorf("expected to find doc.pdf, got %+v", got)
	}
	if got := svc.Get(ctx, "u1", "missing"); got != nil {
		t.Errorf("expected nil for unknown id, got %+v", got)
	}
}
