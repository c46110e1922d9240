package analysis

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	apphistory "github.com/bryanwahyu/legalsense/internal/application/history"
	domain "github.com/bryanwahyu/legalsense/internal/domain/analysis"
	hist "github.com/bryanwahyu/legalsense/internal/domain/history"
)

type fakeClient struct {
	result *domain.FullAnalysisResult
	err    error
	calls  int
	gotURL string
}

func (f *fakeClient) Analyze(ctx context.Context, fileURL string) (*domain.FullAnalysisResult, error) {
	f.calls++
	f.gotURL = fileURL
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStore struct {
	url  string
	err  error
	puts int
	key  string
}

func (f *fakeStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	f.puts++
	f.key = key
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeRepo struct {
	stored map[hist.Identity][]hist.Record
	saves  int
}

func (f *fakeRepo) Load(ctx context.Context, identity hist.Identity) ([]hist.Record, error) {
	return f.stored[identity], nil
}

func (f *fakeRepo) Save(ctx context.Context, identity hist.Identity, records []hist.Record) error {
	f.saves++
	f.stored[identity] = records
	return nil
}

func (f *fakeRepo) Clear(ctx context.Context, identity hist.Identity) error {
	delete(f.stored, identity)
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newFixture() (*Service, *fakeClient, *fakeStore, *fakeRepo) {
	repo := &fakeRepo{stored: make(map[hist.Identity][]hist.Record)}
	store := &fakeStore{url: "https://files.example/legalsense/u1/doc.pdf"}
	client := &fakeClient{result: validResult()}
	svc := &Service{
		Client:    client,
		Documents: store,
		History: &apphistory.Service{
			Repo:  repo,
			Clock: fixedClock{t: time.UnixMilli(1_700_000_000_000)},
		},
	}
	return svc, client, store, repo
}

func validResult() *domain.FullAnalysisResult {
	return &domain.FullAnalysisResult{
		LegalSummary: domain.LegalSummary{
			Category:   "Legal Contract",
			Summary:    []string{"a mutual agreement"},
			Confidence: 90,
		},
		FraudAnalysis: domain.FraudAnalysis{FraudScore: 55},
	}
}

func command(identity hist.Identity) AnalyzeCommand {
	return AnalyzeCommand{
		Identity:     identity,
		DocumentName: "lease.pdf",
		ContentType:  "application/pdf",
		Body:         strings.NewReader("%PDF-1.4"),
		Size:         8,
	}
}

func TestAnalyzeDocument_StoresAnalyzesAndRecords(t *testing.T) {
	svc, client, store, repo := newFixture()
	ctx := context.Background()

	res, err := svc.AnalyzeDocument(ctx, command("u1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.puts != 1 {
		t.Fatalf("expected 1 store write, got %d", store.puts)
	}
	if !strings.HasPrefix(store.key, "u1/") || !strings.HasSuffix(store.key, ".pdf") {
		t.Errorf("document key should be owner-scoped with the original extension, got %q", store.key)
	}
	if client.gotURL != store.url {
		t.Errorf("analyzer should receive the stored URL, got %q", client.gotURL)
	}
	if res.DocumentURL != store.url {
		t.Errorf("result should carry the stored URL, got %q", res.DocumentURL)
	}

	if len(res.History) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(res.History))
	}
	rec := res.History[0]
	if rec.DocumentName != "lease.pdf" || rec.FraudScore != 55 || rec.DocumentURL != store.url {
		t.Errorf("record fields not derived from the analysis: %+v", rec)
	}
	if repo.saves != 1 || len(repo.stored["u1"]) != 1 {
		t.Errorf("expected exactly one persisted record, saves=%d stored=%d", repo.saves, len(repo.stored["u1"]))
	}
}

func TestAnalyzeDocument_InvalidResultIsNeverPersisted(t *testing.T) {
	svc, client, _, repo := newFixture()
	client.result = &domain.FullAnalysisResult{
		FraudAnalysis: domain.FraudAnalysis{FraudScore: 150},
	}

	_, err := svc.AnalyzeDocument(context.Background(), command("u1"))
	if !errors.Is(err, domain.ErrInvalidResult) {
		t.Fatalf("expected ErrInvalidResult, got %v", err)
	}
	if repo.saves != 0 || len(repo.stored["u1"]) != 0 {
		t.Errorf("a rejected result must not reach the store, saves=%d stored=%d", repo.saves, len(repo.stored["u1"]))
	}
}

func TestAnalyzeDocument_AnalyzerErrorPropagates(t *testing.T) {
	svc, client, _, repo := newFixture()
	client.err = domain.ErrQuotaExceeded

	_, err := svc.AnalyzeDocument(context.Background(), command("u1"))
	if !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if repo.saves != 0 {
		t.Errorf("nothing should be persisted after an analyzer failure, saves=%d", repo.saves)
	}
}

func TestAnalyzeDocument_StoreFailureShortCircuits(t *testing.T) {
	svc, client, store, repo := newFixture()
	store.err = errors.New("bucket unavailable")

	_, err := svc.AnalyzeDocument(context.Background(), command("u1"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if client.calls != 0 {
		t.Errorf("analyzer must not run without a stored document, calls=%d", client.calls)
	}
	if repo.saves != 0 {
		t.Errorf("nothing should be persisted, saves=%d", repo.saves)
	}
}

func TestAnalyzeDocument_GuestUploadsAreNotRecorded(t *testing.T) {
	svc, _, store, repo := newFixture()

	res, err := svc.AnalyzeDocument(context.Background(), command(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(store.key, "guest/") {
		t.Errorf("unauthenticated uploads store under guest/, got %q", store.key)
	}
	if len(res.History) != 0 || repo.saves != 0 {
		t.Errorf("guest analyses must not touch the history store, history=%d saves=%d", len(res.History), repo.saves)
	}
}
