package chat

import (
	"context"
	"errors"
	"testing"

	domain "github.com/bryanwahyu/legalsense/internal/domain/chat"
)

type fakeSession struct {
	reply domain.Reply
	err   error
	sends int
}

func (s *fakeSession) Send(ctx context.Context, text string) (domain.Reply, error) {
	s.sends++
	return s.reply, s.err
}

type fakeFactory struct {
	session *fakeSession
	err     error
	opened  int
}

func (f *fakeFactory) New(ctx context.Context, documentURL string) (domain.Session, error) {
	f.opened++
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func TestAsk_DedupesSources(t *testing.T) {
	sess := &fakeSession{reply: domain.Reply{
		Text: "short answer",
		Citations: []domain.RawCitation{
			{URI: "https://example.com/a", Title: "A"},
			{URI: "https://example.com/a", Title: "A duplicate"},
			{URI: "", Title: "no uri"},
		},
	}}
	svc := NewService(&fakeFactory{session: sess})

	text, sources, err := svc.Ask(context.Background(), "u1", "r1", "http://docs/x.pdf", "what is this?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "short answer" {
		t.Errorf("unexpected text %q", text)
	}
	if len(sources) != 1 || sources[0].Title != "A" {
		t.Errorf("expected one deduped source with the first title, got %+v", sources)
	}
}

func TestAsk_ReusesSessionPerRecord(t *testing.T) {
	factory := &fakeFactory{session: &fakeSession{reply: domain.Reply{Text: "ok"}}}
	svc := NewService(factory)
	ctx := context.Background()

	svc.Ask(ctx, "u1", "r1", "http://docs/x.pdf", "first")
	svc.Ask(ctx, "u1", "r1", "http://docs/x.pdf", "second")
	if factory.opened != 1 {
		t.Errorf("expected one session for repeated turns, got %d", factory.opened)
	}

	svc.Ask(ctx, "u1", "r2", "http://docs/y.pdf", "other record")
	if factory.opened != 2 {
		t.Errorf("expected a fresh session per record, got %d", factory.opened)
	}
}

func TestAsk_ForgetDropsSession(t *testing.T) {
	factory := &fakeFactory{session: &fakeSession{reply: domain.Reply{Text: "ok"}}}
	svc := NewService(factory)
	ctx := context.Background()

	svc.Ask(ctx, "u1", "r1", "http://docs/x.pdf", "first")
	svc.Forget("u1", "r1")
	svc.Ask(ctx, "u1", "r1", "http://docs/x.pdf", "again")

	if factory.opened != 2 {
		t.Errorf("expected a new session after Forget, got %d opens", factory.opened)
	}
}

func TestAsk_PropagatesErrors(t *testing.T) {
	factory := &fakeFactory{err: errors.New("model unavailable")}
	svc := NewService(factory)

	if _, _, err := svc.Ask(context.Background(), "u1", "r1", "http://docs/x.pdf", "hi"); err == nil {
		t.Fatal("expected factory error to propagate")
	}

	sess := &fakeSession{err: errors.New("timeout")}
	svc = NewService(&fakeFactory{session: sess})
	if _, _, err := svc.Ask(context.Background(), "u1", "r1", "http://docs/x.pdf", "hi"); err == nil {
		t.Fatal("expected send error to propagate")
	}
}

func TestAsk_EmptyCitationsYieldEmptySources(t *testing.T) {
	svc := NewService(&fakeFactory{session: &fakeSession{reply: domain.Reply{Text: "no web used"}}})

	_, sources, err := svc.Ask(context.Background(), "u1", "r1", "http://docs/x.pdf", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sources == nil || len(sources) != 0 {
		t.Errorf("expected empty non-nil sources, got %v", sources)
	}
}
