package chat

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/bryanwahyu/legalsense/internal/domain/chat"
	"github.com/bryanwahyu/legalsense/internal/domain/history"
)

// Service runs chat turns about a stored document. Sessions are cached in
// memory per identity+record; a single browser session is assumed to be the
// only caller for a given identity at a time, so no further coordination is
// needed beyond the map lock.
type Service struct {
	Sessions domain.SessionFactory

	mu     sync.Mutex
	active map[string]domain.Session
}

func NewService(sessions domain.SessionFactory) *Service {
	return &Service{Sessions: sessions, active: make(map[string]domain.Session)}
}

// Ask sends one message and returns the reply text with its deduplicated
// source list. Sources are always a slice, empty when the model cited
// nothing usable.
func (s *Service) Ask(ctx context.Context, identity history.Identity, recordID history.RecordID, documentURL, message string) (string, []domain.Source, error) {
	sess, err := s.session(ctx, identity, recordID, documentURL)
	if err != nil {
		return "", nil, err
	}

	reply, err := sess.Send(ctx, message)
	if err != nil {
		return "", nil, err
	}
	return reply.Text, domain.DedupeSources(reply.Citations), nil
}

// Forget drops the cached session for a record, e.g. after the record is deleted.
func (s *Service) Forget(identity history.Identity, recordID history.RecordID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, sessionKey(identity, recordID))
}

func (s *Service) session(ctx context.Context, identity history.Identity, recordID history.RecordID, documentURL string) (domain.Session, error) {
	key := sessionKey(identity, recordID)

	s.mu.Lock()
	sess, ok := s.active[key]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	sess, err := s.Sessions.New(ctx, documentURL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.active[key] = sess
	s.mu.Unlock()
	return sess, nil
}

func sessionKey(identity history.Identity, recordID history.RecordID) string {
	return fmt.Sprintf("%s/%s", identity, recordID)
}
