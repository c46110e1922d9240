package chat

import "context"

// Reply is one model turn: the answer text plus its raw grounding citations.
type Reply struct {
	Text      string
	Citations []RawCitation
}

// Session port (interface for one conversational context over a document)
type Session interface {
	Send(ctx context.Context, text string) (Reply, error)
}

// SessionFactory port (interface for opening a session on a stored document)
type SessionFactory interface {
	New(ctx context.Context, documentURL string) (Session, error)
}
