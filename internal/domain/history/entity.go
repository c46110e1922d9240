package history

import (
	"github.com/bryanwahyu/legalsense/internal/domain/analysis"
)

// Identity is the opaque partition key for one user's records.
// The empty value means the caller is unauthenticated.
type Identity string

// RecordID identifier type
type RecordID string

// MaxRecords caps each identity's collection; oldest records are evicted first.
const MaxRecords = 20

const keyPrefix = "legalsense_history_"

// StorageKey derives the durable row key for an identity.
func StorageKey(id Identity) string {
	return keyPrefix + string(id)
}

// Record is one stored analysis outcome. ID and CreatedAt are set once at
// creation; CreatedAt is epoch milliseconds. The refined category label is
// never stored here, it is recomputed from content on every read.
type Record struct {
	ID             RecordID                     `json:"id"`
	CreatedAt      int64                        `json:"timestamp"`
	DocumentName   string                       `json:"file_name"`
	FraudScore     int                          `json:"fraud_score"`
	AICategory     string                       `json:"category,omitempty"`
	SummarySnippet string                       `json:"summary_snippet"`
	DocumentURL    string                       `json:"document_url,omitempty"`
	Payload        *analysis.FullAnalysisResult `json:"data"`
}

// Parties returns the named parties from the payload, empty when absent.
func (r Record) Parties() []string {
	if r.Payload == nil {
		return nil
	}
	return r.Payload.LegalSummary.KeyEntities.Parties
}

// SummaryLines returns the full summary from the payload, nil when absent.
func (r Record) SummaryLines() []string {
	if r.Payload == nil {
		return nil
	}
	return r.Payload.LegalSummary.Summary
}
