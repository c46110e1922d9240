package analysis

import "fmt"

// Clause is one explained contract clause
type Clause struct {
	Title   string `json:"title"`
	Meaning string `json:"meaning"`
}

// KeyEntities extracted from the document
type KeyEntities struct {
	Names     []string `json:"names"`
	Dates     []string `json:"dates"`
	Amounts   []string `json:"amounts"`
	Parties   []string `json:"parties"`
	Addresses []string `json:"addresses"`
}

// LegalSummary is the plain-English summarizer output
type LegalSummary struct {
	Category        string      `json:"category"`
	Summary         []string    `json:"summary"`
	Clauses         []Clause    `json:"clauses"`
	KeyEntities     KeyEntities `json:"key_entities"`
	Recommendations []string    `json:"recommendations"`
	Confidence      int         `json:"confidence"`
}

type SuspiciousElement struct {
	Text       string `json:"text"`
	Reason     string `json:"reason"`
	Confidence int    `json:"confidence"`
}

type Contradiction struct {
	Quote       string `json:"quote"`
	Explanation string `json:"explanation"`
}

// FraudAnalysis is the risk module output. FraudScore: 0 = low risk, 100 = highly suspicious.
type FraudAnalysis struct {
	FraudScore         int                 `json:"fraud_score"`
	SuspiciousElements []SuspiciousElement `json:"suspicious_elements"`
	Contradictions     []Contradiction     `json:"contradictions"`
	Why                []string            `json:"why"`
	Action             string              `json:"action"`
}

// FullAnalysisResult is the complete analyzer response for one document.
type FullAnalysisResult struct {
	LegalSummary  LegalSummary  `json:"legalSummary"`
	FraudAnalysis FraudAnalysis `json:"fraudAnalysis"`
}

// Validate checks the analyzer response against the schema. A response that
// fails here is an upstream error; it never enters the history store.
func (r *FullAnalysisResult) Validate() error {
	if r == nil {
		return fmt.Errorf("nil result: %w", ErrInvalidResult)
	}
	if r.FraudAnalysis.FraudScore < 0 || r.FraudAnalysis.FraudScore > 100 {
		return fmt.Errorf("fraud_score %d out of range: %w", r.FraudAnalysis.FraudScore, ErrInvalidResult)
	}
	if r.LegalSummary.Confidence < 0 || r.LegalSummary.Confidence > 100 {
		return fmt.Errorf("confidence %d out of range: %w", r.LegalSummary.Confidence, ErrInvalidResult)
	}
	return nil
}
