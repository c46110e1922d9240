// Package category derives a human-facing category label from a record's
// content. Labels are recomputed on every read so that rule changes apply to
// previously stored records immediately; nothing here is persisted.
package category

import (
	"regexp"
	"strings"

	"github.com/bryanwahyu/legalsense/internal/domain/history"
)

// Category labels, most specific risk signal first.
const (
	HighRisk       = "High Risk / Scams"
	RealEstate     = "Real Estate"
	Finance        = "Finance & Invoices"
	Employment     = "Employment & HR"
	LegalContracts = "Legal Contracts"
	General        = "General Documents"
)

// HighRiskScore is the fraud score at which a record is always classified
// as high risk, regardless of keyword content.
const HighRiskScore = 75

var (
	realEstateRe = regexp.MustCompile(`\b(lease|tenant|landlord|rent|property|apartment|housing|eviction|premises|sublease)\b`)
	financeRe    = regexp.MustCompile(`\b(invoice|bill|receipt|payment|owing|balance|tax|bank|financial|salary|payroll|loan|debt)\b`)
	employmentRe = regexp.MustCompile(`\b(employment|job offer|termination|resignation|contractor|employee|employer|hiring|work agreement)\b`)
	contractsRe  = regexp.MustCompile(`\b(nda|confidentiality|non-disclosure|agreement|settlement|terms of service|memorandum|contract|service agreement)\b`)
)

// aiCategory values too generic to surface as-is.
var genericCategories = map[string]bool{
	"Other":    true,
	"General":  true,
	"Personal": true,
}

// Refine returns the category label for a record. Rules are priority
// ordered and the first match wins: risk signals dominate all topical
// keywords, which is a product decision, not an accident of ordering.
func Refine(rec history.Record) string {
	text := searchText(rec)

	if rec.FraudScore >= HighRiskScore ||
		strings.Contains(text, "scam") ||
		strings.Contains(text, "fraud") ||
		strings.Contains(text, "phishing") {
		return HighRisk
	}
	if realEstateRe.MatchString(text) {
		return RealEstate
	}
	if financeRe.MatchString(text) {
		return Finance
	}
	if employmentRe.MatchString(text) {
		return Employment
	}
	if contractsRe.MatchString(text) {
		return LegalContracts
	}
	if rec.AICategory != "" && !genericCategories[rec.AICategory] {
		return rec.AICategory
	}
	return General
}

// searchText assembles the lower-cased text the rules run against: document
// name, summary lines (falling back to the stored snippet), and party names.
func searchText(rec history.Record) string {
	summary := strings.Join(rec.SummaryLines(), " ")
	if summary == "" {
		summary = rec.SummarySnippet
	}
	parties := strings.Join(rec.Parties(), " ")
	return strings.ToLower(rec.DocumentName + " " + summary + " " + parties)
}

// Icon maps a category label to an icon name for the client. Matching is a
// case-insensitive substring lookup with a total default.
func Icon(label string) string {
	c := strings.ToLower(label)
	switch {
	case strings.Contains(c, "real estate") || strings.Contains(c, "property"):
		return "home"
	case strings.Contains(c, "finance") || strings.Contains(c, "invoice") || strings.Contains(c, "money"):
		return "credit-card"
	case strings.Contains(c, "employment") || strings.Contains(c, "job") || strings.Contains(c, "hr"):
		return "briefcase"
	case strings.Contains(c, "scam") || strings.Contains(c, "risk") || strings.Contains(c, "fraud"):
		return "alert-triangle"
	case strings.Contains(c, "contract") || strings.Contains(c, "legal") || strings.Contains(c, "agreement"):
		return "file-text"
	case strings.Contains(c, "company") || strings.Contains(c, "business"):
		return "building"
	default:
		return "folder"
	}
}
