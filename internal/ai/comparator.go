package ai

import (
	"context"
	"math"
)

// Profile is one consultant document handed to the comparator.
type Profile struct {
	ID      string
	Name    string
	Content string
}

// ComparisonRecord is a single raw LLM judgment for one (JD, profile) pair.
// Records are produced once by a Comparator and never mutated afterwards;
// ranking operates on derived copies.
type ComparisonRecord struct {
	ProfileID       string  `json:"profile_id,omitempty"`
	ProfileName     string  `json:"profile_name"`
	ApplicantName   string  `json:"applicant_name"`
	SimilarityScore float64 `json:"similarity_score"`
	Reasoning       string  `json:"reasoning"`
}

// HasScore reports whether the record carries a usable numeric score.
// A NaN score marks a missing or non-numeric value from the producer.
func (r ComparisonRecord) HasScore() bool {
	return !math.IsNaN(r.SimilarityScore)
}

// Comparator produces raw similarity judgments for a job description against
// a set of consultant profiles. Output order is unspecified and duplicates
// per profile may occur; the ranking layer owns normalization.
type Comparator interface {
	Compare(ctx context.Context, jdContent string, profiles []Profile) ([]ComparisonRecord, error)
}
