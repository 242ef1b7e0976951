// Package matching turns raw LLM similarity judgments into a deterministic
// leaderboard and applies the notification policy on top of it.
package matching

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/ai"
)

// RankedEntry is a comparison record with its 1-based leaderboard position.
type RankedEntry struct {
	ai.ComparisonRecord
	Rank int `json:"rank"`
}

// normalized is a comparison record after boundary validation, carrying the
// original input index for the final tie-break.
type normalized struct {
	record    ai.ComparisonRecord
	index     int
	defaulted bool
	reason    string
}

// Ranker sorts, deduplicates, and ranks comparison records. Rank is a pure
// function of its input; the logger only surfaces normalization diagnostics.
type Ranker struct {
	logger *zap.Logger
}

func NewRanker(logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{logger: logger}
}

// Rank produces a strictly ordered leaderboard from raw comparison records.
// Invalid scores are defaulted to 0.0, duplicate profiles collapse to their
// highest-scoring record, and ties are broken by profile name, applicant
// name, and finally original input position, so the same input set always
// yields the same output regardless of producer iteration order.
func (r *Ranker) Rank(records []ai.ComparisonRecord) []RankedEntry {
	entries := normalizeRecords(records)

	for _, e := range entries {
		if e.defaulted {
			r.logger.Warn("similarity score defaulted to zero",
				zap.String("profile_name", e.record.ProfileName),
				zap.String("reason", e.reason),
			)
		}
	}

	deduped, dropped := dedupe(entries)
	if dropped > 0 {
		r.logger.Info("duplicate comparison records collapsed",
			zap.Int("initial", len(entries)),
			zap.Int("dropped", dropped),
			zap.Int("left", len(deduped)),
		)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return less(deduped[i], deduped[j])
	})

	ranked := make([]RankedEntry, 0, len(deduped))
	for i, e := range deduped {
		ranked = append(ranked, RankedEntry{ComparisonRecord: e.record, Rank: i + 1})
	}

	return ranked
}

func normalizeRecords(records []ai.ComparisonRecord) []normalized {
	entries := make([]normalized, 0, len(records))
	for i, record := range records {
		entry := normalized{record: record, index: i}

		switch {
		case math.IsNaN(record.SimilarityScore):
			entry.record.SimilarityScore = 0
			entry.defaulted = true
			entry.reason = "missing or non-numeric score"
		case math.IsInf(record.SimilarityScore, 0), record.SimilarityScore < 0, record.SimilarityScore > 1:
			entry.record.SimilarityScore = 0
			entry.defaulted = true
			entry.reason = "score outside [0, 1]"
		}

		entries = append(entries, entry)
	}
	return entries
}

// dedupe keeps one record per profile, preferring the highest-scoring one.
// The key is the stable profile id when present, else the display name, which
// guards against the producer emitting repeated judgments after retries.
func dedupe(entries []normalized) ([]normalized, int) {
	best := make(map[string]normalized, len(entries))
	order := make([]string, 0, len(entries))

	for _, e := range entries {
		key := e.record.ProfileID
		if key == "" {
			key = e.record.ProfileName
		}

		current, seen := best[key]
		if !seen {
			best[key] = e
			order = append(order, key)
			continue
		}

		if less(e, current) {
			best[key] = e
		}
	}

	result := make([]normalized, 0, len(order))
	for _, key := range order {
		result = append(result, best[key])
	}

	return result, len(entries) - len(result)
}

// less defines the total order: score descending, then profile name,
// applicant name, and original input index ascending.
func less(a, b normalized) bool {
	if a.record.SimilarityScore != b.record.SimilarityScore {
		return a.record.SimilarityScore > b.record.SimilarityScore
	}
	if a.record.ProfileName != b.record.ProfileName {
		return a.record.ProfileName < b.record.ProfileName
	}
	if a.record.ApplicantName != b.record.ApplicantName {
		return a.record.ApplicantName < b.record.ApplicantName
	}
	return a.index < b.index
}
