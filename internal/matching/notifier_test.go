package matching

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arnavj/consultmatch/internal/ai"
)

func ranked(name string, score float64, rank int) RankedEntry {
	return RankedEntry{
		ComparisonRecord: ai.ComparisonRecord{
			ProfileID:       fmt.Sprintf("id-%s", name),
			ProfileName:     name,
			ApplicantName:   "Applicant " + name,
			SimilarityScore: score,
			Reasoning:       "- strong skills overlap",
		},
		Rank: rank,
	}
}

func TestNewPolicyDefaults(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(0, 0)
	require.Equal(t, DefaultThreshold, policy.Threshold)
	require.Equal(t, DefaultTopK, policy.TopK)

	policy = NewPolicy(0.7, 5)
	require.Equal(t, 0.7, policy.Threshold)
	require.Equal(t, 5, policy.TopK)
}

func TestDecideMatchFound(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(0, 0)

	decision := policy.Decide([]RankedEntry{
		ranked("go_expert", 0.91, 1),
		ranked("cloud_architect", 0.6, 2),
		ranked("junior_dev", 0.3, 3),
	}, "Senior Go Developer")

	require.Equal(t, RouteMatchFound, decision.Route)
	require.Len(t, decision.Messages, 2)

	requestor, ok := decision.Messages[RecipientARRequestor]
	require.True(t, ok)
	require.Equal(t, "Top 3 Consultant Matches for Senior Go Developer", requestor.Subject)
	require.Contains(t, requestor.Body, "Similarity Score: 0.91")
	require.Contains(t, requestor.Body, "Similarity Score: 0.60")
	require.Contains(t, requestor.Body, PlaceholderProfileName)

	recruiter, ok := decision.Messages[RecipientRecruiter]
	require.True(t, ok)
	require.Equal(t, "Matches Found for Job: Senior Go Developer", recruiter.Subject)
	require.Contains(t, recruiter.Body, "matches have been found")
}

func TestDecideSubstitutesPlaceholderBelowThreshold(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(0, 0)

	decision := policy.Decide([]RankedEntry{
		ranked("go_expert", 0.91, 1),
		ranked("cloud_architect", 0.6, 2),
		ranked("junior_dev", 0.3, 3),
	}, "Senior Go Developer")

	require.Len(t, decision.TopMatches, 3)
	require.Equal(t, "go_expert", decision.TopMatches[0].ProfileName)
	require.Equal(t, "cloud_architect", decision.TopMatches[1].ProfileName)

	placeholder := decision.TopMatches[2]
	require.Equal(t, PlaceholderProfileName, placeholder.ProfileName)
	require.Empty(t, placeholder.ProfileID)
	require.Empty(t, placeholder.ApplicantName)
	require.Equal(t, 0.0, placeholder.SimilarityScore)

	// Sub-threshold entries never get their resume attached.
	require.Len(t, decision.Attachable, 2)
	require.Equal(t, "go_expert", decision.Attachable[0].ProfileName)
	require.Equal(t, "cloud_architect", decision.Attachable[1].ProfileName)
}

func TestDecideNoMatch(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(0, 0)

	decision := policy.Decide([]RankedEntry{
		ranked("junior_dev", 0.49, 1),
		ranked("intern", 0.2, 2),
		ranked("unrelated", 0.0, 3),
	}, "Senior Go Developer")

	require.Equal(t, RouteNoMatch, decision.Route)
	require.Empty(t, decision.TopMatches)
	require.Empty(t, decision.Attachable)

	require.Len(t, decision.Messages, 1)
	_, hasRequestor := decision.Messages[RecipientARRequestor]
	require.False(t, hasRequestor)

	recruiter, ok := decision.Messages[RecipientRecruiter]
	require.True(t, ok)
	require.Equal(t, "No Suitable Matches Found for Senior Go Developer", recruiter.Subject)
	require.Contains(t, recruiter.Body, "could not find suitable consultant profiles")
}

func TestDecideThresholdIsInclusive(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(0, 0)

	decision := policy.Decide([]RankedEntry{ranked("borderline", 0.5, 1)}, "Data Engineer")

	require.Equal(t, RouteMatchFound, decision.Route)
	require.Len(t, decision.Attachable, 1)
}

func TestDecideIgnoresEntriesBeyondTopK(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(0, 0)

	// Only the fourth entry clears the threshold, but rank 4 is outside the
	// window and must not flip the route.
	decision := policy.Decide([]RankedEntry{
		ranked("first", 0.4, 1),
		ranked("second", 0.3, 2),
		ranked("third", 0.2, 3),
		ranked("fourth", 0.9, 4),
	}, "Platform Engineer")

	require.Equal(t, RouteNoMatch, decision.Route)
}

func TestDecideFewerEntriesThanTopK(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(0, 0)

	decision := policy.Decide([]RankedEntry{ranked("only_one", 0.8, 1)}, "SRE")

	require.Equal(t, RouteMatchFound, decision.Route)
	require.Len(t, decision.TopMatches, 1)
	require.Len(t, decision.Attachable, 1)
}

func TestDecideEmptyLeaderboard(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(0, 0)

	decision := policy.Decide(nil, "SRE")

	require.Equal(t, RouteNoMatch, decision.Route)
	require.Len(t, decision.Messages, 1)
}

func TestDecideCustomThresholdAndTopK(t *testing.T) {
	t.Parallel()

	policy := NewPolicy(0.8, 2)

	decision := policy.Decide([]RankedEntry{
		ranked("good", 0.79, 1),
		ranked("better", 0.85, 2),
		ranked("irrelevant", 0.99, 3),
	}, "ML Engineer")

	require.Equal(t, RouteMatchFound, decision.Route)
	require.Len(t, decision.TopMatches, 2)
	require.Equal(t, PlaceholderProfileName, decision.TopMatches[0].ProfileName)
	require.Equal(t, "better", decision.TopMatches[1].ProfileName)
	require.Len(t, decision.Attachable, 1)
}
