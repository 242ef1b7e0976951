package matching

import (
	"fmt"
	"strings"
)

const (
	// DefaultThreshold is the minimum similarity score for a profile to
	// count as a genuine match. The single most business-critical constant
	// in the system; override it via matching.threshold, never in code.
	DefaultThreshold = 0.5

	// DefaultTopK is the number of highest-ranked profiles considered for
	// notification.
	DefaultTopK = 3

	// PlaceholderProfileName replaces sub-threshold names in the display
	// list so a low-confidence candidate is never shown next to genuine
	// matches.
	PlaceholderProfileName = "(No profile over threshold similarity found)"
)

// Route distinguishes the two notification outcomes.
type Route string

const (
	RouteMatchFound Route = "MATCH_FOUND"
	RouteNoMatch    Route = "NO_MATCH"
)

// Recipient identifies a stakeholder role.
type Recipient string

const (
	RecipientARRequestor Recipient = "ar_requestor"
	RecipientRecruiter   Recipient = "recruiter"
)

// Message is a rendered subject/body pair for one recipient role.
type Message struct {
	Subject string
	Body    string
}

// Decision is the notifier output: the chosen route, one message per
// recipient role, the (possibly placeholder-substituted) display list, and
// the entries eligible for resume attachments.
type Decision struct {
	Route      Route
	Messages   map[Recipient]Message
	TopMatches []RankedEntry
	// Attachable holds the top entries at or above the threshold, in rank
	// order. Placeholder entries are never attachable.
	Attachable []RankedEntry
}

// Policy gates notifications on the ranked leaderboard.
type Policy struct {
	Threshold float64
	TopK      int
}

// NewPolicy builds a Policy, falling back to the defaults for unset values.
func NewPolicy(threshold float64, topK int) *Policy {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Policy{Threshold: threshold, TopK: topK}
}

// Decide applies the gating rule over the top-K ranked entries. Entries
// beyond the top K are never referenced in any output.
func (p *Policy) Decide(ranked []RankedEntry, jdTitle string) *Decision {
	topK := p.TopK
	if topK > len(ranked) {
		topK = len(ranked)
	}
	top := ranked[:topK]

	matched := false
	for _, entry := range top {
		if entry.SimilarityScore >= p.Threshold {
			matched = true
			break
		}
	}

	if !matched {
		return &Decision{
			Route: RouteNoMatch,
			Messages: map[Recipient]Message{
				RecipientRecruiter: {
					Subject: fmt.Sprintf("No Suitable Matches Found for %s", jdTitle),
					Body:    noMatchBody(jdTitle),
				},
			},
		}
	}

	display := make([]RankedEntry, 0, len(top))
	attachable := make([]RankedEntry, 0, len(top))
	for _, entry := range top {
		if entry.SimilarityScore >= p.Threshold {
			display = append(display, entry)
			attachable = append(attachable, entry)
			continue
		}

		placeholder := entry
		placeholder.ProfileID = ""
		placeholder.ProfileName = PlaceholderProfileName
		placeholder.ApplicantName = ""
		placeholder.SimilarityScore = 0
		placeholder.Reasoning = ""
		display = append(display, placeholder)
	}

	return &Decision{
		Route: RouteMatchFound,
		Messages: map[Recipient]Message{
			RecipientARRequestor: {
				Subject: fmt.Sprintf("Top %d Consultant Matches for %s", p.TopK, jdTitle),
				Body:    requestorBody(jdTitle, display),
			},
			RecipientRecruiter: {
				Subject: fmt.Sprintf("Matches Found for Job: %s", jdTitle),
				Body:    recruiterMatchBody(jdTitle),
			},
		},
		TopMatches: display,
		Attachable: attachable,
	}
}

func requestorBody(jdTitle string, matches []RankedEntry) string {
	var sb strings.Builder
	sb.WriteString("Dear AR Requestor,\n\n")
	fmt.Fprintf(&sb, "Here are the top consultant profiles matching your Job Description: '%s'.\n\n", jdTitle)

	for i, match := range matches {
		fmt.Fprintf(&sb, "Match %d:\n", i+1)
		fmt.Fprintf(&sb, "  Consultant: %s\n", match.ProfileName)
		fmt.Fprintf(&sb, "  Applicant: %s\n", match.ApplicantName)
		fmt.Fprintf(&sb, "  Similarity Score: %.2f\n", match.SimilarityScore)
		fmt.Fprintf(&sb, "  Reasoning: %s\n\n", match.Reasoning)
	}

	sb.WriteString("Best regards,\nYour Recruitment Team")
	return sb.String()
}

func recruiterMatchBody(jdTitle string) string {
	return fmt.Sprintf(
		"Dear Recruiter,\n\n"+
			"We're pleased to inform you that matches have been found for the '%s' job profile.\n"+
			"We continue to expect more profiles from you to further refine our recommendations and ensure the best candidate selection.\n\n"+
			"Best regards,\nYour Recruitment Team",
		jdTitle,
	)
}

func noMatchBody(jdTitle string) string {
	return fmt.Sprintf(
		"Dear Recruiter,\n\n"+
			"We could not find suitable consultant profiles matching your Job Description: '%s'.\n"+
			"Please review the JD or consider expanding your search criteria.\n\n"+
			"Best regards,\nYour Recruitment Team",
		jdTitle,
	)
}
