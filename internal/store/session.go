package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileScore is one (profile, similarity) pair inside a session document.
type ProfileScore struct {
	ProfileID       string
	SimilarityScore float64
}

// Session is the durable audit trail of one pipeline run. It is written
// exactly once per run, after notifications went out.
type Session struct {
	JobID       string
	Results     []ProfileScore
	TopProfiles []ProfileScore
	CreatedBy   string
	CreatedAt   time.Time
}

type sessionDoc struct {
	JobIDs      []any             `bson:"jobIds"`
	ProfileIDs  []any             `bson:"profileIds"`
	Results     []profileScoreDoc `bson:"results"`
	TopProfiles []profileScoreDoc `bson:"topProfiles"`
	CreatedBy   any               `bson:"createdBy"`
	CreatedAt   time.Time         `bson:"createdAt"`
}

type profileScoreDoc struct {
	ProfileID       any     `bson:"profileId"`
	SimilarityScore float64 `bson:"similarityScore"`
}

// SaveSession inserts the comparison session and returns the inserted id.
func (s *Store) SaveSession(ctx context.Context, session *Session) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := sessionDoc{
		JobIDs:    []any{asObjectID(session.JobID)},
		CreatedBy: asObjectID(session.CreatedBy),
		CreatedAt: session.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	for _, result := range session.Results {
		doc.ProfileIDs = append(doc.ProfileIDs, asObjectID(result.ProfileID))
		doc.Results = append(doc.Results, profileScoreDoc{
			ProfileID:       asObjectID(result.ProfileID),
			SimilarityScore: result.SimilarityScore,
		})
	}

	for _, top := range session.TopProfiles {
		doc.TopProfiles = append(doc.TopProfiles, profileScoreDoc{
			ProfileID:       asObjectID(top.ProfileID),
			SimilarityScore: top.SimilarityScore,
		})
	}

	res, err := s.db.Collection(sessionsCollection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert comparison session: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprintf("%v", res.InsertedID), nil
}

// asObjectID converts hex identifiers to ObjectIds so session documents join
// cleanly against the profile and job collections; anything else (e.g. a
// profile name fallback from a folder-based run) is stored verbatim.
func asObjectID(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}
