// Package store provides the MongoDB-backed document store for consultant
// profiles and comparison sessions.
package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/arnavj/consultmatch/internal/ai"
	"github.com/arnavj/consultmatch/internal/matching"
)

const (
	profilesCollection = "consultantprofiles"
	sessionsCollection = "comparisonsessions"

	defaultTimeout = 10 * time.Second
)

var (
	// ErrNotFound means no profile document matched the lookup.
	ErrNotFound = errors.New("profile not found")
	// ErrNoResumeData means the profile exists but carries no resume payload.
	ErrNoResumeData = errors.New("profile has no resume data")
)

// Store is a pooled MongoDB handle, opened once at process start and shared
// across concurrent pipeline runs.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// Connect opens and pings the MongoDB deployment.
func Connect(ctx context.Context, uri, database string, logger *zap.Logger) (*Store, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, errors.New("mongodb uri is required")
	}
	if strings.TrimSpace(database) == "" {
		return nil, errors.New("mongodb database name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	logger.Info("connected to mongodb", zap.String("database", database))

	return &Store{
		client: client,
		db:     client.Database(database),
		logger: logger,
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies the deployment is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

// profileDoc mirrors the consultantprofiles document shape. Resume payloads
// live under pdfFile.data as BSON binary or a base64 string, depending on
// which uploader wrote them; both are accepted.
type profileDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Content   string             `bson:"content,omitempty"`
	Extension string             `bson:"extension,omitempty"`
	PDFFile   *struct {
		Data        bson.RawValue `bson:"data"`
		ContentType string        `bson:"contentType,omitempty"`
	} `bson:"pdfFile,omitempty"`
}

// FindResume implements matching.ProfileStore. It looks up by ObjectId hex
// when an id is supplied and falls back to an exact name match.
func (s *Store) FindResume(ctx context.Context, id, name string) (*matching.ResumeFile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, err := profileFilter(id, name)
	if err != nil {
		return nil, err
	}

	var doc profileDoc
	err = s.db.Collection(profilesCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	if doc.PDFFile == nil {
		return nil, ErrNoResumeData
	}

	data, err := decodePayload(doc.PDFFile.Data)
	if err != nil || len(data) == 0 {
		return nil, ErrNoResumeData
	}

	ext := doc.Extension
	if ext == "" {
		ext = "pdf"
	}

	return &matching.ResumeFile{
		Name:      doc.Name,
		Extension: ext,
		Data:      data,
	}, nil
}

func profileFilter(id, name string) (bson.M, error) {
	if id != "" {
		oid, err := primitive.ObjectIDFromHex(id)
		if err == nil {
			return bson.M{"_id": oid}, nil
		}
		// Non-ObjectId identifiers are stored verbatim by older uploaders.
		return bson.M{"_id": id}, nil
	}
	if name == "" {
		return nil, errors.New("profile id or name is required")
	}
	return bson.M{"name": name}, nil
}

func decodePayload(raw bson.RawValue) ([]byte, error) {
	switch raw.Type {
	case bson.TypeBinary:
		_, data := raw.Binary()
		return data, nil
	case bson.TypeString:
		return base64.StdEncoding.DecodeString(raw.StringValue())
	default:
		return nil, fmt.Errorf("unsupported resume payload type: %s", raw.Type)
	}
}

// ListProfiles returns every consultant profile with extracted text content,
// for runs that match a JD against the whole pool.
func (s *Store) ListProfiles(ctx context.Context) ([]ai.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := s.db.Collection(profilesCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []ai.Profile
	for cursor.Next(ctx) {
		var doc profileDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		if strings.TrimSpace(doc.Content) == "" {
			s.logger.Debug("skipping profile without extracted text",
				zap.String("profile_name", doc.Name),
			)
			continue
		}
		profiles = append(profiles, ai.Profile{
			ID:      doc.ID.Hex(),
			Name:    doc.Name,
			Content: doc.Content,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}
