package matching

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ResumeFile is a binary resume payload resolved from the profile store.
type ResumeFile struct {
	// Name is the display name recorded in the store; used to derive the
	// attachment filename.
	Name string
	// Extension is the file format without a leading dot, e.g. "pdf".
	Extension string
	Data      []byte
}

// Attachment is one file ready to be attached to an outgoing email.
type Attachment struct {
	Filename string
	Data     []byte
}

// Skip records an entry left out of the attachment set and why.
type Skip struct {
	ProfileID   string
	ProfileName string
	Reason      string
}

// ProfileStore looks up resume payloads. Lookup is by stable id when one is
// present, else by exact display name.
type ProfileStore interface {
	FindResume(ctx context.Context, id, name string) (*ResumeFile, error)
}

// Resolver maps ranked entries to resume attachments. Lookup misses are
// tolerated: the entry is skipped and reported, never fatal.
type Resolver struct {
	store  ProfileStore
	logger *zap.Logger
}

func NewResolver(store ProfileStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve returns attachments in the entries' rank order plus a diagnostic
// record for every entry that could not be resolved.
func (r *Resolver) Resolve(ctx context.Context, entries []RankedEntry) ([]Attachment, []Skip) {
	attachments := make([]Attachment, 0, len(entries))
	var skips []Skip

	for _, entry := range entries {
		resume, err := r.store.FindResume(ctx, entry.ProfileID, entry.ProfileName)
		if err != nil {
			skips = append(skips, Skip{
				ProfileID:   entry.ProfileID,
				ProfileName: entry.ProfileName,
				Reason:      err.Error(),
			})
			r.logger.Warn("skipping resume attachment",
				zap.String("profile_id", entry.ProfileID),
				zap.String("profile_name", entry.ProfileName),
				zap.Error(err),
			)
			continue
		}

		attachments = append(attachments, Attachment{
			Filename: attachmentFilename(resume, entry),
			Data:     resume.Data,
		})
	}

	return attachments, skips
}

func attachmentFilename(resume *ResumeFile, entry RankedEntry) string {
	name := strings.TrimSpace(resume.Name)
	if name == "" {
		name = entry.ProfileName
	}

	ext := strings.TrimSpace(strings.TrimPrefix(resume.Extension, "."))
	if ext == "" {
		ext = "pdf"
	}

	return fmt.Sprintf("%s.%s", strings.ReplaceAll(name, " ", "_"), ext)
}
