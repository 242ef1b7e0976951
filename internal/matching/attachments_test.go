package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubProfileStore struct {
	resumes map[string]*ResumeFile
	errs    map[string]error
}

func (s *stubProfileStore) FindResume(_ context.Context, id, name string) (*ResumeFile, error) {
	key := id
	if key == "" {
		key = name
	}
	if err, ok := s.errs[key]; ok {
		return nil, err
	}
	if resume, ok := s.resumes[key]; ok {
		return resume, nil
	}
	return nil, errors.New("profile not found")
}

func TestResolveReturnsAttachmentsInRankOrder(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(&stubProfileStore{
		resumes: map[string]*ResumeFile{
			"id-go_expert":       {Name: "Go Expert", Extension: "pdf", Data: []byte("pdf-a")},
			"id-cloud_architect": {Name: "Cloud Architect", Extension: "pdf", Data: []byte("pdf-b")},
		},
	}, nil)

	attachments, skips := resolver.Resolve(context.Background(), []RankedEntry{
		ranked("go_expert", 0.91, 1),
		ranked("cloud_architect", 0.6, 2),
	})

	require.Empty(t, skips)
	require.Len(t, attachments, 2)
	require.Equal(t, "Go_Expert.pdf", attachments[0].Filename)
	require.Equal(t, []byte("pdf-a"), attachments[0].Data)
	require.Equal(t, "Cloud_Architect.pdf", attachments[1].Filename)
}

func TestResolveSkipsFailedLookups(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(&stubProfileStore{
		resumes: map[string]*ResumeFile{
			"id-first": {Name: "First", Extension: "pdf", Data: []byte("a")},
			"id-third": {Name: "Third", Extension: "pdf", Data: []byte("c")},
		},
		errs: map[string]error{
			"id-second": errors.New("no resume data"),
		},
	}, nil)

	attachments, skips := resolver.Resolve(context.Background(), []RankedEntry{
		ranked("first", 0.9, 1),
		ranked("second", 0.8, 2),
		ranked("third", 0.7, 3),
	})

	require.Len(t, attachments, 2)
	require.Equal(t, "First.pdf", attachments[0].Filename)
	require.Equal(t, "Third.pdf", attachments[1].Filename)

	require.Len(t, skips, 1)
	require.Equal(t, "id-second", skips[0].ProfileID)
	require.Equal(t, "second", skips[0].ProfileName)
	require.Equal(t, "no resume data", skips[0].Reason)
}

func TestResolveFallsBackToNameLookup(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(&stubProfileStore{
		resumes: map[string]*ResumeFile{
			"legacy_profile": {Extension: "docx", Data: []byte("doc")},
		},
	}, nil)

	entry := ranked("legacy_profile", 0.7, 1)
	entry.ProfileID = ""

	attachments, skips := resolver.Resolve(context.Background(), []RankedEntry{entry})

	require.Empty(t, skips)
	require.Len(t, attachments, 1)
	require.Equal(t, "legacy_profile.docx", attachments[0].Filename)
}

func TestAttachmentFilenameDefaults(t *testing.T) {
	t.Parallel()

	entry := ranked("Jane Doe Profile", 0.8, 1)

	tests := []struct {
		name   string
		resume *ResumeFile
		want   string
	}{
		{
			name:   "store name wins",
			resume: &ResumeFile{Name: "Jane Doe", Extension: "pdf"},
			want:   "Jane_Doe.pdf",
		},
		{
			name:   "entry name fallback",
			resume: &ResumeFile{Extension: "pdf"},
			want:   "Jane_Doe_Profile.pdf",
		},
		{
			name:   "extension default",
			resume: &ResumeFile{Name: "Jane Doe"},
			want:   "Jane_Doe.pdf",
		},
		{
			name:   "leading dot stripped",
			resume: &ResumeFile{Name: "Jane Doe", Extension: ".docx"},
			want:   "Jane_Doe.docx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, attachmentFilename(tt.resume, entry))
		})
	}
}
