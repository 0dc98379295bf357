package settings

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"safesettings/pkg/github"
)

func TestLocator_Locate(t *testing.T) {
	t.Run("single document", func(t *testing.T) {
		client := &MockAPIClient{}
		expectDocuments(client, map[string]string{".config/settings.json5": "{issues: {enabled: true,},}"})

		doc, err := NewLocator(client, testOwner, testRepo).Locate(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, ".config/settings.json5", doc.Path)
		assert.Equal(t, "{issues: {enabled: true,},}", string(doc.Text))
		client.AssertNumberOfCalls(t, "GetContent", len(CandidatePaths))
	})

	t.Run("no document", func(t *testing.T) {
		client := &MockAPIClient{}
		expectDocuments(client, nil)

		_, err := NewLocator(client, testOwner, testRepo).Locate(context.Background(), "")

		assert.ErrorIs(t, err, ErrNoDocument)
	})

	t.Run("every match is reported in candidate order", func(t *testing.T) {
		client := &MockAPIClient{}
		expectDocuments(client, map[string]string{
			".config/settings.yml":  "{}",
			".config/settings.json": "{}",
			".config/settings.yaml": "{}",
		})

		_, err := NewLocator(client, testOwner, testRepo).Locate(context.Background(), "")

		var multiple *MultipleDocumentsError
		require.ErrorAs(t, err, &multiple)
		assert.Equal(t, []string{".config/settings.json", ".config/settings.yaml", ".config/settings.yml"}, multiple.Paths)
		assert.Contains(t, err.Error(), ".config/settings.yml")
	})

	t.Run("ref is passed through", func(t *testing.T) {
		client := &MockAPIClient{}
		for _, path := range CandidatePaths {
			client.On("GetContent", mock.Anything, testOwner, testRepo, path, "refs/heads/settings").Return(nil, notFound(path))
		}

		_, err := NewLocator(client, testOwner, testRepo).Locate(context.Background(), "refs/heads/settings")

		assert.ErrorIs(t, err, ErrNoDocument)
		client.AssertExpectations(t)
	})

	t.Run("other errors abort", func(t *testing.T) {
		client := &MockAPIClient{}
		client.On("GetContent", mock.Anything, testOwner, testRepo, ".config/settings.json", "").
			Return(nil, &github.GitHubError{Type: github.ErrorTypeAuth, Message: "Bad credentials"})
		client.On("GetContent", mock.Anything, testOwner, testRepo, mock.Anything, "").Return(nil, notFound("file"))

		_, err := NewLocator(client, testOwner, testRepo).Locate(context.Background(), "")

		var ghErr *github.GitHubError
		require.ErrorAs(t, err, &ghErr)
		assert.Equal(t, github.ErrorTypeAuth, ghErr.Type)
	})
}

func TestDecodeContent(t *testing.T) {
	text := strings.Repeat("pullRequests:\n  squashMergingEnabled: true\n", 4)
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	var wrapped strings.Builder
	for i := 0; i < len(encoded); i += 60 {
		end := min(i+60, len(encoded))
		wrapped.WriteString(encoded[i:end])
		wrapped.WriteString("\n")
	}

	tests := []struct {
		name    string
		content *github.FileContent
		want    string
		reason  string
	}{
		{
			name:    "line wrapped base64",
			content: &github.FileContent{Type: "file", Encoding: "base64", Content: wrapped.String(), DownloadURL: "https://raw.example.com/settings.yml"},
			want:    text,
		},
		{
			name:    "directory",
			content: &github.FileContent{Type: "dir"},
			reason:  "expected a file, found dir",
		},
		{
			name:    "unexpected encoding",
			content: &github.FileContent{Type: "file", Encoding: "none"},
			reason:  `unsupported content encoding "none"`,
		},
		{
			name:    "missing encoding",
			content: &github.FileContent{Type: "file"},
			reason:  "unsupported content encoding (none)",
		},
		{
			name:    "corrupt base64",
			content: &github.FileContent{Type: "file", Encoding: "base64", Content: "%%%"},
			reason:  "invalid base64 content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := decodeContent(".config/settings.yml", tt.content)

			if tt.reason != "" {
				var invalid *InvalidContentError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, ".config/settings.yml", invalid.Path)
				assert.Contains(t, invalid.Reason, tt.reason)
				assert.False(t, github.IsNotFound(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, string(doc.Text))
			assert.Equal(t, tt.content.DownloadURL, doc.DownloadURL)
		})
	}
}
