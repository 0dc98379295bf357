package settings

import (
	"context"
	"encoding/base64"
	"strings"

	"golang.org/x/sync/errgroup"

	"safesettings/pkg/github"
)

// CandidatePaths lists the settings document locations in precedence order.
// Only one may exist; the order decides reporting and would decide the winner
// if duplicates were ever tolerated.
var CandidatePaths = []string{
	".config/settings.json",
	".config/settings.json5",
	".config/settings.yaml",
	".config/settings.yml",
}

// SourceDocument is a located settings document, decoded to text
type SourceDocument struct {
	Path        string
	DownloadURL string
	Text        []byte
}

// Locator finds the single settings document of a repository
type Locator struct {
	fetcher github.ContentFetcher
	owner   string
	repo    string
	paths   []string
}

// NewLocator creates a locator over the default candidate paths
func NewLocator(fetcher github.ContentFetcher, owner, repo string) *Locator {
	return &Locator{
		fetcher: fetcher,
		owner:   owner,
		repo:    repo,
		paths:   CandidatePaths,
	}
}

// Locate fetches every candidate path concurrently and returns the only match.
// It returns ErrNoDocument when nothing matched and *MultipleDocumentsError when
// more than one did. Any fetch failure other than not-found aborts the lookup.
func (l *Locator) Locate(ctx context.Context, ref string) (*SourceDocument, error) {
	found := make([]*github.FileContent, len(l.paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range l.paths {
		g.Go(func() error {
			content, err := l.fetcher.GetContent(gctx, l.owner, l.repo, path, ref)
			if github.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var matches []*github.FileContent
	var matchPaths []string
	for i, content := range found {
		if content == nil {
			continue
		}
		matches = append(matches, content)
		matchPaths = append(matchPaths, l.paths[i])
	}

	switch len(matches) {
	case 0:
		return nil, ErrNoDocument
	case 1:
		return decodeContent(matchPaths[0], matches[0])
	default:
		return nil, &MultipleDocumentsError{Paths: matchPaths}
	}
}

func decodeContent(path string, content *github.FileContent) (*SourceDocument, error) {
	if content.Type != "" && content.Type != "file" {
		return nil, &InvalidContentError{Path: path, Reason: "expected a file, found " + content.Type}
	}
	if content.Encoding != "base64" {
		return nil, &InvalidContentError{Path: path, Reason: "unsupported content encoding " + quoteOrNone(content.Encoding)}
	}

	// The contents API wraps base64 at 60 columns
	raw := strings.NewReplacer("\n", "", "\r", "").Replace(content.Content)
	text, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, &InvalidContentError{Path: path, Reason: "invalid base64 content: " + err.Error()}
	}

	return &SourceDocument{
		Path:        path,
		DownloadURL: content.DownloadURL,
		Text:        text,
	}, nil
}

func quoteOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return `"` + s + `"`
}
