// Package gdrive implements the Google Drive provider on the Drive v3 API.
//
// Google Workspace files (Docs, Sheets, Slides) are exported to plain
// text or CSV when fetched; regular files are downloaded directly when
// their MIME type is text-like.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/workplace-mcp/internal/connectors"
	"github.com/custodia-labs/workplace-mcp/internal/core/domain"
	"github.com/custodia-labs/workplace-mcp/internal/core/ports/driven"
)

// Google Workspace MIME types that need exporting.
const (
	mimeTypeGoogleDoc    = "application/vnd.google-apps.document"
	mimeTypeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	mimeTypeGoogleSlides = "application/vnd.google-apps.presentation"
	mimeTypeFolder       = "application/vnd.google-apps.folder"
)

const (
	exportMimeText = "text/plain"
	exportMimeCSV  = "text/csv"
)

// maxExportSize is the maximum size of fetched content (5MB).
const maxExportSize = 5 * 1024 * 1024

const fileFields = "files(id,name,description,webViewLink,modifiedTime,owners,mimeType,size)"

var _ driven.Provider = (*Connector)(nil)

// Connector is the Google Drive provider adapter.
type Connector struct {
	svc     *drive.Service
	limiter *connectors.RateLimiter
}

// New creates a Drive connector using the provided token source.
func New(ctx context.Context, ts oauth2.TokenSource) (*Connector, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return NewWithService(svc), nil
}

// NewWithService creates a Drive connector around an existing service.
// Used in tests with a service pointed at a local HTTP server.
func NewWithService(svc *drive.Service) *Connector {
	return &Connector{
		svc:     svc,
		limiter: connectors.NewRateLimiter(domain.ProviderGoogleDrive),
	}
}

// Kind returns the provider identifier.
func (c *Connector) Kind() domain.ProviderKind {
	return domain.ProviderGoogleDrive
}

// Search queries file names and full text for the given terms.
func (c *Connector) Search(ctx context.Context, text string, maxResults int) ([]domain.Document, error) {
	escaped := strings.ReplaceAll(text, "'", `\'`)
	query := fmt.Sprintf("(fullText contains '%s' or name contains '%s') and trashed=false", escaped, escaped)

	var list *drive.FileList
	err := c.do(ctx, func() error {
		var err error
		list, err = c.svc.Files.List().
			Q(query).
			Fields(fileFields).
			PageSize(int64(maxResults)).
			OrderBy("modifiedTime desc").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.toDocuments(list.Files), nil
}

// Fetch retrieves one file with its exported or downloaded content.
func (c *Connector) Fetch(ctx context.Context, id string) (*domain.Document, error) {
	var file *drive.File
	err := c.do(ctx, func() error {
		var err error
		file, err = c.svc.Files.Get(id).
			Fields("id,name,description,webViewLink,modifiedTime,owners,mimeType,size").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	doc := c.toDocument(file)
	content, err := c.fetchContent(ctx, file)
	if err != nil {
		return nil, err
	}
	doc.Content = content
	return &doc, nil
}

// Recent lists files modified at or after since, newest first.
func (c *Connector) Recent(ctx context.Context, since time.Time, maxResults int) ([]domain.Document, error) {
	query := fmt.Sprintf("modifiedTime >= '%s' and trashed=false", since.UTC().Format(time.RFC3339))

	var list *drive.FileList
	err := c.do(ctx, func() error {
		var err error
		list, err = c.svc.Files.List().
			Q(query).
			Fields(fileFields).
			PageSize(int64(maxResults)).
			OrderBy("modifiedTime desc").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.toDocuments(list.Files), nil
}

// do runs one API call behind the rate limiter and retry policy, and
// maps API errors into provider errors.
func (c *Connector) do(ctx context.Context, call func() error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := connectors.Retry(ctx, func() error {
		return mapError(call())
	})
	var provErr *domain.ProviderError
	if errors.As(err, &provErr) && provErr.Kind == domain.ProviderRateLimited {
		c.limiter.RecordRateLimitError(0)
	}
	return err
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return domain.NewProviderError(domain.ProviderGoogleDrive, domain.ProviderNotFound, "%s", gerr.Message)
		case http.StatusTooManyRequests:
			return domain.NewProviderError(domain.ProviderGoogleDrive, domain.ProviderRateLimited, "%s", gerr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.NewProviderError(domain.ProviderGoogleDrive, domain.ProviderUnauthorized, "%s", gerr.Message)
		}
		if gerr.Code >= 500 {
			return domain.NewProviderError(domain.ProviderGoogleDrive, domain.ProviderUnavailable, "%s", gerr.Message)
		}
	}
	return err
}

func (c *Connector) fetchContent(ctx context.Context, file *drive.File) (string, error) {
	if file.MimeType == mimeTypeFolder {
		return "", nil
	}

	var resp *http.Response
	err := c.do(ctx, func() error {
		var err error
		switch file.MimeType {
		case mimeTypeGoogleDoc, mimeTypeGoogleSlides:
			resp, err = c.svc.Files.Export(file.Id, exportMimeText).Context(ctx).Download()
		case mimeTypeGoogleSheet:
			resp, err = c.svc.Files.Export(file.Id, exportMimeCSV).Context(ctx).Download()
		default:
			if !isTextMime(file.MimeType) || file.Size > maxExportSize {
				return nil
			}
			resp, err = c.svc.Files.Get(file.Id).Context(ctx).Download()
		}
		return err
	})
	if err != nil || resp == nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return "", fmt.Errorf("read file content: %w", err)
	}
	return string(data), nil
}

func (c *Connector) toDocuments(files []*drive.File) []domain.Document {
	docs := make([]domain.Document, 0, len(files))
	for _, file := range files {
		if file.MimeType == mimeTypeFolder {
			continue
		}
		docs = append(docs, c.toDocument(file))
	}
	return docs
}

func (c *Connector) toDocument(file *drive.File) domain.Document {
	doc := domain.Document{
		ID:       file.Id,
		Title:    file.Name,
		Snippet:  file.Description,
		Source:   domain.ProviderGoogleDrive,
		URL:      file.WebViewLink,
		MIMEType: file.MimeType,
	}
	if ts, err := time.Parse(time.RFC3339, file.ModifiedTime); err == nil {
		doc.LastModified = ts
	}
	for _, owner := range file.Owners {
		if owner.DisplayName != "" {
			doc.Author = owner.DisplayName
			break
		}
	}
	return doc
}

func isTextMime(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json", "application/xml", "application/rtf":
		return true
	}
	return false
}
