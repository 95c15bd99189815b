// Package gdocs wraps the Google Docs API behind the two calls the
// renderer needs: fetching a document's structure and applying a batch of
// edit requests.
package gdocs

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

// Client wraps the Google Docs API.
type Client struct {
	docsService *docs.Service
}

// NewClient creates a Docs client using the same service-account
// credentials as the other Google API collaborators.
func NewClient(ctx context.Context) (*Client, error) {
	const op = "NewClient"

	creds, err := readCredentials()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	config, err := google.JWTConfigFromJSON(creds, docs.DocumentsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	client := config.Client(ctx)
	docsService, err := docs.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create docs service: %w", op, err)
	}

	return &Client{docsService: docsService}, nil
}

func readCredentials() ([]byte, error) {
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err := os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		return creds, nil
	}
	if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		return []byte(credsJSON), nil
	}
	return nil, fmt.Errorf("neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set")
}

// Get fetches a document's full structure.
func (c *Client) Get(ctx context.Context, documentID string) (*docs.Document, error) {
	const op = "Get"

	doc, err := c.docsService.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get document %s: %w", op, documentID, err)
	}
	return doc, nil
}

// BatchUpdate applies edit requests to a document.
func (c *Client) BatchUpdate(ctx context.Context, documentID string, requests []*docs.Request) error {
	const op = "BatchUpdate"

	_, err := c.docsService.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to update document %s: %w", op, documentID, err)
	}
	return nil
}
