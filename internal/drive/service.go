// Package drive is the file/folder collaborator: per-project storage
// folders, template duplication, artifact deletion and fixed-format (PDF)
// export of finalized documents.
package drive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"billgen/internal/logger"
)

// ErrExportFailed is returned when PDF conversion yields no result.
var ErrExportFailed = errors.New("document export produced no result")

// fileIDPattern matches a run of identifier-safe characters long enough to
// be a Drive file id inside a URL-shaped cell.
var fileIDPattern = regexp.MustCompile(`[a-zA-Z0-9_-]{25,}`)

// Service wraps the Google Drive API.
type Service struct {
	driveService *drive.Service
	exportDelay  time.Duration
	log          zerolog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewService creates a Drive service. exportDelay is the single fixed wait
// applied before every PDF export to let the backend finish processing the
// just-finalized document.
func NewService(ctx context.Context, exportDelay time.Duration) (*Service, error) {
	const op = "NewService"

	log := logger.WithComponent("drive")

	creds, err := readCredentials()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	config, err := google.JWTConfigFromJSON(creds, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	client := config.Client(ctx)
	driveService, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create drive service: %w", op, err)
	}

	return &Service{
		driveService: driveService,
		exportDelay:  exportDelay,
		log:          log,
		sleep:        time.Sleep,
	}, nil
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

// FindOrCreateFolder returns the id of the folder named name under parentID,
// creating it when absent.
func (s *Service) FindOrCreateFolder(ctx context.Context, parentID, name string) (string, error) {
	const op = "FindOrCreateFolder"

	query := fmt.Sprintf(
		"mimeType='application/vnd.google-apps.folder' and name='%s' and '%s' in parents and trashed=false",
		name, parentID,
	)
	list, err := s.driveService.Files.List().Q(query).Fields("files(id, name)").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%s: failed to search for folder %q: %w", op, name, err)
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}

	s.log.Info().Str("folder", name).Msg("Creating storage folder")

	folder, err := s.driveService.Files.Create(&drive.File{
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
		Parents:  []string{parentID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%s: failed to create folder %q: %w", op, name, err)
	}

	return folder.Id, nil
}

// CopyTemplate duplicates the template file into folderID under name and
// returns the id of the copy.
func (s *Service) CopyTemplate(ctx context.Context, templateID, folderID, name string) (string, error) {
	const op = "CopyTemplate"

	copied, err := s.driveService.Files.Copy(templateID, &drive.File{
		Name:    name,
		Parents: []string{folderID},
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%s: failed to copy template %s: %w", op, templateID, err)
	}

	s.log.Debug().Str("template", templateID).Str("copy", copied.Id).Msg("Copied template")
	return copied.Id, nil
}

// ExportPDF converts the finalized document to PDF and saves it as
// "<name>.pdf" in the flat output folder, returning the id and web link of
// the created file. The fixed pre-export delay accommodates asynchronous
// backend processing of the just-committed document; there is no retry.
func (s *Service) ExportPDF(ctx context.Context, fileID, outputFolderID, name string) (string, string, error) {
	const op = "ExportPDF"

	s.sleep(s.exportDelay)

	resp, err := s.driveService.Files.Export(fileID, "application/pdf").Context(ctx).Download()
	if err != nil {
		return "", "", fmt.Errorf("%s: failed to export %s: %w", op, fileID, err)
	}
	if resp == nil || resp.Body == nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrExportFailed)
	}
	defer resp.Body.Close()

	created, err := s.driveService.Files.Create(&drive.File{
		Name:     name + ".pdf",
		MimeType: "application/pdf",
		Parents:  []string{outputFolderID},
	}).Media(resp.Body).Fields("id, webViewLink").Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("%s: failed to save PDF %q: %w", op, name, err)
	}
	if created == nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrExportFailed)
	}

	link := created.WebViewLink
	if link == "" {
		link = FileLink(created.Id)
	}

	s.log.Info().Str("pdf", created.Id).Str("name", name).Msg("Exported PDF")
	return created.Id, link, nil
}

// Delete removes a file permanently.
func (s *Service) Delete(ctx context.Context, fileID string) error {
	const op = "Delete"

	if err := s.driveService.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: failed to delete %s: %w", op, fileID, err)
	}
	return nil
}

// FileLink builds the browser link for a file id.
func FileLink(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/file/d/%s/view", fileID)
}

// DocumentLink builds the browser link for a document id.
func DocumentLink(documentID string) string {
	return fmt.Sprintf("https://docs.google.com/document/d/%s/edit", documentID)
}

// FileIDFromLink extracts a Drive file id from a URL-shaped string. Returns
// "" when nothing id-like is present.
func FileIDFromLink(link string) string {
	return fileIDPattern.FindString(link)
}
