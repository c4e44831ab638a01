package storage

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// driveAPI is the thin seam over the Drive v3 calls the provider needs.
type driveAPI interface {
	FindFolder(ctx context.Context, name, parentID string) (string, error)
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	UploadFile(ctx context.Context, file File, parentID string) (*driveFile, error)
}

type driveFile struct {
	ID      string
	ViewURL string
}

// DriveProvider stores documents in a shared drive, one folder per
// submission, named after the submitter.
type DriveProvider struct {
	api            driveAPI
	parentFolderID string
}

func NewDriveProvider(ctx context.Context, credentialsFile, parentFolderID string) (*DriveProvider, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &DriveProvider{
		api:            &googleDriveAPI{service: svc},
		parentFolderID: parentFolderID,
	}, nil
}

func (p *DriveProvider) Store(ctx context.Context, file File, owner Owner, slot *FolderSlot) (*StoredFile, error) {
	folder, err := slot.GetOrCreate(ctx, func(ctx context.Context) (*Folder, error) {
		return p.provisionFolder(ctx, owner)
	})
	if err != nil {
		return nil, fmt.Errorf("provision submission folder: %w", err)
	}

	uploaded, err := p.api.UploadFile(ctx, file, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("upload %s to drive: %w", file.Name, err)
	}

	return &StoredFile{
		FileID:      uploaded.ID,
		URL:         uploaded.ViewURL,
		ViewURL:     uploaded.ViewURL,
		DownloadURL: fmt.Sprintf("https://drive.google.com/uc?id=%s&export=download", uploaded.ID),
		Folder:      folder,
	}, nil
}

// EnsureFolder provisions the submission folder even when no file was
// uploaded, so the notification can still carry a link.
func (p *DriveProvider) EnsureFolder(ctx context.Context, owner Owner, slot *FolderSlot) (*Folder, error) {
	return slot.GetOrCreate(ctx, func(ctx context.Context) (*Folder, error) {
		return p.provisionFolder(ctx, owner)
	})
}

func (p *DriveProvider) provisionFolder(ctx context.Context, owner Owner) (*Folder, error) {
	name := FolderName(owner)

	id, err := p.api.FindFolder(ctx, name, p.parentFolderID)
	if err != nil {
		return nil, fmt.Errorf("find folder %q: %w", name, err)
	}

	if id == "" {
		id, err = p.api.CreateFolder(ctx, name, p.parentFolderID)
		if err != nil {
			return nil, fmt.Errorf("create folder %q: %w", name, err)
		}
	}

	return &Folder{
		ID:  id,
		URL: fmt.Sprintf("https://drive.google.com/drive/folders/%s", id),
	}, nil
}

var (
	invalidFolderChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	repeatedSpaces     = regexp.MustCompile(`\s+`)
)

// FolderName builds the per-submission folder name: "STATE - Name TaxID",
// with characters Drive rejects replaced and whitespace collapsed.
func FolderName(owner Owner) string {
	state := owner.State
	if state == "" {
		state = "XX"
	}
	name := owner.FullName
	if name == "" {
		name = "Usuario"
	}
	taxID := owner.TaxID
	if taxID == "" {
		taxID = "SEM_DOC"
	}

	folderName := fmt.Sprintf("%s - %s %s", state, name, taxID)
	folderName = invalidFolderChars.ReplaceAllString(folderName, "_")
	folderName = strings.ReplaceAll(folderName, "'", "")
	folderName = repeatedSpaces.ReplaceAllString(folderName, " ")
	return strings.TrimSpace(folderName)
}

// googleDriveAPI is the production driveAPI backed by the Drive v3 client.
type googleDriveAPI struct {
	service *drive.Service
}

func (g *googleDriveAPI) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	escaped := strings.ReplaceAll(name, `'`, `\'`)
	query := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false", escaped, folderMimeType)
	if parentID != "" {
		query = fmt.Sprintf("%s and '%s' in parents", query, parentID)
	}

	list, err := g.service.Files.List().
		Q(query).
		Fields(googleapi.Field("files(id, name)")).
		IncludeItemsFromAllDrives(true).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (g *googleDriveAPI) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	meta := &drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}
	if parentID != "" {
		meta.Parents = []string{parentID}
	}

	folder, err := g.service.Files.Create(meta).
		Fields(googleapi.Field("id")).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return folder.Id, nil
}

func (g *googleDriveAPI) UploadFile(ctx context.Context, file File, parentID string) (*driveFile, error) {
	meta := &drive.File{
		Name:    file.Name,
		Parents: []string{parentID},
	}

	created, err := g.service.Files.Create(meta).
		Media(bytes.NewReader(file.Data), googleapi.ContentType(file.ContentType)).
		Fields(googleapi.Field("id, name, webViewLink, webContentLink")).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	return &driveFile{
		ID:      created.Id,
		ViewURL: created.WebViewLink,
	}, nil
}
