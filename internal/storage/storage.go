// Package storage abstracts where uploaded submission documents live. One
// provider is selected at process start and used for the lifetime of the
// deployment; S3 and Google Drive implementations are never mixed.
package storage

import (
	"context"
	"sync"
)

// File is one in-memory upload.
type File struct {
	Name         string
	ContentType  string
	DocumentType string
	Data         []byte
}

// Owner carries the submission context a provider needs to place and name
// the stored file.
type Owner struct {
	SubmissionID int64
	State        string
	FullName     string
	TaxID        string
}

// StoredFile is the provider-specific locator of an uploaded file. Object
// storage fills Key and URL; shared-drive storage fills the drive fields.
type StoredFile struct {
	Key string
	URL string

	FileID      string
	ViewURL     string
	DownloadURL string

	Folder *Folder
}

// Folder is a provisioned per-submission container in shared-drive storage.
type Folder struct {
	ID  string
	URL string
}

type Provider interface {
	// Store uploads one file. slot memoizes the submission's folder across
	// sibling uploads; providers without folders ignore it.
	Store(ctx context.Context, file File, owner Owner, slot *FolderSlot) (*StoredFile, error)
}

// FolderEnsurer is implemented by providers that can provision a submission
// folder without uploading anything, so an empty submission still gets a
// linkable folder.
type FolderEnsurer interface {
	EnsureFolder(ctx context.Context, owner Owner, slot *FolderSlot) (*Folder, error)
}

// FolderSlot is a per-submission, first-writer-wins memo of the provisioned
// folder. Provisioning runs under the lock, so the create side of
// query-then-create executes at most once per submission even when sibling
// uploads race. A failed provision is not cached; the next caller retries.
type FolderSlot struct {
	mu     sync.Mutex
	folder *Folder
}

func NewFolderSlot() *FolderSlot {
	return &FolderSlot{}
}

func (s *FolderSlot) GetOrCreate(ctx context.Context, provision func(context.Context) (*Folder, error)) (*Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.folder != nil {
		return s.folder, nil
	}

	folder, err := provision(ctx)
	if err != nil {
		return nil, err
	}

	s.folder = folder
	return folder, nil
}

// Folder returns the memoized folder, or nil if none was provisioned.
func (s *FolderSlot) Folder() *Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder
}
