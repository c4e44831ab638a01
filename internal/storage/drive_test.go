package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDriveAPI struct {
	mu sync.Mutex

	existingFolderID string
	findCalls        int
	createCalls      int
	uploads          []string
	nextFileID       int
}

func (f *fakeDriveAPI) FindFolder(ctx context.Context, name, parentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	return f.existingFolderID, nil
}

func (f *fakeDriveAPI) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.existingFolderID = "created-folder"
	return f.existingFolderID, nil
}

func (f *fakeDriveAPI) UploadFile(ctx context.Context, file File, parentID string) (*driveFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, file.Name)
	f.nextFileID++
	id := fmt.Sprintf("file-%d", f.nextFileID)
	return &driveFile{
		ID:      id,
		ViewURL: "https://drive.google.com/file/d/" + id + "/view",
	}, nil
}

func TestDriveProviderStore(t *testing.T) {
	api := &fakeDriveAPI{}
	provider := &DriveProvider{api: api, parentFolderID: "parent"}
	owner := Owner{SubmissionID: 7, State: "SP", FullName: "Maria", TaxID: "52998224725"}
	slot := NewFolderSlot()

	stored, err := provider.Store(context.Background(), File{Name: "selfie.jpg"}, owner, slot)
	require.NoError(t, err)

	assert.Equal(t, "file-1", stored.FileID)
	assert.Equal(t, "https://drive.google.com/file/d/file-1/view", stored.ViewURL)
	assert.Equal(t, "https://drive.google.com/uc?id=file-1&export=download", stored.DownloadURL)
	require.NotNil(t, stored.Folder)
	assert.Equal(t, "https://drive.google.com/drive/folders/created-folder", stored.Folder.URL)

	// Second upload for the same submission reuses the memoized folder.
	_, err = provider.Store(context.Background(), File{Name: "front.jpg"}, owner, slot)
	require.NoError(t, err)

	assert.Equal(t, 1, api.findCalls)
	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, []string{"selfie.jpg", "front.jpg"}, api.uploads)
}

func TestDriveProviderStoreFindsExistingFolder(t *testing.T) {
	api := &fakeDriveAPI{existingFolderID: "existing"}
	provider := &DriveProvider{api: api, parentFolderID: "parent"}

	stored, err := provider.Store(context.Background(), File{Name: "doc.pdf"}, Owner{SubmissionID: 1}, NewFolderSlot())
	require.NoError(t, err)

	assert.Equal(t, 0, api.createCalls)
	assert.Equal(t, "https://drive.google.com/drive/folders/existing", stored.Folder.URL)
}

func TestDriveProviderEnsureFolder(t *testing.T) {
	api := &fakeDriveAPI{}
	provider := &DriveProvider{api: api, parentFolderID: "parent"}
	slot := NewFolderSlot()

	folder, err := provider.EnsureFolder(context.Background(), Owner{SubmissionID: 3, FullName: "Maria"}, slot)
	require.NoError(t, err)
	assert.Equal(t, "created-folder", folder.ID)
	assert.Empty(t, api.uploads)

	// A later ensure returns the memoized folder without touching the API.
	again, err := provider.EnsureFolder(context.Background(), Owner{SubmissionID: 3}, slot)
	require.NoError(t, err)
	assert.Equal(t, folder, again)
	assert.Equal(t, 1, api.findCalls)
}
