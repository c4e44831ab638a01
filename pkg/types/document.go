package types

import "time"

// Document represents one uploaded file owned by a submission. Which
// reference shape is populated (storage key/URL vs drive ids) depends on
// the storage backend the process was started with.
type Document struct {
	ID           int64  `db:"id" json:"id"`
	SubmissionID int64  `db:"submission_id" json:"submissionId"`
	DocumentType string `db:"document_type" json:"documentType"`
	FileName     string `db:"file_name" json:"fileName"`
	ContentType  string `db:"content_type" json:"contentType"`
	FileSize     int64  `db:"file_size" json:"fileSize"`

	StorageKey *string `db:"storage_key" json:"storageKey,omitempty"`
	FileURL    *string `db:"file_url" json:"fileUrl,omitempty"`

	DriveFileID      *string `db:"drive_file_id" json:"driveFileId,omitempty"`
	DriveViewURL     *string `db:"drive_view_url" json:"driveViewUrl,omitempty"`
	DriveDownloadURL *string `db:"drive_download_url" json:"driveDownloadUrl,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Document type constants
const (
	DocTypeDocumentFront  = "document_front"
	DocTypeDocumentBack   = "document_back"
	DocTypeSelfie         = "selfie"
	DocTypeResidenceProof = "residence_proof"
)
