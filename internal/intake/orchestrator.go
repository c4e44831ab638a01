// Package intake runs the post-commit side effects of a submission: CRM
// sync, document uploads and the WhatsApp summary. Everything here executes
// detached from the originating HTTP request; the caller has already been
// answered and no failure below rolls the submission back.
package intake

import (
	"context"
	"sync"
	"time"

	"essencialform/internal/storage"
	"essencialform/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type DocumentStore interface {
	Create(ctx context.Context, doc *types.Document) error
}

// CRMSync mirrors submission fields into the sales pipeline, best-effort.
type CRMSync interface {
	Push(ctx context.Context, sub *types.Submission) error
}

type Notifier interface {
	Notify(ctx context.Context, sub *types.Submission, folderURL string) bool
}

type Orchestrator struct {
	logger    *logrus.Logger
	provider  storage.Provider
	documents DocumentStore
	crm       CRMSync
	notifier  Notifier
	timeout   time.Duration

	// wg tracks in-flight runs so tests and shutdown can wait for them.
	wg sync.WaitGroup
}

func NewOrchestrator(
	logger *logrus.Logger,
	provider storage.Provider,
	documents DocumentStore,
	crm CRMSync,
	notifier Notifier,
	timeout time.Duration,
) *Orchestrator {
	return &Orchestrator{
		logger:    logger,
		provider:  provider,
		documents: documents,
		crm:       crm,
		notifier:  notifier,
		timeout:   timeout,
	}
}

// Dispatch starts the fan-out for a committed submission and returns
// immediately. The run gets its own context and error boundary; a panic in
// any phase is logged, never propagated.
func (o *Orchestrator) Dispatch(sub *types.Submission, files []storage.File) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				o.logger.WithFields(logrus.Fields{
					"submission_id": sub.ID,
					"panic":         r,
				}).Error("fan-out run panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
		defer cancel()

		o.run(ctx, sub, files)
	}()
}

// Wait blocks until all dispatched runs have settled.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) run(ctx context.Context, sub *types.Submission, files []storage.File) {
	log := o.logger.WithField("submission_id", sub.ID)
	log.Info("starting background processing")

	o.syncCRM(ctx, sub)

	slot := storage.NewFolderSlot()
	uploaded := o.uploadDocuments(ctx, sub, files, slot)

	folderURL := ""
	if folder := slot.Folder(); folder != nil {
		folderURL = folder.URL
	}

	// No upload produced a folder (no files, or every upload failed): still
	// provision one when the provider supports it, so the notification can
	// carry a link.
	if folderURL == "" {
		if ensurer, ok := o.provider.(storage.FolderEnsurer); ok {
			folder, err := ensurer.EnsureFolder(ctx, ownerOf(sub), slot)
			if err != nil {
				log.WithError(err).Warn("failed to provision submission folder")
			} else {
				folderURL = folder.URL
			}
		}
	}

	if o.notifier != nil {
		o.notifier.Notify(ctx, sub, folderURL)
	}

	log.WithFields(logrus.Fields{
		"documents_uploaded": uploaded,
		"folder_url":         folderURL,
	}).Info("background processing finished")
}

func (o *Orchestrator) syncCRM(ctx context.Context, sub *types.Submission) {
	if o.crm == nil {
		return
	}
	if err := o.crm.Push(ctx, sub); err != nil {
		o.logger.WithError(err).WithField("submission_id", sub.ID).
			Warn("crm sync failed")
	}
}

// uploadDocuments stores every file concurrently. A file's failure drops
// only that file; sibling uploads and the rest of the run continue.
func (o *Orchestrator) uploadDocuments(ctx context.Context, sub *types.Submission, files []storage.File, slot *storage.FolderSlot) int {
	if len(files) == 0 {
		return 0
	}

	owner := ownerOf(sub)

	var (
		mu       sync.Mutex
		uploaded int
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		g.Go(func() error {
			log := o.logger.WithFields(logrus.Fields{
				"submission_id": sub.ID,
				"document_type": file.DocumentType,
				"file_name":     file.Name,
			})

			ref, err := o.provider.Store(ctx, file, owner, slot)
			if err != nil {
				log.WithError(err).Error("document upload failed")
				return nil
			}

			doc := &types.Document{
				SubmissionID: sub.ID,
				DocumentType: file.DocumentType,
				FileName:     file.Name,
				ContentType:  file.ContentType,
				FileSize:     int64(len(file.Data)),
				StorageKey:   optional(ref.Key),
				FileURL:      optional(ref.URL),
			}
			if ref.FileID != "" {
				doc.DriveFileID = optional(ref.FileID)
				doc.DriveViewURL = optional(ref.ViewURL)
				doc.DriveDownloadURL = optional(ref.DownloadURL)
			}

			if err := o.documents.Create(ctx, doc); err != nil {
				// The file is already in storage with no row pointing at it.
				// Log the locator so the orphan can be found later.
				log.WithError(err).WithFields(logrus.Fields{
					"storage_key":   ref.Key,
					"drive_file_id": ref.FileID,
				}).Error("orphaned upload: document row insert failed after storage write")
				return nil
			}

			mu.Lock()
			uploaded++
			mu.Unlock()

			log.WithField("document_id", doc.ID).Info("document stored")
			return nil
		})
	}

	// Upload closures always return nil; errgroup is used for the bounded
	// wait and shared context.
	_ = g.Wait()

	return uploaded
}

func ownerOf(sub *types.Submission) storage.Owner {
	state := ""
	if sub.State != nil {
		state = *sub.State
	}
	return storage.Owner{
		SubmissionID: sub.ID,
		State:        state,
		FullName:     sub.FullName,
		TaxID:        sub.ActiveTaxID(),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
