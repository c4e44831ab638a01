package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"essencialform/internal/storage"
	"essencialform/internal/validate"
	"essencialform/pkg/types"
)

const maxFileSize = 10 << 20 // 10MB per file

// maxRequestSize bounds the whole multipart body: four files plus form fields.
const maxRequestSize = 4*maxFileSize + 1<<20

// Form part name -> stored document type.
var documentFields = []struct {
	field   string
	docType string
}{
	{"documentFront", types.DocTypeDocumentFront},
	{"documentBack", types.DocTypeDocumentBack},
	{"selfie", types.DocTypeSelfie},
	{"residenceProof", types.DocTypeResidenceProof},
}

var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
	"image/heic":      true,
	"image/heif":      true,
}

func (s *Service) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.logger.WithError(err).Warn("failed to parse multipart form")
		s.respondMessage(w, http.StatusBadRequest, "Formulário inválido")
		return
	}

	sub, fieldErrs, err := validate.ParseForm(r.Form)
	if err != nil {
		s.logger.WithError(err).Error("failed to decode form")
		s.internalServerError(w)
		return
	}
	if len(fieldErrs) > 0 {
		s.respondValidationErrors(w, fieldErrs)
		return
	}

	files, fieldErrs := s.collectFiles(r)
	if len(fieldErrs) > 0 {
		s.respondValidationErrors(w, fieldErrs)
		return
	}

	// The insert is the only synchronous effect; everything else runs after
	// the response is on the wire.
	if err := s.submissions.Create(ctx, sub); err != nil {
		if errors.Is(err, types.ErrDuplicateSubmission) {
			s.respondMessage(w, http.StatusConflict, "Usuário com este CPF já existe")
			return
		}
		s.logger.WithError(err).Error("failed to create submission")
		s.internalServerError(w)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Dados salvos com sucesso!",
		"data": map[string]any{
			"id":        sub.ID,
			"fullName":  sub.FullName,
			"email":     sub.Email,
			"createdAt": sub.CreatedAt,
		},
	})

	s.dispatcher.Dispatch(sub, files)
}

// collectFiles reads the known document parts into memory, enforcing the
// per-file size cap and the accepted content types.
func (s *Service) collectFiles(r *http.Request) ([]storage.File, []types.FieldError) {
	var (
		files []storage.File
		errs  []types.FieldError
	)

	for _, df := range documentFields {
		file, header, err := r.FormFile(df.field)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			errs = append(errs, types.FieldError{Field: df.field, Message: "Arquivo inválido"})
			continue
		}

		data, ferr := readFilePart(file, header)
		file.Close()
		if ferr != nil {
			errs = append(errs, types.FieldError{Field: df.field, Message: ferr.Error()})
			continue
		}

		files = append(files, storage.File{
			Name:         header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
			DocumentType: df.docType,
			Data:         data,
		})
	}

	return files, errs
}

func readFilePart(file multipart.File, header *multipart.FileHeader) ([]byte, error) {
	if header.Size > maxFileSize {
		return nil, fmt.Errorf("Arquivo excede o limite de 10MB")
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedContentTypes[contentType] {
		return nil, fmt.Errorf("Tipo de arquivo não permitido. Permitidos: JPG, PNG, WEBP, PDF, HEIC")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("Falha ao ler o arquivo")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("Arquivo excede o limite de 10MB")
	}

	return data, nil
}

func (s *Service) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subs, err := s.submissions.Submissions(ctx)
	if err != nil {
		s.logger.WithError(err).Error("failed to list submissions")
		s.internalServerError(w)
		return
	}

	for _, sub := range subs {
		docs, err := s.documents.DocumentsBySubmissionID(ctx, sub.ID)
		if err != nil {
			s.logger.WithError(err).WithField("submission_id", sub.ID).
				Error("failed to fetch submission documents")
			continue
		}
		sub.Documents = docs
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    subs,
	})
}

func (s *Service) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.respondMessage(w, http.StatusBadRequest, "ID inválido")
		return
	}

	sub, err := s.submissions.Submission(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrSubmissionNotFound) {
			s.respondMessage(w, http.StatusNotFound, "Usuário não encontrado")
			return
		}
		s.logger.WithError(err).Error("failed to fetch submission")
		s.internalServerError(w)
		return
	}

	docs, err := s.documents.DocumentsBySubmissionID(ctx, sub.ID)
	if err != nil {
		s.logger.WithError(err).WithField("submission_id", sub.ID).
			Error("failed to fetch submission documents")
	} else {
		sub.Documents = docs
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    sub,
	})
}
