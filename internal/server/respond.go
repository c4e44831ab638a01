package server

import (
	"encoding/json"
	"net/http"

	"essencialform/pkg/types"
)

func (s *Service) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) respondMessage(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]any{
		"success": status < 400,
		"message": message,
	})
}

func (s *Service) respondValidationErrors(w http.ResponseWriter, errs []types.FieldError) {
	s.respondJSON(w, http.StatusBadRequest, map[string]any{
		"success": false,
		"message": "Dados inválidos",
		"errors":  errs,
	})
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	s.respondMessage(w, http.StatusInternalServerError, "Erro interno do servidor")
}
