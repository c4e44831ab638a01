package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"essencialform/internal/validate"
)

const viaCEPBaseURL = "https://viacep.com.br/ws"

// viaCEPMiss is the lookup-failed flag. ViaCEP returns it as the boolean
// true on some deployments and the string "true" on others.
type viaCEPMiss bool

func (m *viaCEPMiss) UnmarshalJSON(data []byte) error {
	*m = strings.Trim(string(data), `"`) == "true"
	return nil
}

type viaCEPResponse struct {
	CEP          string     `json:"cep"`
	Street       string     `json:"logradouro"`
	Complement   string     `json:"complemento"`
	Neighborhood string     `json:"bairro"`
	City         string     `json:"localidade"`
	State        string     `json:"uf"`
	Erro         viaCEPMiss `json:"erro"`
}

// handleCEPLookup proxies the postal-code lookup the frontend uses to
// prefill address fields.
func (s *Service) handleCEPLookup(w http.ResponseWriter, r *http.Request) {
	cep := validate.Digits(r.PathValue("cep"))
	if len(cep) != 8 {
		s.respondMessage(w, http.StatusBadRequest, "CEP deve ter 8 dígitos")
		return
	}

	url := fmt.Sprintf("%s/%s/json/", s.cepBaseURL, cep)
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		s.logger.WithError(err).Error("failed to create cep request")
		s.internalServerError(w)
		return
	}

	resp, err := s.cepClient.Do(req)
	if err != nil {
		s.logger.WithError(err).Error("failed to look up cep")
		s.respondMessage(w, http.StatusInternalServerError, "Erro ao buscar CEP")
		return
	}
	defer resp.Body.Close()

	var result viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		s.logger.WithError(err).Error("failed to decode cep response")
		s.respondMessage(w, http.StatusInternalServerError, "Erro ao buscar CEP")
		return
	}

	if result.Erro {
		s.respondMessage(w, http.StatusNotFound, "CEP não encontrado")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"cep":         result.CEP,
			"logradouro":  result.Street,
			"complemento": result.Complement,
			"bairro":      result.Neighborhood,
			"localidade":  result.City,
			"uf":          result.State,
		},
	})
}
