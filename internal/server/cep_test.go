package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCEPLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/01310100/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"cep": "01310-100",
			"logradouro": "Avenida Paulista",
			"bairro": "Bela Vista",
			"localidade": "São Paulo",
			"uf": "SP"
		}`)
	}))
	defer srv.Close()

	svc := testService(&fakeSubmissionStore{}, &fakeDocumentStore{}, &fakeDispatcher{})
	svc.cepBaseURL = srv.URL

	req := httptest.NewRequest(http.MethodGet, "/api/cep/01310-100", nil)
	rec := httptest.NewRecorder()
	svc.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, true, resp["success"])

	data, ok := resp["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Avenida Paulista", data["logradouro"])
	assert.Equal(t, "São Paulo", data["localidade"])
	assert.Equal(t, "SP", data["uf"])
}

func TestCEPLookupNotFound(t *testing.T) {
	// ViaCEP signals a miss as either a boolean or a string depending on
	// the deployment; both must map to 404, not a decode failure.
	for name, body := range map[string]string{
		"boolean erro": `{"erro": true}`,
		"string erro":  `{"erro": "true"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, body)
			}))
			defer srv.Close()

			svc := testService(&fakeSubmissionStore{}, &fakeDocumentStore{}, &fakeDispatcher{})
			svc.cepBaseURL = srv.URL

			req := httptest.NewRequest(http.MethodGet, "/api/cep/99999999", nil)
			rec := httptest.NewRecorder()
			svc.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), "CEP não encontrado")
		})
	}
}
