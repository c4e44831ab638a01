package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"essencialform/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func str(s string) *string { return &s }

// kommoFake emulates the subset of the Kommo API the client touches.
type kommoFake struct {
	t *testing.T

	// phone -> response body for the contact search
	contactsByPhone map[string]contactSearchResponse

	searches []string
	patches  map[string]json.RawMessage
}

func newKommoFake(t *testing.T) *kommoFake {
	return &kommoFake{
		t:               t,
		contactsByPhone: map[string]contactSearchResponse{},
		patches:         map[string]json.RawMessage{},
	}
}

func (f *kommoFake) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v4/contacts":
			phone := r.URL.Query().Get("query")
			f.searches = append(f.searches, phone)

			resp, ok := f.contactsByPhone[phone]
			if !ok || len(resp.Embedded.Contacts) == 0 {
				// Kommo answers an empty search with 204.
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			require.NoError(f.t, json.NewEncoder(w).Encode(resp))

		case r.Method == http.MethodPatch:
			body, err := io.ReadAll(r.Body)
			require.NoError(f.t, err)
			f.patches[r.URL.Path] = body
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "{}")

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func contactWithLead(contactID, leadID int64) contactSearchResponse {
	var c contact
	c.ID = contactID
	c.Embedded.Leads = append(c.Embedded.Leads, struct {
		ID int64 `json:"id"`
	}{ID: leadID})

	var resp contactSearchResponse
	resp.Embedded.Contacts = append(resp.Embedded.Contacts, c)
	return resp
}

func testClient(baseURL string) *Client {
	return &Client{
		logger:      testLogger(),
		baseURL:     baseURL,
		accessToken: "token",
		httpClient:  &http.Client{Timeout: time.Second},
	}
}

func testSubmission() *types.Submission {
	return &types.Submission{
		ID:          1,
		FullName:    "Maria da Silva",
		Phone:       "11987654321",
		Email:       str("maria@example.com"),
		CPF:         str("52998224725"),
		BankName:    "Banco do Brasil",
		AccountType: "corrente",
		Agency:      "1234",
		Account:     "12345-6",
	}
}

func TestPushUpdatesContactAndLead(t *testing.T) {
	fake := newKommoFake(t)
	fake.contactsByPhone["11987654321"] = contactWithLead(100, 200)

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	err := testClient(srv.URL).Push(context.Background(), testSubmission())
	require.NoError(t, err)

	assert.Equal(t, []string{"11987654321"}, fake.searches)
	assert.Contains(t, fake.patches, "/api/v4/contacts/100")
	assert.Contains(t, fake.patches, "/api/v4/leads/200")
	assert.NotContains(t, fake.patches, "/api/v4/companies/0")

	assert.Contains(t, string(fake.patches["/api/v4/contacts/100"]), "Maria da Silva")
	assert.Contains(t, string(fake.patches["/api/v4/leads/200"]), "Banco do Brasil")
}

func TestPushPhoneFallbackWithoutMobileNine(t *testing.T) {
	fake := newKommoFake(t)
	fake.contactsByPhone["1187654321"] = contactWithLead(100, 200)

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	err := testClient(srv.URL).Push(context.Background(), testSubmission())
	require.NoError(t, err)

	assert.Equal(t, []string{"11987654321", "1187654321"}, fake.searches)
	assert.Contains(t, fake.patches, "/api/v4/leads/200")
}

func TestPushNoContactFound(t *testing.T) {
	fake := newKommoFake(t)

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	err := testClient(srv.URL).Push(context.Background(), testSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no contact found")
	assert.Empty(t, fake.patches)
}

func TestPushSkipsContactsWithoutLeads(t *testing.T) {
	fake := newKommoFake(t)

	var resp contactSearchResponse
	var c contact
	c.ID = 100
	resp.Embedded.Contacts = append(resp.Embedded.Contacts, c)
	fake.contactsByPhone["11987654321"] = resp

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	err := testClient(srv.URL).Push(context.Background(), testSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no contact with leads")
	assert.Empty(t, fake.patches)
}

func TestPushUpdatesCompanyForOrganizations(t *testing.T) {
	fake := newKommoFake(t)

	resp := contactWithLead(100, 200)
	resp.Embedded.Contacts[0].Embedded.Companies = append(resp.Embedded.Contacts[0].Embedded.Companies, struct {
		ID int64 `json:"id"`
	}{ID: 300})
	fake.contactsByPhone["11987654321"] = resp

	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	sub := testSubmission()
	sub.CNPJ = str("11222333000181")

	err := testClient(srv.URL).Push(context.Background(), sub)
	require.NoError(t, err)

	require.Contains(t, fake.patches, "/api/v4/companies/300")
	assert.Contains(t, string(fake.patches["/api/v4/companies/300"]), "11222333000181")
}

func TestPushRequiresPhone(t *testing.T) {
	sub := testSubmission()
	sub.Phone = ""

	err := testClient("http://invalid.invalid").Push(context.Background(), sub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no phone")
}
