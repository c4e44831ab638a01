// Package crm mirrors submission fields into Kommo. Everything here is
// best-effort: a submission must never fail because the CRM is down.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"essencialform/internal/validate"
	"essencialform/pkg/types"

	"github.com/sirupsen/logrus"
)

// Custom field ids of the Kommo account, per entity.
const (
	contactFieldPhone = 845834
	contactFieldEmail = 845836
	contactFieldCPF   = 1064648
	contactFieldCNPJ  = 1068892

	companyFieldCNPJ = 1063367

	leadFieldAvailableLimit = 1051320
	leadFieldLoanAmount     = 1064640
	leadFieldBank           = 1065798
	leadFieldAgency         = 1065800
	leadFieldAccount        = 1065802
)

type Client struct {
	logger      *logrus.Logger
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewClient(logger *logrus.Logger, baseURL, accessToken string) *Client {
	return &Client{
		logger:      logger,
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type contact struct {
	ID       int64 `json:"id"`
	Embedded struct {
		Leads []struct {
			ID int64 `json:"id"`
		} `json:"leads"`
		Companies []struct {
			ID int64 `json:"id"`
		} `json:"companies"`
	} `json:"_embedded"`
}

type contactSearchResponse struct {
	Embedded struct {
		Contacts []contact `json:"contacts"`
	} `json:"_embedded"`
}

type fieldValue struct {
	FieldID int64 `json:"field_id"`
	Values  []struct {
		Value any `json:"value"`
	} `json:"values"`
}

func field(id int64, value any) fieldValue {
	f := fieldValue{FieldID: id}
	f.Values = append(f.Values, struct {
		Value any `json:"value"`
	}{Value: value})
	return f
}

// Push looks up the contact matching the submission's phone and patches its
// personal, company and lead fields. Errors are returned for the caller to
// log; they carry no control-flow weight beyond that.
func (c *Client) Push(ctx context.Context, sub *types.Submission) error {
	phone := validate.Digits(sub.Phone)
	if phone == "" {
		return fmt.Errorf("submission %d has no phone to match on", sub.ID)
	}

	contacts, err := c.searchContactsByPhone(ctx, phone)
	if err != nil {
		return fmt.Errorf("search contacts: %w", err)
	}

	// Legacy records sometimes miss the leading mobile "9" after the area
	// code; retry without it before giving up.
	if len(contacts) == 0 && len(phone) > 4 && phone[2] == '9' {
		alt := phone[:2] + phone[3:]
		contacts, err = c.searchContactsByPhone(ctx, alt)
		if err != nil {
			return fmt.Errorf("search contacts (fallback): %w", err)
		}
	}

	if len(contacts) == 0 {
		return fmt.Errorf("no contact found for phone %s", phone)
	}

	// Only contacts holding at least one lead are actionable.
	var selected *contact
	for i := range contacts {
		if len(contacts[i].Embedded.Leads) > 0 {
			selected = &contacts[i]
			break
		}
	}
	if selected == nil {
		return fmt.Errorf("no contact with leads among %d matches for phone %s", len(contacts), phone)
	}

	leadID := selected.Embedded.Leads[0].ID

	if err := c.updateContact(ctx, selected.ID, sub); err != nil {
		return fmt.Errorf("update contact %d: %w", selected.ID, err)
	}

	if sub.CNPJ != nil && len(selected.Embedded.Companies) > 0 {
		companyID := selected.Embedded.Companies[0].ID
		if err := c.updateCompany(ctx, companyID, *sub.CNPJ); err != nil {
			// Company patch failing must not block the lead patch.
			c.logger.WithError(err).WithField("company_id", companyID).
				Warn("failed to update company in kommo")
		}
	}

	if err := c.updateLead(ctx, leadID, sub); err != nil {
		return fmt.Errorf("update lead %d: %w", leadID, err)
	}

	c.logger.WithFields(logrus.Fields{
		"submission_id": sub.ID,
		"contact_id":    selected.ID,
		"lead_id":       leadID,
	}).Info("submission mirrored into kommo")

	return nil
}

func (c *Client) searchContactsByPhone(ctx context.Context, phone string) ([]contact, error) {
	endpoint := fmt.Sprintf("%s/api/v4/contacts?query=%s&with=leads,companies",
		c.baseURL, url.QueryEscape(phone))

	var out contactSearchResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out.Embedded.Contacts, nil
}

func (c *Client) updateContact(ctx context.Context, contactID int64, sub *types.Submission) error {
	payload := map[string]any{
		"name": sub.FullName,
		"custom_fields_values": []fieldValue{
			field(contactFieldPhone, sub.Phone),
			field(contactFieldEmail, deref(sub.Email)),
			field(contactFieldCPF, deref(sub.CPF)),
			field(contactFieldCNPJ, deref(sub.CNPJ)),
		},
	}

	endpoint := fmt.Sprintf("%s/api/v4/contacts/%d", c.baseURL, contactID)
	return c.do(ctx, http.MethodPatch, endpoint, payload, nil)
}

func (c *Client) updateCompany(ctx context.Context, companyID int64, cnpj string) error {
	numeric, err := strconv.ParseInt(validate.Digits(cnpj), 10, 64)
	if err != nil {
		return fmt.Errorf("cnpj is not numeric: %w", err)
	}

	payload := map[string]any{
		"custom_fields_values": []fieldValue{
			field(companyFieldCNPJ, numeric),
		},
	}

	endpoint := fmt.Sprintf("%s/api/v4/companies/%d", c.baseURL, companyID)
	return c.do(ctx, http.MethodPatch, endpoint, payload, nil)
}

func (c *Client) updateLead(ctx context.Context, leadID int64, sub *types.Submission) error {
	fields := []fieldValue{
		field(leadFieldBank, sub.BankName),
		field(leadFieldAgency, sub.Agency),
		field(leadFieldAccount, sub.Account),
	}
	if sub.AvailableLimit != nil {
		fields = append(fields, field(leadFieldAvailableLimit, *sub.AvailableLimit))
	}
	if sub.LoanAmount != nil {
		fields = append(fields, field(leadFieldLoanAmount, *sub.LoanAmount))
	}

	payload := map[string]any{"custom_fields_values": fields}

	endpoint := fmt.Sprintf("%s/api/v4/leads/%d", c.baseURL, leadID)
	return c.do(ctx, http.MethodPatch, endpoint, payload, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.accessToken))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("kommo returned %d: %s", resp.StatusCode, string(respBody))
	}

	// Kommo answers an empty search with 204 and no body.
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
