// Package notify delivers a human-readable summary of each submission to the
// operations team over the WhatsApp Business API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"essencialform/pkg/types"

	"github.com/sirupsen/logrus"
)

const defaultGraphBaseURL = "https://graph.facebook.com/v18.0"

// Pause between deliveries so the provider's rate limit is respected.
const interDeliveryDelay = 500 * time.Millisecond

type WhatsAppNotifier struct {
	logger        *logrus.Logger
	baseURL       string
	accessToken   string
	phoneNumberID string
	recipients    []string
	httpClient    *http.Client

	now func() time.Time
}

func NewWhatsAppNotifier(logger *logrus.Logger, accessToken, phoneNumberID string, recipients []string) *WhatsAppNotifier {
	return &WhatsAppNotifier{
		logger:        logger,
		baseURL:       defaultGraphBaseURL,
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		recipients:    recipients,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		now:           time.Now,
	}
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// Notify formats the submission summary and attempts delivery to every
// configured recipient. It reports true if at least one delivery succeeded;
// the result is informational only.
func (n *WhatsAppNotifier) Notify(ctx context.Context, sub *types.Submission, folderURL string) bool {
	if n.accessToken == "" || n.phoneNumberID == "" {
		n.logger.Warn("whatsapp configuration incomplete, skipping notification")
		return false
	}
	if len(n.recipients) == 0 {
		n.logger.Warn("no whatsapp recipients configured, skipping notification")
		return false
	}

	body := n.FormatMessage(sub, folderURL)

	delivered := false
	for i, recipient := range n.recipients {
		if i > 0 {
			select {
			case <-time.After(interDeliveryDelay):
			case <-ctx.Done():
				return delivered
			}
		}

		if err := n.send(ctx, recipient, body); err != nil {
			n.logger.WithError(err).WithField("recipient", recipient).
				Error("failed to deliver whatsapp notification")
			continue
		}

		delivered = true
		n.logger.WithFields(logrus.Fields{
			"submission_id": sub.ID,
			"recipient":     recipient,
		}).Info("whatsapp notification delivered")
	}

	return delivered
}

// FormatMessage renders the summary text. Optional personal fields are
// omitted when empty; the banking group and state are always present; the
// labelled tax id prefers the organization id over the individual one.
func (n *WhatsAppNotifier) FormatMessage(sub *types.Submission, folderURL string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🚨 *NOVO FORMULÁRIO PREENCHIDO!*\n\n")
	fmt.Fprintf(&b, "📅 *Data/Hora:* %s\n\n", n.now().Format("02/01/2006 15:04:05"))

	b.WriteString("👤 *Dados Pessoais:*\n")
	fmt.Fprintf(&b, "• Nome: %s\n", sub.FullName)
	fmt.Fprintf(&b, "• Telefone: %s\n", sub.Phone)
	if v := deref(sub.Email); v != "" {
		fmt.Fprintf(&b, "• Email: %s\n", v)
	}

	switch {
	case deref(sub.CNPJ) != "":
		fmt.Fprintf(&b, "• CNPJ: %s\n", *sub.CNPJ)
	case deref(sub.CPF) != "":
		fmt.Fprintf(&b, "• CPF: %s\n", *sub.CPF)
	default:
		b.WriteString("• Documento: não informado\n")
	}

	if v := deref(sub.BirthDate); v != "" {
		fmt.Fprintf(&b, "• Data Nascimento: %s\n", v)
	}

	state := deref(sub.State)
	if state == "" {
		state = "XX"
	}
	fmt.Fprintf(&b, "\n📍 *Estado:* %s\n", state)

	b.WriteString("\n🏦 *Dados Bancários:*\n")
	fmt.Fprintf(&b, "• Banco: %s\n", sub.BankName)
	fmt.Fprintf(&b, "• Tipo de Conta: %s\n", sub.AccountType)
	fmt.Fprintf(&b, "• Agência: %s\n", sub.Agency)
	fmt.Fprintf(&b, "• Conta: %s\n", sub.Account)

	if folderURL != "" {
		fmt.Fprintf(&b, "\n📁 *Documentos:*\n🔗 *Pasta no Drive:* %s\n", folderURL)
	} else {
		b.WriteString("\n📄 *Documentos:* aguardando envio\n")
	}

	b.WriteString("\n✅ Formulário completo recebido e processado!")

	return b.String()
}

func (n *WhatsAppNotifier) send(ctx context.Context, recipient, body string) error {
	msg := textMessage{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "text",
	}
	msg.Text.Body = body

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", n.baseURL, n.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", n.accessToken))
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
