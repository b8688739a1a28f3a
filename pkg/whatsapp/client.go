package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/luestilo/estilo-backend/pkg/config"
	pkgerrors "github.com/luestilo/estilo-backend/pkg/errors"
)

const (
	defaultTimeout            = 10 * time.Second
	templateLanguage          = "pt_BR"
	errorBodyReadLimit  int64 = 1024
	messagingProduct          = "whatsapp"
)

var (
	errTokenRequired         = errors.New("whatsapp api token is required")
	errPhoneNumberIDRequired = errors.New("whatsapp phone number id is required")
)

// Client wraps the WhatsApp Cloud API messages endpoint.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	token         string
	phoneNumberID string
	countryCode   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a WhatsApp client from the provider configuration.
func NewClient(cfg config.WhatsAppConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errTokenRequired
	}
	if strings.TrimSpace(cfg.PhoneNumberID) == "" {
		return nil, errPhoneNumberIDRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		token:         strings.TrimSpace(cfg.Token),
		phoneNumberID: strings.TrimSpace(cfg.PhoneNumberID),
		countryCode:   strings.TrimSpace(cfg.CountryCode),
	}
	if client.countryCode == "" {
		client.countryCode = "55"
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body string `json:"body"`
}

type templatePayload struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Template         templateBody `json:"template"`
}

type templateBody struct {
	Name       string              `json:"name"`
	Language   templateLanguageRef `json:"language"`
	Components []templateComponent `json:"components,omitempty"`
}

type templateLanguageRef struct {
	Code string `json:"code"`
}

type templateComponent struct {
	Type       string              `json:"type"`
	Parameters []templateParameter `json:"parameters"`
}

type templateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendText delivers a plain text message to the recipient phone number.
func (c *Client) SendText(ctx context.Context, to, message string) error {
	payload := textPayload{
		MessagingProduct: messagingProduct,
		To:               c.NormalizePhone(to),
		Type:             "text",
		Text:             textBody{Body: message},
	}
	return c.post(ctx, payload)
}

// SendTemplate delivers a pre-approved template message with positional body
// parameters.
func (c *Client) SendTemplate(ctx context.Context, to, templateName string, params []string) error {
	body := templateBody{
		Name:     templateName,
		Language: templateLanguageRef{Code: templateLanguage},
	}
	if len(params) > 0 {
		parameters := make([]templateParameter, 0, len(params))
		for _, value := range params {
			parameters = append(parameters, templateParameter{Type: "text", Text: value})
		}
		body.Components = []templateComponent{{Type: "body", Parameters: parameters}}
	}

	payload := templatePayload{
		MessagingProduct: messagingProduct,
		To:               c.NormalizePhone(to),
		Type:             "template",
		Template:         body,
	}
	return c.post(ctx, payload)
}

// NormalizePhone strips non-digits and prefixes the country code when missing.
func (c *Client) NormalizePhone(to string) string {
	var digits strings.Builder
	for _, r := range to {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	normalized := digits.String()
	if !strings.HasPrefix(normalized, c.countryCode) {
		normalized = c.countryCode + normalized
	}
	return normalized
}

func (c *Client) post(ctx context.Context, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode whatsapp payload")
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build whatsapp request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "notification failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return pkgerrors.Wrap(
			pkgerrors.CodeUpstream,
			fmt.Errorf("whatsapp api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
			"notification failed",
		)
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}
