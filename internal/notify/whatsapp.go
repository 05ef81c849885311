package notify

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
)

// DefaultWhatsAppBaseURL is the public Green API endpoint.
const DefaultWhatsAppBaseURL = "https://api.green-api.com"

// DefaultCountryCode replaces the trunk prefix of local phone numbers.
const DefaultCountryCode = "972"

var (
	// ErrMissingPhone is returned when a recipient has no usable phone number.
	ErrMissingPhone = errors.New("notify: recipient has no phone number")
	// ErrMissingCredentials is returned when the WhatsApp instance is not configured.
	ErrMissingCredentials = errors.New("notify: whatsapp instance id and api token are required")
)

// WhatsAppConfig configures a Green API client.
type WhatsAppConfig struct {
	BaseURL     string
	InstanceID  string
	APIToken    string
	CountryCode string
	HTTPClient  *http.Client
}

// WhatsAppClient delivers messages through a Green API WhatsApp instance.
type WhatsAppClient struct {
	baseURL     string
	instanceID  string
	apiToken    string
	countryCode string
	client      *http.Client
}

// NewWhatsAppClient validates cfg and returns a ready client.
func NewWhatsAppClient(cfg WhatsAppConfig) (*WhatsAppClient, error) {
	if strings.TrimSpace(cfg.InstanceID) == "" || strings.TrimSpace(cfg.APIToken) == "" {
		return nil, ErrMissingCredentials
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultWhatsAppBaseURL
	}
	countryCode := strings.TrimSpace(cfg.CountryCode)
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &WhatsAppClient{
		baseURL:     baseURL,
		instanceID:  strings.TrimSpace(cfg.InstanceID),
		apiToken:    strings.TrimSpace(cfg.APIToken),
		countryCode: countryCode,
		client:      client,
	}, nil
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

// Deliver sends body to the WhatsApp chat that belongs to the phone number recipient.
func (c *WhatsAppClient) Deliver(ctx context.Context, recipient, body string) error {
	phone := NormalizePhone(recipient, c.countryCode)
	if phone == "" {
		return ErrMissingPhone
	}

	payload, err := json.Marshal(sendMessageRequest{ChatID: phone + "@c.us", Message: body})
	if err != nil {
		return fmt.Errorf("notify: encode message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", c.baseURL, c.instanceID, c.apiToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("notify: whatsapp responded %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// NormalizePhone keeps only the digits of phone and swaps a leading trunk
// zero for countryCode, so 050-123-4567 becomes 972501234567.
func NormalizePhone(phone, countryCode string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = countryCode + digits[1:]
	}
	return digits
}
