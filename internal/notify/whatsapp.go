// Package notify delivers best-effort outbound messages. Delivery failures
// are logged, never surfaced to the caller's transaction.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	internalsettings "github.com/prajanews/newsdesk/internal/settings"
	log "github.com/sirupsen/logrus"
)

// ErrNotConfigured indicates no WhatsApp gateway endpoint is configured.
var ErrNotConfigured = errors.New("notify: whatsapp endpoint is not configured")

const sendTimeout = 10 * time.Second

// WhatsAppSender posts template messages to the configured gateway.
type WhatsAppSender struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

// NewWhatsAppFromSettings builds a sender from the settings snapshot.
func NewWhatsAppFromSettings() (*WhatsAppSender, error) {
	endpoint := internalsettings.StringValue(internalsettings.WhatsAppEndpointKey, "")
	if endpoint == "" {
		return nil, ErrNotConfigured
	}
	token := internalsettings.StringValue(internalsettings.WhatsAppTokenKey, "")
	return NewWhatsAppSender(endpoint, token), nil
}

// NewWhatsAppSender constructs a sender for the given gateway.
func NewWhatsAppSender(endpoint, token string) *WhatsAppSender {
	return &WhatsAppSender{
		httpClient: &http.Client{Timeout: sendTimeout},
		endpoint:   strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		token:      strings.TrimSpace(token),
	}
}

// Message is one outbound WhatsApp message.
type Message struct {
	To       string         `json:"to"`                 // Recipient mobile, digits only.
	Template string         `json:"template"`           // Gateway template name.
	Params   map[string]any `json:"params,omitempty"`   // Template parameters.
	MediaURL string         `json:"mediaUrl,omitempty"` // Optional attachment URL.
}

// Send posts one message to the gateway.
func (s *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	if s == nil || s.endpoint == "" {
		return ErrNotConfigured
	}
	payload, errMarshal := json.Marshal(msg)
	if errMarshal != nil {
		return fmt.Errorf("notify: marshal message: %w", errMarshal)
	}
	request, errRequest := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/messages", bytes.NewReader(payload))
	if errRequest != nil {
		return fmt.Errorf("notify: build request: %w", errRequest)
	}
	request.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		request.Header.Set("Authorization", "Bearer "+s.token)
	}
	response, errDo := s.httpClient.Do(request)
	if errDo != nil {
		return fmt.Errorf("notify: send message: %w", errDo)
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("notify: gateway returned status %d", response.StatusCode)
	}
	return nil
}

// SendAsync sends a message in the background and logs failures.
func (s *WhatsAppSender) SendAsync(msg Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if errSend := s.Send(ctx, msg); errSend != nil {
			log.WithError(errSend).WithField("template", msg.Template).Warn("whatsapp delivery failed")
		}
	}()
}
