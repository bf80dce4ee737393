package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// DefaultResendURL is the production Resend API base
const DefaultResendURL = "https://api.resend.com/"

// ErrMissingAPIKey is returned by Send when no API key is configured
var ErrMissingAPIKey = errors.New("email API key not configured")

// Message is one outbound email
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message and returns the provider message id
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// UpstreamError is a non-2xx response from the mail provider
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("email provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("email provider returned status %d: %s", e.StatusCode, e.Body)
}

// ResendConfig holds the client settings
type ResendConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// ResendClient sends mail through the Resend API
type ResendClient struct {
	apiKey string
	client *resend.Client
}

var _ Sender = (*ResendClient)(nil)

type statusKey struct{}

// statusTransport stores the provider's response status in the request context,
// since the SDK's errors carry only the message text.
type statusTransport struct {
	next http.RoundTripper
}

func (t statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if resp != nil {
		if status, ok := req.Context().Value(statusKey{}).(*int); ok {
			*status = resp.StatusCode
		}
	}
	return resp, err
}

// NewResendClient creates a client. A missing key is not an error here; Send reports it per message.
func NewResendClient(cfg ResendConfig) *ResendClient {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultResendURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: statusTransport{next: http.DefaultTransport},
	}
	client := resend.NewCustomClient(httpClient, cfg.APIKey)
	if u, err := url.Parse(strings.TrimRight(base, "/") + "/"); err == nil {
		client.BaseURL = u
	}

	return &ResendClient{apiKey: cfg.APIKey, client: client}
}

// Send posts the message to /emails and returns the Resend message id
func (c *ResendClient) Send(ctx context.Context, msg Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	status := 0
	ctx = context.WithValue(ctx, statusKey{}, &status)

	sent, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		if status != 0 && (status < 200 || status > 299) {
			return "", &UpstreamError{StatusCode: status, Body: strings.TrimPrefix(err.Error(), "[ERROR]: ")}
		}
		return "", fmt.Errorf("send email: %w", err)
	}
	return sent.Id, nil
}
