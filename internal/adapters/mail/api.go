package mail

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"campus_rentals/internal/adapters/httpx"
	"campus_rentals/internal/domain"
)

type APIConfig struct {
	URL  string
	Key  string
	From string
	RPS  int
}

// APIMailer posts rendered digests to a transactional-mail HTTP API.
type APIMailer struct {
	url    string
	from   string
	appURL string
	hc     *httpx.Client
}

type apiRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type apiMessage struct {
	From    string         `json:"from"`
	To      []apiRecipient `json:"to"`
	Subject string         `json:"subject"`
	HTML    string         `json:"html"`
	Text    string         `json:"text,omitempty"`
}

func NewAPI(cfg APIConfig, appURL string) (*APIMailer, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, fmt.Errorf("mail api: url and key are required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mail api: from address is required")
	}
	return &APIMailer{
		url:    cfg.URL,
		from:   cfg.From,
		appURL: appURL,
		hc: httpx.New("mail_api", httpx.Options{
			RPS:     cfg.RPS,
			Headers: map[string]string{"Authorization": "Bearer " + cfg.Key},
		}),
	}, nil
}

func (m *APIMailer) SendDigest(ctx context.Context, d domain.Digest) error {
	msg, err := RenderDigest(d, m.appURL)
	if err != nil {
		return err
	}
	body := apiMessage{
		From:    m.from,
		To:      []apiRecipient{{Email: msg.To, Name: msg.ToName}},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	}
	hdr := map[string]string{"Idempotency-Key": idempotencyKey(d)}
	if err := m.hc.DoWithHeaders(ctx, http.MethodPost, m.url, "send", hdr, body, nil); err != nil {
		return fmt.Errorf("mail api send to %s: %w", msg.To, err)
	}
	return nil
}

// idempotencyKey names one digest of one batch run, so a retried POST is
// deduplicated by the provider instead of mailed twice.
func idempotencyKey(d domain.Digest) string {
	return "digest-" + d.SearchID + "-" + strconv.FormatInt(d.RunAt.Unix(), 10)
}
