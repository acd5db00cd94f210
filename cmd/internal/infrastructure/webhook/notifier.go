package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	HeaderEvent     = "X-Gestao-Event"
	HeaderDelivery  = "X-Gestao-Delivery"
	HeaderSignature = "X-Gestao-Signature"
)

// Payload is the JSON body posted for every delivered notification.
type Payload struct {
	Event           string `json:"event"`
	RecipientID     string `json:"recipient_id"`
	RecipientEmail  string `json:"recipient_email"`
	Title           string `json:"title"`
	Body            string `json:"body"`
	RelatedEntityID string `json:"related_entity_id"`
	EntityType      string `json:"entity_type"`
	SentAt          string `json:"sent_at"`
}

type Sender interface {
	Send(ctx context.Context, p *Payload) error
}

type Notifier struct {
	url        string
	secret     string
	httpClient *http.Client
}

// NewNotifier returns nil when no url is configured so callers can skip the channel.
func NewNotifier(url, secret string) *Notifier {
	if url == "" {
		return nil
	}
	return &Notifier{
		url:        url,
		secret:     secret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Send(ctx context.Context, p *Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "GestaoAcoes-Webhook")
	req.Header.Set(HeaderEvent, p.Event)
	req.Header.Set(HeaderDelivery, strconv.FormatInt(time.Now().UnixNano(), 10))
	if n.secret != "" {
		req.Header.Set(HeaderSignature, "sha256="+Sign(n.secret, body))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}

// Sign is the hex HMAC-SHA256 of body, as sent in HeaderSignature.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
