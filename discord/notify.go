package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"erfworld/models"
)

// Notifier posts new events to a Discord channel webhook.
type Notifier struct {
	WebhookURL string
	HTTP       *http.Client
}

func NewNotifier(webhookURL string, timeout time.Duration) *Notifier {
	return &Notifier{
		WebhookURL: webhookURL,
		HTTP:       &http.Client{Timeout: timeout},
	}
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedImage struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields"`
	Image       *embedImage  `json:"image,omitempty"`
	Footer      embedFooter  `json:"footer"`
	Timestamp   string       `json:"timestamp"`
}

type webhookMessage struct {
	Embeds []embed `json:"embeds"`
}

func locationLabel(location string) string {
	switch location {
	case "suydam":
		return "Suydam"
	case "bogart":
		return "Bogart"
	}
	return location
}

// PostEvent sends an embed describing the event. No-op when the webhook URL is
// not configured.
func (n *Notifier) PostEvent(ctx context.Context, event *models.Event) error {
	if n == nil || n.WebhookURL == "" {
		return nil
	}

	msg := webhookMessage{
		Embeds: []embed{{
			Title:       "New Event: " + event.Title,
			Description: event.Description,
			Color:       0x6B21A8,
			Fields: []embedField{
				{Name: "Date", Value: event.Date.Format("Monday, January 2, 2006"), Inline: true},
				{Name: "Location", Value: locationLabel(event.Location), Inline: true},
			},
			Footer:    embedFooter{Text: "ERF WORLD Events"},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}},
	}
	if event.Image != "" {
		msg.Embeds[0].Image = &embedImage{URL: event.Image}
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook status %d", resp.StatusCode)
	}
	return nil
}
