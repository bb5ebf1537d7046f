package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"watchpost/internals/modules/event"
)

const slackUsername = "Watchpost"

type slackPayload struct {
	Username string `json:"username"`
	IconURL  string `json:"icon_url,omitempty"`
	Text     string `json:"text"`
}

// SlackNotifier posts events to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
	iconURL    string
	client     *http.Client
}

func NewSlackNotifier(webhookURL string, client *http.Client) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL, client: client}
}

func (n *SlackNotifier) Name() string { return "slack" }

func (n *SlackNotifier) Notify(ctx context.Context, ev event.Emitted) error {
	var text string
	switch e := ev.(type) {
	case event.RedirectEvent:
		text = RenderRedirect(slackFormatter{}, e)
	case event.Transition:
		text = RenderText(slackFormatter{}, e)
	default:
		return nil
	}

	body, err := json.Marshal(slackPayload{
		Username: slackUsername,
		IconURL:  n.iconURL,
		Text:     text,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("slack webhook returned %s", resp.Status)
	}
	return nil
}
