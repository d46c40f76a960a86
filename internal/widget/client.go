package widget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	// apologyFallback covers a 2xx reply whose body is missing the response field.
	apologyFallback = "I apologize, but I couldn't process your request properly. Please try again."

	// failureAdvisory is appended to every synthesized failure message so an
	// outage never silently swallows a medical question.
	failureAdvisory = "If this is an urgent medical concern, please consult a healthcare professional directly."
)

type chatRequest struct {
	Message        string      `json:"message"`
	ConversationID string      `json:"conversation_id"`
	UserID         string      `json:"user_id"`
	Context        chatContext `json:"context"`
}

type chatContext struct {
	Source        string `json:"source"`
	WidgetSession bool   `json:"widget_session"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// postChat performs the widget's single outbound operation: one attempt, no
// retry or backoff beyond what the transport provides.
func (w *Widget) postChat(apiURL, message, conversationID, userID string) (string, error) {
	payload := chatRequest{
		Message:        message,
		ConversationID: conversationID,
		UserID:         userID,
		Context: chatContext{
			Source:        "embed-widget",
			WidgetSession: true,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, apiURL+"/api/chat/widget-default", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("chat request failed with status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&parsed); err != nil {
		return "", fmt.Errorf("malformed chat response: %w", err)
	}

	if parsed.Response == "" {
		return apologyFallback, nil
	}
	return parsed.Response, nil
}

// failureMessage turns a transport or protocol error into the user-visible
// assistant message required by the fail-open-to-safe-messaging policy.
func failureMessage(err error) string {
	return fmt.Sprintf("I'm sorry, I'm having trouble connecting right now (%v). %s", err, failureAdvisory)
}
