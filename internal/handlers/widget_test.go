package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func widgetRouter() (*WidgetHandler, http.Handler) {
	h := NewWidgetHandler()
	r := chi.NewRouter()
	r.Post("/api/widget/sessions", h.Create)
	r.Get("/api/widget/sessions/{instanceID}", h.Get)
	r.Post("/api/widget/sessions/{instanceID}/events", h.Event)
	r.Delete("/api/widget/sessions/{instanceID}", h.Delete)
	return h, r
}

func createInstance(t *testing.T, r http.Handler, body string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/widget/sessions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func postEvent(t *testing.T, r http.Handler, id, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/widget/sessions/"+id+"/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var resp map[string]interface{}
	json.NewDecoder(rr.Body).Decode(&resp)
	return rr, resp
}

func TestWidgetCreate(t *testing.T) {
	_, r := widgetRouter()

	resp := createInstance(t, r, `{"theme":"green","title":"Care Bot"}`)

	if resp["instance_id"] == "" || resp["instance_id"] == nil {
		t.Error("missing instance_id")
	}
	if !strings.HasPrefix(resp["session_id"].(string), "widget_") {
		t.Errorf("session_id = %v", resp["session_id"])
	}
	html, _ := resp["html"].(string)
	if !strings.Contains(html, "medichat-widget") {
		t.Errorf("html missing container: %q", html)
	}
	css, _ := resp["css"].(string)
	if css == "" {
		t.Error("missing stylesheet")
	}
}

func TestWidgetEventLifecycle(t *testing.T) {
	_, r := widgetRouter()
	created := createInstance(t, r, `{}`)
	id := created["instance_id"].(string)

	rr, state := postEvent(t, r, id, `{"action":"open"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("open status = %d", rr.Code)
	}
	if state["is_open"] != true {
		t.Errorf("is_open = %v after open", state["is_open"])
	}

	_, state = postEvent(t, r, id, `{"action":"minimize"}`)
	if state["is_minimized"] != true {
		t.Errorf("is_minimized = %v after minimize", state["is_minimized"])
	}

	_, state = postEvent(t, r, id, `{"action":"close"}`)
	if state["is_open"] != false {
		t.Errorf("is_open = %v after close", state["is_open"])
	}

	oldSession := state["session_id"].(string)
	_, state = postEvent(t, r, id, `{"action":"reset"}`)
	if state["session_id"] == oldSession {
		t.Error("reset did not rotate the session id")
	}
	msgs, _ := state["messages"].([]interface{})
	if len(msgs) != 1 {
		t.Errorf("messages after reset = %d, want 1", len(msgs))
	}
}

func TestWidgetEventMessage(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"response": "Stay hydrated."})
	}))
	defer backend.Close()

	_, r := widgetRouter()
	created := createInstance(t, r, fmt.Sprintf(`{"apiUrl":%q}`, backend.URL))
	id := created["instance_id"].(string)

	_, state := postEvent(t, r, id, `{"action":"message","message":"what helps a headache?"}`)

	msgs, _ := state["messages"].([]interface{})
	if len(msgs) != 3 {
		t.Fatalf("messages = %d, want greeting + user + assistant", len(msgs))
	}
	last, _ := msgs[2].(map[string]interface{})
	if last["content"] != "Stay hydrated." {
		t.Errorf("assistant content = %v", last["content"])
	}
	if state["is_loading"] != false {
		t.Error("is_loading should be false after a synchronous turn")
	}
}

func TestWidgetEventConfigure(t *testing.T) {
	_, r := widgetRouter()
	created := createInstance(t, r, `{}`)
	id := created["instance_id"].(string)

	postEvent(t, r, id, `{"action":"open"}`)
	_, state := postEvent(t, r, id, `{"action":"configure","options":{"theme":"dark","position":"top-left"}}`)

	html, _ := state["html"].(string)
	if !strings.Contains(html, "pos-top-left") {
		t.Errorf("html missing new position class: %q", html)
	}
	if !strings.Contains(html, "#1f2937") {
		t.Error("html missing dark accent")
	}
}

func TestWidgetEventValidation(t *testing.T) {
	_, r := widgetRouter()
	created := createInstance(t, r, `{}`)
	id := created["instance_id"].(string)

	rr, _ := postEvent(t, r, id, `{"action":"explode"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown action status = %d", rr.Code)
	}

	rr, _ = postEvent(t, r, id, `{"action":"configure"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("configure without options status = %d", rr.Code)
	}

	rr, _ = postEvent(t, r, "missing-id", `{"action":"open"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing instance status = %d", rr.Code)
	}
}

func TestWidgetDelete(t *testing.T) {
	_, r := widgetRouter()
	created := createInstance(t, r, `{}`)
	id := created["instance_id"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/api/widget/sessions/"+id, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/widget/sessions/"+id, nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rr.Code)
	}
}

func TestWidgetChatRequestValidation(t *testing.T) {
	// The chat endpoint rejects blank messages before touching the pipeline.
	body, _ := json.Marshal(map[string]interface{}{
		"message":         "   ",
		"conversation_id": "widget_123_abc",
		"user_id":         "anonymous",
	})

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.TrimSpace(req.Message) != "" {
		t.Error("whitespace message should trim to empty")
	}
}
