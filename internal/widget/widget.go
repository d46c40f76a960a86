package widget

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// AnonymousUserID is the constant marker sent by embedded widgets.
	AnonymousUserID = "anonymous"

	minInputHeight = 40
	maxInputHeight = 120
)

// Message is one immutable transcript entry.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Widget owns the full state of one embedded chat instance: visibility flags,
// transcript, session identity and configuration. All mutations go through
// its methods and every mutation triggers a re-render callback.
type Widget struct {
	mu sync.Mutex

	cfg         Config
	isOpen      bool
	isMinimized bool
	isLoading   bool
	messages    []Message
	sessionID   string
	userID      string

	httpClient *http.Client
	onRender   func(markup string)
	autoTimer  *time.Timer
}

// New builds a widget with the defaults overridden by opts. If autoOpen is
// configured, a single deferred Open fires after the configured delay.
func New(opts Options, onRender func(markup string)) *Widget {
	w := &Widget{
		cfg:        defaultConfig().merge(opts),
		userID:     AnonymousUserID,
		httpClient: &http.Client{},
		onRender:   onRender,
	}
	w.sessionID = newSessionID()
	w.messages = []Message{w.greetingMessage()}

	if w.cfg.AutoOpen {
		delay := time.Duration(w.cfg.AutoOpenDelay) * time.Millisecond
		w.autoTimer = time.AfterFunc(delay, w.Open)
	}

	return w
}

// SetHTTPClient swaps the transport used by the network client.
func (w *Widget) SetHTTPClient(c *http.Client) {
	w.mu.Lock()
	w.httpClient = c
	w.mu.Unlock()
}

func (w *Widget) greetingMessage() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   w.cfg.Greeting,
		Timestamp: time.Now(),
	}
}

// Open shows the panel and clears the minimized flag.
func (w *Widget) Open() {
	w.mu.Lock()
	w.isOpen = true
	w.isMinimized = false
	w.notifyLocked()
	w.mu.Unlock()
}

// Close hides the panel. Transcript and session persist.
func (w *Widget) Close() {
	w.mu.Lock()
	w.isOpen = false
	w.notifyLocked()
	w.mu.Unlock()
}

// Minimize toggles the header-only presentation.
func (w *Widget) Minimize() {
	w.mu.Lock()
	w.isMinimized = !w.isMinimized
	w.notifyLocked()
	w.mu.Unlock()
}

// Reset replaces the transcript with a fresh greeting and rotates the session
// identifier. Open/minimized flags are untouched; a response still in flight
// for the old session is discarded when it lands.
func (w *Widget) Reset() {
	w.mu.Lock()
	w.messages = []Message{w.greetingMessage()}
	w.sessionID = newSessionID()
	w.notifyLocked()
	w.mu.Unlock()
}

// Configure shallow-merges a partial over the active configuration and
// re-renders so theme, position and copy changes apply immediately.
func (w *Widget) Configure(opts Options) {
	w.mu.Lock()
	w.cfg = w.cfg.merge(opts)
	w.notifyLocked()
	w.mu.Unlock()
}

// SendMessage appends the user turn and performs the chat round trip.
// Empty input and send-while-loading are silent no-ops. Failures synthesize
// a safe assistant message; isLoading is always cleared.
func (w *Widget) SendMessage(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	w.mu.Lock()
	if w.isLoading {
		w.mu.Unlock()
		return
	}
	w.isLoading = true
	w.messages = append(w.messages, Message{
		Role:      RoleUser,
		Content:   trimmed,
		Timestamp: time.Now(),
	})
	apiURL := w.cfg.APIURL
	sessionAtSend := w.sessionID
	userID := w.userID
	w.notifyLocked()
	w.mu.Unlock()

	content, err := w.postChat(apiURL, trimmed, sessionAtSend, userID)
	if err != nil {
		content = failureMessage(err)
	}

	w.mu.Lock()
	w.isLoading = false
	// A reset while the request was in flight rotated the session; the stale
	// answer is dropped instead of appearing after the new greeting.
	if w.sessionID == sessionAtSend {
		w.messages = append(w.messages, Message{
			Role:      RoleAssistant,
			Content:   content,
			Timestamp: time.Now(),
		})
	}
	w.notifyLocked()
	w.mu.Unlock()
}

// HandleKeyPress implements the input affordance: Enter without Shift sends
// the draft and reports true; Shift+Enter leaves the draft alone so the host
// inserts a line break.
func (w *Widget) HandleKeyPress(key string, shiftPressed bool, draft string) bool {
	if key != "Enter" || shiftPressed {
		return false
	}
	w.SendMessage(draft)
	return true
}

// AutoResize grows the input toward its content height, capped.
func AutoResize(contentHeight int) int {
	if contentHeight < minInputHeight {
		return minInputHeight
	}
	if contentHeight > maxInputHeight {
		return maxInputHeight
	}
	return contentHeight
}

// Render returns the markup for the current state.
func (w *Widget) Render() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.render()
}

// Config returns a copy of the active configuration.
func (w *Widget) Config() Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg
}

// Messages returns a copy of the transcript.
func (w *Widget) Messages() []Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Message, len(w.messages))
	copy(out, w.messages)
	return out
}

func (w *Widget) SessionID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessionID
}

func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isOpen
}

func (w *Widget) IsMinimized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isMinimized
}

func (w *Widget) IsLoading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isLoading
}

// notifyLocked re-renders and hands the markup to the host. Caller holds the lock.
func (w *Widget) notifyLocked() {
	if w.onRender != nil {
		w.onRender(w.render())
	}
}

// newSessionID builds the correlation token sent with each chat request:
// "widget_" + millisecond timestamp + "_" + random suffix.
func newSessionID() string {
	b := make([]byte, 5)
	rand.Read(b)
	return "widget_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + hex.EncodeToString(b)
}
