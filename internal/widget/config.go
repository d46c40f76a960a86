package widget

// Config is the merged set of widget behavior and appearance options.
// Defaults are immutable; a host-supplied partial wins key by key.
type Config struct {
	APIURL        string
	Theme         string // "blue" | "green" | "purple" | "dark"
	Position      string // "bottom-right" | "bottom-left" | "top-right" | "top-left"
	Greeting      string
	Title         string
	Placeholder   string
	Width         int
	Height        int
	AutoOpen      bool
	AutoOpenDelay int // milliseconds
}

// Options is a host-supplied partial configuration. Nil fields keep the
// current value.
type Options struct {
	APIURL        *string `json:"apiUrl,omitempty"`
	Theme         *string `json:"theme,omitempty"`
	Position      *string `json:"position,omitempty"`
	Greeting      *string `json:"greeting,omitempty"`
	Title         *string `json:"title,omitempty"`
	Placeholder   *string `json:"placeholder,omitempty"`
	Width         *int    `json:"width,omitempty"`
	Height        *int    `json:"height,omitempty"`
	AutoOpen      *bool   `json:"autoOpen,omitempty"`
	AutoOpenDelay *int    `json:"autoOpenDelay,omitempty"`
}

func defaultConfig() Config {
	return Config{
		APIURL:        "http://localhost:8000",
		Theme:         "blue",
		Position:      "bottom-right",
		Greeting:      "Hello! I'm your medical assistant. How can I help you today?",
		Title:         "Medical Assistant",
		Placeholder:   "Type your message...",
		Width:         350,
		Height:        500,
		AutoOpen:      false,
		AutoOpenDelay: 3000,
	}
}

// merge applies non-nil option fields over the current configuration.
func (c Config) merge(opts Options) Config {
	if opts.APIURL != nil {
		c.APIURL = *opts.APIURL
	}
	if opts.Theme != nil {
		c.Theme = *opts.Theme
	}
	if opts.Position != nil {
		c.Position = *opts.Position
	}
	if opts.Greeting != nil {
		c.Greeting = *opts.Greeting
	}
	if opts.Title != nil {
		c.Title = *opts.Title
	}
	if opts.Placeholder != nil {
		c.Placeholder = *opts.Placeholder
	}
	if opts.Width != nil {
		c.Width = *opts.Width
	}
	if opts.Height != nil {
		c.Height = *opts.Height
	}
	if opts.AutoOpen != nil {
		c.AutoOpen = *opts.AutoOpen
	}
	if opts.AutoOpenDelay != nil {
		c.AutoOpenDelay = *opts.AutoOpenDelay
	}
	return c
}

// themeColors maps a theme name to its accent color token. Unknown themes
// fall back to blue.
var themeColors = map[string]string{
	"blue":   "#2563eb",
	"green":  "#16a34a",
	"purple": "#7c3aed",
	"dark":   "#1f2937",
}

func (c Config) accentColor() string {
	if color, ok := themeColors[c.Theme]; ok {
		return color
	}
	return themeColors["blue"]
}

var positions = map[string]bool{
	"bottom-right": true,
	"bottom-left":  true,
	"top-right":    true,
	"top-left":     true,
}

func (c Config) positionClass() string {
	if positions[c.Position] {
		return "pos-" + c.Position
	}
	return "pos-bottom-right"
}
