package widget

import (
	"fmt"
	"html/template"
	"strings"
)

// ContainerID is the fixed identifier of the injected container element.
// A host page must not already have an element with this id.
const ContainerID = "medichat-widget"

// renderState is the immutable projection handed to the template.
type renderState struct {
	ContainerID string
	IsOpen      bool
	IsMinimized bool
	IsLoading   bool
	Title       string
	Placeholder string
	Accent      string
	PosClass    string
	Width       int
	Height      int
	Messages    []renderedMessage
}

type renderedMessage struct {
	Role   string
	Avatar string
	Time   string
	HTML   template.HTML
}

var widgetTmpl = template.Must(template.New("widget").Parse(`<div id="{{.ContainerID}}" class="medichat-widget {{.PosClass}}" data-theme-accent="{{.Accent}}">
{{- if not .IsOpen}}
<button class="medichat-launcher" style="background:{{.Accent}}" aria-label="Open chat">&#128172;</button>
{{- else}}
<div class="medichat-panel{{if .IsMinimized}} minimized{{end}}" style="width:{{.Width}}px;{{if not .IsMinimized}}height:{{.Height}}px;{{end}}">
<div class="medichat-header" style="background:{{.Accent}}">
<span class="medichat-title">{{.Title}}</span>
<div class="medichat-controls">
<button class="medichat-minimize" aria-label="Minimize">&#8211;</button>
<button class="medichat-close" aria-label="Close">&#215;</button>
</div>
</div>
{{- if not .IsMinimized}}
<div class="medichat-body">
{{- range .Messages}}
<div class="medichat-message {{.Role}}">
<span class="medichat-avatar">{{.Avatar}}</span>
<div class="medichat-bubble">{{.HTML}}<span class="medichat-time">{{.Time}}</span></div>
</div>
{{- end}}
{{- if .IsLoading}}
<div class="medichat-message assistant loading">
<span class="medichat-avatar">&#129658;</span>
<div class="medichat-bubble"><span class="medichat-typing"><i></i><i></i><i></i></span></div>
</div>
{{- end}}
</div>
<div class="medichat-footer">
<textarea class="medichat-input" rows="1" placeholder="{{.Placeholder}}"></textarea>
<button class="medichat-send" style="background:{{.Accent}}" aria-label="Send">&#10148;</button>
</div>
{{- end}}
</div>
{{- end}}
</div>`))

// render projects the current state to markup. Caller holds the lock.
func (w *Widget) render() string {
	rs := renderState{
		ContainerID: ContainerID,
		IsOpen:      w.isOpen,
		IsMinimized: w.isMinimized,
		IsLoading:   w.isLoading,
		Title:       w.cfg.Title,
		Placeholder: w.cfg.Placeholder,
		Accent:      w.cfg.accentColor(),
		PosClass:    w.cfg.positionClass(),
		Width:       w.cfg.Width,
		Height:      w.cfg.Height,
	}

	for _, msg := range w.messages {
		rm := renderedMessage{
			Role: msg.Role,
			Time: msg.Timestamp.Format("3:04 PM"),
		}
		if msg.Role == RoleAssistant {
			rm.Avatar = "\U0001FA7A"
			// Assistant content is produced by the backend; the markdown
			// transformation is the only processing applied.
			rm.HTML = template.HTML(RenderMarkdown(msg.Content))
		} else {
			rm.Avatar = "\U0001F464"
			// User text is inserted literally. Escaping here is a hard
			// requirement: user input must never become structural HTML.
			rm.HTML = template.HTML(template.HTMLEscapeString(msg.Content))
		}
		rs.Messages = append(rs.Messages, rm)
	}

	var b strings.Builder
	if err := widgetTmpl.Execute(&b, rs); err != nil {
		// Template and data are fixed shapes; an execute failure is a bug.
		return fmt.Sprintf(`<div id="%s"></div>`, ContainerID)
	}
	return b.String()
}

// Stylesheet returns the CSS the widget injects next to its container.
func (w *Widget) Stylesheet() string {
	w.mu.Lock()
	accent := w.cfg.accentColor()
	w.mu.Unlock()

	return `
#` + ContainerID + ` { position: fixed; z-index: 99999; font-family: -apple-system, sans-serif; }
#` + ContainerID + `.pos-bottom-right { bottom: 20px; right: 20px; }
#` + ContainerID + `.pos-bottom-left { bottom: 20px; left: 20px; }
#` + ContainerID + `.pos-top-right { top: 20px; right: 20px; }
#` + ContainerID + `.pos-top-left { top: 20px; left: 20px; }
#` + ContainerID + ` .medichat-launcher { width: 56px; height: 56px; border: none; border-radius: 50%; color: #fff; font-size: 24px; cursor: pointer; box-shadow: 0 4px 12px rgba(0,0,0,.25); }
#` + ContainerID + ` .medichat-panel { display: flex; flex-direction: column; background: #fff; border-radius: 12px; box-shadow: 0 8px 24px rgba(0,0,0,.2); overflow: hidden; }
#` + ContainerID + ` .medichat-header { display: flex; justify-content: space-between; align-items: center; padding: 12px 16px; color: #fff; }
#` + ContainerID + ` .medichat-controls button { background: none; border: none; color: #fff; font-size: 16px; cursor: pointer; margin-left: 8px; }
#` + ContainerID + ` .medichat-body { flex: 1; overflow-y: auto; padding: 12px; background: #f8fafc; }
#` + ContainerID + ` .medichat-message { display: flex; margin-bottom: 10px; }
#` + ContainerID + ` .medichat-message.user { flex-direction: row-reverse; }
#` + ContainerID + ` .medichat-message.user .medichat-bubble { background: ` + accent + `; color: #fff; }
#` + ContainerID + ` .medichat-bubble { max-width: 80%; padding: 8px 12px; border-radius: 12px; background: #fff; box-shadow: 0 1px 2px rgba(0,0,0,.1); font-size: 14px; }
#` + ContainerID + ` .medichat-time { display: block; font-size: 10px; opacity: .6; margin-top: 4px; }
#` + ContainerID + ` .medichat-footer { display: flex; padding: 10px; gap: 8px; border-top: 1px solid #e5e7eb; }
#` + ContainerID + ` .medichat-input { flex: 1; resize: none; border: 1px solid #d1d5db; border-radius: 8px; padding: 8px; font-size: 14px; max-height: ` + fmt.Sprint(maxInputHeight) + `px; }
#` + ContainerID + ` .medichat-send { border: none; border-radius: 8px; color: #fff; padding: 0 14px; cursor: pointer; }
#` + ContainerID + ` .medichat-typing i { display: inline-block; width: 6px; height: 6px; margin: 0 1px; background: #9ca3af; border-radius: 50%; animation: medichat-blink 1s infinite; }
@keyframes medichat-blink { 50% { opacity: .3; } }
`
}
