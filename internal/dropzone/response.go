package dropzone

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"

	"go.fotopdf.dev/fotopdf/internal/report"
)

// ResponseWriter adds the HTMX headers the drop page listens to
type ResponseWriter struct {
	w http.ResponseWriter
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{w: w}
}

// ToastType selects the color of the toast shown for a run
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastInfo    ToastType = "info"
	ToastWarning ToastType = "warning"
)

// ToastFor maps the worst status level of a run to a toast type
func ToastFor(level report.Level, created bool) ToastType {
	switch {
	case level == report.LevelError:
		return ToastError
	case level == report.LevelWarning:
		return ToastWarning
	case created:
		return ToastSuccess
	default:
		return ToastInfo
	}
}

// toastEvent is the payload of the showMessage event
type toastEvent struct {
	Type    ToastType `json:"type"`
	Message string    `json:"message"`
}

// Toast raises showMessage on the page through HX-Trigger
func (rw *ResponseWriter) Toast(toastType ToastType, message string) {
	payload, err := json.Marshal(map[string]toastEvent{
		"showMessage": {Type: toastType, Message: message},
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal toast")
		return
	}
	rw.w.Header().Set("HX-Trigger", string(payload))
}

// ErrorResponse sends an error status with a toast and the message as status header
func (rw *ResponseWriter) ErrorResponse(r *http.Request, tr *TemplateRenderer, message string, statusCode int) {
	rw.Toast(ToastError, message)
	tr.RenderStatus(rw.w, r, statusCode, &Status{Header: message, Level: report.LevelError})
}

// Status is the outcome of a run as shown in the drop zone: a header line and
// the detail lines underneath
type Status struct {
	ID       string        `json:"id,omitempty"`
	Header   string        `json:"header"`
	Lines    []report.Line `json:"lines"`
	Level    report.Level  `json:"level"`
	Download string        `json:"download,omitempty"`
	URL      string        `json:"url,omitempty"`
}

// TemplateRenderer writes the status panel
type TemplateRenderer struct {
	templates *template.Template
}

func NewTemplateRenderer(templates *template.Template) *TemplateRenderer {
	return &TemplateRenderer{templates: templates}
}

// RenderPartial executes one named template, logging failures
func (tr *TemplateRenderer) RenderPartial(w http.ResponseWriter, templateName string, data interface{}) error {
	if err := tr.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Error().Err(err).Str("template", templateName).Msg("Template execution failed")
		return err
	}
	return nil
}

// RenderStatus renders the status partial for HTMX requests and JSON otherwise
func (tr *TemplateRenderer) RenderStatus(w http.ResponseWriter, r *http.Request, code int, st *Status) {
	if st.Lines == nil {
		st.Lines = []report.Line{}
	}
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(code)
		tr.RenderPartial(w, "status.html", st)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(st); err != nil {
		log.Error().Err(err).Msg("JSON encoding failed")
	}
}
