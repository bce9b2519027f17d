package dropzone

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.fotopdf.dev/fotopdf/internal/report"
)

func TestResponseWriter_Toast(t *testing.T) {
	tests := []struct {
		name      string
		toastType ToastType
		message   string
		wantType  string
	}{
		{
			name:      "success toast",
			toastType: ToastSuccess,
			message:   "Created (1.2MB)!",
			wantType:  "success",
		},
		{
			name:      "error toast",
			toastType: ToastError,
			message:   "Invalid file or folder.",
			wantType:  "error",
		},
		{
			name:      "info toast",
			toastType: ToastInfo,
			message:   "Drag folder here",
			wantType:  "info",
		},
		{
			name:      "warning toast",
			toastType: ToastWarning,
			message:   "Created (0.4MB)!",
			wantType:  "warning",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			rw := NewResponseWriter(w)

			rw.Toast(tt.toastType, tt.message)

			trigger := w.Header().Get("HX-Trigger")
			if trigger == "" {
				t.Fatal("HX-Trigger header not set")
			}

			var events map[string]map[string]string
			if err := json.Unmarshal([]byte(trigger), &events); err != nil {
				t.Fatalf("HX-Trigger is not JSON: %v", err)
			}
			msg := events["showMessage"]
			if msg["type"] != tt.wantType || msg["message"] != tt.message {
				t.Errorf("showMessage = %v", msg)
			}
		})
	}
}

func TestToastFor(t *testing.T) {
	tests := []struct {
		level   report.Level
		created bool
		want    ToastType
	}{
		{report.LevelInfo, true, ToastSuccess},
		{report.LevelInfo, false, ToastInfo},
		{report.LevelWarning, true, ToastWarning},
		{report.LevelError, false, ToastError},
		{report.LevelError, true, ToastError},
	}
	for _, tt := range tests {
		if got := ToastFor(tt.level, tt.created); got != tt.want {
			t.Errorf("ToastFor(%s, %v) = %s, want %s", tt.level, tt.created, got, tt.want)
		}
	}
}

func TestRenderStatus_JSON(t *testing.T) {
	tr := NewTemplateRenderer(nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/albums/path", nil)

	tr.RenderStatus(w, r, http.StatusOK, &Status{Header: "Drag folder here", Level: report.LevelInfo})

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var st Status
	if err := json.NewDecoder(w.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Header != "Drag folder here" || st.Lines == nil {
		t.Errorf("status = %+v", st)
	}
}
