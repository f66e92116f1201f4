package handlers

import (
	"encoding/json"
	"net/http"

	"videorelay/internal/infra"
	"videorelay/internal/middleware"
	"videorelay/internal/task"
)

// App bundles the dependencies the HTTP handlers need.
type App struct {
	Tasks  *task.Service
	Logger infra.Logger
}

// NewApp builds the handler container.
func NewApp(tasks *task.Service, logger infra.Logger) *App {
	return &App{Tasks: tasks, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the OpenAI-style error envelope with a message localized to
// the request locale.
func (a *App) error(w http.ResponseWriter, r *http.Request, code int, errType, messageKey string) {
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, code, errorEnvelope{
		Error: errorBody{
			Message: Message(locale, messageKey),
			Type:    errType,
			Code:    errType,
		},
	})
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}
