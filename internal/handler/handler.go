package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"discordclear/internal/cleaner"
	"discordclear/internal/config"
	"discordclear/internal/notifier"
)

// Clearer runs one deletion operation.
type Clearer interface {
	Clear(ctx context.Context, token, target string, opts cleaner.Options) (cleaner.Result, error)
}

// Handler holds application dependencies
type Handler struct {
	Config   config.Config
	Notifier *notifier.Notifier
	Cleaner  Clearer

	validate *validator.Validate
}

// New creates a new Handler with the given dependencies
func New(cfg config.Config, n *notifier.Notifier, c Clearer) *Handler {
	return &Handler{
		Config:   cfg,
		Notifier: n,
		Cleaner:  c,
		validate: validator.New(),
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	// WebSocket: /ws と、同じポートの / へのアップグレード
	r.HandleFunc("/ws", h.HandleWebSocket).Methods("GET")
	r.HandleFunc("/", h.HandleWebSocket).Methods("GET").HeadersRegexp("Upgrade", "(?i)^websocket$")

	// REST API
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/clear-messages", h.ClearMessages).Methods("POST")

	return r
}
