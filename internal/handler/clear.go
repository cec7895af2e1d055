package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rusq/dlog"

	"discordclear/internal/cleaner"
	"discordclear/internal/model"
)

// Response bodies
const (
	indexText        = "API de apagar mensagens no Discord"
	errMissingFields = "Token ou ID não fornecido."
	errInvalidBody   = "Corpo da requisição inválido."
	errInternal      = "Erro interno ao tentar apagar mensagens."
	msgCleared       = "%s mensagens apagadas com sucesso!"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Index handles GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(indexText))
}

// ClearMessages handles POST /clear-messages
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	dlog.Printf("[POST /clear-messages] Request received from %s", r.RemoteAddr)

	if h.Config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxBodyBytes)
	}

	var req model.ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		dlog.Printf("[POST /clear-messages] ❌ Bad Request: %v", err)
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: errInvalidBody})
		return
	}

	if err := h.validate.Struct(req); err != nil {
		dlog.Printf("[POST /clear-messages] ❌ Bad Request: %v", err)
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: errMissingFields})
		return
	}

	opts := cleaner.Options{
		Limit:            req.Limit,
		DirectionTopDown: req.TopDown(),
		OnlyUserMessages: req.OnlyOwn(),
	}

	// クライアントが切断しても削除は最後まで続ける
	ctx := context.WithoutCancel(r.Context())
	res, err := h.Cleaner.Clear(ctx, req.Token, req.ID, opts)
	if err != nil {
		dlog.Printf("[POST /clear-messages] ❌ Clear failed for %s: %v", req.ID, err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: errInternal})
		return
	}

	dlog.Printf("[POST /clear-messages] ✅ Cleared %d messages from %s", res.Deleted, req.ID)

	writeJSON(w, http.StatusOK, model.ClearResponse{Message: fmt.Sprintf(msgCleared, limitLabel(req.Limit))})
}

// limitLabel reports the requested limit, not the deleted count.
func limitLabel(l model.Limit) string {
	if n, ok := l.Value(); ok {
		return fmt.Sprint(n)
	}
	return "Todas as"
}
