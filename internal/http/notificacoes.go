package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/louvorapp/escala/internal/http/middleware"
	"github.com/louvorapp/escala/internal/notificacao"
)

// ListNotificacoes devolve a caixa de entrada do usuário, mais recente
// primeiro; ?limit= controla o tamanho da página.
func (h *Handler) ListNotificacoes(w http.ResponseWriter, r *http.Request) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "limit inválido", nil)
			return
		}
	}

	itens, err := h.notificacoes.Listar(r.Context(), subject, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar notificações", nil)
		return
	}

	WriteJSON(w, http.StatusOK, itens)
}

// ContarNaoLidas devolve o contador de não lidas.
func (h *Handler) ContarNaoLidas(w http.ResponseWriter, r *http.Request) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	count, err := h.notificacoes.ContarNaoLidas(r.Context(), subject)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao contar notificações", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{"naoLidas": count})
}

// StreamNaoLidas emite o contador por SSE enquanto a conexão durar.
func (h *Handler) StreamNaoLidas(w http.ResponseWriter, r *http.Request) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "streaming não suportado", nil)
		return
	}

	updates, err := h.notificacoes.AssinarNaoLidas(r.Context(), subject)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao assinar notificações", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for count := range updates {
		fmt.Fprintf(w, "data: {\"naoLidas\":%d}\n\n", count)
		flusher.Flush()
	}
}

// MarcarLida marca uma notificação como lida (idempotente).
func (h *Handler) MarcarLida(w http.ResponseWriter, r *http.Request) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.notificacoes.MarcarLida(r.Context(), subject, id); err != nil {
		if errors.Is(err, notificacao.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "notificação não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao marcar notificação", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// MarcarTodasLidas zera o contador de não lidas.
func (h *Handler) MarcarTodasLidas(w http.ResponseWriter, r *http.Request) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	count, err := h.notificacoes.MarcarTodasLidas(r.Context(), subject)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao marcar notificações", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]int{"marcadas": count})
}

// ExcluirNotificacao remove item da caixa de entrada.
func (h *Handler) ExcluirNotificacao(w http.ResponseWriter, r *http.Request) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.notificacoes.Excluir(r.Context(), subject, id); err != nil {
		if errors.Is(err, notificacao.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "notificação não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao excluir notificação", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
