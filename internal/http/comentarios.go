package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/louvorapp/escala/internal/comentario"
	"github.com/louvorapp/escala/internal/escala"
)

// ListComentarios lista o mural da escala.
func (h *Handler) ListComentarios(w http.ResponseWriter, r *http.Request) {
	atual, err := h.currentMembro(r)
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	escalaID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	// garante que a escala pertence à igreja do vínculo
	if _, err := h.escalas.Get(r.Context(), atual.IgrejaID, escalaID); err != nil {
		if errors.Is(err, escala.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "escala não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao carregar escala", nil)
		return
	}

	comentarios, err := h.comentarios.Listar(r.Context(), escalaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar comentários", nil)
		return
	}

	WriteJSON(w, http.StatusOK, comentarios)
}

// AddComentario publica comentário e dispara avisos de menção.
func (h *Handler) AddComentario(w http.ResponseWriter, r *http.Request) {
	atual, err := h.currentMembro(r)
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	escalaID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if _, err := h.escalas.Get(r.Context(), atual.IgrejaID, escalaID); err != nil {
		if errors.Is(err, escala.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "escala não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao carregar escala", nil)
		return
	}

	var payload struct {
		Texto string `json:"texto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	created, err := h.comentarios.Adicionar(r.Context(), *atual, escalaID, payload.Texto)
	if err != nil {
		h.handleComentarioError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

// EditarComentario altera o texto (somente o autor).
func (h *Handler) EditarComentario(w http.ResponseWriter, r *http.Request) {
	atual, err := h.currentMembro(r)
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	comentarioID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Texto string `json:"texto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	updated, err := h.comentarios.Editar(r.Context(), *atual, comentarioID, payload.Texto)
	if err != nil {
		h.handleComentarioError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

// ExcluirComentario remove comentário (autor ou líder).
func (h *Handler) ExcluirComentario(w http.ResponseWriter, r *http.Request) {
	atual, err := h.currentMembro(r)
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	comentarioID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.comentarios.Excluir(r.Context(), *atual, comentarioID); err != nil {
		h.handleComentarioError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) handleComentarioError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, comentario.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "comentário não encontrado", nil)
	case errors.Is(err, comentario.ErrSemPermissao):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem permissão sobre este comentário", nil)
	case errors.Is(err, comentario.ErrTextoObrigatorio):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao processar comentário", nil)
	}
}
