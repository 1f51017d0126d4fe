package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	httpmiddleware "github.com/louvorapp/escala/internal/http/middleware"
	"github.com/louvorapp/escala/internal/membro"
)

// ListMembros lista membros da igreja; ?aprovado= filtra pendentes.
func (h *Handler) ListMembros(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	var aprovado *bool
	if raw := r.URL.Query().Get("aprovado"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "aprovado deve ser true ou false", nil)
			return
		}
		aprovado = &parsed
	}

	membros, err := h.membros.List(r.Context(), igrejaID, aprovado)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar membros", nil)
		return
	}

	WriteJSON(w, http.StatusOK, membros)
}

// GetMembro devolve um membro da igreja.
func (h *Handler) GetMembro(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	membroID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	m, err := h.membros.Get(r.Context(), igrejaID, membroID)
	if err != nil {
		h.handleMembroError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, m)
}

// AtualizarMembro edita perfil: o próprio membro ou um líder.
func (h *Handler) AtualizarMembro(w http.ResponseWriter, r *http.Request) {
	atual, err := h.currentMembro(r)
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	membroID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if membroID != atual.ID && !atual.IsLider {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "somente o próprio membro ou um líder", nil)
		return
	}

	var payload struct {
		Nome      string  `json:"nome"`
		Sobrenome string  `json:"sobrenome"`
		Telefone  *string `json:"telefone"`
		Area      *string `json:"area"`
		FotoURL   *string `json:"foto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	m, err := h.membros.AtualizarPerfil(r.Context(), atual.IgrejaID, membroID,
		payload.Nome, payload.Sobrenome, payload.Telefone, payload.Area, payload.FotoURL)
	if err != nil {
		h.handleMembroError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, m)
}

// AprovarMembro aprova ou revoga o acesso de um membro (líderes).
func (h *Handler) AprovarMembro(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	membroID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Aprovado bool `json:"aprovado"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	m, err := h.membros.SetAprovacao(r.Context(), igrejaID, membroID, payload.Aprovado)
	if err != nil {
		h.handleMembroError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, m)
}

// SetMinistro liga/desliga a permissão de montar escalas (líderes).
func (h *Handler) SetMinistro(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	membroID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Ministro bool `json:"ministro"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	m, err := h.membros.SetPodeEscalar(r.Context(), igrejaID, membroID, payload.Ministro)
	if err != nil {
		h.handleMembroError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, m)
}

// RecusarPendente remove pedido de entrada ainda não aprovado (líderes).
func (h *Handler) RecusarPendente(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	membroID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.membros.RecusarPendente(r.Context(), igrejaID, membroID); err != nil {
		h.handleMembroError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) handleMembroError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, membro.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "membro não encontrado", nil)
	case errors.Is(err, membro.ErrJaVinculado):
		WriteError(w, http.StatusConflict, "VALIDATION", "usuário já vinculado a uma igreja", nil)
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	}
}
