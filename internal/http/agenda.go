package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/louvorapp/escala/internal/agenda"
	httpmiddleware "github.com/louvorapp/escala/internal/http/middleware"
)

// ListAgenda lista responsáveis no intervalo ?de=AAAA-MM-DD&ate=AAAA-MM-DD.
func (h *Handler) ListAgenda(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	de, err := agenda.ParseData(r.URL.Query().Get("de"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "de inválido: use AAAA-MM-DD", nil)
		return
	}
	ate, err := agenda.ParseData(r.URL.Query().Get("ate"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "ate inválido: use AAAA-MM-DD", nil)
		return
	}

	itens, err := h.agenda.ListRange(r.Context(), igrejaID, de, ate)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar agenda", nil)
		return
	}

	WriteJSON(w, http.StatusOK, itens)
}

// GetResponsavel devolve o responsável da data.
func (h *Handler) GetResponsavel(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	data, err := agenda.ParseData(chi.URLParam(r, "data"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	resp, err := h.agenda.Get(r.Context(), igrejaID, data)
	if err != nil {
		if errors.Is(err, agenda.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "responsável não definido", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao carregar agenda", nil)
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// DefinirResponsavel define o responsável da data (líderes).
func (h *Handler) DefinirResponsavel(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	data, err := agenda.ParseData(chi.URLParam(r, "data"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	var payload struct {
		MembroID uuid.UUID `json:"membroId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	if payload.MembroID == uuid.Nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "membroId é obrigatório", nil)
		return
	}

	if err := h.agenda.Upsert(r.Context(), igrejaID, data, payload.MembroID); err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao gravar agenda", nil)
		return
	}

	WriteJSON(w, http.StatusOK, agenda.Responsavel{IgrejaID: igrejaID, Data: data, MembroID: payload.MembroID})
}

// RemoverResponsavel desmarca a data (líderes).
func (h *Handler) RemoverResponsavel(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	data, err := agenda.ParseData(chi.URLParam(r, "data"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	if err := h.agenda.Delete(r.Context(), igrejaID, data); err != nil {
		if errors.Is(err, agenda.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "responsável não definido", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao excluir agenda", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
