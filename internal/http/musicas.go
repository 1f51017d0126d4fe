package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	httpmiddleware "github.com/louvorapp/escala/internal/http/middleware"
	"github.com/louvorapp/escala/internal/musica"
)

type musicaPayload struct {
	Nome         string      `json:"nome"`
	Artista      *string     `json:"artista"`
	CifraURL     *string     `json:"cifra"`
	VideoURL     *string     `json:"video"`
	Tom          *string     `json:"tom"`
	Ministrantes []uuid.UUID `json:"ministrantes"`
}

// ListMusicas lista o repertório da igreja.
func (h *Handler) ListMusicas(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	musicas, err := h.musicas.List(r.Context(), igrejaID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar músicas", nil)
		return
	}

	WriteJSON(w, http.StatusOK, musicas)
}

// CriarMusica adiciona música ao repertório.
func (h *Handler) CriarMusica(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	var payload musicaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	m, err := h.musicas.Create(r.Context(), musica.SaveInput{
		IgrejaID:     igrejaID,
		Nome:         payload.Nome,
		Artista:      payload.Artista,
		CifraURL:     payload.CifraURL,
		VideoURL:     payload.VideoURL,
		Tom:          payload.Tom,
		Ministrantes: payload.Ministrantes,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, m)
}

// GetMusica devolve uma música do repertório.
func (h *Handler) GetMusica(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	musicaID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	m, err := h.musicas.Get(r.Context(), igrejaID, musicaID)
	if err != nil {
		if errors.Is(err, musica.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "música não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao carregar música", nil)
		return
	}

	WriteJSON(w, http.StatusOK, m)
}

// AtualizarMusica sobrescreve os campos da música.
func (h *Handler) AtualizarMusica(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	musicaID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload musicaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	m, err := h.musicas.Update(r.Context(), igrejaID, musicaID, musica.SaveInput{
		IgrejaID:     igrejaID,
		Nome:         payload.Nome,
		Artista:      payload.Artista,
		CifraURL:     payload.CifraURL,
		VideoURL:     payload.VideoURL,
		Tom:          payload.Tom,
		Ministrantes: payload.Ministrantes,
	})
	if err != nil {
		if errors.Is(err, musica.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "música não encontrada", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, m)
}

// ExcluirMusica remove a música do repertório.
func (h *Handler) ExcluirMusica(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	musicaID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.musicas.Delete(r.Context(), igrejaID, musicaID); err != nil {
		if errors.Is(err, musica.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "música não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao excluir música", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
