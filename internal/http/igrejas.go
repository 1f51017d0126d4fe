package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	httpmiddleware "github.com/louvorapp/escala/internal/http/middleware"
	"github.com/louvorapp/escala/internal/igreja"
	"github.com/louvorapp/escala/internal/membro"
)

// CriarIgreja funda a igreja com o usuário autenticado como líder.
// A sessão precisa ser renovada em seguida para carregar o vínculo.
func (h *Handler) CriarIgreja(w http.ResponseWriter, r *http.Request) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	var payload struct {
		Nome      string  `json:"nome"`
		LogoURL   *string `json:"logo"`
		Sobrenome string  `json:"sobrenome"`
		Telefone  *string `json:"telefone"`
		Area      *string `json:"area"`
		FotoURL   *string `json:"foto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	profile, _, err := h.authService.GetMe(r.Context(), subject)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar conta", nil)
		return
	}

	ig, fundador, err := h.igrejas.Fundar(r.Context(), igreja.CreateInput{
		Nome:              payload.Nome,
		LogoURL:           payload.LogoURL,
		FundadorID:        subject,
		FundadorNome:      profile.Nome,
		FundadorSobrenome: payload.Sobrenome,
		FundadorEmail:     profile.Email,
		FundadorFoto:      payload.FotoURL,
		FundadorTelefone:  payload.Telefone,
		FundadorArea:      payload.Area,
	})
	if err != nil {
		if errors.Is(err, igreja.ErrVinculoExistente) {
			WriteError(w, http.StatusConflict, "VALIDATION", "usuário já vinculado a uma igreja", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"igreja": ig,
		"membro": fundador,
	})
}

// SolicitarEntrada registra pedido de entrada no ministério da igreja.
func (h *Handler) SolicitarEntrada(w http.ResponseWriter, r *http.Request) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	igrejaID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "igreja inválida", nil)
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

	profile, _, err := h.authService.GetMe(r.Context(), subject)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar conta", nil)
		return
	}

	pendente, err := h.membros.Register(r.Context(), membro.RegisterInput{
		UsuarioID: subject,
		IgrejaID:  igrejaID,
		Nome:      payload.Nome,
		Sobrenome: payload.Sobrenome,
		Email:     profile.Email,
		Telefone:  payload.Telefone,
		Area:      payload.Area,
		FotoURL:   payload.FotoURL,
	})
	if err != nil {
		if errors.Is(err, membro.ErrJaVinculado) {
			WriteError(w, http.StatusConflict, "VALIDATION", "usuário já vinculado a uma igreja", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, pendente)
}

// GetIgreja devolve o perfil da igreja do vínculo.
func (h *Handler) GetIgreja(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	ig, err := h.igrejas.Get(r.Context(), igrejaID)
	if err != nil {
		if errors.Is(err, igreja.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "igreja não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao carregar igreja", nil)
		return
	}

	WriteJSON(w, http.StatusOK, ig)
}

// AtualizarIgreja altera nome/logo (líderes).
func (h *Handler) AtualizarIgreja(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	var payload struct {
		Nome    string  `json:"nome"`
		LogoURL *string `json:"logo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	ig, err := h.igrejas.AtualizarPerfil(r.Context(), igrejaID, payload.Nome, payload.LogoURL)
	if err != nil {
		if errors.Is(err, igreja.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "igreja não encontrada", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusOK, ig)
}
