package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/louvorapp/escala/internal/escala"
	httpmiddleware "github.com/louvorapp/escala/internal/http/middleware"
	"github.com/louvorapp/escala/internal/util"
)

type escalaPayload struct {
	DataCulto  string         `json:"dataCulto"`
	HoraCulto  *string        `json:"horaCulto"`
	DataEnsaio *string        `json:"dataEnsaio"`
	HoraEnsaio *string        `json:"horaEnsaio"`
	Membros    []membroEscala `json:"membros"`
	Musicas    []musicaEscala `json:"musicas"`
}

type membroEscala struct {
	MembroID uuid.UUID `json:"membroId"`
	Funcoes  []string  `json:"funcoes"`
}

type musicaEscala struct {
	MusicaID     *uuid.UUID  `json:"musicaId"`
	Nome         string      `json:"nome"`
	Tom          *string     `json:"tom"`
	CifraURL     *string     `json:"cifra"`
	VideoURL     *string     `json:"video"`
	Ministrantes []uuid.UUID `json:"ministrantes"`
}

func (p escalaPayload) toSaveInput() (escala.SaveInput, error) {
	var input escala.SaveInput

	if p.DataCulto != "" {
		dataCulto, err := time.Parse("2006-01-02", p.DataCulto)
		if err != nil {
			return input, errors.New("dataCulto inválida: use AAAA-MM-DD")
		}
		input.DataCulto = dataCulto
	}
	if p.DataEnsaio != nil && *p.DataEnsaio != "" {
		dataEnsaio, err := time.Parse("2006-01-02", *p.DataEnsaio)
		if err != nil {
			return input, errors.New("dataEnsaio inválida: use AAAA-MM-DD")
		}
		input.DataEnsaio = &dataEnsaio
	}

	input.HoraCulto = p.HoraCulto
	input.HoraEnsaio = p.HoraEnsaio

	for _, m := range p.Membros {
		input.Membros = append(input.Membros, escala.MembroEscalado{
			MembroID: m.MembroID,
			Funcoes:  m.Funcoes,
		})
	}
	for _, m := range p.Musicas {
		input.Musicas = append(input.Musicas, escala.MusicaEscalada{
			MusicaID:     m.MusicaID,
			Nome:         m.Nome,
			Tom:          m.Tom,
			CifraURL:     m.CifraURL,
			VideoURL:     m.VideoURL,
			Ministrantes: m.Ministrantes,
		})
	}

	return input, nil
}

// CriarEscala monta escala nova (ministros e líderes).
func (h *Handler) CriarEscala(w http.ResponseWriter, r *http.Request) {
	atual, err := h.currentMembro(r)
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	var payload escalaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	input, err := payload.toSaveInput()
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	created, err := h.escalas.Criar(r.Context(), *atual, input)
	if err != nil {
		h.handleEscalaError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, created)
}

// ListEscalas devolve as escalas do usuário: ?periodo=proximas|anteriores.
func (h *Handler) ListEscalas(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "subject inválido", nil)
		return
	}

	periodo := escala.PeriodoProximas
	if raw := r.URL.Query().Get("periodo"); raw != "" {
		switch escala.Periodo(raw) {
		case escala.PeriodoProximas, escala.PeriodoAnteriores:
			periodo = escala.Periodo(raw)
		default:
			WriteError(w, http.StatusBadRequest, "VALIDATION", "periodo deve ser proximas ou anteriores", nil)
			return
		}
	}

	escalas, err := h.escalas.ListarParaUsuario(r.Context(), igrejaID, subject, periodo, util.Now())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao listar escalas", nil)
		return
	}

	WriteJSON(w, http.StatusOK, escalas)
}

// GetEscala carrega uma escala completa.
func (h *Handler) GetEscala(w http.ResponseWriter, r *http.Request) {
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem vínculo com igreja", nil)
		return
	}

	escalaID, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	e, err := h.escalas.Get(r.Context(), igrejaID, escalaID)
	if err != nil {
		h.handleEscalaError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, e)
}

// AtualizarEscala sobrescreve a escala (criador ou líder).
func (h *Handler) AtualizarEscala(w http.ResponseWriter, r *http.Request) {
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

	var payload escalaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	input, err := payload.toSaveInput()
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	updated, err := h.escalas.Atualizar(r.Context(), *atual, escalaID, input)
	if err != nil {
		h.handleEscalaError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, updated)
}

// ExcluirEscala remove a escala (criador ou líder).
func (h *Handler) ExcluirEscala(w http.ResponseWriter, r *http.Request) {
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

	if err := h.escalas.Excluir(r.Context(), *atual, escalaID); err != nil {
		h.handleEscalaError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handler) handleEscalaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, escala.ErrNotFound):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "escala não encontrada", nil)
	case errors.Is(err, escala.ErrSemPermissao):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "sem permissão sobre esta escala", nil)
	case errors.Is(err, escala.ErrDataObrigatoria), errors.Is(err, escala.ErrFuncaoInvalida):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao processar escala", nil)
	}
}
