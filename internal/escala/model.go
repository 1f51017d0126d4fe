package escala

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("escala não encontrada")
	// ErrDataObrigatoria rejeita escala sem data de culto.
	ErrDataObrigatoria = errors.New("data do culto obrigatória")
	ErrSemPermissao    = errors.New("sem permissão para esta escala")
	ErrFuncaoInvalida  = errors.New("função inválida")
)

// Vocabulário fixo de funções na escala.
const (
	FuncaoMinistro     = "Ministro"
	FuncaoBackVocal    = "Back Vocal"
	FuncaoTeclado      = "Teclado"
	FuncaoGuitarra     = "Guitarra"
	FuncaoViolao       = "Violão"
	FuncaoBaixo        = "Baixo"
	FuncaoBateria      = "Bateria"
	FuncaoApoioTecnico = "Apoio Técnico"
)

var funcoesValidas = map[string]struct{}{
	FuncaoMinistro:     {},
	FuncaoBackVocal:    {},
	FuncaoTeclado:      {},
	FuncaoGuitarra:     {},
	FuncaoViolao:       {},
	FuncaoBaixo:        {},
	FuncaoBateria:      {},
	FuncaoApoioTecnico: {},
}

// IsValidFuncao indica se a função pertence ao vocabulário.
func IsValidFuncao(funcao string) bool {
	_, ok := funcoesValidas[strings.TrimSpace(funcao)]
	return ok
}

// MembroEscalado vincula um membro à escala com suas funções.
type MembroEscalado struct {
	MembroID uuid.UUID `json:"membroId"`
	Funcoes  []string  `json:"funcoes"`
}

// MusicaEscalada carrega os campos da música copiados por valor no
// momento da montagem; ministrantes são apenas ids de membros.
type MusicaEscalada struct {
	MusicaID     *uuid.UUID  `json:"musicaId,omitempty"`
	Nome         string      `json:"nome"`
	Tom          *string     `json:"tom,omitempty"`
	CifraURL     *string     `json:"cifra,omitempty"`
	VideoURL     *string     `json:"video,omitempty"`
	Ministrantes []uuid.UUID `json:"ministrantes"`
}

// Escala é o agregado de um culto: data, equipe e repertório.
type Escala struct {
	ID         uuid.UUID        `json:"id"`
	IgrejaID   uuid.UUID        `json:"igrejaId"`
	DataCulto  time.Time        `json:"dataCulto"`
	HoraCulto  *string          `json:"horaCulto,omitempty"`
	DataEnsaio *time.Time       `json:"dataEnsaio,omitempty"`
	HoraEnsaio *string          `json:"horaEnsaio,omitempty"`
	Membros    []MembroEscalado `json:"membros"`
	Musicas    []MusicaEscalada `json:"musicas"`
	CriadoPor  uuid.UUID        `json:"criadoPor"`
	CriadoEm   time.Time        `json:"criadoEm"`
	EditadoPor *uuid.UUID       `json:"editadoPor,omitempty"`
	EditadoEm  *time.Time       `json:"editadoEm,omitempty"`
}

// Escalados devolve os ids dos membros escalados.
func (e Escala) Escalados() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.Membros))
	for _, m := range e.Membros {
		ids = append(ids, m.MembroID)
	}
	return ids
}

// SaveInput agrupa os campos de criação/edição da escala.
type SaveInput struct {
	DataCulto  time.Time
	HoraCulto  *string
	DataEnsaio *time.Time
	HoraEnsaio *string
	Membros    []MembroEscalado
	Musicas    []MusicaEscalada
}

// Periodo seleciona a partição da listagem.
type Periodo string

const (
	// PeriodoProximas: dataCulto >= hoje, ascendente.
	PeriodoProximas Periodo = "proximas"
	// PeriodoAnteriores: dataCulto < hoje, descendente.
	PeriodoAnteriores Periodo = "anteriores"
)
