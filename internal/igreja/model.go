package igreja

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("igreja não encontrada")
	// ErrSemVinculo indica usuário sem igreja: o chamador deve tratar
	// como "precisa de onboarding", não como falha.
	ErrSemVinculo = errors.New("usuário sem vínculo com igreja")
	// ErrVinculoExistente impede um usuário de pertencer a duas igrejas.
	ErrVinculoExistente = errors.New("usuário já vinculado a uma igreja")
)

// Igreja representa a organização (tenant) dona de membros e escalas.
type Igreja struct {
	ID              uuid.UUID `json:"id"`
	Nome            string    `json:"nome"`
	LogoURL         *string   `json:"logoUrl,omitempty"`
	LiderPrincipal  uuid.UUID `json:"liderPrincipal"`
	AssinaturaAtiva bool      `json:"assinaturaAtiva"`
	CriadoEm        time.Time `json:"criadoEm"`
}

// CreateInput agrupa campos da fundação da igreja.
type CreateInput struct {
	Nome              string
	LogoURL           *string
	FundadorID        uuid.UUID
	FundadorNome      string
	FundadorSobrenome string
	FundadorEmail     string
	FundadorFoto      *string
	FundadorTelefone  *string
	FundadorArea      *string
}
