package membro

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("membro não encontrado")
	// ErrJaVinculado impede cadastro duplo do mesmo usuário.
	ErrJaVinculado = errors.New("usuário já vinculado a uma igreja")
)

// Membro representa o vínculo de um usuário com a igreja.
// O id é o mesmo da conta de autenticação.
type Membro struct {
	ID         uuid.UUID `json:"id"`
	IgrejaID   uuid.UUID `json:"igrejaId"`
	Nome       string    `json:"nome"`
	Sobrenome  string    `json:"sobrenome"`
	Email      string    `json:"email"`
	Telefone   *string   `json:"telefone,omitempty"`
	Area       *string   `json:"area,omitempty"`
	Aprovado   bool      `json:"aprovado"`
	IsLider    bool      `json:"isLider"`
	IsMinistro bool      `json:"isMinisterForCults"`
	FotoURL    *string   `json:"foto,omitempty"`
	CriadoEm   time.Time `json:"criadoEm"`
}

// NomeCompleto devolve "Nome Sobrenome" aparado.
func (m Membro) NomeCompleto() string {
	return strings.TrimSpace(m.Nome + " " + m.Sobrenome)
}

// RegisterInput agrupa campos do pedido de entrada no ministério.
type RegisterInput struct {
	UsuarioID uuid.UUID
	IgrejaID  uuid.UUID
	Nome      string
	Sobrenome string
	Email     string
	Telefone  *string
	Area      *string
	FotoURL   *string
}
