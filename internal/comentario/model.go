package comentario

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("comentário não encontrado")
	ErrSemPermissao     = errors.New("sem permissão sobre este comentário")
	ErrTextoObrigatorio = errors.New("texto do comentário é obrigatório")
)

// Comentario representa uma mensagem no mural da escala.
type Comentario struct {
	ID       uuid.UUID `json:"id"`
	EscalaID uuid.UUID `json:"escalaId"`
	AutorID  uuid.UUID `json:"autorId"`
	Texto    string    `json:"texto"`
	CriadoEm time.Time `json:"criadoEm"`
}
