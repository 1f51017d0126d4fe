package musica

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("música não encontrada")

// Musica representa uma música do repertório da igreja. Escalas copiam
// os campos por valor: editar a música depois não altera escalas antigas.
type Musica struct {
	ID           uuid.UUID   `json:"id"`
	IgrejaID     uuid.UUID   `json:"igrejaId"`
	Nome         string      `json:"nome"`
	Artista      *string     `json:"artista,omitempty"`
	CifraURL     *string     `json:"cifra,omitempty"`
	VideoURL     *string     `json:"video,omitempty"`
	Tom          *string     `json:"tom,omitempty"`
	Ministrantes []uuid.UUID `json:"ministrantes"`
	CriadoEm     time.Time   `json:"criadoEm"`
}

// SaveInput agrupa campos de criação/edição.
type SaveInput struct {
	IgrejaID     uuid.UUID
	Nome         string
	Artista      *string
	CifraURL     *string
	VideoURL     *string
	Tom          *string
	Ministrantes []uuid.UUID
}
