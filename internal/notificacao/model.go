package notificacao

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("notificação não encontrada")
	ErrTipoInvalid = errors.New("tipo de evento inválido")
)

// Tipos de evento que geram notificação.
const (
	TipoEscalaCriada     = "escala_criada"
	TipoEscalaAlterada   = "escala_alterada"
	TipoEscalaCancelada  = "escala_cancelada"
	TipoMembroPendente   = "membro_pendente"
	TipoMencaoComentario = "mencao_comentario"
)

var tiposValidos = map[string]struct{}{
	TipoEscalaCriada:     {},
	TipoEscalaAlterada:   {},
	TipoEscalaCancelada:  {},
	TipoMembroPendente:   {},
	TipoMencaoComentario: {},
}

// IsValidTipo indica se o tipo de evento é aceito.
func IsValidTipo(tipo string) bool {
	_, ok := tiposValidos[tipo]
	return ok
}

// Notificacao é o registro por destinatário da caixa de entrada.
// As chaves JSON reproduzem o payload consumido pelo app
// (inclusive a duplicidade type/eventType herdada do cliente).
type Notificacao struct {
	ID              string     `json:"id"`
	Tipo            string     `json:"type"`
	EventType       string     `json:"eventType"`
	Titulo          string     `json:"title"`
	Mensagem        string     `json:"message"`
	IgrejaID        uuid.UUID  `json:"igrejaId"`
	RecipientID     uuid.UUID  `json:"recipientId"`
	CriadoPor       uuid.UUID  `json:"criadoPor"`
	EscalaID        *uuid.UUID `json:"escalaId,omitempty"`
	EscalaData      *time.Time `json:"escalaDate,omitempty"`
	ComentarioID    *uuid.UUID `json:"comentarioId,omitempty"`
	ComentarioTexto *string    `json:"comentarioTexto,omitempty"`
	MembroPendente  *uuid.UUID `json:"membroPendenteId,omitempty"`
	SenderNome      string     `json:"senderName"`
	SenderFoto      *string    `json:"senderPhoto,omitempty"`
	Lida            bool       `json:"read"`
	Timestamp       time.Time  `json:"timestamp"`
}

// Evento descreve o fato que dispara uma notificação.
type Evento struct {
	Tipo            string
	IgrejaID        uuid.UUID
	RecipientID     uuid.UUID
	ActorID         uuid.UUID
	EscalaID        *uuid.UUID
	EscalaData      *time.Time
	ComentarioID    *uuid.UUID
	ComentarioTexto string
	MembroPendente  *uuid.UUID
}

// monta título e mensagem a partir do template fixo por tipo.
func renderEvento(ev Evento, senderNome string) (titulo, mensagem string, err error) {
	dataCulto := ""
	if ev.EscalaData != nil {
		dataCulto = ev.EscalaData.Format("02/01/2006")
	}

	switch ev.Tipo {
	case TipoEscalaCriada:
		return "Nova escala", fmt.Sprintf("%s escalou você para o culto de %s", senderNome, dataCulto), nil
	case TipoEscalaAlterada:
		return "Escala atualizada", fmt.Sprintf("%s atualizou a escala do culto de %s", senderNome, dataCulto), nil
	case TipoEscalaCancelada:
		return "Escala cancelada", fmt.Sprintf("%s cancelou a escala do culto de %s", senderNome, dataCulto), nil
	case TipoMembroPendente:
		return "Novo membro", fmt.Sprintf("%s pediu para entrar no ministério e aguarda aprovação", senderNome), nil
	case TipoMencaoComentario:
		return "Você foi mencionado", fmt.Sprintf("%s mencionou você: %q", senderNome, ev.ComentarioTexto), nil
	default:
		return "", "", ErrTipoInvalid
	}
}
