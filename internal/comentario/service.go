package comentario

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/louvorapp/escala/internal/membro"
	"github.com/louvorapp/escala/internal/notificacao"
)

// CommentRepository abstrai a persistência dos comentários.
type CommentRepository interface {
	Create(ctx context.Context, escalaID, autorID uuid.UUID, texto string) (*Comentario, error)
	Get(ctx context.Context, id uuid.UUID) (*Comentario, error)
	ListByEscala(ctx context.Context, escalaID uuid.UUID) ([]Comentario, error)
	UpdateTexto(ctx context.Context, id uuid.UUID, texto string) (*Comentario, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MembroResolver resolve tokens de menção para membros da igreja.
type MembroResolver interface {
	ResolveByNome(ctx context.Context, igrejaID uuid.UUID, nome, sobrenome string) ([]membro.Membro, error)
}

// Notificador é a fatia do despachante usada por este serviço.
type Notificador interface {
	NotificarTodos(ctx context.Context, ev notificacao.Evento, recipients []uuid.UUID) int
	ExcluirPorComentario(ctx context.Context, comentarioID uuid.UUID) error
}

// Service gerencia o mural de comentários das escalas.
type Service struct {
	repo    CommentRepository
	membros MembroResolver
	notify  Notificador
}

// NewService cria nova instância do serviço.
func NewService(repo CommentRepository, membros MembroResolver, notify Notificador) *Service {
	return &Service{repo: repo, membros: membros, notify: notify}
}

// Adicionar grava o comentário e avisa cada membro mencionado no texto,
// exceto o próprio autor. O despacho é melhor esforço.
func (s *Service) Adicionar(ctx context.Context, autor membro.Membro, escalaID uuid.UUID, texto string) (*Comentario, error) {
	texto = strings.TrimSpace(texto)
	if texto == "" {
		return nil, ErrTextoObrigatorio
	}

	created, err := s.repo.Create(ctx, escalaID, autor.ID, texto)
	if err != nil {
		return nil, err
	}

	recipients := s.resolveMencionados(ctx, autor.IgrejaID, created.Texto)
	if len(recipients) > 0 {
		comentarioID := created.ID
		s.notify.NotificarTodos(ctx, notificacao.Evento{
			Tipo:            notificacao.TipoMencaoComentario,
			IgrejaID:        autor.IgrejaID,
			ActorID:         autor.ID,
			EscalaID:        &escalaID,
			ComentarioID:    &comentarioID,
			ComentarioTexto: created.Texto,
		}, recipients)
	}

	return created, nil
}

// Listar devolve os comentários da escala, mais recente primeiro.
func (s *Service) Listar(ctx context.Context, escalaID uuid.UUID) ([]Comentario, error) {
	return s.repo.ListByEscala(ctx, escalaID)
}

// Editar altera o texto. Somente o autor pode editar, e a edição não
// redispara menções: os avisos já enviados continuam valendo.
func (s *Service) Editar(ctx context.Context, editor membro.Membro, comentarioID uuid.UUID, texto string) (*Comentario, error) {
	texto = strings.TrimSpace(texto)
	if texto == "" {
		return nil, ErrTextoObrigatorio
	}

	existing, err := s.repo.Get(ctx, comentarioID)
	if err != nil {
		return nil, err
	}
	if existing.AutorID != editor.ID {
		return nil, ErrSemPermissao
	}

	return s.repo.UpdateTexto(ctx, comentarioID, texto)
}

// Excluir remove o comentário (autor ou líder) e apaga as notificações
// de menção que ele gerou.
func (s *Service) Excluir(ctx context.Context, solicitante membro.Membro, comentarioID uuid.UUID) error {
	existing, err := s.repo.Get(ctx, comentarioID)
	if err != nil {
		return err
	}
	if existing.AutorID != solicitante.ID && !solicitante.IsLider {
		return ErrSemPermissao
	}

	if err := s.repo.Delete(ctx, comentarioID); err != nil {
		return err
	}

	if err := s.notify.ExcluirPorComentario(ctx, comentarioID); err != nil {
		log.Warn().Err(err).
			Str("comentario_id", comentarioID.String()).
			Msg("falha ao limpar notificações do comentário")
	}
	return nil
}

// resolveMencionados transforma os tokens do texto em destinatários.
// Token de dois nomes tenta nome+sobrenome e cai para só o primeiro
// nome quando ninguém casa; primeiro nome ambíguo avisa todos os
// homônimos.
func (s *Service) resolveMencionados(ctx context.Context, igrejaID uuid.UUID, texto string) []uuid.UUID {
	mencoes := ScanMencoes(texto)
	if len(mencoes) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{})
	var recipients []uuid.UUID
	for _, mencao := range mencoes {
		matches, err := s.membros.ResolveByNome(ctx, igrejaID, mencao.Nome, mencao.Sobrenome)
		if err != nil {
			log.Warn().Err(err).
				Str("mencao", mencao.Nome).
				Msg("falha ao resolver menção")
			continue
		}
		if len(matches) == 0 && mencao.Sobrenome != "" {
			matches, err = s.membros.ResolveByNome(ctx, igrejaID, mencao.Nome, "")
			if err != nil {
				continue
			}
		}
		for _, m := range matches {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			recipients = append(recipients, m.ID)
		}
	}
	return recipients
}
