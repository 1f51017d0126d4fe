package membro

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/louvorapp/escala/internal/notificacao"
	"github.com/louvorapp/escala/internal/util"
)

// MembroRepository abstrai a persistência de membros.
type MembroRepository interface {
	Get(ctx context.Context, igrejaID, membroID uuid.UUID) (*Membro, error)
	List(ctx context.Context, igrejaID uuid.UUID, aprovado *bool) ([]Membro, error)
	ListLideres(ctx context.Context, igrejaID uuid.UUID) ([]uuid.UUID, error)
	Create(ctx context.Context, input RegisterInput) (*Membro, error)
	SetAprovado(ctx context.Context, igrejaID, membroID uuid.UUID, aprovado bool) (*Membro, error)
	SetMinistro(ctx context.Context, igrejaID, membroID uuid.UUID, ministro bool) (*Membro, error)
	UpdatePerfil(ctx context.Context, igrejaID, membroID uuid.UUID, nome, sobrenome string, telefone, area, fotoURL *string) (*Membro, error)
	Delete(ctx context.Context, igrejaID, membroID uuid.UUID) error
}

// Notificador é a fatia do despachante usada por este serviço.
type Notificador interface {
	NotificarTodos(ctx context.Context, ev notificacao.Evento, recipients []uuid.UUID) int
	ExcluirPorMembroPendente(ctx context.Context, membroID uuid.UUID) error
}

// Service reúne cadastro e aprovação de membros.
type Service struct {
	repo   MembroRepository
	notify Notificador
}

// NewService cria nova instância do serviço.
func NewService(repo MembroRepository, notify Notificador) *Service {
	return &Service{repo: repo, notify: notify}
}

// Register cadastra membro pendente e avisa os líderes da igreja.
// O aviso é melhor esforço: falha não desfaz o cadastro.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Membro, error) {
	input.Nome = strings.TrimSpace(input.Nome)
	input.Email = strings.TrimSpace(input.Email)
	if input.Nome == "" {
		return nil, errors.New("nome obrigatório")
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if input.IgrejaID == uuid.Nil {
		return nil, errors.New("igreja obrigatória")
	}

	m, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	lideres, err := s.repo.ListLideres(ctx, input.IgrejaID)
	if err != nil {
		log.Error().Err(err).Str("igreja", input.IgrejaID.String()).
			Msg("não foi possível listar líderes para aviso de pendência")
		return m, nil
	}

	pendente := m.ID
	s.notify.NotificarTodos(ctx, notificacao.Evento{
		Tipo:           notificacao.TipoMembroPendente,
		IgrejaID:       input.IgrejaID,
		ActorID:        m.ID,
		MembroPendente: &pendente,
	}, lideres)

	return m, nil
}

// Get carrega um membro.
func (s *Service) Get(ctx context.Context, igrejaID, membroID uuid.UUID) (*Membro, error) {
	return s.repo.Get(ctx, igrejaID, membroID)
}

// List lista membros, com filtro opcional de aprovação.
func (s *Service) List(ctx context.Context, igrejaID uuid.UUID, aprovado *bool) ([]Membro, error) {
	return s.repo.List(ctx, igrejaID, aprovado)
}

// SetAprovacao liga/desliga o acesso sem apagar o histórico do membro
// (revogação, não recusa de cadastro). Ao aprovar, limpa os avisos de
// pendência das caixas dos líderes.
func (s *Service) SetAprovacao(ctx context.Context, igrejaID, membroID uuid.UUID, aprovado bool) (*Membro, error) {
	m, err := s.repo.SetAprovado(ctx, igrejaID, membroID, aprovado)
	if err != nil {
		return nil, err
	}

	if aprovado {
		if err := s.notify.ExcluirPorMembroPendente(ctx, membroID); err != nil {
			log.Warn().Err(err).Str("membro", membroID.String()).
				Msg("não foi possível limpar avisos de pendência")
		}
	}
	return m, nil
}

// SetPodeEscalar liga/desliga a permissão de criar escalas.
func (s *Service) SetPodeEscalar(ctx context.Context, igrejaID, membroID uuid.UUID, pode bool) (*Membro, error) {
	return s.repo.SetMinistro(ctx, igrejaID, membroID, pode)
}

// RecusarPendente apaga de vez o cadastro recusado e retira os avisos
// de pendência. Diferente de SetAprovacao(false), que só revoga acesso.
func (s *Service) RecusarPendente(ctx context.Context, igrejaID, membroID uuid.UUID) error {
	m, err := s.repo.Get(ctx, igrejaID, membroID)
	if err != nil {
		return err
	}
	if m.Aprovado {
		return errors.New("membro já aprovado: use revogação de acesso")
	}

	if err := s.repo.Delete(ctx, igrejaID, membroID); err != nil {
		return err
	}

	if err := s.notify.ExcluirPorMembroPendente(ctx, membroID); err != nil {
		log.Warn().Err(err).Str("membro", membroID.String()).
			Msg("não foi possível limpar avisos de pendência")
	}
	return nil
}

// AtualizarPerfil altera dados de exibição do próprio membro.
func (s *Service) AtualizarPerfil(ctx context.Context, igrejaID, membroID uuid.UUID, nome, sobrenome string, telefone, area, fotoURL *string) (*Membro, error) {
	if strings.TrimSpace(nome) == "" {
		return nil, errors.New("nome obrigatório")
	}
	return s.repo.UpdatePerfil(ctx, igrejaID, membroID, nome, sobrenome, telefone, area, fotoURL)
}
