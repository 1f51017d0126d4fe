package igreja

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/louvorapp/escala/internal/membro"
)

// Directory abstrai o repositório para o serviço (e para stubs em teste).
type Directory interface {
	Get(ctx context.Context, id uuid.UUID) (*Igreja, error)
	UpdatePerfil(ctx context.Context, id uuid.UUID, nome string, logoURL *string) (*Igreja, error)
	CriarComFundador(ctx context.Context, input CreateInput) (*Igreja, *membro.Membro, error)
	ResolveMembership(ctx context.Context, usuarioID uuid.UUID) (uuid.UUID, *membro.Membro, error)
}

// Service reúne as regras da igreja e a resolução de vínculo.
type Service struct {
	repo Directory
}

// NewService cria nova instância do serviço.
func NewService(repo Directory) *Service {
	return &Service{repo: repo}
}

// Fundar cria a igreja com o fundador como líder auto-aprovado.
func (s *Service) Fundar(ctx context.Context, input CreateInput) (*Igreja, *membro.Membro, error) {
	input.Nome = strings.TrimSpace(input.Nome)
	if input.Nome == "" {
		return nil, nil, errors.New("nome da igreja obrigatório")
	}
	if input.FundadorID == uuid.Nil {
		return nil, nil, errors.New("fundador obrigatório")
	}
	if strings.TrimSpace(input.FundadorNome) == "" {
		return nil, nil, errors.New("nome do fundador obrigatório")
	}
	return s.repo.CriarComFundador(ctx, input)
}

// Get carrega a igreja.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Igreja, error) {
	return s.repo.Get(ctx, id)
}

// AtualizarPerfil altera nome/logo; restrito a líderes no handler.
func (s *Service) AtualizarPerfil(ctx context.Context, id uuid.UUID, nome string, logoURL *string) (*Igreja, error) {
	if strings.TrimSpace(nome) == "" {
		return nil, errors.New("nome da igreja obrigatório")
	}
	return s.repo.UpdatePerfil(ctx, id, nome, logoURL)
}

// Resolve devolve o vínculo do usuário autenticado. ErrSemVinculo não é
// falha dura: indica fluxo de onboarding.
func (s *Service) Resolve(ctx context.Context, usuarioID uuid.UUID) (uuid.UUID, *membro.Membro, error) {
	return s.repo.ResolveMembership(ctx, usuarioID)
}
