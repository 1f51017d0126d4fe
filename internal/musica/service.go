package musica

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// SongRepository abstrai a persistência do repertório.
type SongRepository interface {
	Create(ctx context.Context, input SaveInput) (*Musica, error)
	Get(ctx context.Context, igrejaID, musicaID uuid.UUID) (*Musica, error)
	List(ctx context.Context, igrejaID uuid.UUID) ([]Musica, error)
	Update(ctx context.Context, igrejaID, musicaID uuid.UUID, input SaveInput) (*Musica, error)
	Delete(ctx context.Context, igrejaID, musicaID uuid.UUID) error
}

// Service reúne regras do repertório.
type Service struct {
	repo SongRepository
}

// NewService cria nova instância do serviço.
func NewService(repo SongRepository) *Service {
	return &Service{repo: repo}
}

// Create adiciona música ao repertório.
func (s *Service) Create(ctx context.Context, input SaveInput) (*Musica, error) {
	if strings.TrimSpace(input.Nome) == "" {
		return nil, errors.New("nome da música obrigatório")
	}
	return s.repo.Create(ctx, input)
}

// Get busca uma música.
func (s *Service) Get(ctx context.Context, igrejaID, musicaID uuid.UUID) (*Musica, error) {
	return s.repo.Get(ctx, igrejaID, musicaID)
}

// List devolve o repertório da igreja.
func (s *Service) List(ctx context.Context, igrejaID uuid.UUID) ([]Musica, error) {
	return s.repo.List(ctx, igrejaID)
}

// Update altera uma música do repertório.
func (s *Service) Update(ctx context.Context, igrejaID, musicaID uuid.UUID, input SaveInput) (*Musica, error) {
	if strings.TrimSpace(input.Nome) == "" {
		return nil, errors.New("nome da música obrigatório")
	}
	return s.repo.Update(ctx, igrejaID, musicaID, input)
}

// Delete remove música do repertório.
func (s *Service) Delete(ctx context.Context, igrejaID, musicaID uuid.UUID) error {
	return s.repo.Delete(ctx, igrejaID, musicaID)
}
