package escala

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/louvorapp/escala/internal/membro"
	"github.com/louvorapp/escala/internal/notificacao"
)

// RosterRepository abstrai a persistência do agregado.
type RosterRepository interface {
	Create(ctx context.Context, e Escala) (*Escala, error)
	Get(ctx context.Context, igrejaID, escalaID uuid.UUID) (*Escala, error)
	Update(ctx context.Context, e Escala) (*Escala, error)
	Delete(ctx context.Context, igrejaID, escalaID uuid.UUID) error
	ListForUser(ctx context.Context, igrejaID, usuarioID uuid.UUID) ([]Escala, error)
}

// Notificador é a fatia do despachante usada por este serviço.
type Notificador interface {
	NotificarTodos(ctx context.Context, ev notificacao.Evento, recipients []uuid.UUID) int
}

// Service monta, edita e consulta escalas.
type Service struct {
	repo   RosterRepository
	notify Notificador
}

// NewService cria nova instância do serviço.
func NewService(repo RosterRepository, notify Notificador) *Service {
	return &Service{repo: repo, notify: notify}
}

// Criar monta a escala e avisa cada escalado (exceto o criador).
// O despacho é melhor esforço e nunca desfaz a escrita principal.
func (s *Service) Criar(ctx context.Context, criador membro.Membro, input SaveInput) (*Escala, error) {
	if !criador.IsMinistro && !criador.IsLider {
		return nil, ErrSemPermissao
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, Escala{
		IgrejaID:   criador.IgrejaID,
		DataCulto:  input.DataCulto,
		HoraCulto:  input.HoraCulto,
		DataEnsaio: input.DataEnsaio,
		HoraEnsaio: input.HoraEnsaio,
		Membros:    input.Membros,
		Musicas:    input.Musicas,
		CriadoPor:  criador.ID,
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, notificacao.TipoEscalaCriada, criador, created)
	return created, nil
}

// Atualizar sobrescreve a escala, carimba editado-por/em e avisa os
// escalados atuais da mudança.
func (s *Service) Atualizar(ctx context.Context, editor membro.Membro, escalaID uuid.UUID, input SaveInput) (*Escala, error) {
	existing, err := s.repo.Get(ctx, editor.IgrejaID, escalaID)
	if err != nil {
		return nil, err
	}
	if !s.podeGerenciar(editor, existing) {
		return nil, ErrSemPermissao
	}
	if err := validateInput(&input); err != nil {
		return nil, err
	}

	editorID := editor.ID
	updated, err := s.repo.Update(ctx, Escala{
		ID:         escalaID,
		IgrejaID:   editor.IgrejaID,
		DataCulto:  input.DataCulto,
		HoraCulto:  input.HoraCulto,
		DataEnsaio: input.DataEnsaio,
		HoraEnsaio: input.HoraEnsaio,
		Membros:    input.Membros,
		Musicas:    input.Musicas,
		EditadoPor: &editorID,
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, notificacao.TipoEscalaAlterada, editor, updated)
	return updated, nil
}

// Excluir apaga a escala (criador ou líder) e avisa os escalados do
// cancelamento antes que as linhas desapareçam.
func (s *Service) Excluir(ctx context.Context, solicitante membro.Membro, escalaID uuid.UUID) error {
	existing, err := s.repo.Get(ctx, solicitante.IgrejaID, escalaID)
	if err != nil {
		return err
	}
	if !s.podeGerenciar(solicitante, existing) {
		return ErrSemPermissao
	}

	if err := s.repo.Delete(ctx, solicitante.IgrejaID, escalaID); err != nil {
		return err
	}

	s.dispatch(ctx, notificacao.TipoEscalaCancelada, solicitante, existing)
	return nil
}

// Get carrega uma escala da igreja.
func (s *Service) Get(ctx context.Context, igrejaID, escalaID uuid.UUID) (*Escala, error) {
	return s.repo.Get(ctx, igrejaID, escalaID)
}

// ListarParaUsuario devolve a partição pedida das escalas em que o
// usuário é criador ou escalado. As duas partições são exaustivas e
// disjuntas em relação a "hoje".
func (s *Service) ListarParaUsuario(ctx context.Context, igrejaID, usuarioID uuid.UUID, periodo Periodo, agora time.Time) ([]Escala, error) {
	todas, err := s.repo.ListForUser(ctx, igrejaID, usuarioID)
	if err != nil {
		return nil, err
	}

	hoje := agora.Truncate(24 * time.Hour)

	var result []Escala
	switch periodo {
	case PeriodoAnteriores:
		for _, e := range todas {
			if e.DataCulto.Before(hoje) {
				result = append(result, e)
			}
		}
		// mais recente primeiro; a ordem vinda do repositório é
		// ascendente e estável
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	default:
		for _, e := range todas {
			if !e.DataCulto.Before(hoje) {
				result = append(result, e)
			}
		}
	}

	return result, nil
}

func (s *Service) podeGerenciar(m membro.Membro, e *Escala) bool {
	return m.IsLider || e.CriadoPor == m.ID
}

func (s *Service) dispatch(ctx context.Context, tipo string, actor membro.Membro, e *Escala) {
	recipients := e.Escalados()
	if len(recipients) == 0 {
		return
	}

	escalaID := e.ID
	data := e.DataCulto
	s.notify.NotificarTodos(ctx, notificacao.Evento{
		Tipo:       tipo,
		IgrejaID:   e.IgrejaID,
		ActorID:    actor.ID,
		EscalaID:   &escalaID,
		EscalaData: &data,
	}, recipients)
}

func validateInput(input *SaveInput) error {
	if input.DataCulto.IsZero() {
		return ErrDataObrigatoria
	}

	seen := make(map[uuid.UUID]struct{}, len(input.Membros))
	deduped := make([]MembroEscalado, 0, len(input.Membros))
	for _, m := range input.Membros {
		if _, dup := seen[m.MembroID]; dup {
			continue
		}
		seen[m.MembroID] = struct{}{}
		for j, funcao := range m.Funcoes {
			funcao = strings.TrimSpace(funcao)
			if !IsValidFuncao(funcao) {
				return ErrFuncaoInvalida
			}
			m.Funcoes[j] = funcao
		}
		deduped = append(deduped, m)
	}
	input.Membros = deduped

	for i := range input.Musicas {
		input.Musicas[i].Nome = strings.TrimSpace(input.Musicas[i].Nome)
	}
	return nil
}
