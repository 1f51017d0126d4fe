package membro

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/louvorapp/escala/internal/notificacao"
)

type stubMembros struct {
	membros map[uuid.UUID]Membro
	lideres []uuid.UUID
	deleted []uuid.UUID
}

func newStubMembros() *stubMembros {
	return &stubMembros{membros: make(map[uuid.UUID]Membro)}
}

func (s *stubMembros) Get(ctx context.Context, igrejaID, membroID uuid.UUID) (*Membro, error) {
	m, ok := s.membros[membroID]
	if !ok || m.IgrejaID != igrejaID {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *stubMembros) List(ctx context.Context, igrejaID uuid.UUID, aprovado *bool) ([]Membro, error) {
	var out []Membro
	for _, m := range s.membros {
		if m.IgrejaID != igrejaID {
			continue
		}
		if aprovado != nil && m.Aprovado != *aprovado {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *stubMembros) ListLideres(ctx context.Context, igrejaID uuid.UUID) ([]uuid.UUID, error) {
	return s.lideres, nil
}

func (s *stubMembros) Create(ctx context.Context, input RegisterInput) (*Membro, error) {
	m := Membro{
		ID:       input.UsuarioID,
		IgrejaID: input.IgrejaID,
		Nome:     input.Nome,
		Email:    input.Email,
		CriadoEm: time.Now().UTC(),
	}
	s.membros[m.ID] = m
	return &m, nil
}

func (s *stubMembros) SetAprovado(ctx context.Context, igrejaID, membroID uuid.UUID, aprovado bool) (*Membro, error) {
	m, ok := s.membros[membroID]
	if !ok {
		return nil, ErrNotFound
	}
	m.Aprovado = aprovado
	s.membros[membroID] = m
	return &m, nil
}

func (s *stubMembros) SetMinistro(ctx context.Context, igrejaID, membroID uuid.UUID, ministro bool) (*Membro, error) {
	m, ok := s.membros[membroID]
	if !ok {
		return nil, ErrNotFound
	}
	m.IsMinistro = ministro
	s.membros[membroID] = m
	return &m, nil
}

func (s *stubMembros) UpdatePerfil(ctx context.Context, igrejaID, membroID uuid.UUID, nome, sobrenome string, telefone, area, fotoURL *string) (*Membro, error) {
	m, ok := s.membros[membroID]
	if !ok {
		return nil, ErrNotFound
	}
	m.Nome = nome
	m.Sobrenome = sobrenome
	s.membros[membroID] = m
	return &m, nil
}

func (s *stubMembros) Delete(ctx context.Context, igrejaID, membroID uuid.UUID) error {
	if _, ok := s.membros[membroID]; !ok {
		return ErrNotFound
	}
	delete(s.membros, membroID)
	s.deleted = append(s.deleted, membroID)
	return nil
}

type stubAvisos struct {
	eventos    []notificacao.Evento
	recipients [][]uuid.UUID
	cleared    []uuid.UUID
}

func (s *stubAvisos) NotificarTodos(ctx context.Context, ev notificacao.Evento, recipients []uuid.UUID) int {
	s.eventos = append(s.eventos, ev)
	s.recipients = append(s.recipients, recipients)
	return len(recipients)
}

func (s *stubAvisos) ExcluirPorMembroPendente(ctx context.Context, membroID uuid.UUID) error {
	s.cleared = append(s.cleared, membroID)
	return nil
}

func TestRegisterAvisaLideres(t *testing.T) {
	repo := newStubMembros()
	repo.lideres = []uuid.UUID{uuid.New(), uuid.New()}
	avisos := &stubAvisos{}
	svc := NewService(repo, avisos)

	igrejaID := uuid.New()
	m, err := svc.Register(context.Background(), RegisterInput{
		UsuarioID: uuid.New(),
		IgrejaID:  igrejaID,
		Nome:      "Joana",
		Email:     "joana@example.com",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if m.Aprovado {
		t.Fatal("cadastro nasce pendente")
	}

	if len(avisos.eventos) != 1 {
		t.Fatalf("esperava 1 despacho, houve %d", len(avisos.eventos))
	}
	ev := avisos.eventos[0]
	if ev.Tipo != notificacao.TipoMembroPendente {
		t.Errorf("tipo inesperado: %s", ev.Tipo)
	}
	if ev.MembroPendente == nil || *ev.MembroPendente != m.ID {
		t.Error("evento deve referenciar o membro pendente")
	}
	if len(avisos.recipients[0]) != len(repo.lideres) {
		t.Fatalf("todos os líderes devem ser avisados: %v", avisos.recipients[0])
	}
}

func TestRegisterValidaEntrada(t *testing.T) {
	svc := NewService(newStubMembros(), &stubAvisos{})

	if _, err := svc.Register(context.Background(), RegisterInput{
		UsuarioID: uuid.New(),
		IgrejaID:  uuid.New(),
		Email:     "a@example.com",
	}); err == nil {
		t.Fatal("nome vazio deveria falhar")
	}

	if _, err := svc.Register(context.Background(), RegisterInput{
		UsuarioID: uuid.New(),
		IgrejaID:  uuid.New(),
		Nome:      "Joana",
		Email:     "sem-arroba",
	}); err == nil {
		t.Fatal("email inválido deveria falhar")
	}
}

func TestSetAprovacaoLimpaAvisosAoAprovar(t *testing.T) {
	repo := newStubMembros()
	avisos := &stubAvisos{}
	svc := NewService(repo, avisos)

	igrejaID := uuid.New()
	pendente, _ := repo.Create(context.Background(), RegisterInput{
		UsuarioID: uuid.New(), IgrejaID: igrejaID, Nome: "Joana", Email: "joana@example.com",
	})

	aprovado, err := svc.SetAprovacao(context.Background(), igrejaID, pendente.ID, true)
	if err != nil {
		t.Fatalf("aprovar: %v", err)
	}
	if !aprovado.Aprovado {
		t.Fatal("membro deveria estar aprovado")
	}
	if len(avisos.cleared) != 1 || avisos.cleared[0] != pendente.ID {
		t.Fatal("aprovação deve limpar os avisos de pendência")
	}

	// revogação não mexe nos avisos
	if _, err := svc.SetAprovacao(context.Background(), igrejaID, pendente.ID, false); err != nil {
		t.Fatalf("revogar: %v", err)
	}
	if len(avisos.cleared) != 1 {
		t.Fatal("revogação não deve limpar avisos novamente")
	}
}

func TestRecusarPendenteNaoApagaAprovado(t *testing.T) {
	repo := newStubMembros()
	avisos := &stubAvisos{}
	svc := NewService(repo, avisos)

	igrejaID := uuid.New()
	m, _ := repo.Create(context.Background(), RegisterInput{
		UsuarioID: uuid.New(), IgrejaID: igrejaID, Nome: "Joana", Email: "joana@example.com",
	})
	if _, err := repo.SetAprovado(context.Background(), igrejaID, m.ID, true); err != nil {
		t.Fatalf("set aprovado: %v", err)
	}

	if err := svc.RecusarPendente(context.Background(), igrejaID, m.ID); err == nil {
		t.Fatal("recusa de membro aprovado deveria falhar")
	}
	if len(repo.deleted) != 0 {
		t.Fatal("membro aprovado não pode ser apagado pela recusa")
	}
}

func TestRecusarPendenteApagaELimpa(t *testing.T) {
	repo := newStubMembros()
	avisos := &stubAvisos{}
	svc := NewService(repo, avisos)

	igrejaID := uuid.New()
	m, _ := repo.Create(context.Background(), RegisterInput{
		UsuarioID: uuid.New(), IgrejaID: igrejaID, Nome: "Joana", Email: "joana@example.com",
	})

	if err := svc.RecusarPendente(context.Background(), igrejaID, m.ID); err != nil {
		t.Fatalf("recusar: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != m.ID {
		t.Fatal("cadastro recusado deve ser removido")
	}
	if len(avisos.cleared) != 1 || avisos.cleared[0] != m.ID {
		t.Fatal("recusa deve limpar os avisos de pendência")
	}

	if _, err := svc.Get(context.Background(), igrejaID, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("membro recusado não deve existir, veio %v", err)
	}
}
