package igreja

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/louvorapp/escala/internal/membro"
)

type stubDirectory struct {
	igrejas  map[uuid.UUID]Igreja
	vinculos map[uuid.UUID]membro.Membro
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		igrejas:  make(map[uuid.UUID]Igreja),
		vinculos: make(map[uuid.UUID]membro.Membro),
	}
}

func (s *stubDirectory) Get(ctx context.Context, id uuid.UUID) (*Igreja, error) {
	ig, ok := s.igrejas[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ig, nil
}

func (s *stubDirectory) UpdatePerfil(ctx context.Context, id uuid.UUID, nome string, logoURL *string) (*Igreja, error) {
	ig, ok := s.igrejas[id]
	if !ok {
		return nil, ErrNotFound
	}
	ig.Nome = nome
	ig.LogoURL = logoURL
	s.igrejas[id] = ig
	return &ig, nil
}

func (s *stubDirectory) CriarComFundador(ctx context.Context, input CreateInput) (*Igreja, *membro.Membro, error) {
	if _, ok := s.vinculos[input.FundadorID]; ok {
		return nil, nil, ErrVinculoExistente
	}
	ig := Igreja{
		ID:             uuid.New(),
		Nome:           input.Nome,
		LogoURL:        input.LogoURL,
		LiderPrincipal: input.FundadorID,
	}
	fundador := membro.Membro{
		ID:         input.FundadorID,
		IgrejaID:   ig.ID,
		Nome:       input.FundadorNome,
		Sobrenome:  input.FundadorSobrenome,
		Email:      input.FundadorEmail,
		Aprovado:   true,
		IsLider:    true,
		IsMinistro: true,
	}
	s.igrejas[ig.ID] = ig
	s.vinculos[fundador.ID] = fundador
	return &ig, &fundador, nil
}

func (s *stubDirectory) ResolveMembership(ctx context.Context, usuarioID uuid.UUID) (uuid.UUID, *membro.Membro, error) {
	m, ok := s.vinculos[usuarioID]
	if !ok {
		return uuid.Nil, nil, ErrSemVinculo
	}
	return m.IgrejaID, &m, nil
}

func TestFundarCriaLiderAprovado(t *testing.T) {
	svc := NewService(newStubDirectory())

	fundadorID := uuid.New()
	ig, fundador, err := svc.Fundar(context.Background(), CreateInput{
		Nome:         "  Igreja Videira  ",
		FundadorID:   fundadorID,
		FundadorNome: "Pedro",
	})
	if err != nil {
		t.Fatalf("fundar: %v", err)
	}
	if ig.Nome != "Igreja Videira" {
		t.Errorf("nome não normalizado: %q", ig.Nome)
	}
	if ig.LiderPrincipal != fundadorID {
		t.Error("fundador deve ser o líder principal")
	}
	if !fundador.Aprovado || !fundador.IsLider {
		t.Error("fundador nasce aprovado e líder")
	}

	igrejaID, m, err := svc.Resolve(context.Background(), fundadorID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if igrejaID != ig.ID || m.ID != fundadorID {
		t.Error("vínculo do fundador deve resolver para a igreja criada")
	}
}

func TestFundarValidaEntrada(t *testing.T) {
	svc := NewService(newStubDirectory())

	if _, _, err := svc.Fundar(context.Background(), CreateInput{
		FundadorID:   uuid.New(),
		FundadorNome: "Pedro",
	}); err == nil {
		t.Fatal("nome vazio deveria falhar")
	}

	if _, _, err := svc.Fundar(context.Background(), CreateInput{
		Nome:         "Igreja Videira",
		FundadorNome: "Pedro",
	}); err == nil {
		t.Fatal("fundador ausente deveria falhar")
	}
}

func TestFundarRecusaSegundoVinculo(t *testing.T) {
	svc := NewService(newStubDirectory())

	fundadorID := uuid.New()
	input := CreateInput{Nome: "Igreja Videira", FundadorID: fundadorID, FundadorNome: "Pedro"}
	if _, _, err := svc.Fundar(context.Background(), input); err != nil {
		t.Fatalf("fundar: %v", err)
	}

	input.Nome = "Outra Igreja"
	if _, _, err := svc.Fundar(context.Background(), input); !errors.Is(err, ErrVinculoExistente) {
		t.Fatalf("esperava ErrVinculoExistente, veio %v", err)
	}
}

func TestResolveSemVinculo(t *testing.T) {
	svc := NewService(newStubDirectory())

	if _, _, err := svc.Resolve(context.Background(), uuid.New()); !errors.Is(err, ErrSemVinculo) {
		t.Fatalf("esperava ErrSemVinculo, veio %v", err)
	}
}

func TestAtualizarPerfilExigeNome(t *testing.T) {
	repo := newStubDirectory()
	svc := NewService(repo)

	ig, _, err := svc.Fundar(context.Background(), CreateInput{
		Nome: "Igreja Videira", FundadorID: uuid.New(), FundadorNome: "Pedro",
	})
	if err != nil {
		t.Fatalf("fundar: %v", err)
	}

	if _, err := svc.AtualizarPerfil(context.Background(), ig.ID, "  ", nil); err == nil {
		t.Fatal("nome vazio deveria falhar")
	}

	logo := "https://cdn.example.com/logo.png"
	updated, err := svc.AtualizarPerfil(context.Background(), ig.ID, "Videira Central", &logo)
	if err != nil {
		t.Fatalf("atualizar: %v", err)
	}
	if updated.Nome != "Videira Central" || updated.LogoURL == nil {
		t.Error("perfil não atualizado")
	}
}
