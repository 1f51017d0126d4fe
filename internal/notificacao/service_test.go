package notificacao

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubInbox struct {
	inserted     []Notificacao
	insertErrs   []error
	insertCalls  int
	markedRead   []string
	readChanged  bool
	unread       int
	deletedComms []uuid.UUID
}

func (s *stubInbox) Insert(ctx context.Context, n Notificacao) (bool, error) {
	s.insertCalls++
	if len(s.insertErrs) > 0 {
		err := s.insertErrs[0]
		s.insertErrs = s.insertErrs[1:]
		if err != nil {
			return false, err
		}
	}
	s.inserted = append(s.inserted, n)
	return true, nil
}

func (s *stubInbox) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]Notificacao, error) {
	var out []Notificacao
	for _, n := range s.inserted {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubInbox) MarkRead(ctx context.Context, recipientID uuid.UUID, id string) (bool, error) {
	s.markedRead = append(s.markedRead, id)
	return s.readChanged, nil
}

func (s *stubInbox) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error) {
	return 0, nil
}

func (s *stubInbox) Delete(ctx context.Context, recipientID uuid.UUID, id string) error {
	return nil
}

func (s *stubInbox) DeleteByComentario(ctx context.Context, comentarioID uuid.UUID) ([]uuid.UUID, error) {
	s.deletedComms = append(s.deletedComms, comentarioID)
	return nil, nil
}

func (s *stubInbox) DeleteByMembroPendente(ctx context.Context, membroID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (s *stubInbox) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	return s.unread, nil
}

type stubPerfis struct{}

func (stubPerfis) Perfil(ctx context.Context, igrejaID, membroID uuid.UUID) (string, *string, error) {
	return "Maria Souza", nil, nil
}

func TestNotificarSuprimeProprioAutor(t *testing.T) {
	inbox := &stubInbox{}
	svc := NewService(inbox, stubPerfis{}, nil, time.Second)

	actor := uuid.New()
	created, err := svc.Notificar(context.Background(), Evento{
		Tipo:        TipoEscalaCriada,
		IgrejaID:    uuid.New(),
		RecipientID: actor,
		ActorID:     actor,
	})
	if err != nil {
		t.Fatalf("notificar: %v", err)
	}
	if created {
		t.Fatal("autor não deve receber a própria notificação")
	}
	if inbox.insertCalls != 0 {
		t.Fatalf("insert não deveria ser chamado, foi %d vezes", inbox.insertCalls)
	}
}

func TestNotificarPreenchePayload(t *testing.T) {
	inbox := &stubInbox{}
	svc := NewService(inbox, stubPerfis{}, nil, time.Second)

	escalaID := uuid.New()
	data := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	ev := Evento{
		Tipo:        TipoEscalaCriada,
		IgrejaID:    uuid.New(),
		RecipientID: uuid.New(),
		ActorID:     uuid.New(),
		EscalaID:    &escalaID,
		EscalaData:  &data,
	}

	created, err := svc.Notificar(context.Background(), ev)
	if err != nil {
		t.Fatalf("notificar: %v", err)
	}
	if !created {
		t.Fatal("esperava notificação criada")
	}

	n := inbox.inserted[0]
	if n.ID == "" {
		t.Error("id deve ser preenchido")
	}
	if n.Tipo != TipoEscalaCriada || n.EventType != TipoEscalaCriada {
		t.Errorf("type/eventType devem repetir o tipo: %q / %q", n.Tipo, n.EventType)
	}
	if n.Titulo != "Nova escala" {
		t.Errorf("título inesperado: %q", n.Titulo)
	}
	if n.Mensagem != "Maria Souza escalou você para o culto de 08/03/2026" {
		t.Errorf("mensagem inesperada: %q", n.Mensagem)
	}
	if n.Lida {
		t.Error("notificação nasce como não lida")
	}
	if n.EscalaID == nil || *n.EscalaID != escalaID {
		t.Error("escalaId deve ser propagado")
	}
}

func TestNotificarTipoInvalido(t *testing.T) {
	svc := NewService(&stubInbox{}, stubPerfis{}, nil, time.Second)

	if _, err := svc.Notificar(context.Background(), Evento{
		Tipo:        "escala_explodida",
		RecipientID: uuid.New(),
		ActorID:     uuid.New(),
	}); !errors.Is(err, ErrTipoInvalid) {
		t.Fatalf("esperava ErrTipoInvalid, veio %v", err)
	}
}

func TestNotificarRepeteFalhaTransiente(t *testing.T) {
	inbox := &stubInbox{insertErrs: []error{context.DeadlineExceeded, nil}}
	svc := NewService(inbox, stubPerfis{}, nil, time.Second)

	created, err := svc.Notificar(context.Background(), Evento{
		Tipo:        TipoMembroPendente,
		IgrejaID:    uuid.New(),
		RecipientID: uuid.New(),
		ActorID:     uuid.New(),
	})
	if err != nil {
		t.Fatalf("notificar: %v", err)
	}
	if !created {
		t.Fatal("esperava sucesso na repetição")
	}
	if inbox.insertCalls != 2 {
		t.Fatalf("esperava 2 tentativas, houve %d", inbox.insertCalls)
	}
}

func TestNotificarNaoRepeteFalhaPermanente(t *testing.T) {
	boom := errors.New("violação de constraint")
	inbox := &stubInbox{insertErrs: []error{boom}}
	svc := NewService(inbox, stubPerfis{}, nil, time.Second)

	if _, err := svc.Notificar(context.Background(), Evento{
		Tipo:        TipoMembroPendente,
		IgrejaID:    uuid.New(),
		RecipientID: uuid.New(),
		ActorID:     uuid.New(),
	}); !errors.Is(err, boom) {
		t.Fatalf("esperava erro permanente, veio %v", err)
	}
	if inbox.insertCalls != 1 {
		t.Fatalf("falha permanente não deve repetir, houve %d tentativas", inbox.insertCalls)
	}
}

func TestNotificarTodosExcluiAutor(t *testing.T) {
	inbox := &stubInbox{}
	svc := NewService(inbox, stubPerfis{}, nil, time.Second)

	actor := uuid.New()
	outros := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	recipients := append([]uuid.UUID{actor}, outros...)

	escalaID := uuid.New()
	data := time.Now().UTC()
	delivered := svc.NotificarTodos(context.Background(), Evento{
		Tipo:       TipoEscalaCriada,
		IgrejaID:   uuid.New(),
		ActorID:    actor,
		EscalaID:   &escalaID,
		EscalaData: &data,
	}, recipients)

	if delivered != len(outros) {
		t.Fatalf("esperava %d entregas, houve %d", len(outros), delivered)
	}
	for _, n := range inbox.inserted {
		if n.RecipientID == actor {
			t.Fatal("autor recebeu a própria notificação")
		}
	}
}

func TestNotificarTodosParaQuandoContextoCancela(t *testing.T) {
	inbox := &stubInbox{}
	svc := NewService(inbox, stubPerfis{}, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	delivered := svc.NotificarTodos(ctx, Evento{
		Tipo:     TipoMembroPendente,
		IgrejaID: uuid.New(),
		ActorID:  uuid.New(),
	}, []uuid.UUID{uuid.New(), uuid.New()})

	if delivered != 0 {
		t.Fatalf("contexto cancelado não deve entregar, houve %d", delivered)
	}
}

func TestMarcarLidaIdempotente(t *testing.T) {
	inbox := &stubInbox{readChanged: false}
	svc := NewService(inbox, stubPerfis{}, nil, time.Second)

	// já lida: sucesso sem efeito
	if err := svc.MarcarLida(context.Background(), uuid.New(), "01HX"); err != nil {
		t.Fatalf("marcar lida repetida deve ser no-op, veio %v", err)
	}
}

func TestExcluirPorComentario(t *testing.T) {
	inbox := &stubInbox{}
	svc := NewService(inbox, stubPerfis{}, nil, time.Second)

	comentarioID := uuid.New()
	if err := svc.ExcluirPorComentario(context.Background(), comentarioID); err != nil {
		t.Fatalf("excluir por comentário: %v", err)
	}
	if len(inbox.deletedComms) != 1 || inbox.deletedComms[0] != comentarioID {
		t.Fatal("exclusão deve repassar o id do comentário")
	}
}
