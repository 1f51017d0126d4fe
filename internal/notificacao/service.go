package notificacao

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/louvorapp/escala/internal/util"
)

// InboxRepository abstrai a persistência da caixa de entrada.
type InboxRepository interface {
	Insert(ctx context.Context, n Notificacao) (bool, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]Notificacao, error)
	MarkRead(ctx context.Context, recipientID uuid.UUID, id string) (bool, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error)
	Delete(ctx context.Context, recipientID uuid.UUID, id string) error
	DeleteByComentario(ctx context.Context, comentarioID uuid.UUID) ([]uuid.UUID, error)
	DeleteByMembroPendente(ctx context.Context, membroID uuid.UUID) ([]uuid.UUID, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error)
}

// PerfilProvider resolve nome/foto do autor no momento do envio
// (snapshot: renomear o autor depois não altera notificações antigas).
type PerfilProvider interface {
	Perfil(ctx context.Context, igrejaID, membroID uuid.UUID) (nome string, foto *string, err error)
}

// Service é o despachante de notificações.
type Service struct {
	repo    InboxRepository
	perfis  PerfilProvider
	cache   *redis.Client
	timeout time.Duration
}

// NewService cria o despachante.
func NewService(repo InboxRepository, perfis PerfilProvider, cache *redis.Client, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{repo: repo, perfis: perfis, cache: cache, timeout: timeout}
}

func unreadCacheKey(recipientID uuid.UUID) string {
	return "inbox:unread:" + recipientID.String()
}

func unreadChannel(recipientID uuid.UUID) string {
	return "inbox:" + recipientID.String()
}

// Notificar cria a notificação para um destinatário. Nunca notifica o
// próprio autor; nesse caso retorna (false, nil).
func (s *Service) Notificar(ctx context.Context, ev Evento) (bool, error) {
	if !IsValidTipo(ev.Tipo) {
		return false, ErrTipoInvalid
	}
	if ev.RecipientID == ev.ActorID {
		return false, nil
	}

	nome, foto, err := s.perfis.Perfil(ctx, ev.IgrejaID, ev.ActorID)
	if err != nil {
		return false, err
	}

	titulo, mensagem, err := renderEvento(ev, nome)
	if err != nil {
		return false, err
	}

	n := Notificacao{
		ID:          util.NewULID(),
		Tipo:        ev.Tipo,
		EventType:   ev.Tipo,
		Titulo:      titulo,
		Mensagem:    mensagem,
		IgrejaID:    ev.IgrejaID,
		RecipientID: ev.RecipientID,
		CriadoPor:   ev.ActorID,
		EscalaID:    ev.EscalaID,
		EscalaData:  ev.EscalaData,
		SenderNome:  nome,
		SenderFoto:  foto,
		Lida:        false,
		Timestamp:   util.Now(),
	}
	if ev.ComentarioID != nil {
		n.ComentarioID = ev.ComentarioID
		texto := ev.ComentarioTexto
		n.ComentarioTexto = &texto
	}
	n.MembroPendente = ev.MembroPendente

	inserted, err := s.repo.Insert(ctx, n)
	if err != nil && Classify(err) == FalhaTransiente {
		// uma repetição com backoff curto; o id ULID e o índice de
		// deduplicação tornam a reexecução segura
		time.Sleep(200 * time.Millisecond)
		inserted, err = s.repo.Insert(ctx, n)
	}
	if err != nil {
		return false, err
	}

	if inserted {
		s.publishUnread(ctx, ev.RecipientID)
	}
	return inserted, nil
}

// NotificarTodos despacha o mesmo evento para vários destinatários.
// Melhor esforço: falha individual é registrada e não interrompe o lote
// nem propaga erro para a escrita principal. Cancelável via ctx.
func (s *Service) NotificarTodos(ctx context.Context, ev Evento, recipients []uuid.UUID) int {
	delivered := 0
	for _, recipient := range recipients {
		if ctx.Err() != nil {
			log.Warn().Str("tipo", ev.Tipo).Int("entregues", delivered).
				Msg("despacho de notificações cancelado")
			break
		}

		itemCtx, cancel := context.WithTimeout(ctx, s.timeout)
		item := ev
		item.RecipientID = recipient
		created, err := s.Notificar(itemCtx, item)
		cancel()

		if err != nil {
			log.Error().Err(err).
				Str("tipo", ev.Tipo).
				Str("recipient", recipient.String()).
				Msg("falha ao notificar destinatário")
			continue
		}
		if created {
			delivered++
		}
	}
	return delivered
}

// Listar retorna a caixa de entrada do membro.
func (s *Service) Listar(ctx context.Context, recipientID uuid.UUID, limit int) ([]Notificacao, error) {
	return s.repo.ListByRecipient(ctx, recipientID, limit)
}

// MarcarLida marca uma notificação como lida. Idempotente: marcar uma
// notificação já lida é sucesso sem efeito.
func (s *Service) MarcarLida(ctx context.Context, recipientID uuid.UUID, id string) error {
	changed, err := s.repo.MarkRead(ctx, recipientID, id)
	if err != nil {
		return err
	}
	if changed {
		s.publishUnread(ctx, recipientID)
	}
	return nil
}

// MarcarTodasLidas aplica mark-read em lote lógico, melhor esforço.
func (s *Service) MarcarTodasLidas(ctx context.Context, recipientID uuid.UUID) (int, error) {
	changed, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.publishUnread(ctx, recipientID)
	}
	return changed, nil
}

// Excluir remove a notificação da caixa do próprio destinatário.
func (s *Service) Excluir(ctx context.Context, recipientID uuid.UUID, id string) error {
	if err := s.repo.Delete(ctx, recipientID, id); err != nil {
		return err
	}
	s.publishUnread(ctx, recipientID)
	return nil
}

// ExcluirPorComentario desfaz menções de um comentário removido.
func (s *Service) ExcluirPorComentario(ctx context.Context, comentarioID uuid.UUID) error {
	recipients, err := s.repo.DeleteByComentario(ctx, comentarioID)
	if err != nil {
		return err
	}
	for _, recipient := range recipients {
		s.publishUnread(ctx, recipient)
	}
	return nil
}

// ExcluirPorMembroPendente limpa avisos de aprovação após a decisão.
func (s *Service) ExcluirPorMembroPendente(ctx context.Context, membroID uuid.UUID) error {
	recipients, err := s.repo.DeleteByMembroPendente(ctx, membroID)
	if err != nil {
		return err
	}
	for _, recipient := range recipients {
		s.publishUnread(ctx, recipient)
	}
	return nil
}

// ContarNaoLidas retorna o contador atual, usando cache quando disponível.
func (s *Service) ContarNaoLidas(ctx context.Context, recipientID uuid.UUID) (int, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, unreadCacheKey(recipientID)).Result(); err == nil {
			if count, err := strconv.Atoi(raw); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, unreadCacheKey(recipientID), count, 5*time.Minute).Err()
	}
	return count, nil
}

// AssinarNaoLidas emite o contador de não lidas a cada mudança de estado
// da caixa de entrada. Só emite quando o valor muda. O cancelamento do
// contexto encerra a assinatura e fecha o canal.
func (s *Service) AssinarNaoLidas(ctx context.Context, recipientID uuid.UUID) (<-chan int, error) {
	if s.cache == nil {
		return nil, errors.New("assinatura indisponível sem redis")
	}

	sub := s.cache.Subscribe(ctx, unreadChannel(recipientID))
	out := make(chan int, 1)

	initial, err := s.ContarNaoLidas(ctx, recipientID)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}
	out <- initial

	go func() {
		defer close(out)
		defer sub.Close()

		last := initial
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				count, err := strconv.Atoi(msg.Payload)
				if err != nil || count == last {
					continue
				}
				last = count
				select {
				case out <- count:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// publishUnread recalcula o contador, atualiza cache e publica no canal.
// Falha aqui nunca propaga: o contador é derivado e se recupera sozinho.
func (s *Service) publishUnread(ctx context.Context, recipientID uuid.UUID) {
	if s.cache == nil {
		return
	}

	count, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		log.Warn().Err(err).Str("recipient", recipientID.String()).
			Msg("não foi possível recalcular contador de não lidas")
		_ = s.cache.Del(ctx, unreadCacheKey(recipientID)).Err()
		return
	}

	_ = s.cache.Set(ctx, unreadCacheKey(recipientID), count, 5*time.Minute).Err()
	_ = s.cache.Publish(ctx, unreadChannel(recipientID), count).Err()
}
