package notificacao

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela de notificações.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const notificacaoColunas = `
    id, tipo, titulo, mensagem, igreja_id, recipient_id, criado_por,
    escala_id, escala_data, comentario_id, comentario_texto, membro_pendente,
    sender_nome, sender_foto, lida, criado_em
`

// Insert persiste a notificação. Para eventos de escala o índice parcial
// (escala_id, recipient_id, tipo) torna o despacho idempotente; retorna
// false quando a linha já existia.
func (r *Repository) Insert(ctx context.Context, n Notificacao) (bool, error) {
	const query = `
        INSERT INTO notificacoes (
            id, tipo, titulo, mensagem, igreja_id, recipient_id, criado_por,
            escala_id, escala_data, comentario_id, comentario_texto, membro_pendente,
            sender_nome, sender_foto, lida, criado_em
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        ON CONFLICT DO NOTHING
    `

	cmd, err := r.pool.Exec(ctx, query,
		n.ID, n.Tipo, n.Titulo, n.Mensagem, n.IgrejaID, n.RecipientID, n.CriadoPor,
		n.EscalaID, n.EscalaData, n.ComentarioID, n.ComentarioTexto, n.MembroPendente,
		n.SenderNome, n.SenderFoto, n.Lida, n.Timestamp,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// ListByRecipient lista a caixa de entrada do membro, mais recente primeiro.
func (r *Repository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, limit int) ([]Notificacao, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const query = `
        SELECT ` + notificacaoColunas + `
        FROM notificacoes
        WHERE recipient_id = $1
        ORDER BY criado_em DESC
        LIMIT $2
    `

	rows, err := r.pool.Query(ctx, query, recipientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Notificacao
	for rows.Next() {
		n, err := scanNotificacao(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *n)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return list, nil
}

// MarkRead marca como lida; retorna false quando já estava lida (idempotente).
func (r *Repository) MarkRead(ctx context.Context, recipientID uuid.UUID, id string) (bool, error) {
	const query = `
        UPDATE notificacoes
        SET lida = TRUE
        WHERE id = $1 AND recipient_id = $2 AND NOT lida
    `

	cmd, err := r.pool.Exec(ctx, query, id, recipientID)
	if err != nil {
		return false, err
	}
	if cmd.RowsAffected() > 0 {
		return true, nil
	}

	// distingue "já lida" de "não existe"
	const existsQuery = `
        SELECT 1 FROM notificacoes WHERE id = $1 AND recipient_id = $2
    `
	var one int
	if err := r.pool.QueryRow(ctx, existsQuery, id, recipientID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return false, nil
}

// MarkAllRead marca todas as não lidas; retorna quantas mudaram.
func (r *Repository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int, error) {
	const query = `
        UPDATE notificacoes
        SET lida = TRUE
        WHERE recipient_id = $1 AND NOT lida
    `

	cmd, err := r.pool.Exec(ctx, query, recipientID)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

// Delete remove notificação da caixa do destinatário.
func (r *Repository) Delete(ctx context.Context, recipientID uuid.UUID, id string) error {
	const query = `
        DELETE FROM notificacoes
        WHERE id = $1 AND recipient_id = $2
    `

	cmd, err := r.pool.Exec(ctx, query, id, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByComentario remove menções derivadas de um comentário.
// Retorna os destinatários afetados para invalidação de contadores.
func (r *Repository) DeleteByComentario(ctx context.Context, comentarioID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
        DELETE FROM notificacoes
        WHERE tipo = $1 AND comentario_id = $2
        RETURNING recipient_id
    `

	rows, err := r.pool.Query(ctx, query, TipoMencaoComentario, comentarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		recipients = append(recipients, id)
	}
	return recipients, rows.Err()
}

// DeleteByMembroPendente remove avisos de aprovação pendente após a decisão.
func (r *Repository) DeleteByMembroPendente(ctx context.Context, membroID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
        DELETE FROM notificacoes
        WHERE tipo = $1 AND membro_pendente = $2
        RETURNING recipient_id
    `

	rows, err := r.pool.Query(ctx, query, TipoMembroPendente, membroID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		recipients = append(recipients, id)
	}
	return recipients, rows.Err()
}

// CountUnread conta notificações não lidas do destinatário.
func (r *Repository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int, error) {
	const query = `
        SELECT COUNT(*)::int
        FROM notificacoes
        WHERE recipient_id = $1 AND NOT lida
    `

	var count int
	if err := r.pool.QueryRow(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanNotificacao(row pgx.Row) (*Notificacao, error) {
	var n Notificacao
	if err := row.Scan(
		&n.ID, &n.Tipo, &n.Titulo, &n.Mensagem, &n.IgrejaID, &n.RecipientID, &n.CriadoPor,
		&n.EscalaID, &n.EscalaData, &n.ComentarioID, &n.ComentarioTexto, &n.MembroPendente,
		&n.SenderNome, &n.SenderFoto, &n.Lida, &n.Timestamp,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n.EventType = n.Tipo
	return &n, nil
}
