package comentario

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela de comentários.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere comentário na escala.
func (r *Repository) Create(ctx context.Context, escalaID, autorID uuid.UUID, texto string) (*Comentario, error) {
	const query = `
        INSERT INTO comentarios (escala_id, autor_id, texto)
        VALUES ($1, $2, $3)
        RETURNING id, escala_id, autor_id, texto, criado_em
    `

	row := r.pool.QueryRow(ctx, query, escalaID, autorID, strings.TrimSpace(texto))
	return scanComentario(row)
}

// Get busca comentário pelo id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Comentario, error) {
	const query = `
        SELECT id, escala_id, autor_id, texto, criado_em
        FROM comentarios
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanComentario(row)
}

// ListByEscala lista comentários, mais recente primeiro.
func (r *Repository) ListByEscala(ctx context.Context, escalaID uuid.UUID) ([]Comentario, error) {
	const query = `
        SELECT id, escala_id, autor_id, texto, criado_em
        FROM comentarios
        WHERE escala_id = $1
        ORDER BY criado_em DESC
    `

	rows, err := r.pool.Query(ctx, query, escalaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comentarios []Comentario
	for rows.Next() {
		c, err := scanComentario(rows)
		if err != nil {
			return nil, err
		}
		comentarios = append(comentarios, *c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return comentarios, nil
}

// UpdateTexto altera apenas o corpo do comentário.
func (r *Repository) UpdateTexto(ctx context.Context, id uuid.UUID, texto string) (*Comentario, error) {
	const query = `
        UPDATE comentarios
        SET texto = $2
        WHERE id = $1
        RETURNING id, escala_id, autor_id, texto, criado_em
    `

	row := r.pool.QueryRow(ctx, query, id, strings.TrimSpace(texto))
	return scanComentario(row)
}

// Delete remove o comentário.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `
        DELETE FROM comentarios
        WHERE id = $1
    `

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanComentario(row pgx.Row) (*Comentario, error) {
	var c Comentario
	if err := row.Scan(&c.ID, &c.EscalaID, &c.AutorID, &c.Texto, &c.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
