// Package agenda mantém o responsável de plantão por data do calendário
// da igreja. Uma data tem no máximo um responsável.
package agenda

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("responsável não encontrado para a data")
	ErrDataInvalida = errors.New("data inválida: use AAAA-MM-DD")
)

// Responsavel liga uma data do calendário a um membro.
type Responsavel struct {
	IgrejaID uuid.UUID `json:"igrejaId"`
	Data     time.Time `json:"data"`
	MembroID uuid.UUID `json:"membroId"`
}

// Repository provê acesso à tabela agenda_responsaveis.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert define o responsável da data, substituindo o anterior se houver.
func (r *Repository) Upsert(ctx context.Context, igrejaID uuid.UUID, data time.Time, membroID uuid.UUID) error {
	const query = `
        INSERT INTO agenda_responsaveis (igreja_id, data, membro_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (igreja_id, data) DO UPDATE SET membro_id = EXCLUDED.membro_id
    `

	_, err := r.pool.Exec(ctx, query, igrejaID, data, membroID)
	return err
}

// Get busca o responsável da data.
func (r *Repository) Get(ctx context.Context, igrejaID uuid.UUID, data time.Time) (*Responsavel, error) {
	const query = `
        SELECT igreja_id, data, membro_id
        FROM agenda_responsaveis
        WHERE igreja_id = $1 AND data = $2
    `

	var resp Responsavel
	err := r.pool.QueryRow(ctx, query, igrejaID, data).Scan(&resp.IgrejaID, &resp.Data, &resp.MembroID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resp, nil
}

// ListRange lista os responsáveis no intervalo fechado [de, ate].
func (r *Repository) ListRange(ctx context.Context, igrejaID uuid.UUID, de, ate time.Time) ([]Responsavel, error) {
	const query = `
        SELECT igreja_id, data, membro_id
        FROM agenda_responsaveis
        WHERE igreja_id = $1 AND data BETWEEN $2 AND $3
        ORDER BY data ASC
    `

	rows, err := r.pool.Query(ctx, query, igrejaID, de, ate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Responsavel
	for rows.Next() {
		var resp Responsavel
		if err := rows.Scan(&resp.IgrejaID, &resp.Data, &resp.MembroID); err != nil {
			return nil, err
		}
		result = append(result, resp)
	}
	return result, rows.Err()
}

// Delete desmarca o responsável da data.
func (r *Repository) Delete(ctx context.Context, igrejaID uuid.UUID, data time.Time) error {
	const query = `
        DELETE FROM agenda_responsaveis
        WHERE igreja_id = $1 AND data = $2
    `

	cmd, err := r.pool.Exec(ctx, query, igrejaID, data)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ParseData interpreta datas do calendário no formato ISO (AAAA-MM-DD).
func ParseData(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrDataInvalida
	}
	return t, nil
}
