package musica

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso à tabela de músicas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const musicaColunas = `
    id, igreja_id, nome, artista, cifra_url, video_url, tom, ministrantes, criado_em
`

// Create insere música no repertório.
func (r *Repository) Create(ctx context.Context, input SaveInput) (*Musica, error) {
	const query = `
        INSERT INTO musicas (igreja_id, nome, artista, cifra_url, video_url, tom, ministrantes)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + musicaColunas + `
    `

	ministrantes := input.Ministrantes
	if ministrantes == nil {
		ministrantes = []uuid.UUID{}
	}

	row := r.pool.QueryRow(ctx, query,
		input.IgrejaID, strings.TrimSpace(input.Nome), input.Artista,
		input.CifraURL, input.VideoURL, input.Tom, ministrantes,
	)
	return scanMusica(row)
}

// Get busca música da igreja.
func (r *Repository) Get(ctx context.Context, igrejaID, musicaID uuid.UUID) (*Musica, error) {
	const query = `
        SELECT ` + musicaColunas + `
        FROM musicas
        WHERE igreja_id = $1 AND id = $2
    `

	row := r.pool.QueryRow(ctx, query, igrejaID, musicaID)
	return scanMusica(row)
}

// List lista o repertório em ordem alfabética.
func (r *Repository) List(ctx context.Context, igrejaID uuid.UUID) ([]Musica, error) {
	const query = `
        SELECT ` + musicaColunas + `
        FROM musicas
        WHERE igreja_id = $1
        ORDER BY nome
    `

	rows, err := r.pool.Query(ctx, query, igrejaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var musicas []Musica
	for rows.Next() {
		m, err := scanMusica(rows)
		if err != nil {
			return nil, err
		}
		musicas = append(musicas, *m)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return musicas, nil
}

// Update altera campos da música (não propaga para escalas antigas).
func (r *Repository) Update(ctx context.Context, igrejaID, musicaID uuid.UUID, input SaveInput) (*Musica, error) {
	const query = `
        UPDATE musicas
        SET nome = $3, artista = $4, cifra_url = $5, video_url = $6, tom = $7, ministrantes = $8
        WHERE igreja_id = $1 AND id = $2
        RETURNING ` + musicaColunas + `
    `

	ministrantes := input.Ministrantes
	if ministrantes == nil {
		ministrantes = []uuid.UUID{}
	}

	row := r.pool.QueryRow(ctx, query, igrejaID, musicaID,
		strings.TrimSpace(input.Nome), input.Artista,
		input.CifraURL, input.VideoURL, input.Tom, ministrantes,
	)
	return scanMusica(row)
}

// Delete remove música do repertório.
func (r *Repository) Delete(ctx context.Context, igrejaID, musicaID uuid.UUID) error {
	const query = `
        DELETE FROM musicas
        WHERE igreja_id = $1 AND id = $2
    `

	cmd, err := r.pool.Exec(ctx, query, igrejaID, musicaID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMusica(row pgx.Row) (*Musica, error) {
	var m Musica
	if err := row.Scan(&m.ID, &m.IgrejaID, &m.Nome, &m.Artista, &m.CifraURL, &m.VideoURL,
		&m.Tom, &m.Ministrantes, &m.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
