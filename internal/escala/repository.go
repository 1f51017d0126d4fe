package escala

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/louvorapp/escala/internal/db"
)

// Repository provê acesso às tabelas de escalas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create grava o agregado (escala + membros + músicas) em uma transação.
func (r *Repository) Create(ctx context.Context, e Escala) (*Escala, error) {
	var created Escala

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const query = `
            INSERT INTO escalas (igreja_id, data_culto, hora_culto, data_ensaio, hora_ensaio, criado_por)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id, igreja_id, data_culto, hora_culto, data_ensaio, hora_ensaio,
                      criado_por, criado_em, editado_por, editado_em
        `
		if err := tx.QueryRow(ctx, query,
			e.IgrejaID, e.DataCulto, e.HoraCulto, e.DataEnsaio, e.HoraEnsaio, e.CriadoPor,
		).Scan(&created.ID, &created.IgrejaID, &created.DataCulto, &created.HoraCulto,
			&created.DataEnsaio, &created.HoraEnsaio, &created.CriadoPor, &created.CriadoEm,
			&created.EditadoPor, &created.EditadoEm); err != nil {
			return err
		}

		if err := insertMembros(ctx, tx, created.ID, e.Membros); err != nil {
			return err
		}
		return insertMusicas(ctx, tx, created.ID, e.Musicas)
	})
	if err != nil {
		return nil, err
	}

	created.Membros = e.Membros
	created.Musicas = e.Musicas
	return &created, nil
}

// Get carrega o agregado completo.
func (r *Repository) Get(ctx context.Context, igrejaID, escalaID uuid.UUID) (*Escala, error) {
	const query = `
        SELECT id, igreja_id, data_culto, hora_culto, data_ensaio, hora_ensaio,
               criado_por, criado_em, editado_por, editado_em
        FROM escalas
        WHERE igreja_id = $1 AND id = $2
    `

	var e Escala
	err := r.pool.QueryRow(ctx, query, igrejaID, escalaID).
		Scan(&e.ID, &e.IgrejaID, &e.DataCulto, &e.HoraCulto, &e.DataEnsaio, &e.HoraEnsaio,
			&e.CriadoPor, &e.CriadoEm, &e.EditadoPor, &e.EditadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := r.loadChildren(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Update sobrescreve os grupos de campos e recria membros/músicas.
// Última escrita vence na granularidade do agregado: não há merge
// parcial entre editores concorrentes.
func (r *Repository) Update(ctx context.Context, e Escala) (*Escala, error) {
	var updated Escala

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const query = `
            UPDATE escalas
            SET data_culto = $3, hora_culto = $4, data_ensaio = $5, hora_ensaio = $6,
                editado_por = $7, editado_em = now()
            WHERE igreja_id = $1 AND id = $2
            RETURNING id, igreja_id, data_culto, hora_culto, data_ensaio, hora_ensaio,
                      criado_por, criado_em, editado_por, editado_em
        `
		if err := tx.QueryRow(ctx, query,
			e.IgrejaID, e.ID, e.DataCulto, e.HoraCulto, e.DataEnsaio, e.HoraEnsaio, e.EditadoPor,
		).Scan(&updated.ID, &updated.IgrejaID, &updated.DataCulto, &updated.HoraCulto,
			&updated.DataEnsaio, &updated.HoraEnsaio, &updated.CriadoPor, &updated.CriadoEm,
			&updated.EditadoPor, &updated.EditadoEm); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM escala_membros WHERE escala_id = $1`, e.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM escala_musicas WHERE escala_id = $1`, e.ID); err != nil {
			return err
		}

		if err := insertMembros(ctx, tx, e.ID, e.Membros); err != nil {
			return err
		}
		return insertMusicas(ctx, tx, e.ID, e.Musicas)
	})
	if err != nil {
		return nil, err
	}

	updated.Membros = e.Membros
	updated.Musicas = e.Musicas
	return &updated, nil
}

// Delete remove a escala; filhos caem por cascade.
func (r *Repository) Delete(ctx context.Context, igrejaID, escalaID uuid.UUID) error {
	const query = `
        DELETE FROM escalas
        WHERE igreja_id = $1 AND id = $2
    `

	cmd, err := r.pool.Exec(ctx, query, igrejaID, escalaID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForUser devolve as escalas onde o usuário é criador OU escalado,
// sem duplicar quando é os dois, em ordem ascendente de data.
func (r *Repository) ListForUser(ctx context.Context, igrejaID, usuarioID uuid.UUID) ([]Escala, error) {
	const query = `
        SELECT DISTINCT e.id, e.igreja_id, e.data_culto, e.hora_culto, e.data_ensaio, e.hora_ensaio,
               e.criado_por, e.criado_em, e.editado_por, e.editado_em
        FROM escalas e
        LEFT JOIN escala_membros em ON em.escala_id = e.id
        WHERE e.igreja_id = $1
          AND (e.criado_por = $2 OR em.membro_id = $2)
        ORDER BY e.data_culto ASC, e.criado_em ASC
    `

	rows, err := r.pool.Query(ctx, query, igrejaID, usuarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var escalas []Escala
	for rows.Next() {
		var e Escala
		if err := rows.Scan(&e.ID, &e.IgrejaID, &e.DataCulto, &e.HoraCulto, &e.DataEnsaio,
			&e.HoraEnsaio, &e.CriadoPor, &e.CriadoEm, &e.EditadoPor, &e.EditadoEm); err != nil {
			return nil, err
		}
		escalas = append(escalas, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range escalas {
		if err := r.loadChildren(ctx, &escalas[i]); err != nil {
			return nil, err
		}
	}
	return escalas, nil
}

func (r *Repository) loadChildren(ctx context.Context, e *Escala) error {
	const membrosQuery = `
        SELECT membro_id, funcoes
        FROM escala_membros
        WHERE escala_id = $1
        ORDER BY posicao
    `

	rows, err := r.pool.Query(ctx, membrosQuery, e.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var m MembroEscalado
		if err := rows.Scan(&m.MembroID, &m.Funcoes); err != nil {
			rows.Close()
			return err
		}
		e.Membros = append(e.Membros, m)
	}
	rows.Close()
	if rows.Err() != nil {
		return rows.Err()
	}

	const musicasQuery = `
        SELECT musica_id, nome, tom, cifra_url, video_url, ministrantes
        FROM escala_musicas
        WHERE escala_id = $1
        ORDER BY posicao
    `

	rows, err = r.pool.Query(ctx, musicasQuery, e.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var m MusicaEscalada
		if err := rows.Scan(&m.MusicaID, &m.Nome, &m.Tom, &m.CifraURL, &m.VideoURL, &m.Ministrantes); err != nil {
			return err
		}
		e.Musicas = append(e.Musicas, m)
	}
	return rows.Err()
}

func insertMembros(ctx context.Context, tx pgx.Tx, escalaID uuid.UUID, membros []MembroEscalado) error {
	const query = `
        INSERT INTO escala_membros (escala_id, membro_id, funcoes, posicao)
        VALUES ($1, $2, $3, $4)
    `
	for i, m := range membros {
		funcoes := m.Funcoes
		if funcoes == nil {
			funcoes = []string{}
		}
		if _, err := tx.Exec(ctx, query, escalaID, m.MembroID, funcoes, i); err != nil {
			return err
		}
	}
	return nil
}

func insertMusicas(ctx context.Context, tx pgx.Tx, escalaID uuid.UUID, musicas []MusicaEscalada) error {
	const query = `
        INSERT INTO escala_musicas (escala_id, posicao, musica_id, nome, tom, cifra_url, video_url, ministrantes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	for i, m := range musicas {
		ministrantes := m.Ministrantes
		if ministrantes == nil {
			ministrantes = []uuid.UUID{}
		}
		if _, err := tx.Exec(ctx, query, escalaID, i, m.MusicaID, m.Nome, m.Tom, m.CifraURL, m.VideoURL, ministrantes); err != nil {
			return err
		}
	}
	return nil
}
