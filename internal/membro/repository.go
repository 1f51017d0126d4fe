package membro

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/louvorapp/escala/internal/db"
)

// Repository provê acesso à tabela de membros.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const membroColunas = `
    id, igreja_id, nome, sobrenome, email, telefone, area,
    aprovado, is_lider, is_ministro, foto_url, criado_em
`

// Get busca membro da igreja.
func (r *Repository) Get(ctx context.Context, igrejaID, membroID uuid.UUID) (*Membro, error) {
	const query = `
        SELECT ` + membroColunas + `
        FROM membros
        WHERE igreja_id = $1 AND id = $2
    `

	row := r.pool.QueryRow(ctx, query, igrejaID, membroID)
	return scanMembro(row)
}

// List lista membros da igreja; aprovado=nil traz todos.
func (r *Repository) List(ctx context.Context, igrejaID uuid.UUID, aprovado *bool) ([]Membro, error) {
	query := `
        SELECT ` + membroColunas + `
        FROM membros
        WHERE igreja_id = $1
    `
	args := []any{igrejaID}
	if aprovado != nil {
		query += " AND aprovado = $2"
		args = append(args, *aprovado)
	}
	query += " ORDER BY nome, sobrenome"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var membros []Membro
	for rows.Next() {
		m, err := scanMembro(rows)
		if err != nil {
			return nil, err
		}
		membros = append(membros, *m)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return membros, nil
}

// ListLideres devolve ids dos líderes da igreja (destinatários de
// avisos de aprovação pendente).
func (r *Repository) ListLideres(ctx context.Context, igrejaID uuid.UUID) ([]uuid.UUID, error) {
	const query = `
        SELECT id
        FROM membros
        WHERE igreja_id = $1 AND is_lider AND aprovado
    `

	rows, err := r.pool.Query(ctx, query, igrejaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lideres []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		lideres = append(lideres, id)
	}
	return lideres, rows.Err()
}

// Create insere membro não aprovado e o vínculo no índice reverso,
// na mesma transação. O UNIQUE do índice garante vínculo único.
func (r *Repository) Create(ctx context.Context, input RegisterInput) (*Membro, error) {
	var m Membro

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const membroQuery = `
            INSERT INTO membros (id, igreja_id, nome, sobrenome, email, telefone, area, foto_url)
            VALUES ($1, $2, $3, $4, lower($5), $6, $7, $8)
            RETURNING ` + membroColunas + `
        `
		if err := tx.QueryRow(ctx, membroQuery,
			input.UsuarioID, input.IgrejaID,
			strings.TrimSpace(input.Nome), strings.TrimSpace(input.Sobrenome),
			strings.TrimSpace(input.Email), input.Telefone, input.Area, input.FotoURL,
		).Scan(&m.ID, &m.IgrejaID, &m.Nome, &m.Sobrenome, &m.Email, &m.Telefone, &m.Area,
			&m.Aprovado, &m.IsLider, &m.IsMinistro, &m.FotoURL, &m.CriadoEm); err != nil {
			return err
		}

		const indiceQuery = `
            INSERT INTO membros_indice (usuario_id, igreja_id)
            VALUES ($1, $2)
        `
		_, err := tx.Exec(ctx, indiceQuery, input.UsuarioID, input.IgrejaID)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrJaVinculado
		}
		return nil, err
	}

	return &m, nil
}

// SetAprovado liga/desliga acesso do membro sem apagar histórico.
func (r *Repository) SetAprovado(ctx context.Context, igrejaID, membroID uuid.UUID, aprovado bool) (*Membro, error) {
	const query = `
        UPDATE membros
        SET aprovado = $3
        WHERE igreja_id = $1 AND id = $2
        RETURNING ` + membroColunas + `
    `

	row := r.pool.QueryRow(ctx, query, igrejaID, membroID, aprovado)
	return scanMembro(row)
}

// SetMinistro liga/desliga a permissão de criar escalas.
func (r *Repository) SetMinistro(ctx context.Context, igrejaID, membroID uuid.UUID, ministro bool) (*Membro, error) {
	const query = `
        UPDATE membros
        SET is_ministro = $3
        WHERE igreja_id = $1 AND id = $2
        RETURNING ` + membroColunas + `
    `

	row := r.pool.QueryRow(ctx, query, igrejaID, membroID, ministro)
	return scanMembro(row)
}

// UpdatePerfil altera dados de exibição do próprio membro.
func (r *Repository) UpdatePerfil(ctx context.Context, igrejaID, membroID uuid.UUID, nome, sobrenome string, telefone, area, fotoURL *string) (*Membro, error) {
	const query = `
        UPDATE membros
        SET nome = $3, sobrenome = $4, telefone = $5, area = $6, foto_url = $7
        WHERE igreja_id = $1 AND id = $2
        RETURNING ` + membroColunas + `
    `

	row := r.pool.QueryRow(ctx, query, igrejaID, membroID,
		strings.TrimSpace(nome), strings.TrimSpace(sobrenome), telefone, area, fotoURL)
	return scanMembro(row)
}

// Delete remove o membro e o vínculo do índice na mesma transação.
func (r *Repository) Delete(ctx context.Context, igrejaID, membroID uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `DELETE FROM membros WHERE igreja_id = $1 AND id = $2`, igrejaID, membroID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}

		_, err = tx.Exec(ctx, `DELETE FROM membros_indice WHERE usuario_id = $1 AND igreja_id = $2`, membroID, igrejaID)
		return err
	})
}

// Perfil devolve nome/foto para snapshot em notificações.
func (r *Repository) Perfil(ctx context.Context, igrejaID, membroID uuid.UUID) (string, *string, error) {
	const query = `
        SELECT nome, sobrenome, foto_url
        FROM membros
        WHERE igreja_id = $1 AND id = $2
    `

	var (
		nome, sobrenome string
		foto            *string
	)
	err := r.pool.QueryRow(ctx, query, igrejaID, membroID).Scan(&nome, &sobrenome, &foto)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrNotFound
		}
		return "", nil, err
	}
	return strings.TrimSpace(nome + " " + sobrenome), foto, nil
}

// ResolveByNome localiza membros pelo nome completo ou só pelo primeiro
// nome (case-insensitive). Usado na resolução de menções.
func (r *Repository) ResolveByNome(ctx context.Context, igrejaID uuid.UUID, nome, sobrenome string) ([]Membro, error) {
	query := `
        SELECT ` + membroColunas + `
        FROM membros
        WHERE igreja_id = $1 AND lower(nome) = lower($2)
    `
	args := []any{igrejaID, strings.TrimSpace(nome)}
	if strings.TrimSpace(sobrenome) != "" {
		query += " AND lower(sobrenome) = lower($3)"
		args = append(args, strings.TrimSpace(sobrenome))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var membros []Membro
	for rows.Next() {
		m, err := scanMembro(rows)
		if err != nil {
			return nil, err
		}
		membros = append(membros, *m)
	}

	return membros, rows.Err()
}

func scanMembro(row pgx.Row) (*Membro, error) {
	var m Membro
	if err := row.Scan(&m.ID, &m.IgrejaID, &m.Nome, &m.Sobrenome, &m.Email, &m.Telefone, &m.Area,
		&m.Aprovado, &m.IsLider, &m.IsMinistro, &m.FotoURL, &m.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
