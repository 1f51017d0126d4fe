package igreja

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/louvorapp/escala/internal/db"
	"github.com/louvorapp/escala/internal/membro"
)

// Repository provê acesso às tabelas de igrejas e do índice reverso.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get busca a igreja pelo id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Igreja, error) {
	const query = `
        SELECT id, nome, logo_url, lider_principal, assinatura_ativa, criado_em
        FROM igrejas
        WHERE id = $1
    `

	var ig Igreja
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&ig.ID, &ig.Nome, &ig.LogoURL, &ig.LiderPrincipal, &ig.AssinaturaAtiva, &ig.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ig, nil
}

// UpdatePerfil altera nome e logo da igreja.
func (r *Repository) UpdatePerfil(ctx context.Context, id uuid.UUID, nome string, logoURL *string) (*Igreja, error) {
	const query = `
        UPDATE igrejas
        SET nome = $2, logo_url = $3
        WHERE id = $1
        RETURNING id, nome, logo_url, lider_principal, assinatura_ativa, criado_em
    `

	var ig Igreja
	err := r.pool.QueryRow(ctx, query, id, strings.TrimSpace(nome), logoURL).
		Scan(&ig.ID, &ig.Nome, &ig.LogoURL, &ig.LiderPrincipal, &ig.AssinaturaAtiva, &ig.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ig, nil
}

// CriarComFundador cria igreja, membro fundador (auto-aprovado, líder) e o
// vínculo no índice reverso em uma única transação.
func (r *Repository) CriarComFundador(ctx context.Context, input CreateInput) (*Igreja, *membro.Membro, error) {
	var (
		ig Igreja
		m  membro.Membro
	)

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const igrejaQuery = `
            INSERT INTO igrejas (nome, logo_url, lider_principal)
            VALUES ($1, $2, $3)
            RETURNING id, nome, logo_url, lider_principal, assinatura_ativa, criado_em
        `
		if err := tx.QueryRow(ctx, igrejaQuery,
			strings.TrimSpace(input.Nome), input.LogoURL, input.FundadorID,
		).Scan(&ig.ID, &ig.Nome, &ig.LogoURL, &ig.LiderPrincipal, &ig.AssinaturaAtiva, &ig.CriadoEm); err != nil {
			return err
		}

		const membroQuery = `
            INSERT INTO membros (id, igreja_id, nome, sobrenome, email, telefone, area, aprovado, is_lider, is_ministro, foto_url)
            VALUES ($1, $2, $3, $4, lower($5), $6, $7, TRUE, TRUE, TRUE, $8)
            RETURNING id, igreja_id, nome, sobrenome, email, telefone, area, aprovado, is_lider, is_ministro, foto_url, criado_em
        `
		if err := tx.QueryRow(ctx, membroQuery,
			input.FundadorID, ig.ID,
			strings.TrimSpace(input.FundadorNome), strings.TrimSpace(input.FundadorSobrenome),
			strings.TrimSpace(input.FundadorEmail), input.FundadorTelefone, input.FundadorArea,
			input.FundadorFoto,
		).Scan(&m.ID, &m.IgrejaID, &m.Nome, &m.Sobrenome, &m.Email, &m.Telefone, &m.Area,
			&m.Aprovado, &m.IsLider, &m.IsMinistro, &m.FotoURL, &m.CriadoEm); err != nil {
			return err
		}

		const indiceQuery = `
            INSERT INTO membros_indice (usuario_id, igreja_id)
            VALUES ($1, $2)
        `
		_, err := tx.Exec(ctx, indiceQuery, input.FundadorID, ig.ID)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, nil, ErrVinculoExistente
		}
		return nil, nil, err
	}

	return &ig, &m, nil
}

// ResolveMembership resolve o vínculo usuário -> igreja pelo índice
// reverso (sem varrer organizações) e carrega o registro do membro.
func (r *Repository) ResolveMembership(ctx context.Context, usuarioID uuid.UUID) (uuid.UUID, *membro.Membro, error) {
	const query = `
        SELECT m.id, m.igreja_id, m.nome, m.sobrenome, m.email, m.telefone, m.area,
               m.aprovado, m.is_lider, m.is_ministro, m.foto_url, m.criado_em
        FROM membros_indice i
        JOIN membros m ON m.igreja_id = i.igreja_id AND m.id = i.usuario_id
        WHERE i.usuario_id = $1
    `

	var m membro.Membro
	err := r.pool.QueryRow(ctx, query, usuarioID).
		Scan(&m.ID, &m.IgrejaID, &m.Nome, &m.Sobrenome, &m.Email, &m.Telefone, &m.Area,
			&m.Aprovado, &m.IsLider, &m.IsMinistro, &m.FotoURL, &m.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil, ErrSemVinculo
		}
		return uuid.Nil, nil, err
	}
	return m.IgrejaID, &m, nil
}
