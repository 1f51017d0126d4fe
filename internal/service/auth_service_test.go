package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/louvorapp/escala/internal/auth"
	"github.com/louvorapp/escala/internal/igreja"
	"github.com/louvorapp/escala/internal/membro"
	"github.com/louvorapp/escala/internal/repo"
)

type stubAuthRepo struct {
	user         repo.Usuario
	refreshCalls int
	tokens       map[string]repo.TokenRefresh
}

func (s *stubAuthRepo) GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error) {
	if strings.EqualFold(email, s.user.Email) {
		return s.user, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error) {
	if id == s.user.ID {
		return s.user, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) CreateUsuario(ctx context.Context, arg repo.CreateUsuarioParams) (repo.Usuario, error) {
	if strings.EqualFold(arg.Email, s.user.Email) {
		return repo.Usuario{}, repo.ErrEmailEmUso
	}
	return repo.Usuario{
		ID:        uuid.New(),
		Nome:      arg.Nome,
		Email:     arg.Email,
		SenhaHash: arg.SenhaHash,
		Ativo:     true,
	}, nil
}

func (s *stubAuthRepo) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.TokenRefresh, error) {
	if record, ok := s.tokens[tokenHash]; ok {
		return record, nil
	}
	return repo.TokenRefresh{}, repo.ErrNotFound
}

func (s *stubAuthRepo) InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.TokenRefresh, error) {
	s.refreshCalls++
	record := repo.TokenRefresh{
		ID:        arg.ID,
		Subject:   arg.Subject,
		Audience:  arg.Audience,
		TokenHash: arg.TokenHash,
		Expiracao: arg.Expiracao,
		CriadoEm:  arg.CriadoEm,
	}
	if s.tokens == nil {
		s.tokens = make(map[string]repo.TokenRefresh)
	}
	s.tokens[arg.TokenHash] = record
	return record, nil
}

func (s *stubAuthRepo) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error {
	return nil
}

func (s *stubAuthRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	record, ok := s.tokens[tokenHash]
	if !ok {
		return repo.ErrNotFound
	}
	record.Revogado = true
	s.tokens[tokenHash] = record
	return nil
}

type stubResolver struct {
	igrejaID uuid.UUID
	membro   *membro.Membro
	err      error
}

func (s *stubResolver) Resolve(ctx context.Context, usuarioID uuid.UUID) (uuid.UUID, *membro.Membro, error) {
	if s.err != nil {
		return uuid.Nil, nil, s.err
	}
	return s.igrejaID, s.membro, nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	s.store[key] = fmt.Sprint(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func containsRole(roles []string, target string) bool {
	for _, role := range roles {
		if role == target {
			return true
		}
	}
	return false
}

func newTestAuthService(repoStub *stubAuthRepo, resolver *stubResolver) *AuthService {
	return &AuthService{
		repo:       repoStub,
		vinculos:   resolver,
		redis:      &stubRedis{},
		jwt:        auth.NewJWTManager(strings.Repeat("a", 32), time.Minute),
		refreshTTL: time.Hour,
	}
}

func testUser(t *testing.T, password string) repo.Usuario {
	t.Helper()
	hash, err := auth.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return repo.Usuario{
		ID:        uuid.New(),
		Nome:      "Pedro",
		Email:     "pedro@example.com",
		SenhaHash: hash,
		Ativo:     true,
	}
}

func TestLoginDerivaPapeisDoVinculo(t *testing.T) {
	password := "SenhaForte123!"
	user := testUser(t, password)

	igrejaID := uuid.New()
	resolver := &stubResolver{
		igrejaID: igrejaID,
		membro: &membro.Membro{
			ID:         user.ID,
			IgrejaID:   igrejaID,
			Nome:       "Pedro",
			Aprovado:   true,
			IsLider:    true,
			IsMinistro: true,
		},
	}

	svc := newTestAuthService(&stubAuthRepo{user: user}, resolver)

	result, err := svc.Login(context.Background(), user.Email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	for _, want := range []string{"MEMBRO", "MINISTRO", "LIDER"} {
		if !containsRole(result.Roles, want) {
			t.Errorf("papel %s ausente em %v", want, result.Roles)
		}
	}
	if result.Profile.IgrejaID == nil || *result.Profile.IgrejaID != igrejaID.String() {
		t.Error("perfil deve carregar a igreja do vínculo")
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("sessão deve emitir os dois tokens")
	}
}

func TestLoginSemVinculoEntraComoVisitante(t *testing.T) {
	password := "SenhaForte123!"
	user := testUser(t, password)

	svc := newTestAuthService(&stubAuthRepo{user: user}, &stubResolver{err: igreja.ErrSemVinculo})

	result, err := svc.Login(context.Background(), user.Email, password)
	if err != nil {
		t.Fatalf("login sem vínculo deve funcionar (onboarding): %v", err)
	}
	if !containsRole(result.Roles, "VISITANTE") || len(result.Roles) != 1 {
		t.Fatalf("esperava só VISITANTE, veio %v", result.Roles)
	}
	if result.Profile.IgrejaID != nil || result.Profile.Membro != nil {
		t.Error("perfil sem vínculo não carrega igreja nem membro")
	}
}

func TestLoginPendenteFicaRestrito(t *testing.T) {
	password := "SenhaForte123!"
	user := testUser(t, password)

	igrejaID := uuid.New()
	resolver := &stubResolver{
		igrejaID: igrejaID,
		membro:   &membro.Membro{ID: user.ID, IgrejaID: igrejaID, Nome: "Pedro", Aprovado: false},
	}

	svc := newTestAuthService(&stubAuthRepo{user: user}, resolver)

	result, err := svc.Login(context.Background(), user.Email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if len(result.Roles) != 1 || result.Roles[0] != "PENDENTE" {
		t.Fatalf("membro não aprovado fica só com PENDENTE, veio %v", result.Roles)
	}
}

func TestLoginSenhaErrada(t *testing.T) {
	user := testUser(t, "SenhaForte123!")
	svc := newTestAuthService(&stubAuthRepo{user: user}, &stubResolver{err: igreja.ErrSemVinculo})

	if _, err := svc.Login(context.Background(), user.Email, "outra-senha"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("esperava ErrInvalidCredentials, veio %v", err)
	}
}

func TestRegisterEmailEmUso(t *testing.T) {
	user := testUser(t, "SenhaForte123!")
	svc := newTestAuthService(&stubAuthRepo{user: user}, &stubResolver{err: igreja.ErrSemVinculo})

	if _, err := svc.Register(context.Background(), "Pedro", user.Email, "SenhaForte123!"); !errors.Is(err, repo.ErrEmailEmUso) {
		t.Fatalf("esperava ErrEmailEmUso, veio %v", err)
	}
}

func TestRefreshRotacionaToken(t *testing.T) {
	password := "SenhaForte123!"
	user := testUser(t, password)
	repoStub := &stubAuthRepo{user: user}
	svc := newTestAuthService(repoStub, &stubResolver{err: igreja.ErrSemVinculo})

	login, err := svc.Login(context.Background(), user.Email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	renewed, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if renewed.RefreshToken == login.RefreshToken {
		t.Error("refresh deve rotacionar o token")
	}

	// token antigo foi revogado
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("token antigo deve ser inválido, veio %v", err)
	}
}

func TestRefreshInvalido(t *testing.T) {
	svc := newTestAuthService(&stubAuthRepo{}, &stubResolver{err: igreja.ErrSemVinculo})

	if _, err := svc.Refresh(context.Background(), "token-desconhecido"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("esperava ErrRefreshInvalid, veio %v", err)
	}
}
