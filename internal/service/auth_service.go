package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/louvorapp/escala/internal/auth"
	"github.com/louvorapp/escala/internal/igreja"
	"github.com/louvorapp/escala/internal/membro"
	"github.com/louvorapp/escala/internal/repo"
	"github.com/louvorapp/escala/internal/util"
)

// Audience única do app: não há superfícies separadas de login.
const AudienceApp = "app"

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
)

type authRepository interface {
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error)
	CreateUsuario(ctx context.Context, arg repo.CreateUsuarioParams) (repo.Usuario, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.TokenRefresh, error)
	InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.TokenRefresh, error)
	InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, audience, keepHash string) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

type membershipResolver interface {
	Resolve(ctx context.Context, usuarioID uuid.UUID) (uuid.UUID, *membro.Membro, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de autenticação e sessões.
type AuthService struct {
	repo       authRepository
	vinculos   membershipResolver
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(r *repo.Queries, vinculos membershipResolver, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, vinculos: vinculos, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	Subject       uuid.UUID
	Roles         []string
	Profile       *AppProfile
	RefreshHash   string
	RefreshExpiry time.Time
}

// AppProfile descreve a conta autenticada e o vínculo, quando existe.
// Membro nil significa conta sem igreja: o app direciona para o
// onboarding (fundar igreja ou pedir entrada).
type AppProfile struct {
	ID       string         `json:"id"`
	Nome     string         `json:"nome"`
	Email    string         `json:"email"`
	IgrejaID *string        `json:"igrejaId"`
	Membro   *membro.Membro `json:"membro"`
}

// Login autentica a conta e resolve o vínculo com a igreja.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetUsuarioByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.issueSession(ctx, user)
}

// Register cria a conta e já devolve sessão autenticada. E-mail em uso
// sobe como repo.ErrEmailEmUso para o handler orientar o login.
func (s *AuthService) Register(ctx context.Context, nome, email, password string) (*LoginResult, error) {
	nome = strings.TrimSpace(nome)
	email = strings.ToLower(strings.TrimSpace(email))

	if err := util.RequireString(nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUsuario(ctx, repo.CreateUsuarioParams{
		Nome:      nome,
		Email:     email,
		SenhaHash: hash,
	})
	if err != nil {
		return nil, err
	}

	return s.issueSession(ctx, user)
}

// Refresh troca refresh token por novos tokens (rotação).
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revogado || util.Now().After(record.Expiracao) || record.Audience != AudienceApp {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.RefreshRedisKey(AudienceApp, hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	user, err := s.repo.GetUsuarioByID(ctx, record.Subject)
	if err != nil {
		return nil, err
	}

	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	// Revoga token anterior (DB + Redis)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout revoga refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	redisKey := auth.RefreshRedisKey(AudienceApp, hash)
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// GetMe retorna perfil e papéis atuais do subject.
func (s *AuthService) GetMe(ctx context.Context, subject uuid.UUID) (*AppProfile, []string, error) {
	user, err := s.repo.GetUsuarioByID(ctx, subject)
	if err != nil {
		return nil, nil, err
	}

	profile, roles, _, err := s.buildProfile(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return profile, roles, nil
}

func (s *AuthService) GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error) {
	return s.repo.GetUsuarioByEmail(ctx, strings.ToLower(email))
}

func (s *AuthService) issueSession(ctx context.Context, user repo.Usuario) (*LoginResult, error) {
	if !user.Ativo {
		return nil, ErrAccountDisabled
	}

	profile, roles, igrejaID, err := s.buildProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	token, _, err := s.jwt.GenerateAccessToken(user.ID.String(), AudienceApp, igrejaID, roles)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, user.ID, refreshHash, expires); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		Subject:       user.ID,
		Roles:         roles,
		Profile:       profile,
		RefreshHash:   refreshHash,
		RefreshExpiry: expires,
	}, nil
}

// buildProfile resolve o vínculo e deriva papéis do registro de membro.
// Conta sem vínculo autentica com papel VISITANTE para poder concluir o
// onboarding; membro pendente fica restrito a PENDENTE até aprovação.
func (s *AuthService) buildProfile(ctx context.Context, user repo.Usuario) (*AppProfile, []string, string, error) {
	profile := &AppProfile{
		ID:    user.ID.String(),
		Nome:  user.Nome,
		Email: user.Email,
	}

	igrejaID, m, err := s.vinculos.Resolve(ctx, user.ID)
	if err != nil {
		if errors.Is(err, igreja.ErrSemVinculo) {
			return profile, []string{"VISITANTE"}, "", nil
		}
		return nil, nil, "", err
	}

	id := igrejaID.String()
	profile.IgrejaID = &id
	profile.Membro = m

	if !m.Aprovado {
		return profile, []string{"PENDENTE"}, id, nil
	}

	roles := []string{"MEMBRO"}
	if m.IsMinistro {
		roles = append(roles, "MINISTRO")
	}
	if m.IsLider {
		roles = append(roles, "LIDER")
	}
	return profile, roles, id, nil
}

func (s *AuthService) persistRefresh(ctx context.Context, subject uuid.UUID, hash string, expires time.Time) error {
	_, err := s.repo.InsertRefreshToken(ctx, repo.InsertRefreshTokenParams{
		ID:        uuid.New(),
		Subject:   subject,
		Audience:  AudienceApp,
		TokenHash: hash,
		Expiracao: expires,
		CriadoEm:  util.Now(),
	})
	if err != nil {
		return err
	}

	if err := s.repo.InvalidateOtherRefreshTokens(ctx, subject, AudienceApp, hash); err != nil {
		return err
	}

	return s.redis.Set(ctx, auth.RefreshRedisKey(AudienceApp, hash), "active", time.Until(expires)).Err()
}
