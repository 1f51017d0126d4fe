package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/louvorapp/escala/internal/agenda"
	"github.com/louvorapp/escala/internal/comentario"
	"github.com/louvorapp/escala/internal/config"
	"github.com/louvorapp/escala/internal/escala"
	httpmiddleware "github.com/louvorapp/escala/internal/http/middleware"
	"github.com/louvorapp/escala/internal/igreja"
	"github.com/louvorapp/escala/internal/membro"
	"github.com/louvorapp/escala/internal/musica"
	"github.com/louvorapp/escala/internal/notificacao"
	"github.com/louvorapp/escala/internal/service"
)

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	igrejas       *igreja.Service
	membros       *membro.Service
	musicas       *musica.Service
	escalas       *escala.Service
	comentarios   *comentario.Service
	notificacoes  *notificacao.Service
	agenda        *agenda.Repository
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService, igrejas *igreja.Service) (http.Handler, error) {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	membroRepo := membro.NewRepository(pool)
	notifRepo := notificacao.NewRepository(pool)
	notifService := notificacao.NewService(notifRepo, membroRepo, redisClient, cfg.NotifyTimeout)

	membroService := membro.NewService(membroRepo, notifService)
	musicaService := musica.NewService(musica.NewRepository(pool))
	escalaService := escala.NewService(escala.NewRepository(pool), notifService)
	comentarioService := comentario.NewService(comentario.NewRepository(pool), membroRepo, notifService)
	agendaRepo := agenda.NewRepository(pool)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		igrejas:       igrejas,
		membros:       membroService,
		musicas:       musicaService,
		escalas:       escalaService,
		comentarios:   comentarioService,
		notificacoes:  notifService,
		agenda:        agendaRepo,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Register)
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)

		// onboarding: disponível mesmo sem vínculo aprovado
		private.Post("/igrejas", h.CriarIgreja)
		private.Post("/igrejas/{id}/membros", h.SolicitarEntrada)

		private.Group(func(app chi.Router) {
			app.Use(httpmiddleware.RequireAprovado)

			app.Route("/igreja", func(ig chi.Router) {
				ig.Get("/", h.GetIgreja)
				ig.With(httpmiddleware.RequireLider).Patch("/", h.AtualizarIgreja)
			})

			app.Route("/membros", func(m chi.Router) {
				m.Get("/", h.ListMembros)
				m.Get("/{id}", h.GetMembro)
				m.Patch("/{id}", h.AtualizarMembro)
				m.With(httpmiddleware.RequireLider).Patch("/{id}/aprovacao", h.AprovarMembro)
				m.With(httpmiddleware.RequireLider).Patch("/{id}/ministro", h.SetMinistro)
				m.With(httpmiddleware.RequireLider).Delete("/{id}/pendente", h.RecusarPendente)
			})

			app.Route("/musicas", func(mu chi.Router) {
				mu.Get("/", h.ListMusicas)
				mu.Post("/", h.CriarMusica)
				mu.Get("/{id}", h.GetMusica)
				mu.Put("/{id}", h.AtualizarMusica)
				mu.Delete("/{id}", h.ExcluirMusica)
			})

			app.Route("/escalas", func(e chi.Router) {
				e.Get("/", h.ListEscalas)
				e.With(httpmiddleware.RequireMinistro).Post("/", h.CriarEscala)
				e.Get("/{id}", h.GetEscala)
				e.Put("/{id}", h.AtualizarEscala)
				e.Delete("/{id}", h.ExcluirEscala)
				e.Get("/{id}/comentarios", h.ListComentarios)
				e.Post("/{id}/comentarios", h.AddComentario)
			})

			app.Route("/comentarios", func(c chi.Router) {
				c.Put("/{id}", h.EditarComentario)
				c.Delete("/{id}", h.ExcluirComentario)
			})

			app.Route("/notificacoes", func(n chi.Router) {
				n.Get("/", h.ListNotificacoes)
				n.Get("/nao-lidas", h.ContarNaoLidas)
				n.Get("/stream", h.StreamNaoLidas)
				n.Post("/lidas", h.MarcarTodasLidas)
				n.Patch("/{id}/lida", h.MarcarLida)
				n.Delete("/{id}", h.ExcluirNotificacao)
			})

			app.Route("/agenda", func(a chi.Router) {
				a.Get("/", h.ListAgenda)
				a.Get("/{data}", h.GetResponsavel)
				a.With(httpmiddleware.RequireLider).Put("/{data}", h.DefinirResponsavel)
				a.With(httpmiddleware.RequireLider).Delete("/{data}", h.RemoverResponsavel)
			})
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// currentMembro carrega o registro de membro do usuário autenticado.
func (h *Handler) currentMembro(r *http.Request) (*membro.Membro, error) {
	subject, err := uuid.Parse(httpmiddleware.GetSubject(r.Context()))
	if err != nil {
		return nil, err
	}
	igrejaID, err := uuid.Parse(httpmiddleware.GetIgrejaID(r.Context()))
	if err != nil {
		return nil, err
	}
	return h.membros.Get(r.Context(), igrejaID, subject)
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}
