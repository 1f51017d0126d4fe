package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/louvorapp/escala/internal/auth"
)

type contextKey string

const (
	ContextKeySubject  contextKey = "subject"
	ContextKeyIgreja   contextKey = "igreja"
	ContextKeyRoles    contextKey = "roles"
	ContextKeyAudience contextKey = "audience"
)

// Auth valida JWT de acesso e injeta claims no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			if len(claims.Audience) == 0 {
				writeError(w, http.StatusUnauthorized, "AUTH", "audience inválida")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyAudience, claims.Audience[0])
			ctx = context.WithValue(ctx, ContextKeyIgreja, claims.IgrejaID)
			ctx = context.WithValue(ctx, ContextKeyRoles, claims.Roles)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetIgrejaID recupera a igreja do vínculo do contexto.
func GetIgrejaID(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyIgreja).(string)
	return val
}

// GetAudience recupera audience do contexto.
func GetAudience(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyAudience).(string)
	return val
}

// GetRoles recupera roles do contexto.
func GetRoles(ctx context.Context) []string {
	val, _ := ctx.Value(ContextKeyRoles).([]string)
	return val
}

// RequireAprovado bloqueia contas sem vínculo aprovado.
func RequireAprovado(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasAnyRole(r.Context(), "MEMBRO", "MINISTRO", "LIDER") {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "vínculo pendente de aprovação")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLider garante papel de líder.
func RequireLider(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasAnyRole(r.Context(), "LIDER") {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a líderes")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireMinistro garante ministro ou líder.
func RequireMinistro(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasAnyRole(r.Context(), "MINISTRO", "LIDER") {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a ministros")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasAnyRole(ctx context.Context, wanted ...string) bool {
	roles := GetRoles(ctx)
	for _, role := range roles {
		for _, want := range wanted {
			if strings.EqualFold(role, want) {
				return true
			}
		}
	}
	return false
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
