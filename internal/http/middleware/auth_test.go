package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/louvorapp/escala/internal/auth"
)

func newTestJWT() *auth.JWTManager {
	return auth.NewJWTManager(strings.Repeat("s", 32), time.Minute)
}

func TestAuthInjetaClaims(t *testing.T) {
	jwtMgr := newTestJWT()
	token, _, err := jwtMgr.GenerateAccessToken("user-1", "app", "igreja-1", []string{"MEMBRO", "LIDER"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var got struct {
		subject, igreja, audience string
		roles                     []string
	}
	handler := Auth(jwtMgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.subject = GetSubject(r.Context())
		got.igreja = GetIgrejaID(r.Context())
		got.audience = GetAudience(r.Context())
		got.roles = GetRoles(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got.subject != "user-1" || got.igreja != "igreja-1" || got.audience != "app" {
		t.Fatalf("claims não propagadas: %+v", got)
	}
	if len(got.roles) != 2 {
		t.Fatalf("roles não propagadas: %v", got.roles)
	}
}

func TestAuthRejeitaTokenAusenteOuInvalido(t *testing.T) {
	handler := Auth(newTestJWT())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler não deveria rodar")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{name: "sem header", header: ""},
		{name: "esquema errado", header: "Basic abc"},
		{name: "token lixo", header: "Bearer nao-e-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, esperava 401", rec.Code)
			}
		})
	}
}

func TestAuthRejeitaTokenExpirado(t *testing.T) {
	expirado := auth.NewJWTManager(strings.Repeat("s", 32), -time.Minute)
	token, _, err := expirado.GenerateAccessToken("user-1", "app", "", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	handler := Auth(newTestJWT())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler não deveria rodar")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, esperava 401", rec.Code)
	}
}

func TestGuardasDePapel(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	run := func(guard func(http.Handler) http.Handler, roles []string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := context.WithValue(req.Context(), ContextKeyRoles, roles)
		rec := httptest.NewRecorder()
		guard(ok).ServeHTTP(rec, req.WithContext(ctx))
		return rec.Code
	}

	cases := []struct {
		name  string
		guard func(http.Handler) http.Handler
		roles []string
		want  int
	}{
		{"aprovado aceita membro", RequireAprovado, []string{"MEMBRO"}, http.StatusNoContent},
		{"aprovado rejeita pendente", RequireAprovado, []string{"PENDENTE"}, http.StatusForbidden},
		{"aprovado rejeita visitante", RequireAprovado, []string{"VISITANTE"}, http.StatusForbidden},
		{"lider aceita lider", RequireLider, []string{"MEMBRO", "LIDER"}, http.StatusNoContent},
		{"lider rejeita ministro", RequireLider, []string{"MEMBRO", "MINISTRO"}, http.StatusForbidden},
		{"ministro aceita ministro", RequireMinistro, []string{"MEMBRO", "MINISTRO"}, http.StatusNoContent},
		{"ministro aceita lider", RequireMinistro, []string{"MEMBRO", "LIDER"}, http.StatusNoContent},
		{"ministro rejeita membro comum", RequireMinistro, []string{"MEMBRO"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := run(tc.guard, tc.roles); got != tc.want {
				t.Fatalf("status = %d, esperava %d", got, tc.want)
			}
		})
	}
}
