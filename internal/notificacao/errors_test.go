package notificacao

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want FalhaKind
	}{
		{"nil", nil, FalhaPermanente},
		{"deadline", context.DeadlineExceeded, FalhaTransiente},
		{"deadline embrulhado", fmt.Errorf("insert: %w", context.DeadlineExceeded), FalhaTransiente},
		{"conexão pg", &pgconn.PgError{Code: "08006"}, FalhaTransiente},
		{"serialização", &pgconn.PgError{Code: "40001"}, FalhaTransiente},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, FalhaTransiente},
		{"constraint", &pgconn.PgError{Code: "23505"}, FalhaPermanente},
		{"genérico", errors.New("boom"), FalhaPermanente},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify(%v) = %v, esperava %v", tc.err, got, tc.want)
			}
		})
	}
}
