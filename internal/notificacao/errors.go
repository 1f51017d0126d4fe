package notificacao

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// FalhaKind classifica erros do store remoto.
type FalhaKind int

const (
	// FalhaPermanente não deve ser reexecutada.
	FalhaPermanente FalhaKind = iota
	// FalhaTransiente vale a pena repetir com backoff.
	FalhaTransiente
)

// Classify separa falhas transientes (timeout, conexão, serialização)
// de falhas permanentes (violação de constraint, dados inválidos).
func Classify(err error) FalhaKind {
	if err == nil {
		return FalhaPermanente
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return FalhaTransiente
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FalhaTransiente
	}

	if pgconn.Timeout(err) {
		return FalhaTransiente
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// classe 08 = falha de conexão; 40001/40P01 = serialização/deadlock
		if strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return FalhaTransiente
		}
	}

	return FalhaPermanente
}
