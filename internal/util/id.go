package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewULID gera um ULID ordenável por tempo; usado em ids de notificação
// para que a caixa de entrada ordene naturalmente pela criação.
func NewULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
}
