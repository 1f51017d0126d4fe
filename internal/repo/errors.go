package repo

import "errors"

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrEmailEmUso indica conta já cadastrada com o mesmo e-mail.
	ErrEmailEmUso = errors.New("email já cadastrado")
)
