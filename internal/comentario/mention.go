package comentario

import (
	"regexp"
)

// Mencao é um token "@Nome" ou "@Nome Sobrenome" extraído do texto.
type Mencao struct {
	Nome      string
	Sobrenome string
}

// Aceita letras Unicode (inclui acentuação latina) em um ou dois tokens
// separados por espaço; o casamento de dois tokens é preferido.
var mencaoRe = regexp.MustCompile(`@(\p{L}+)(?:[ \t]+(\p{L}+))?`)

// ScanMencoes extrai os tokens de menção do texto, na ordem em que
// aparecem, sem repetir tokens idênticos.
func ScanMencoes(texto string) []Mencao {
	matches := mencaoRe.FindAllStringSubmatch(texto, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[Mencao]struct{}, len(matches))
	mencoes := make([]Mencao, 0, len(matches))
	for _, match := range matches {
		m := Mencao{Nome: match[1], Sobrenome: match[2]}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		mencoes = append(mencoes, m)
	}
	return mencoes
}
