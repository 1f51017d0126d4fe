package comentario

import (
	"reflect"
	"testing"
)

func TestScanMencoes(t *testing.T) {
	cases := []struct {
		name  string
		texto string
		want  []Mencao
	}{
		{
			name:  "sem menção",
			texto: "ensaio confirmado para quinta",
			want:  nil,
		},
		{
			name:  "um nome",
			texto: "@Pedro chega mais cedo",
			want:  []Mencao{{Nome: "Pedro", Sobrenome: "chega"}},
		},
		{
			name:  "dois nomes gulosos",
			texto: "vamos @Ana Clara?",
			want:  []Mencao{{Nome: "Ana", Sobrenome: "Clara"}},
		},
		{
			name:  "nome no fim do texto",
			texto: "não esquece o cabo @Lucas",
			want:  []Mencao{{Nome: "Lucas"}},
		},
		{
			name:  "acentuação",
			texto: "@João Vitória assume o teclado",
			want:  []Mencao{{Nome: "João", Sobrenome: "Vitória"}},
		},
		{
			name:  "pontuação corta o token",
			texto: "valeu @Ana, chegou cedo",
			want:  []Mencao{{Nome: "Ana"}},
		},
		{
			name:  "múltiplas menções",
			texto: "@Ana Clara e @Lucas, ensaio às 19h",
			want:  []Mencao{{Nome: "Ana", Sobrenome: "Clara"}, {Nome: "Lucas"}},
		},
		{
			name:  "menção repetida uma vez só",
			texto: "@Lucas @Lucas @Lucas",
			want:  []Mencao{{Nome: "Lucas"}},
		},
		{
			name:  "arroba solta não conta",
			texto: "manda no email fulano@ depois",
			want:  nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScanMencoes(tc.texto)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ScanMencoes(%q) = %v, esperava %v", tc.texto, got, tc.want)
			}
		})
	}
}
