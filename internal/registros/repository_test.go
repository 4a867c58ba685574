package registros

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNombre(t *testing.T) {
	cases := map[string]string{
		"Ana Pérez":        "Ana Pérez",
		"  ana   pérez  ":  "ana pérez",
		"\tLuis\nGómez":    "Luis Gómez",
		"":                 "",
		"   ":              "",
		"José  de  la Paz": "José de la Paz",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeNombre(in), "input %q", in)
	}
}
