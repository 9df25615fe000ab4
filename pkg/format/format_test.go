package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnlyDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"digits only", "12345", "12345"},
		{"masked cpf", "111.444.777-35", "11144477735"},
		{"letters and spaces", "a1 b2 c3", "123"},
		{"non ascii digits dropped", "１２3", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OnlyDigits(tt.input))
		})
	}
}

func TestMaskCPF(t *testing.T) {
	assert.Equal(t, "111.444.777-35", MaskCPF("11144477735"))
	assert.Equal(t, "111", MaskCPF("111"))
	assert.Equal(t, "111.4", MaskCPF("1114"))
	assert.Equal(t, "111.444.777-3", MaskCPF("1114447773"))
	assert.Equal(t, "111.444.777-35", MaskCPF("111444777359999"), "digits past 11 are dropped")
	assert.Equal(t, "111.444.777-35", MaskCPF("111.444.777-35"), "masked input re-normalizes")
	assert.Equal(t, "", MaskCPF("abc"))
}

func TestMaskCEP(t *testing.T) {
	assert.Equal(t, "01310-100", MaskCEP("01310100"))
	assert.Equal(t, "01310", MaskCEP("01310"))
	assert.Equal(t, "01310-1", MaskCEP("013101"))
	assert.Equal(t, "01310-100", MaskCEP("0131010099"))
}

func TestMaskBirthDate(t *testing.T) {
	assert.Equal(t, "29/02/2020", MaskBirthDate("29022020"))
	assert.Equal(t, "29", MaskBirthDate("29"))
	assert.Equal(t, "29/0", MaskBirthDate("290"))
	assert.Equal(t, "29/02/2", MaskBirthDate("29022"))
	assert.Equal(t, "29/02/2020", MaskBirthDate("2902202099"))
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"8", "(8"},
		{"82", "(82"},
		{"823", "(82) 3"},
		{"823333", "(82) 3333"},
		{"8233334", "(82) 3333-4"},
		{"8233334444", "(82) 3333-4444"},
		{"82999998888", "(82) 99999-8888"},
		{"(82) 99999-8888", "(82) 99999-8888"},
		{"829999988887777", "(82) 99999-8888"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskPhone(tt.input))
		})
	}
}

// FuzzOnlyDigits checks the normalizer invariants on arbitrary input: only
// digits survive, their order is kept, and a second pass changes nothing.
func FuzzOnlyDigits(f *testing.F) {
	f.Add("")
	f.Add("111.444.777-35")
	f.Add("(82) 99999-8888")
	f.Add(string([]byte{0x00, '1', 0xff, '2'}))

	f.Fuzz(func(t *testing.T, input string) {
		out := OnlyDigits(input)
		for _, r := range out {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit %q in output %q", r, out)
			}
		}
		if OnlyDigits(out) != out {
			t.Fatalf("not idempotent for %q", input)
		}
		var want []byte
		for i := 0; i < len(input); i++ {
			if input[i] >= '0' && input[i] <= '9' {
				want = append(want, input[i])
			}
		}
		if string(want) != out {
			t.Fatalf("digit order changed: got %q want %q", out, want)
		}
		if masked := MaskCPF(input); len(OnlyDigits(masked)) > CPFDigits {
			t.Fatalf("cpf mask kept too many digits: %q", masked)
		}
	})
}
