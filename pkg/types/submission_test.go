package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveTaxID(t *testing.T) {
	str := func(s string) *string { return &s }

	tests := []struct {
		name string
		sub  Submission
		want string
	}{
		{
			name: "category individual picks cpf",
			sub: Submission{
				AccountCategory: str("pessoa_fisica"),
				CPF:             str("52998224725"),
				CNPJ:            str("11222333000181"),
			},
			want: "52998224725",
		},
		{
			name: "category organization picks cnpj",
			sub: Submission{
				AccountCategory: str("pessoa_juridica"),
				CPF:             str("52998224725"),
				CNPJ:            str("11222333000181"),
			},
			want: "11222333000181",
		},
		{
			name: "no category prefers cpf",
			sub: Submission{
				CPF:  str("52998224725"),
				CNPJ: str("11222333000181"),
			},
			want: "52998224725",
		},
		{
			name: "cnpj only",
			sub:  Submission{CNPJ: str("11222333000181")},
			want: "11222333000181",
		},
		{
			name: "category set but id missing falls back",
			sub: Submission{
				AccountCategory: str("pessoa_juridica"),
				CPF:             str("52998224725"),
			},
			want: "52998224725",
		},
		{
			name: "nothing",
			sub:  Submission{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.ActiveTaxID())
		})
	}
}
