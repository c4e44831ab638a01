package validate

import "strings"

// Digits strips everything that is not a decimal digit.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSameDigit(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// ValidCPF reports whether s is a valid individual tax id (CPF). Formatting
// characters are ignored; the two mod-11 check digits must hold and
// repeated-digit sequences are rejected.
func ValidCPF(s string) bool {
	cpf := Digits(s)
	if len(cpf) != 11 || allSameDigit(cpf) {
		return false
	}

	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(cpf[i]-'0') * (10 - i)
	}
	check := 11 - sum%11
	if check >= 10 {
		check = 0
	}
	if check != int(cpf[9]-'0') {
		return false
	}

	sum = 0
	for i := 0; i < 10; i++ {
		sum += int(cpf[i]-'0') * (11 - i)
	}
	check = 11 - sum%11
	if check >= 10 {
		check = 0
	}
	return check == int(cpf[10]-'0')
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidCNPJ reports whether s is a valid organization tax id (CNPJ).
func ValidCNPJ(s string) bool {
	cnpj := Digits(s)
	if len(cnpj) != 14 || allSameDigit(cnpj) {
		return false
	}

	sum := 0
	for i, w := range cnpjWeights1 {
		sum += int(cnpj[i]-'0') * w
	}
	check := sum % 11
	if check < 2 {
		check = 0
	} else {
		check = 11 - check
	}
	if check != int(cnpj[12]-'0') {
		return false
	}

	sum = 0
	for i, w := range cnpjWeights2 {
		sum += int(cnpj[i]-'0') * w
	}
	check = sum % 11
	if check < 2 {
		check = 0
	} else {
		check = 11 - check
	}
	return check == int(cnpj[13]-'0')
}
