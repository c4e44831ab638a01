package validate

import (
	"net/url"
	"testing"

	"essencialform/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalForm() url.Values {
	return url.Values{
		"fullName":    {"Maria da Silva"},
		"phone":       {"(11) 98765-4321"},
		"bankName":    {"Banco do Brasil"},
		"accountType": {"corrente"},
		"agency":      {"1234"},
		"account":     {"12345-6"},
	}
}

func failedFields(errs []types.FieldError) []string {
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	return fields
}

func TestParseFormMinimal(t *testing.T) {
	sub, fieldErrs, err := ParseForm(minimalForm())
	require.NoError(t, err)
	require.Empty(t, fieldErrs)
	require.NotNil(t, sub)

	assert.Equal(t, "Maria da Silva", sub.FullName)
	assert.Equal(t, "11987654321", sub.Phone)
	assert.Equal(t, "Banco do Brasil", sub.BankName)
	assert.Equal(t, "corrente", sub.AccountType)
	assert.Equal(t, "1234", sub.Agency)
	assert.Equal(t, "12345-6", sub.Account)

	assert.Nil(t, sub.CPF)
	assert.Nil(t, sub.CNPJ)
	assert.Nil(t, sub.Email)
	assert.Nil(t, sub.PixKey)
	assert.Nil(t, sub.State)
}

func TestParseFormNormalization(t *testing.T) {
	values := minimalForm()
	values.Set("cpf", "529.982.247-25")
	values.Set("email", "  Maria@Example.COM ")
	values.Set("cep", "01310-100")
	values.Set("fullName", "  Maria <b>da Silva</b>  ")

	sub, fieldErrs, err := ParseForm(values)
	require.NoError(t, err)
	require.Empty(t, fieldErrs)

	require.NotNil(t, sub.CPF)
	assert.Equal(t, "52998224725", *sub.CPF)
	require.NotNil(t, sub.Email)
	assert.Equal(t, "maria@example.com", *sub.Email)
	require.NotNil(t, sub.CEP)
	assert.Equal(t, "01310100", *sub.CEP)
	assert.Equal(t, "Maria bda Silva/b", sub.FullName)
}

func TestParseFormMissingRequired(t *testing.T) {
	sub, fieldErrs, err := ParseForm(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, sub)

	fields := failedFields(fieldErrs)
	assert.Contains(t, fields, "fullName")
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "bankName")
	assert.Contains(t, fields, "accountType")
	assert.Contains(t, fields, "agency")
	assert.Contains(t, fields, "account")
}

func TestParseFormBankingFieldsAllRequired(t *testing.T) {
	for _, field := range []string{"bankName", "accountType", "agency", "account"} {
		t.Run(field, func(t *testing.T) {
			values := minimalForm()
			values.Del(field)

			sub, fieldErrs, err := ParseForm(values)
			require.NoError(t, err)
			assert.Nil(t, sub)
			assert.Equal(t, []string{field}, failedFields(fieldErrs))
		})
	}
}

func TestParseFormInvalidTaxIDs(t *testing.T) {
	values := minimalForm()
	values.Set("cpf", "111.111.111-11")
	values.Set("cnpj", "11.222.333/0001-82")

	sub, fieldErrs, err := ParseForm(values)
	require.NoError(t, err)
	assert.Nil(t, sub)

	fields := failedFields(fieldErrs)
	assert.Contains(t, fields, "cpf")
	assert.Contains(t, fields, "cnpj")
}

func TestParseFormInvalidAccountType(t *testing.T) {
	values := minimalForm()
	values.Set("accountType", "investimento")

	sub, fieldErrs, err := ParseForm(values)
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.Contains(t, failedFields(fieldErrs), "accountType")
}

func TestParseFormInvalidAgency(t *testing.T) {
	values := minimalForm()
	values.Set("agency", "12345")

	sub, fieldErrs, err := ParseForm(values)
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.Contains(t, failedFields(fieldErrs), "agency")
}

func TestParseFormInvalidAccountCategory(t *testing.T) {
	values := minimalForm()
	values.Set("accountCategory", "empresa")

	sub, fieldErrs, err := ParseForm(values)
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.Contains(t, failedFields(fieldErrs), "accountCategory")
}

func TestValidPixKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"email", "maria@example.com", true},
		{"uppercase email", "Maria@Example.com", true},
		{"uuid", "123e4567-e89b-12d3-a456-426614174000", true},
		{"cpf", "529.982.247-25", true},
		{"mobile with area code", "11987654321", true},
		{"landline", "1133334444", true},
		{"cnpj", "11.222.333/0001-81", true},
		{"garbage", "abc", false},
		{"bad email", "maria@", false},
		{"nine digits", "123456789", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validPixKey(tt.key))
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", Sanitize("  <script>alert(1)</script>  "))
	assert.Equal(t, "ok", Sanitize("ok"))
	assert.Equal(t, "", Sanitize("   "))
}
