package validate

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"essencialform/pkg/types"

	"github.com/go-playground/form/v4"
)

var decoder = form.NewDecoder()

// SubmissionForm mirrors the raw form fields as submitted by the frontend.
type SubmissionForm struct {
	FullName        string `form:"fullName"`
	CPF             string `form:"cpf"`
	CNPJ            string `form:"cnpj"`
	AccountCategory string `form:"accountCategory"`
	Phone           string `form:"phone"`
	Email           string `form:"email"`
	BirthDate       string `form:"birthDate"`

	CEP          string `form:"cep"`
	Street       string `form:"street"`
	Number       string `form:"number"`
	Complement   string `form:"complement"`
	Neighborhood string `form:"neighborhood"`
	City         string `form:"city"`
	State        string `form:"state"`

	BankName    string `form:"bankName"`
	AccountType string `form:"accountType"`
	Agency      string `form:"agency"`
	Account     string `form:"account"`
	PixKey      string `form:"pixKey"`

	AvailableLimit string `form:"availableLimit"`
	LoanAmount     string `form:"loanAmount"`
}

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	agencyPattern   = regexp.MustCompile(`^\d{1,4}$`)
	uuidPattern     = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	phonePixPattern = regexp.MustCompile(`^(\(\d{2}\)\s?)?\d{4,5}-?\d{4}$|^\d{10,11}$`)
)

var accountTypes = map[string]bool{
	types.AccountTypeChecking: true,
	types.AccountTypeSavings:  true,
	types.AccountTypePayroll:  true,
}

// Sanitize trims surrounding whitespace and strips angle brackets so form
// values cannot carry naive markup into notification text.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "<", "")
	return strings.ReplaceAll(s, ">", "")
}

// ParseForm decodes and validates a raw form submission. It returns either a
// normalized submission ready for insert, or the full list of field-level
// problems. The returned error is reserved for malformed input that cannot be
// decoded at all.
func ParseForm(values url.Values) (*types.Submission, []types.FieldError, error) {
	var f SubmissionForm
	if err := decoder.Decode(&f, values); err != nil {
		return nil, nil, err
	}

	var errs []types.FieldError
	fail := func(field, message string) {
		errs = append(errs, types.FieldError{Field: field, Message: message})
	}

	fullName := Sanitize(f.FullName)
	if fullName == "" {
		fail("fullName", "Nome completo é obrigatório")
	} else if utf8.RuneCountInString(fullName) < 2 {
		fail("fullName", "Nome deve ter pelo menos 2 caracteres")
	}

	phone := Digits(f.Phone)
	if phone == "" {
		fail("phone", "Telefone é obrigatório")
	} else if len(phone) < 10 || len(phone) > 11 {
		fail("phone", "Telefone inválido")
	}

	cpf := Digits(f.CPF)
	if cpf != "" && !ValidCPF(cpf) {
		fail("cpf", "CPF inválido")
	}

	cnpj := Digits(f.CNPJ)
	if cnpj != "" && !ValidCNPJ(cnpj) {
		fail("cnpj", "CNPJ inválido")
	}

	category := strings.TrimSpace(f.AccountCategory)
	if category != "" &&
		category != string(types.AccountCategoryIndividual) &&
		category != string(types.AccountCategoryOrganization) {
		fail("accountCategory", "Categoria de conta inválida")
	}

	email := strings.ToLower(strings.TrimSpace(f.Email))
	if email != "" && !emailPattern.MatchString(email) {
		fail("email", "Email inválido")
	}

	cep := Digits(f.CEP)
	if strings.TrimSpace(f.CEP) != "" && len(cep) != 8 {
		fail("cep", "CEP inválido")
	}

	bankName := Sanitize(f.BankName)
	if bankName == "" {
		fail("bankName", "Nome do banco é obrigatório")
	}

	accountType := strings.TrimSpace(f.AccountType)
	if accountType == "" {
		fail("accountType", "Tipo de conta é obrigatório")
	} else if !accountTypes[accountType] {
		fail("accountType", "Tipo de conta inválido")
	}

	agency := strings.TrimSpace(f.Agency)
	if agency == "" {
		fail("agency", "Agência é obrigatória")
	} else if !agencyPattern.MatchString(agency) {
		fail("agency", "Agência deve conter apenas números (até 4 dígitos)")
	}

	account := Sanitize(f.Account)
	if account == "" {
		fail("account", "Conta é obrigatória")
	}

	pixKey := Sanitize(f.PixKey)
	if pixKey != "" && !validPixKey(pixKey) {
		fail("pixKey", "Chave PIX inválida")
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}

	sub := &types.Submission{
		FullName:        fullName,
		CPF:             optional(cpf),
		CNPJ:            optional(cnpj),
		AccountCategory: optional(category),
		Phone:           phone,
		Email:           optional(email),
		BirthDate:       optional(Sanitize(f.BirthDate)),
		CEP:             optional(cep),
		Street:          optional(Sanitize(f.Street)),
		Number:          optional(Sanitize(f.Number)),
		Complement:      optional(Sanitize(f.Complement)),
		Neighborhood:    optional(Sanitize(f.Neighborhood)),
		City:            optional(Sanitize(f.City)),
		State:           optional(Sanitize(f.State)),
		BankName:        bankName,
		AccountType:     accountType,
		Agency:          agency,
		Account:         account,
		PixKey:          optional(pixKey),
		AvailableLimit:  optional(Sanitize(f.AvailableLimit)),
		LoanAmount:      optional(Sanitize(f.LoanAmount)),
	}

	return sub, nil, nil
}

// validPixKey accepts the key shapes the payment network allows: email, CPF,
// CNPJ, phone or a random UUID key.
func validPixKey(key string) bool {
	if strings.Contains(key, "@") {
		return emailPattern.MatchString(strings.ToLower(key))
	}
	if uuidPattern.MatchString(strings.ToLower(key)) {
		return true
	}
	switch len(Digits(key)) {
	case 14:
		return ValidCNPJ(key)
	case 11:
		// An 11-digit key is a CPF or a mobile number with area code.
		return ValidCPF(key) || phonePixPattern.MatchString(key)
	case 10:
		return phonePixPattern.MatchString(key)
	}
	return false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
