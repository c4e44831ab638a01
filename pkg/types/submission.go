package types

import "time"

type AccountCategory string

const (
	AccountCategoryIndividual   AccountCategory = "pessoa_fisica"
	AccountCategoryOrganization AccountCategory = "pessoa_juridica"
)

// Account types accepted by the form.
const (
	AccountTypeChecking = "corrente"
	AccountTypeSavings  = "poupanca"
	AccountTypePayroll  = "salario"
)

// Submission is one registration form intake record.
type Submission struct {
	ID              int64   `db:"id" json:"id"`
	FullName        string  `db:"full_name" json:"fullName"`
	CPF             *string `db:"cpf" json:"cpf,omitempty"`
	CNPJ            *string `db:"cnpj" json:"cnpj,omitempty"`
	AccountCategory *string `db:"account_category" json:"accountCategory,omitempty"`
	Phone           string  `db:"phone" json:"phone"`
	Email           *string `db:"email" json:"email,omitempty"`
	BirthDate       *string `db:"birth_date" json:"birthDate,omitempty"`

	CEP          *string `db:"cep" json:"cep,omitempty"`
	Street       *string `db:"street" json:"street,omitempty"`
	Number       *string `db:"number" json:"number,omitempty"`
	Complement   *string `db:"complement" json:"complement,omitempty"`
	Neighborhood *string `db:"neighborhood" json:"neighborhood,omitempty"`
	City         *string `db:"city" json:"city,omitempty"`
	State        *string `db:"state" json:"state,omitempty"`

	BankName    string  `db:"bank_name" json:"bankName"`
	AccountType string  `db:"account_type" json:"accountType"`
	Agency      string  `db:"agency" json:"agency"`
	Account     string  `db:"account" json:"account"`
	PixKey      *string `db:"pix_key" json:"pixKey,omitempty"`

	AvailableLimit *string `db:"available_limit" json:"availableLimit,omitempty"`
	LoanAmount     *string `db:"loan_amount" json:"loanAmount,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	Documents []Document `db:"-" json:"documents,omitempty"`
}

// ActiveTaxID returns the tax id the submission is keyed by downstream.
// The explicit account category wins; otherwise CPF takes priority over CNPJ.
func (s *Submission) ActiveTaxID() string {
	category := ""
	if s.AccountCategory != nil {
		category = *s.AccountCategory
	}

	cpf, cnpj := "", ""
	if s.CPF != nil {
		cpf = *s.CPF
	}
	if s.CNPJ != nil {
		cnpj = *s.CNPJ
	}

	switch {
	case category == string(AccountCategoryIndividual) && cpf != "":
		return cpf
	case category == string(AccountCategoryOrganization) && cnpj != "":
		return cnpj
	case cpf != "":
		return cpf
	case cnpj != "":
		return cnpj
	}
	return ""
}

// FieldError is a single field-level validation failure reported to the caller.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
