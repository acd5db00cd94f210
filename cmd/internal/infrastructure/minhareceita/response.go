package minhareceita

import (
	"gestaoacoes/cmd/internal/domain/entity"
	"strings"
)

type companyResponse struct {
	CNPJ               string `json:"cnpj"`
	LegalName          string `json:"razao_social"`
	TradeName          string `json:"nome_fantasia"`
	LegalNature        string `json:"natureza_juridica"`
	RegistrationStatus string `json:"descricao_situacao_cadastral"`
	Phone              string `json:"ddd_telefone_1"`
	Email              string `json:"email"`

	AddressType         string `json:"descricao_tipo_de_logradouro"`
	AddressStreetName   string `json:"logradouro"`
	AddressNumber       string `json:"numero"`
	AddressNeighborhood string `json:"bairro"`
	AddressCity         string `json:"municipio"`
	AddressState        string `json:"uf"`
	AddressZipCode      string `json:"cep"`
}

func (c *companyResponse) ToDomain() *entity.CNPJRecord {
	return &entity.CNPJRecord{
		CNPJ:        c.CNPJ,
		LegalName:   c.LegalName,
		TradeName:   c.TradeName,
		LegalNature: c.LegalNature,
		RegStatus:   translateStatus(c.RegistrationStatus),
		Phone:       strings.TrimSpace(c.Phone),
		Email:       strings.ToLower(strings.TrimSpace(c.Email)),
		Address:     c.formatAddress(),
	}
}

// formatAddress renders "RUA X, 10 - BAIRRO, CIDADE/UF, 00000000", skipping blanks.
func (c *companyResponse) formatAddress() string {
	street := join(" ", c.AddressType, c.AddressStreetName)
	line := join(", ", street, c.AddressNumber)
	city := join("/", c.AddressCity, c.AddressState)
	return join(", ", join(" - ", line, c.AddressNeighborhood), city, c.AddressZipCode)
}

func join(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func translateStatus(status string) entity.RegStatus {
	switch strings.ToUpper(status) {
	case "ATIVA":
		return entity.StatusActive
	case "BAIXADA":
		return entity.StatusClosed
	case "SUSPENSA":
		return entity.StatusSuspended
	case "INAPTA":
		return entity.StatusUnfit
	default:
		return entity.StatusUnknown
	}
}
