package minhareceita

import (
	"context"
	"gestaoacoes/cmd/internal/domain/entity"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainFormatsAddress(t *testing.T) {
	c := &companyResponse{
		CNPJ:                "11222333000181",
		LegalName:           "ACME LTDA",
		RegistrationStatus:  "ativa",
		Email:               " Contato@Acme.com ",
		AddressType:         "RUA",
		AddressStreetName:   "DAS FLORES",
		AddressNumber:       "10",
		AddressNeighborhood: "CENTRO",
		AddressCity:         "CURITIBA",
		AddressState:        "PR",
		AddressZipCode:      "80000000",
	}

	rec := c.ToDomain()
	assert.Equal(t, entity.StatusActive, rec.RegStatus)
	assert.Equal(t, "contato@acme.com", rec.Email)
	assert.Equal(t, "RUA DAS FLORES, 10 - CENTRO, CURITIBA/PR, 80000000", rec.Address)
}

func TestToDomainSkipsBlankAddressParts(t *testing.T) {
	c := &companyResponse{AddressCity: "RECIFE"}
	assert.Equal(t, "RECIFE", c.ToDomain().Address)
	assert.Equal(t, entity.StatusUnknown, c.ToDomain().RegStatus)
}

func TestGetByCNPJ(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/00000000000000" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"cnpj":"11222333000181","razao_social":"ACME LTDA","descricao_situacao_cadastral":"BAIXADA"}`))
	}))
	defer srv.Close()

	client := NewClientWithURL(srv.URL + "/")

	rec, err := client.GetByCNPJ(context.Background(), "11222333000181")
	require.NoError(t, err)
	assert.Equal(t, "ACME LTDA", rec.LegalName)
	assert.Equal(t, entity.StatusClosed, rec.RegStatus)

	_, err = client.GetByCNPJ(context.Background(), "00000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}
