package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Password string   `validate:"min=8,hasupper,haslower,hasdigit,hasspecial"`
	Username string   `validate:"nospaces"`
	Tags     []string `validate:"nodupes"`
}

type document struct {
	CNPJ string `validate:"omitempty,cnpj"`
	CPF  string `validate:"omitempty,cpf"`
}

func TestPasswordRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(&signup{Password: "Str0ng!pass", Username: "alice", Tags: []string{"a", "b"}}))
	assert.Error(t, v.Struct(&signup{Password: "weakpass", Username: "alice"}))
	assert.Error(t, v.Struct(&signup{Password: "Str0ng!pass", Username: "al ice"}))
	assert.Error(t, v.Struct(&signup{Password: "Str0ng!pass", Username: "alice", Tags: []string{"a", "a"}}))
}

func TestDocumentTags(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(&document{CNPJ: "11.222.333/0001-81", CPF: "529.982.247-25"}))
	assert.Error(t, v.Struct(&document{CNPJ: "11.222.333/0001-80"}))
	assert.Error(t, v.Struct(&document{CPF: "111.111.111-11"}))
	assert.NoError(t, v.Struct(&document{}))
}
