package recipient

import (
	"fmt"
	"strings"
)

// Dados holds the personal attributes of a recipient. Fields left out of a
// projection stay at their zero value and are omitted from JSON.
type Dados struct {
	Nome              string `json:"nome,omitempty"`
	Idade             int    `json:"idade,omitempty"`
	Sexo              string `json:"sexo,omitempty"`
	DataNascimento    string `json:"data_nascimento,omitempty"`
	CidadeNatal       string `json:"cidade_natal,omitempty"`
	EstadoNatal       string `json:"estado_natal,omitempty"`
	CPF               string `json:"cpf,omitempty"`
	Profissao         string `json:"profissao,omitempty"`
	CidadeResidencia  string `json:"cidade_residencia,omitempty"`
	EstadoResidencia  string `json:"estado_residencia,omitempty"`
	EstadoCivil       string `json:"estado_civil,omitempty"`
	ContatoEmergencia string `json:"contato_emergencia,omitempty"`
	TipoSanguineo     string `json:"tipo_sanguineo,omitempty"`
}

// Necessidade is the medical need paired with every recipient.
type Necessidade struct {
	OrgaoNecessario    string `json:"orgao_necessario"`
	GravidadeCondicao  string `json:"gravidade_condicao"`
	CentroTransplante  string `json:"centro_transplante"`
	PosicaoListaEspera int    `json:"posicao_lista_espera"`
}

// Recipient is one generated record as written to the output file.
type Recipient struct {
	Dados       Dados       `json:"dados"`
	Necessidade Necessidade `json:"necessidade"`
}

// Field identifies one attribute of Dados.
type Field int

const (
	FieldNome Field = iota
	FieldIdade
	FieldSexo
	FieldDataNascimento
	FieldCidadeNatal
	FieldEstadoNatal
	FieldCPF
	FieldProfissao
	FieldCidadeResidencia
	FieldEstadoResidencia
	FieldEstadoCivil
	FieldContatoEmergencia
	FieldTipoSanguineo
	fieldCount
)

// Projection selects which Dados fields a generated record carries.
type Projection uint32

// Project returns a projection holding exactly fields.
func Project(fields ...Field) Projection {
	var p Projection
	for _, f := range fields {
		p |= 1 << uint(f)
	}
	return p
}

// Has reports whether f is part of the projection.
func (p Projection) Has(f Field) bool {
	return p&(1<<uint(f)) != 0
}

var (
	// FullProjection carries every field.
	FullProjection = Projection(1<<uint(fieldCount) - 1)

	// ShortProjection carries name, age, residence state and blood type.
	ShortProjection = Project(FieldNome, FieldIdade, FieldEstadoResidencia, FieldTipoSanguineo)
)

// Shape names a projection for config and the CLI.
type Shape string

const (
	ShapeFull  Shape = "full"
	ShapeShort Shape = "short"
)

// ParseShape maps a shape name to its projection. The empty string means full.
func ParseShape(name string) (Shape, Projection, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(name))) {
	case "", ShapeFull:
		return ShapeFull, FullProjection, nil
	case ShapeShort:
		return ShapeShort, ShortProjection, nil
	}
	return "", 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}
