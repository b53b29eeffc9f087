package recipient

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/ehr/recipients/internal/platform/locale"
)

const (
	MinAge = 18
	MaxAge = 80

	MinWaitlistPosition = 1
	MaxWaitlistPosition = 500

	// BirthDateLayout renders dates as DD/MM/YYYY.
	BirthDateLayout = "02/01/2006"
)

var sexes = []string{"M", "F"}

// Generator builds recipients from a catalog and a locale provider. All
// randomness comes from the faker handle it was given, so two generators
// seeded alike produce the same sequence. A Generator is not safe for
// concurrent use.
type Generator struct {
	faker  *gofakeit.Faker
	locale locale.Provider
	now    func() time.Time

	catalog         *Catalog
	organs          []string
	severities      []string
	professions     []string
	maritalStatuses []string
	bloodTypes      []string
}

// NewGenerator checks that every state the provider can draw has a capital
// in the catalog and returns a *LookupError otherwise.
func NewGenerator(f *gofakeit.Faker, cat *Catalog, p locale.Provider) (*Generator, error) {
	if err := cat.RequireStates(p.StateAbbrs()); err != nil {
		return nil, fmt.Errorf("locale states do not match catalog: %w", err)
	}
	return &Generator{
		faker:           f,
		locale:          p,
		now:             time.Now,
		catalog:         cat,
		organs:          cat.Organs(),
		severities:      cat.Severities(),
		professions:     cat.Professions(),
		maritalStatuses: cat.MaritalStatuses(),
		bloodTypes:      cat.BloodTypes(),
	}, nil
}

// SetClock replaces the reference time used to derive birth dates.
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

// GenerateFull returns a recipient with every personal field populated.
func (g *Generator) GenerateFull() (Recipient, error) {
	return g.Generate(FullProjection)
}

// GenerateShort returns a recipient carrying only the short projection.
func (g *Generator) GenerateShort() (Recipient, error) {
	return g.Generate(ShortProjection)
}

// Generate draws one recipient restricted to the fields in p. The residence
// state is always drawn because the transplant center depends on it.
func (g *Generator) Generate(p Projection) (Recipient, error) {
	var d Dados

	sex := ""
	if p.Has(FieldSexo) {
		sex = g.faker.RandomString(sexes)
		d.Sexo = sex
	}
	if p.Has(FieldNome) {
		d.Nome = StripAccents(g.locale.Name(sex))
	}

	age := g.faker.Number(MinAge, MaxAge)
	if p.Has(FieldIdade) {
		d.Idade = age
	}
	if p.Has(FieldDataNascimento) {
		d.DataNascimento = g.birthDate(age).Format(BirthDateLayout)
	}

	if p.Has(FieldCidadeNatal) {
		d.CidadeNatal = g.locale.City()
	}
	if p.Has(FieldEstadoNatal) {
		d.EstadoNatal = g.locale.StateAbbr()
	}
	if p.Has(FieldCPF) {
		d.CPF = g.locale.CPF()
	}
	if p.Has(FieldProfissao) {
		d.Profissao = g.faker.RandomString(g.professions)
	}
	if p.Has(FieldCidadeResidencia) {
		d.CidadeResidencia = g.locale.City()
	}

	residence := g.locale.StateAbbr()
	if p.Has(FieldEstadoResidencia) {
		d.EstadoResidencia = residence
	}

	if p.Has(FieldEstadoCivil) {
		d.EstadoCivil = g.faker.RandomString(g.maritalStatuses)
	}
	if p.Has(FieldContatoEmergencia) {
		d.ContatoEmergencia = g.locale.Phone()
	}
	if p.Has(FieldTipoSanguineo) {
		d.TipoSanguineo = g.faker.RandomString(g.bloodTypes)
	}

	need, err := g.need(residence)
	if err != nil {
		return Recipient{}, err
	}
	return Recipient{Dados: d, Necessidade: need}, nil
}

func (g *Generator) need(residence string) (Necessidade, error) {
	center, err := g.catalog.Capital(residence)
	if err != nil {
		return Necessidade{}, err
	}
	return Necessidade{
		OrgaoNecessario:    strings.ToLower(StripAccents(g.faker.RandomString(g.organs))),
		GravidadeCondicao:  g.faker.RandomString(g.severities),
		CentroTransplante:  center,
		PosicaoListaEspera: g.faker.Number(MinWaitlistPosition, MaxWaitlistPosition),
	}, nil
}

// birthDate picks a day on which someone would be exactly age years old
// at the generator's current date.
func (g *Generator) birthDate(age int) time.Time {
	now := g.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	latest := today.AddDate(-age, 0, 0)
	if AgeOn(latest, today) < age {
		latest = latest.AddDate(0, 0, -1)
	}
	earliest := today.AddDate(-age-1, 0, 1)
	if AgeOn(earliest, today) > age {
		earliest = earliest.AddDate(0, 0, 1)
	}

	days := int(latest.Sub(earliest).Hours() / 24)
	return earliest.AddDate(0, 0, g.faker.Number(0, days))
}

// AgeOn returns the age in whole years of someone born on birth, as of on.
func AgeOn(birth, on time.Time) int {
	age := on.Year() - birth.Year()
	if on.Month() < birth.Month() || (on.Month() == birth.Month() && on.Day() < birth.Day()) {
		age--
	}
	return age
}
