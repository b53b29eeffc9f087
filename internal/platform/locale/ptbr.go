// Package locale provides culturally plausible fake identities for a single
// region. Every draw goes through the caller's *gofakeit.Faker so output is
// reproducible from the faker's seed; the package keeps no random state of
// its own.
package locale

import (
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// Provider produces localized identity values.
type Provider interface {
	// Name returns a full name. sex is "M", "F" or "" for either.
	Name(sex string) string
	City() string
	StateAbbr() string
	// StateAbbrs lists every value StateAbbr can return.
	StateAbbrs() []string
	CPF() string
	Phone() string
}

// PTBR generates Brazilian Portuguese identities.
type PTBR struct {
	faker *gofakeit.Faker
}

// NewPTBR returns a pt_BR provider drawing from f.
func NewPTBR(f *gofakeit.Faker) *PTBR {
	return &PTBR{faker: f}
}

// ---------------------------------------------------------------------------
// Pools
// ---------------------------------------------------------------------------

var (
	firstNamesMale = []string{
		"João", "José", "Antônio", "Francisco", "Carlos", "Paulo", "Pedro",
		"Lucas", "Luiz", "Marcos", "Luís", "Gabriel", "Rafael", "Daniel",
		"Marcelo", "Bruno", "Eduardo", "Felipe", "Raimundo", "Rodrigo",
		"Otávio", "Vitor", "Caio", "Heitor", "Benício", "Thiago", "Matheus",
		"Gustavo", "Murilo", "Enzo", "Davi", "Arthur", "Bernardo", "Leonardo",
		"Samuel", "Vinícius", "Cauã", "Joaquim", "Emanuel", "Fábio",
	}
	firstNamesFemale = []string{
		"Maria", "Ana", "Francisca", "Antônia", "Adriana", "Juliana", "Márcia",
		"Fernanda", "Patrícia", "Aline", "Sandra", "Camila", "Amanda", "Bruna",
		"Jéssica", "Letícia", "Júlia", "Luciana", "Vanessa", "Mariana",
		"Beatriz", "Larissa", "Lívia", "Manuela", "Valentina", "Helena",
		"Alícia", "Laura", "Isadora", "Cecília", "Sofia", "Lorena", "Rebeca",
		"Clara", "Yasmin", "Natália", "Gabriela", "Débora", "Conceição", "Lúcia",
	}
	lastNames = []string{
		"Silva", "Santos", "Oliveira", "Souza", "Rodrigues", "Ferreira", "Alves",
		"Pereira", "Lima", "Gomes", "Costa", "Ribeiro", "Martins", "Carvalho",
		"Almeida", "Lopes", "Soares", "Fernandes", "Vieira", "Barbosa", "Rocha",
		"Dias", "Nascimento", "Andrade", "Moreira", "Nunes", "Marques", "Machado",
		"Mendes", "Freitas", "Cardoso", "Ramos", "Gonçalves", "Santana", "Teixeira",
		"Araújo", "Peixoto", "Magalhães", "Conceição", "Aragão", "Sampaio", "Brandão",
	}

	cityPrefixes = []string{"Nova", "Velha", "Grande", "Vila", "Campo"}
	citySuffixes = []string{
		"do Sul", "do Norte", "de Minas", "do Campo", "Grande", "da Serra",
		"do Oeste", "de Goiás", "Paulista", "da Mata", "Alegre", "da Praia",
		"das Flores", "das Pedras", "dos Dourados", "do Amparo", "do Galho",
		"da Prata", "Verde",
	}

	// Every UF of Brazil.
	stateAbbrs = []string{
		"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS",
		"MG", "PA", "PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC",
		"SP", "SE", "TO",
	}

	areaCodes = []string{
		"11", "12", "19", "21", "24", "27", "31", "34", "41", "43", "47", "48",
		"51", "54", "61", "62", "65", "67", "68", "69", "71", "79", "81", "82",
		"83", "84", "85", "86", "91", "92", "95", "96", "98",
	}
	phoneFormats = []string{
		"+55 (%s) 9####-####",
		"+55 %s 9#### ####",
		"(%s) 9####-####",
		"(0%s) ####-####",
		"0%s #### ####",
		"+55 %s ####-####",
	}
)

// ---------------------------------------------------------------------------
// Provider implementation
// ---------------------------------------------------------------------------

// Name returns "<first> <last>" or, about a third of the time, a name with
// two family names.
func (p *PTBR) Name(sex string) string {
	var first string
	switch sex {
	case "M":
		first = p.faker.RandomString(firstNamesMale)
	case "F":
		first = p.faker.RandomString(firstNamesFemale)
	default:
		if p.faker.Number(0, 1) == 0 {
			first = p.faker.RandomString(firstNamesMale)
		} else {
			first = p.faker.RandomString(firstNamesFemale)
		}
	}

	last := p.faker.RandomString(lastNames)
	if p.faker.Number(0, 2) == 0 {
		return first + " " + p.faker.RandomString(lastNames) + " " + last
	}
	return first + " " + last
}

// City builds a fictitious municipality name from family names and common
// Brazilian toponym parts.
func (p *PTBR) City() string {
	last := p.faker.RandomString(lastNames)
	switch p.faker.Number(0, 3) {
	case 0:
		return last
	case 1:
		return last + " " + p.faker.RandomString(citySuffixes)
	case 2:
		return p.faker.RandomString(cityPrefixes) + " " + last
	default:
		return p.faker.RandomString(cityPrefixes) + " " + last + " " + p.faker.RandomString(citySuffixes)
	}
}

func (p *PTBR) StateAbbr() string {
	return p.faker.RandomString(stateAbbrs)
}

func (p *PTBR) StateAbbrs() []string {
	out := make([]string, len(stateAbbrs))
	copy(out, stateAbbrs)
	return out
}

// CPF returns an unformatted 11-digit CPF whose last two digits are valid
// check digits for the first nine.
func (p *PTBR) CPF() string {
	digits := make([]int, 0, 11)
	for i := 0; i < 9; i++ {
		digits = append(digits, p.faker.Number(0, 9))
	}
	digits = append(digits, cpfCheckDigit(digits))
	digits = append(digits, cpfCheckDigit(digits))

	var b strings.Builder
	b.Grow(11)
	for _, d := range digits {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

// Phone returns a phone number in one of the usual Brazilian notations.
func (p *PTBR) Phone() string {
	format := p.faker.RandomString(phoneFormats)
	ddd := p.faker.RandomString(areaCodes)
	return p.fillDigits(strings.Replace(format, "%s", ddd, 1))
}

// fillDigits replaces every '#' in mask with a uniform digit. Unlike
// Numerify it leaves leading zeros alone.
func (p *PTBR) fillDigits(mask string) string {
	var b strings.Builder
	b.Grow(len(mask))
	for _, r := range mask {
		if r == '#' {
			b.WriteByte(byte('0' + p.faker.Number(0, 9)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// cpfCheckDigit computes the next CPF verification digit over digits
// (9 digits for the first, 10 for the second).
func cpfCheckDigit(digits []int) int {
	weight := len(digits) + 1
	sum := 0
	for _, d := range digits {
		sum += d * weight
		weight--
	}
	rem := (sum * 10) % 11
	if rem == 10 {
		return 0
	}
	return rem
}

// ValidCPF reports whether s is an 11-digit CPF with correct check digits.
func ValidCPF(s string) bool {
	if len(s) != 11 {
		return false
	}
	digits := make([]int, 11)
	for i, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
	}
	return cpfCheckDigit(digits[:9]) == digits[9] && cpfCheckDigit(digits[:10]) == digits[10]
}
