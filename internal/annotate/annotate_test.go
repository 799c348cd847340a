// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deduce/internal/lexicon"
	"deduce/internal/tags"
)

const sampleText = "Dit is stukje tekst met daarin de naam Jan Jansen. De patient J. Jansen " +
	"(e: j.jnsen@email.com, t: 06-12345678) is 64 jaar oud en woonachtig in Utrecht. Hij werd op 10 " +
	"oktober door arts Peter de Visser ontslagen van de kliniek van het UMCU."

func defaultLexicon(t *testing.T) *lexicon.Lexicon {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)
	return lex
}

func run(t *testing.T, tagger Tagger, text string) string {
	t.Helper()
	nodes, err := tags.Parse(text)
	require.NoError(t, err)
	return tags.Render(tagger.Tag(nodes))
}

func TestNameTagger(t *testing.T) {
	lex := defaultLexicon(t)

	tests := []struct {
		name    string
		patient Patient
		input   string
		want    string
	}{
		{
			name:    "sample document",
			patient: Patient{FirstNames: "Jan", Surname: "Jansen"},
			input:   sampleText,
			want: "Dit is stukje tekst met daarin de naam <FORNAMEPAT Jan> <SURNAMEPAT Jansen>. De " +
				"<PREFIXNAME patient J>. <SURNAMEPAT Jansen> (e: j.jnsen@email.com, t: 06-12345678) is 64 " +
				"jaar oud en woonachtig in Utrecht. Hij werd op 10 oktober door arts <FORNAMEUNKNOWN " +
				"Peter> <INTERFIXNAME de Visser> ontslagen van de kliniek van het UMCU.",
		},
		{
			name:    "initial of second first name",
			patient: Patient{FirstNames: "Peter Charles", Surname: "de Jong", Initials: "PC", GivenName: "Charlie"},
			input:   "C. geeft aan dood te willen. C. tot op nu blij",
			want:    "<INITIALPAT C.> geeft aan dood te willen. <INITIALPAT C.> tot op nu blij",
		},
		{
			name:    "initial inside abbreviation",
			patient: Patient{FirstNames: "Nicholas David", Surname: "de Jong", Initials: "ND", GivenName: "Niek"},
			input:   "Toegangstijd: N.v.t.",
			want:    "Toegangstijd: <INITIALPAT N.>v.t.",
		},
		{
			name:    "initials, given name and multi-word surname",
			patient: Patient{FirstNames: "Nicholas", Surname: "de Jong", Initials: "ND", GivenName: "Niek"},
			input:   "ND, ook wel Niek de Jong genoemd",
			want:    "<INITIALSPAT ND>, ook wel <GIVENNAMEPAT Niek> <SURNAMEPAT de Jong> genoemd",
		},
		{
			name:    "misspelled first name",
			patient: Patient{FirstNames: "Mariangela"},
			input:   "Gesprek met Mariagnela",
			want:    "Gesprek met <FORNAMEPAT Mariagnela>",
		},
		{
			name:  "unknown surname and whitelisted words",
			input: "Vandaag sprak Koning met De arts",
			want:  "Vandaag sprak <SURNAMEUNKNOWN Koning> met De arts",
		},
		{
			name:  "prefix with full stop",
			input: "Gezien door dhr. Bakker",
			want:  "Gezien door <PREFIXNAME dhr. Bakker>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, NewNameTagger(lex, tt.patient), tt.input))
		})
	}
}

func TestContextResolver(t *testing.T) {
	resolver := NewContextResolver(defaultLexicon(t))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "repeated name",
			input: "Dank je <FORNAMEUNKNOWN Peter> van Gonzalez. Met vriendelijke groet, " +
				"<FORNAMEUNKNOWN Peter> van Gonzalez",
			want: "Dank je <INTERFIXSURNAME <FORNAMEUNKNOWN Peter> van Gonzalez>. " +
				"Met vriendelijke groet, <INTERFIXSURNAME <FORNAMEUNKNOWN Peter> van Gonzalez>",
		},
		{
			name: "repeated name with untagged tail",
			input: "Dank je <FORNAMEUNKNOWN Peter> van Gonzalez. Met vriendelijke groet, " +
				"<FORNAMEUNKNOWN Peter> van Gonzalez. Er is ook een Pieter de Visser hier",
			want: "Dank je <INTERFIXSURNAME <FORNAMEUNKNOWN Peter> van Gonzalez>. " +
				"Met vriendelijke groet, <INTERFIXSURNAME <FORNAMEUNKNOWN Peter> van Gonzalez>. " +
				"Er is ook een Pieter de Visser hier",
		},
		{
			name: "repeated name three times",
			input: "Dank je <FORNAMEUNKNOWN Peter> van Gonzalez. Met vriendelijke groet, " +
				"<FORNAMEUNKNOWN Peter> van Gonzalez. Er is ook een andere <FORNAMEUNKNOWN Peter> van Gonzalez hier",
			want: "Dank je <INTERFIXSURNAME <FORNAMEUNKNOWN Peter> van Gonzalez>. " +
				"Met vriendelijke groet, <INTERFIXSURNAME <FORNAMEUNKNOWN Peter> van Gonzalez>. " +
				"Er is ook een andere <INTERFIXSURNAME <FORNAMEUNKNOWN Peter> van Gonzalez> hier",
		},
		{
			name:  "initial before surname",
			input: "V. <SURNAMEUNKNOWN Menger>",
			want:  "<INITIAL V. <SURNAMEUNKNOWN Menger>>",
		},
		{
			name:  "chained initials",
			input: "Door J.P. <SURNAMEUNKNOWN Bakker>",
			want:  "Door <INITIAL J.P. <SURNAMEUNKNOWN Bakker>>",
		},
		{
			name:  "coordinating conjunction",
			input: "We hebben o.a. gesproken om een verwijsbrief te verzorgen naar Ajax, <PREFIXNAME PJ> en Pieter",
			want:  "We hebben o.a. gesproken om een verwijsbrief te verzorgen naar Ajax, <MULTIPLEPERSON <PREFIXNAME PJ> en Pieter>",
		},
		{
			name:  "first name and conjunction",
			input: "Adalberto <SURNAMEUNKNOWN Koning> en Mariangela",
			want:  "<MULTIPLEPERSON <INITIAL Adalberto <SURNAMEUNKNOWN Koning>> en Mariangela>",
		},
		{
			name:  "initial kept under interfix",
			input: "Mijn naam is M <SURNAMEUNKNOWN Smid> de Vries",
			want:  "Mijn naam is <INTERFIXSURNAME <INITIAL M <SURNAMEUNKNOWN Smid>> de Vries>",
		},
		{
			name:  "prefix tag ending in initial",
			input: "De <PREFIXNAME patient J>. <SURNAMEPAT Jansen> kwam",
			want:  "De <INITIAL <PREFIXNAME patient J>. <SURNAMEPAT Jansen>> kwam",
		},
		{
			name:  "adjacent name tags left alone",
			input: "arts <FORNAMEUNKNOWN Peter> <INTERFIXNAME de Visser> ontslagen",
			want:  "arts <FORNAMEUNKNOWN Peter> <INTERFIXNAME de Visser> ontslagen",
		},
		{
			name:  "non-name tags are ignored",
			input: "Zeist <LOCATION Utrecht> en Amsterdam",
			want:  "Zeist <LOCATION Utrecht> en Amsterdam",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, resolver, tt.input))
		})
	}
}

func TestContextResolverDoesNotModifyInput(t *testing.T) {
	resolver := NewContextResolver(defaultLexicon(t))
	nodes := tags.MustParse("V. <SURNAMEUNKNOWN Menger>")
	before := tags.Render(nodes)

	resolver.Tag(nodes)
	assert.Equal(t, before, tags.Render(nodes))
}

func TestInstitutionTagger(t *testing.T) {
	tagger := NewInstitutionTagger(defaultLexicon(t))

	assert.Equal(t, "Ik ben in <INSTITUTION Altrecht> geweest", run(t, tagger, "Ik ben in Altrecht geweest"))

	examples := []struct{ in, want string }{
		{"altrecht lunetten", "<INSTITUTION altrecht> lunetten"},
		{"altrecht Lunetten", "<INSTITUTION altrecht Lunetten>"},
		{"Altrecht lunetten", "<INSTITUTION Altrecht> lunetten"},
		{"Altrecht Lunetten", "<INSTITUTION Altrecht Lunetten>"},
		{"Altrecht Willem Arntszhuis", "<INSTITUTION Altrecht Willem Arntszhuis>"},
		{"Altrecht Lunetten ziekenhuis", "<INSTITUTION Altrecht Lunetten> ziekenhuis"},
		{"ALtrecht Lunetten", "<INSTITUTION ALtrecht Lunetten>"},
	}
	for _, ex := range examples {
		text := strings.Replace("Opname bij xxx afgerond", "xxx", ex.in, 1)
		want := strings.Replace("Opname bij xxx afgerond", "xxx", ex.want, 1)
		assert.Equal(t, want, run(t, tagger, text))
	}

	assert.Equal(t, "van het <INSTITUTION UMCU>.", run(t, tagger, "van het UMCU."))
	assert.Equal(t, "<PERSON Jan van <INSTITUTION Altrecht>>", run(t, tagger, "<PERSON Jan van Altrecht>"))
	assert.Equal(t, "<DATE Altrecht>", run(t, tagger, "<DATE Altrecht>"))
}

func TestResidenceTagger(t *testing.T) {
	tagger := NewResidenceTagger(defaultLexicon(t))

	assert.Equal(t, "woonachtig in <LOCATION Utrecht>.", run(t, tagger, "woonachtig in Utrecht."))
	assert.Equal(t, "uit <LOCATION DEN HAAG>", run(t, tagger, "uit DEN HAAG"))
	assert.Equal(t, "uit <LOCATION 's Hertogenbosch>", run(t, tagger, "uit 's Hertogenbosch"))
	assert.Equal(t, "de utrechtse Zeist-West", run(t, tagger, "de utrechtse Zeist-West"))
}

func TestAddressTagger(t *testing.T) {
	tests := []struct{ in, want string }{
		{"I live in Havikstraat since my childhood", "I live in <LOCATION Havikstraat> since my childhood"},
		{"I live in Havikstraat 43 since my childhood", "I live in <LOCATION Havikstraat 43> since my childhood"},
		{"I live in Havikstraat 4324598 since my childhood", "I live in <LOCATION Havikstraat 4324598> since my childhood"},
		{"Kerkweg 12a, Amersfoort", "<LOCATION Kerkweg 12a>, Amersfoort"},
		{"de straat is lang", "de straat is lang"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, run(t, addressTagger, tt.in))
	}
}

func TestPostcodeTagger(t *testing.T) {
	skip := "<LOCATION Hoofdstraat> is mooi. (br)Lithiumcarbonaat 1600mg. Nog een zin"
	assert.Equal(t, skip, run(t, postcodeTagger, skip))

	assert.Equal(t, "Mijn postcode is <LOCATION 3500LX>, toch?", run(t, postcodeTagger, "Mijn postcode is 3500LX, toch?"))
	assert.Equal(t, "<LOCATION 3511 AB> Utrecht", run(t, postcodeTagger, "3511 AB Utrecht"))
	assert.Equal(t, "1234 SS", run(t, postcodeTagger, "1234 SS"))
}

func TestDateTagger(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Medicatie actueel\t26-10, OXAZEPAM", "Medicatie actueel\t<DATE 26-10>, OXAZEPAM"},
		{"24 april, 1 mei: pt gaat geen constructief contact aan", "<DATE 24 april>, <DATE 1 mei>: pt gaat geen constructief contact aan"},
		{"Hij werd op 10 oktober ontslagen", "Hij werd op <DATE 10 oktober> ontslagen"},
		{"gezien op 03-02-2019.", "gezien op <DATE 03-02-2019>."},
		{"sinds 2019-12-31 opgenomen", "sinds <DATE 2019-12-31> opgenomen"},
		{"op 1 okt. gebeld", "op <DATE 1 okt>. gebeld"},
		{"op 12 Januari 2020 gebeld", "op <DATE 12 Januari 2020> gebeld"},
		{"dosering 45-50 mg", "dosering 45-50 mg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, run(t, dateTagger, tt.in))
	}
}

func TestPatternTaggers(t *testing.T) {
	assert.Equal(t, "is <AGE 64> jaar oud", run(t, ageTagger, "is 64 jaar oud"))
	assert.Equal(t, "een <AGE 8>-jarige", run(t, ageTagger, "een 8-jarige"))
	assert.Equal(t, "t: <PHONENUMBER 06-12345678>)", run(t, phoneTagger, "t: 06-12345678)"))
	assert.Equal(t, "bel <PHONENUMBER 030-2345678>", run(t, phoneTagger, "bel 030-2345678"))
	assert.Equal(t, "nummer 106123456789", run(t, phoneTagger, "nummer 106123456789"))
	assert.Equal(t, "pnr <PATIENTNUMBER 1234567>.", run(t, patientNumberTagger, "pnr 1234567."))
	assert.Equal(t, "(e: <URL j.jnsen@email.com>, t", run(t, emailTagger, "(e: j.jnsen@email.com, t"))
	assert.Equal(t, "zie <URL https://www.umcutrecht.nl/zorg>.", run(t, urlTagger, "zie https://www.umcutrecht.nl/zorg."))
	assert.Equal(t, "zie <URL altrecht.nl>, of", run(t, urlTagger, "zie altrecht.nl, of"))
}

func TestAnnotateIsDeterministic(t *testing.T) {
	a := New(defaultLexicon(t), AllEnabled())
	p := Patient{FirstNames: "Jan", Surname: "Jansen"}

	first := tags.Render(a.Annotate(sampleText, p))
	second := tags.Render(a.Annotate(sampleText, p))
	assert.Equal(t, first, second)
	assert.Equal(t, sampleText, tags.Plain(a.Annotate(sampleText, p)))
}

func TestAnnotateRespectsOptions(t *testing.T) {
	lex := defaultLexicon(t)
	p := Patient{FirstNames: "Jan", Surname: "Jansen"}

	none := New(lex, Options{})
	assert.Empty(t, none.Taggers(p))
	assert.Equal(t, sampleText, tags.Render(none.Annotate(sampleText, p)))

	datesOnly := New(lex, OptionsFromChecks(map[string]bool{CheckDates: true}))
	found, err := tags.FindTags(tags.Render(datesOnly.Annotate(sampleText, p)))
	require.NoError(t, err)
	assert.Equal(t, []string{"<DATE 10 oktober>"}, found)
}

func TestCollapseNames(t *testing.T) {
	nodes := tags.MustParse("<INITIAL <PREFIXNAME patient J>. <SURNAMEPAT Jansen>> en " +
		"<INTERFIXSURNAME <FORNAMEUNKNOWN Peter> van <LOCATION Utrecht>> in <LOCATION Zeist>")

	got := tags.Render(CollapseNames(nodes))
	assert.Equal(t, "<PATIENT <PREFIXNAME patient J>. <SURNAMEPAT Jansen>> en "+
		"<PERSON <FORNAMEUNKNOWN Peter> van <LOCATION Utrecht>> in <LOCATION Zeist>", got)
}

func TestDamerauLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"Jansen", "Jansen", 0},
		{"Jansen", "Janssen", 1},
		{"Jansen", "Jnasen", 1},
		{"Peter", "Pieter", 1},
		{"", "abc", 3},
		{"Müller", "Muller", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, damerauLevenshtein(tt.a, tt.b), "%s/%s", tt.a, tt.b)
	}
}
