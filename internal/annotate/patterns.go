// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package annotate

import (
	"regexp"
	"strconv"
	"strings"

	"deduce/internal/tags"
)

// regexTagger tags matches of re in untagged text. Existing tags are left
// alone. When group is non-zero only that submatch is tagged. accept, if
// set, can veto a match given the surrounding text and the tagged span.
type regexTagger struct {
	name     string
	category string
	re       *regexp.Regexp
	group    int
	accept   func(text string, start, end int) bool
}

func (t *regexTagger) Name() string { return t.name }

func (t *regexTagger) Tag(nodes []*tags.Node) []*tags.Node {
	out := make([]*tags.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsTag() {
			out = append(out, n.Clone())
			continue
		}
		text := n.Text
		pos := 0
		for _, loc := range t.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := loc[2*t.group], loc[2*t.group+1]
			if start < 0 || start < pos || start == end {
				continue
			}
			if t.accept != nil && !t.accept(text, start, end) {
				continue
			}
			out = tags.AppendText(out, text[pos:start])
			out = append(out, tags.NewTag(t.category, tags.NewText(text[start:end])))
			pos = end
		}
		out = tags.AppendText(out, text[pos:])
	}
	return out
}

const streetSuffixes = `baan|bolwerk|dam|dijk|dreef|erf|gracht|haven|hof|kade|kanaal|laan|markt|pad|park|plantsoen|plein|singel|steeg|straat|wal|weg|weide`

var addressTagger = &regexTagger{
	name:     "address",
	category: tags.Location,
	re:       regexp.MustCompile(`(?:^|[^\p{L}\p{N}])(\p{Lu}\p{L}*(?:` + streetSuffixes + `)(?:[ \t]\d+[a-zA-Z]?)?)\b`),
	group:    1,
}

// Two-letter units that follow a number like a postcode suffix would.
var measurementUnits = map[string]bool{
	"mg": true, "ml": true, "kg": true, "cm": true, "mm": true, "dm": true, "km": true,
	"dl": true, "cl": true, "gr": true, "ug": true, "mu": true, "ie": true, "hz": true,
	"kb": true, "mb": true, "gb": true, "uu": true, "pg": true, "ng": true,
}

// SA, SD and SS are never issued as postcode letters.
var unusedPostcodeLetters = map[string]bool{"SA": true, "SD": true, "SS": true}

var postcodeTagger = &regexTagger{
	name:     "postcodes",
	category: tags.Location,
	re:       regexp.MustCompile(`\b[1-9]\d{3}(?: [A-Z]{2}|[A-Za-z]{2})\b`),
	accept: func(text string, start, end int) bool {
		letters := text[end-2 : end]
		return !measurementUnits[strings.ToLower(letters)] && !unusedPostcodeLetters[letters]
	},
}

var phoneTagger = &regexTagger{
	name:     "phone_numbers",
	category: tags.PhoneNumber,
	re: regexp.MustCompile(`(?:\+31|0031|0)6[ -]?[1-9]\d{7}` +
		`|(?:\+31|0031|0)[1-9]\d{1,2}[ -]?[1-9]\d{5,6}` +
		`|\(\d{3}\) ?\d{3} ?\d{2} ?\d{2}`),
	accept: notDigitAdjacent,
}

var patientNumberTagger = &regexTagger{
	name:     "patient_numbers",
	category: tags.PatientNumber,
	re:       regexp.MustCompile(`\b\d{7}\b`),
}

const monthNames = `januari|februari|maart|april|mei|juni|juli|augustus|september|oktober|november|december|` +
	`jan|feb|mrt|apr|jun|jul|aug|sept|sep|okt|nov|dec`

var dateTagger = &regexTagger{
	name:     "dates",
	category: tags.Date,
	re: regexp.MustCompile(`\b(?:` +
		`\d{4}[-/.]\d{1,2}[-/.]\d{1,2}` +
		`|\d{1,2}[-/.]\d{1,2}[-/.](?:\d{4}|\d{2})` +
		`|\d{1,2}[-/]\d{1,2}` +
		`|(?i:\d{1,2}(?:ste|de|e)? (?:` + monthNames + `)\.?(?:[ -](?:\d{4}|'\d{2}))?)` +
		`)\b`),
	accept: func(text string, start, end int) bool {
		return notDigitAdjacent(text, start, end) && plausibleDate(text[start:end])
	},
}

var ageTagger = &regexTagger{
	name:     "ages",
	category: tags.Age,
	re:       regexp.MustCompile(`(?i)\b(\d{1,3})[ -](?:jarige|jarig|jaar)\b`),
	group:    1,
	accept: func(text string, start, end int) bool {
		n, err := strconv.Atoi(text[start:end])
		return err == nil && n <= 150
	},
}

var emailTagger = &regexTagger{
	name:     "emails",
	category: tags.URL,
	re:       regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)*\.[A-Za-z]{2,}`),
}

// Trailing punctuation is left out of URLs.
var urlTagger = &regexTagger{
	name:     "urls",
	category: tags.URL,
	re: regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s<>]*[^\s<>.,;:!?)]` +
		`|\b[a-z0-9-]+(?:\.[a-z0-9-]+)*\.(?:nl|com|org|net|be|eu|info|nu)\b(?:/[^\s<>]*[^\s<>.,;:!?)])?`),
}

func notDigitAdjacent(text string, start, end int) bool {
	if start > 0 && isDigit(text[start-1]) {
		return false
	}
	if end < len(text) && isDigit(text[end]) {
		return false
	}
	return true
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// plausibleDate rejects numeric dates whose parts cannot be a day and month
// in either order.
func plausibleDate(s string) bool {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' || r == '.' })
	if len(parts) < 2 {
		return true
	}
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return true // named month
		}
		nums = append(nums, n)
	}
	if len(parts[0]) == 4 {
		return len(nums) == 3 && dayMonth(nums[2], nums[1])
	}
	return dayMonth(nums[0], nums[1]) || dayMonth(nums[1], nums[0])
}

func dayMonth(day, month int) bool {
	return day >= 1 && day <= 31 && month >= 1 && month <= 12
}
