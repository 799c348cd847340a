// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package help renders the command line usage and per-check documentation.
package help

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"deduce/internal/annotate"
	"deduce/internal/tags"
)

// CheckInfo contains standardized information about a check
type CheckInfo struct {
	Name                string   // check name as accepted by --checks
	ShortDescription    string   // one line for the checks list
	DetailedDescription string   // what the check tags and how
	Categories          []string // tag categories the check produces
	Examples            []string // annotated sample sentences
}

var checks = []CheckInfo{
	{
		Name:             annotate.CheckNames,
		ShortDescription: "Patient names and other person names",
		DetailedDescription: "Tags the patient's own first names, initials, surname and given name, " +
			"including case differences and single typos in longer names. Other person names are " +
			"found through the first name and surname lists, titles such as 'dhr.' and interfixes " +
			"such as 'van der'. Initials, interfixes and 'en' around a name widen the tag.",
		Categories: []string{tags.Patient, tags.Person},
		Examples: []string{
			"De <PATIENT patient J. Jansen> kwam op controle.",
			"Overleg met <PERSON Peter de Visser>.",
		},
	},
	{
		Name:                annotate.CheckLocations,
		ShortDescription:    "Residences, street addresses and postal codes",
		DetailedDescription: "Tags place names from the residence list, street names ending in a common suffix with an optional house number, and Dutch postal codes. Measurement units such as '1600mg' are not postal codes.",
		Categories:          []string{tags.Location},
		Examples:            []string{"Woonachtig in <LOCATION Utrecht>, <LOCATION Havikstraat 43>."},
	},
	{
		Name:                annotate.CheckInstitutions,
		ShortDescription:    "Hospitals and care institutions",
		DetailedDescription: "Tags institution names from the institution list in any casing, with or without a leading prefix word.",
		Categories:          []string{tags.Institution},
		Examples:            []string{"Ontslagen van de kliniek van het <INSTITUTION UMCU>."},
	},
	{
		Name:                annotate.CheckDates,
		ShortDescription:    "Numeric and written dates",
		DetailedDescription: "Tags dates such as 03-02-2019, 2019-12-31, 26-10 and '10 oktober', including abbreviated Dutch month names. Numeric pairs that cannot be a day and month are skipped.",
		Categories:          []string{tags.Date},
		Examples:            []string{"Opgenomen op <DATE 10 oktober>."},
	},
	{
		Name:                annotate.CheckAges,
		ShortDescription:    "Ages followed by 'jaar' or '-jarige'",
		DetailedDescription: "Tags the number in phrases like '64 jaar' and '8-jarige'. Numbers above 150 are skipped.",
		Categories:          []string{tags.Age},
		Examples:            []string{"Patient is <AGE 64> jaar oud."},
	},
	{
		Name:                annotate.CheckPatientNumbers,
		ShortDescription:    "Seven digit patient numbers",
		DetailedDescription: "Tags standalone seven digit numbers.",
		Categories:          []string{tags.PatientNumber},
		Examples:            []string{"Patientnummer <PATIENTNUMBER 1234567>."},
	},
	{
		Name:                annotate.CheckPhoneNumbers,
		ShortDescription:    "Dutch phone numbers",
		DetailedDescription: "Tags mobile and landline numbers with a 0, +31 or 0031 prefix and an optional separator after the area code.",
		Categories:          []string{tags.PhoneNumber},
		Examples:            []string{"Bereikbaar op <PHONENUMBER 06-12345678>."},
	},
	{
		Name:                annotate.CheckURLs,
		ShortDescription:    "Email addresses and URLs",
		DetailedDescription: "Tags email addresses, http(s) and www links, and bare domain names with a common top level domain. Trailing punctuation is left outside the tag.",
		Categories:          []string{tags.URL},
		Examples:            []string{"Mail naar <URL j.jansen@email.com>."},
	},
}

// Checks returns the documentation of every check, ordered by name.
func Checks() []CheckInfo {
	out := append([]CheckInfo(nil), checks...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// System renders help text
type System struct {
	w      io.Writer
	colors map[string]*color.Color
}

// NewSystem creates a help system writing to w.
func NewSystem(w io.Writer, noColor bool) *System {
	colors := map[string]*color.Color{
		"title":    color.New(color.FgWhite, color.Bold),
		"header":   color.New(color.FgBlue, color.Bold),
		"item":     color.New(color.FgCyan),
		"emphasis": color.New(color.FgWhite, color.Bold),
		"negative": color.New(color.FgRed),
		"example":  color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}
	return &System{w: w, colors: colors}
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	w := h.w
	h.colors["title"].Fprintln(w, "deduce - De-identification of Dutch clinical text")
	fmt.Fprintln(w, "=================================================")
	fmt.Fprintln(w)
	h.colors["header"].Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  deduce [options] [--file] <path|dir|glob> ...")
	fmt.Fprintln(w, "  deduce [options] < document.txt")
	fmt.Fprintln(w)

	h.colors["header"].Fprintln(w, "OPTIONS:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  --file\t<path>\tInput file, directory or glob pattern (default: stdin)")
	fmt.Fprintln(tw, "  --recursive\t\tRecursively process directories")
	fmt.Fprintln(tw, "  --first-names\t<names>\tPatient first names, space separated")
	fmt.Fprintln(tw, "  --surname\t<name>\tPatient surname")
	fmt.Fprintln(tw, "  --initials\t<initials>\tPatient initials")
	fmt.Fprintln(tw, "  --given-name\t<name>\tName the patient goes by")
	fmt.Fprintln(tw, "  --mode\t<mode>\tannotate, nested, structured or deidentify (default: annotate)")
	fmt.Fprintln(tw, "  --deidentify\t\tShorthand for --mode deidentify")
	fmt.Fprintln(tw, "  --format\t<format>\ttext, json, yaml or csv (default: text)")
	fmt.Fprintf(tw, "  --checks\t<checks>\t%s or all (default: all)\n", strings.Join(annotate.AllChecks(), ","))
	fmt.Fprintln(tw, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(tw, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(tw, "  --list-profiles\t\tList available profiles")
	fmt.Fprintln(tw, "  --lexicon-dir\t<dir>\tDirectory with manifest.yaml and word lists")
	fmt.Fprintln(tw, "  --workers\t<n>\tNumber of worker goroutines (default: CPUs, at most 8)")
	fmt.Fprintln(tw, "  --index\t<path>\tRecord documents and annotations in a SQLite database")
	fmt.Fprintln(tw, "  --enable-preprocessors\t\tExtract text from PDF and HTML (default: true)")
	fmt.Fprintln(tw, "  --output\t<path>\tWrite output to a file instead of stdout")
	fmt.Fprintln(tw, "  --show-text\t\tShow identifying text in annotation listings")
	fmt.Fprintln(tw, "  --verbose\t\tShow context around annotations and a summary")
	fmt.Fprintln(tw, "  --debug\t\tTrace taggers and preprocessors on stderr")
	fmt.Fprintln(tw, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(tw, "  --version\t\tShow version information")
	fmt.Fprintln(tw, "  --help\t\tShow this help message")
	fmt.Fprintln(tw, "  --help checks\t\tList all available checks")
	fmt.Fprintln(tw, "  --help <check>\t\tShow detailed help for a specific check")
	tw.Flush()

	fmt.Fprintln(w)
	h.colors["header"].Fprintln(w, "EXAMPLES:")
	h.colors["example"].Fprintln(w, "  deduce --file brief.txt --first-names \"Jan\" --surname Jansen")
	h.colors["example"].Fprintln(w, "  deduce --deidentify --surname Jansen < brief.txt")
	h.colors["example"].Fprintln(w, "  deduce --recursive --format json --mode structured --index deduce.db notes/")
	h.colors["example"].Fprintln(w, "  deduce --profile strict --file 'notes/*.pdf'")

	fmt.Fprintln(w)
	h.colors["header"].Fprintln(w, "CONFIGURATION:")
	fmt.Fprintln(w, "  Project config: deduce.yaml or .deduce.yaml (in current directory)")
	fmt.Fprintln(w, "  User config:    $XDG_CONFIG_HOME/deduce/config.yaml")
	fmt.Fprintln(w)
	h.colors["header"].Fprintln(w, "EXIT CODES:")
	fmt.Fprintln(w, "  0  all documents processed")
	fmt.Fprintln(w, "  1  configuration error or a document could not be processed")
	fmt.Fprintln(w, "  2  no documents to process")
}

// ShowChecksHelp displays information about all available checks
func (h *System) ShowChecksHelp() {
	w := h.w
	h.colors["title"].Fprintln(w, "Available Checks")
	fmt.Fprintln(w, "================")
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(tw, "  CHECK\tCATEGORIES\tDESCRIPTION")
	for _, info := range Checks() {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", info.Name, strings.Join(info.Categories, ","), info.ShortDescription)
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "For detailed information about a specific check, use:")
	h.colors["example"].Fprintf(w, "  deduce --help %s\n", annotate.CheckDates)
}

// ShowCheckHelp displays detailed help for a specific check
func (h *System) ShowCheckHelp(checkName string) bool {
	var info *CheckInfo
	for i := range checks {
		if strings.EqualFold(checks[i].Name, strings.TrimSpace(checkName)) {
			info = &checks[i]
		}
	}
	w := h.w
	if info == nil {
		h.colors["negative"].Fprintf(w, "Error: Check '%s' not found.\n", checkName)
		fmt.Fprintln(w, "Use 'deduce --help checks' to see a list of available checks.")
		return false
	}

	h.colors["title"].Fprintf(w, "%s check\n", info.Name)
	fmt.Fprintln(w, strings.Repeat("=", len(info.Name)+6))
	fmt.Fprintln(w)
	fmt.Fprintln(w, info.DetailedDescription)
	fmt.Fprintln(w)

	h.colors["header"].Fprintln(w, "CATEGORIES:")
	for _, c := range info.Categories {
		fmt.Fprint(w, "  - ")
		h.colors["item"].Fprintln(w, c)
	}

	if len(info.Examples) > 0 {
		fmt.Fprintln(w)
		h.colors["header"].Fprintln(w, "EXAMPLES:")
		for _, example := range info.Examples {
			fmt.Fprint(w, "  ")
			h.colors["example"].Fprintln(w, example)
		}
	}
	return true
}
