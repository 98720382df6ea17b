package io

import (
	"regexp"
	"strings"
)

// Field is a canonical column.
type Field string

const (
	FieldLabel     Field = "label"
	FieldX         Field = "xValue"
	FieldY         Field = "yValue"
	FieldMagnitude Field = "magnitude"
	FieldNote      Field = "note"
)

// RequiredFields are the columns a chart cannot be drawn without.
var RequiredFields = []Field{FieldLabel, FieldX, FieldY, FieldMagnitude}

// aliases maps normalized headers to canonical fields.
var aliases = map[string]Field{
	"label":            FieldLabel,
	"country_market":   FieldLabel,
	"name":             FieldLabel,
	"xvalue":           FieldX,
	"x":                FieldX,
	"certainty_1to9":   FieldX,
	"yvalue":           FieldY,
	"y":                FieldY,
	"alignment_1to9":   FieldY,
	"magnitude":        FieldMagnitude,
	"size":             FieldMagnitude,
	"marketsize_units": FieldMagnitude,
	"note":             FieldNote,
	"notes":            FieldNote,
	"segment_notes":    FieldNote,
}

// Columns written when an axis is derived.
const (
	colCertainty = "certainty_1to9"
	colAlignment = "alignment_1to9"
)

var (
	legacyColumns = map[Field]string{
		FieldX: "certainty_0to10",
		FieldY: "alignment_0to10",
	}
	derivedColumns = map[Field]string{
		FieldX: colCertainty,
		FieldY: colAlignment,
	}
	subScoreColumns = map[Field][]string{
		FieldX: {"c_dataquality", "c_supplystability", "c_regpredictability"},
		FieldY: {"a_stakeholdersupport", "a_sustainabilityfit", "a_commercialappetite"},
	}
)

// displayNames maps normalized headers to the names used on export.
var displayNames = map[string]string{
	"country_market":       "Country/Market",
	"marketsize_units":     "MarketSize_Units",
	"segment_notes":        "Segment/Notes",
	"certainty_1to9":       "Certainty_1to9",
	"alignment_1to9":       "Alignment_1to9",
	"c_dataquality":        "C_DataQuality",
	"c_supplystability":    "C_SupplyStability",
	"c_regpredictability":  "C_RegPredictability",
	"a_stakeholdersupport": "A_StakeholderSupport",
	"a_sustainabilityfit":  "A_SustainabilityFit",
	"a_commercialappetite": "A_CommercialAppetite",
	"certainty_0to10":      "Certainty_0to10",
	"alignment_0to10":      "Alignment_0to10",
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// NormalizeHeader trims h, replaces runs of non-alphanumeric characters
// with "_" and lowercases the result.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	return strings.ToLower(nonAlnum.ReplaceAllString(h, "_"))
}

// FieldOf returns the canonical field a normalized header maps to.
func FieldOf(header string) (Field, bool) {
	f, ok := aliases[header]
	return f, ok
}

// DisplayName returns the export name for a normalized header.
func DisplayName(header string) string {
	if d, ok := displayNames[header]; ok {
		return d
	}
	return header
}
