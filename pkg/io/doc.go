// Package io reads and writes the tabular point data that feeds a zone map.
//
// # Overview
//
// Input is CSV with a header row. Headers are normalized (trimmed, runs of
// non-alphanumeric characters replaced by "_", lowercased) and matched to
// five canonical fields:
//
//   - label: "label", "country_market", "name"
//   - xValue: "xvalue", "x", "certainty_1to9"
//   - yValue: "yvalue", "y", "alignment_1to9"
//   - magnitude: "magnitude", "size", "marketsize_units"
//   - note (optional): "note", "notes", "segment_notes"
//
// Unrecognized columns are kept and written back unchanged.
//
// # Derived Axes
//
// Two conversions fill the axis columns before validation:
//
//   - Legacy 0–10 scores: when an axis column is missing but
//     "certainty_0to10" or "alignment_0to10" exists, the axis is derived as
//     round(1 + 8*v/10), clipped to 1–9.
//   - Sub-scores: when all three sub-score columns of an axis are present
//     ("c_dataquality", "c_supplystability", "c_regpredictability" for x;
//     "a_stakeholdersupport", "a_sustainabilityfit", "a_commercialappetite"
//     for y), the axis is their weighted mean, rounded and clipped to 1–9.
//     Sub-scores take precedence over an existing axis column.
//
// Rounding is half to even.
//
// # Validation
//
// [Table.RequireColumns] reports missing canonical fields as an
// [errors.MissingColumnsError]. [Table.CheckRanges] lists axis values outside
// the chart range. [Table.Points] converts rows, skipping (and reporting)
// rows whose numbers do not parse, so one bad row never fails the chart.
//
// # Export
//
// [Table.WriteCSV] writes the table with display headers such as
// "Country/Market" and "Certainty_1to9", including derived columns, so an
// edited or converted table can be downloaded and re-imported.
//
// [errors.MissingColumnsError]: github.com/matzehuels/zonemap/pkg/errors.MissingColumnsError
package io
