// Package layout positions points for zone map visualizations.
//
// # Overview
//
// Given the raw points of a chart and the axis range they live in, this
// package computes where every marker and every label is drawn:
//
//   - [Decluster] fans points that share an exact coordinate onto a ring
//   - [PlaceLabels] puts each label at a stable, text-derived direction
//   - [Size] maps a magnitude to a marker area with a floor
//
// All functions are pure. The same input slice (in the same order) always
// yields the same placements, which is what makes rendered charts
// reproducible.
//
// # Declustering
//
// Points are grouped by exact (x, y) equality after clamping into the axis
// range. A group of one renders at its anchor. A group of k > 1 is placed on
// a ring of radius
//
//	r = min(RMax, RMin + Growth*(k-1))
//
// with member i (input order) at angle 2πi/k. The ring center is the anchor,
// pulled inward just enough for the whole ring to fit the padded domain.
//
// # Label Direction
//
// [LabelAngle] hashes the label text with FNV-1a-64 over its UTF-8 bytes,
// keeps the top 53 bits, and scales them to [0, 2π):
//
//	angle = (fnv1a64(text) >> 11) * 2^-53 * 2π
//
// Clustered labels ignore the hash and sit further out along their ring
// angle, so leader lines never cross.
//
// # Coordinates
//
// Positions are in data units (the same units as the axis range). Marker
// areas and radii are in points, matching how rendering backends size
// markers.
package layout
