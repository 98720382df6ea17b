// Package zone classifies chart coordinates into named, colored zones.
//
// A [Classifier] holds an ordered list of rectangular [Rule]s over a square
// domain. Rules are applied like paint: a later rule covers an earlier one,
// so [Classifier.ColorAt] returns the zone of the last rule containing the
// point. Overlapping rectangles with the same zone express unions (a cross,
// or an "x high or y high" band) without any boolean logic.
//
// Rectangles are closed on their lower edges and open on their upper edges,
// except that an upper edge lying on the domain maximum is closed and the
// final rule is closed on all sides. Points on the far edge of the chart
// therefore always classify.
//
// Zone thresholds are data. [Preset] returns a built-in [RuleSet] and
// [DecodeRuleSet] reads one from TOML:
//
//	name = "custom"
//
//	[default]
//	name = "Other"
//	color = "#ffffff"
//
//	[[rule]]
//	name = "Stable"
//	color = "#c8e6c9"
//	x0 = 1
//	x1 = 6
//	y0 = 1
//	y1 = 6
//
//	[[label]]
//	zone = "Stable"
//	x = 1.5
//	y = 1.5
package zone
