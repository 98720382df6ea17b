// Package scene assembles a renderable zone map from points and options.
//
// [Build] runs the layout engine (declustering, sizing, label placement),
// classifies every point into a zone, and emits a flat list of
// [Primitive]s in fixed paint order:
//
//  1. zone fills
//  2. grid and zone boundary lines
//  3. zone names
//  4. markers
//  5. leader lines
//  6. point labels
//  7. axis frame, ticks, axis titles and the chart title
//
// Primitive positions are in data units and text is vertically centered on
// its anchor. Sinks call [Scene.Project] to map them to pixels and then
// apply the primitive's pixel offset (DX, DY).
// A scene holds no references to its inputs and is safe to share.
package scene
