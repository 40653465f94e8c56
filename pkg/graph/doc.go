// Package graph shapes knowledge-graph payloads into render-ready graphs.
//
// A knowledge base exposes its extracted entities and relations as a
// [Payload]: loosely typed node and edge [Record]s straight from the JSON
// API. [Transform] turns a payload into a [RenderGraph] whose nodes and
// edges carry the visual attributes a graph canvas needs (id, label,
// shape, size, fill colour, line width).
//
// # Records and overrides
//
// Every [RenderNode] and [RenderEdge] keeps a shallow copy of its source
// record in Extra. When encoded, the computed attributes form the base and
// the original record fields are laid over them, so a record that already
// carries an "id" or "style" wins over the computed value. The typed fields
// always hold the effective value after that overlay.
//
// # Colours
//
// Node fill colours are derived from the entity type with [ColorForType], a
// deterministic string hash mapped into HSL space. The same type always
// yields the same colour, on any machine, and matches the colour the web
// client computes for the same string. Records without a type use
// [FallbackColor].
//
// # Defaults
//
//	id, label   entity_name
//	size        clamp(pagerank*100, 15, 30), or 20 without pagerank
//	fill        ColorForType(entity_type)
//	edge id     "e" + position in the input
//	edge label  description, or ""
//	lineWidth   clamp(weight/2, 1, 5), only when weight is set
//
// Any of these can be replaced through [Options].
//
// # Concurrency
//
// Transform is reentrant and never mutates its input.
package graph
