// Package pkg provides the core libraries of the meteomap weather-map editor.
//
// # Overview
//
// Meteomap places weather symbols on a background map: catalog icons,
// labels, temperatures, wind badges and pressure zones. Positions are stored
// as percentages of the stage so a map keeps its layout at any display size.
// The pkg directory is organized by concern:
//
//  1. Model: [document], [history], [catalog], [legend]
//  2. Editing: [editor], [interact], [geometry]
//  3. Persistence: [project], [storage], [autosave]
//  4. Output: [export]
//  5. Support: [errors], [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow through an editing session:
//
//	pointer / key events
//	         ↓
//	    [interact] package (gesture state machine, context menu)
//	         ↓
//	    [editor] package (session: history, selection, clipboard)
//	         ↓
//	    [document] package (pure element mutations)
//	         ↓
//	    [project] JSON ─→ [storage] autosave slot / project file
//	    [export] PNG
//
// # Quick Start
//
// Place an icon, undo it and export the map:
//
//	import (
//	    "github.com/matzehuels/meteomap/pkg/catalog"
//	    "github.com/matzehuels/meteomap/pkg/document"
//	    "github.com/matzehuels/meteomap/pkg/editor"
//	    "github.com/matzehuels/meteomap/pkg/export"
//	    "github.com/matzehuels/meteomap/pkg/geometry"
//	)
//
//	s := editor.New(catalog.Builtin())
//	s.Place(document.DefaultBody(document.KindIcon, "sun"), geometry.Point{X: 40, Y: 25})
//	s.Undo()
//
//	doc := s.Document()
//	st := export.NewStage(doc, s.Resolver(), 1200, nil)
//	png, _ := export.Export(ctx, export.NewRasterizer(), st)
//
// # Invariants
//
// Element coordinates stay within [0, 100] on both axes. Every committed
// mutation pushes exactly one history snapshot; gestures in progress update
// the current snapshot in place and commit once on release. Locked elements
// ignore moves, resizes and updates until they are unlocked.
//
// # Observability
//
// Libraries report through the hook interfaces in [observability]. The CLI
// installs Prometheus-backed hooks for the HTTP service; everything else runs
// with no-op hooks.
//
// [document]: github.com/matzehuels/meteomap/pkg/document
// [history]: github.com/matzehuels/meteomap/pkg/history
// [catalog]: github.com/matzehuels/meteomap/pkg/catalog
// [legend]: github.com/matzehuels/meteomap/pkg/legend
// [editor]: github.com/matzehuels/meteomap/pkg/editor
// [interact]: github.com/matzehuels/meteomap/pkg/interact
// [geometry]: github.com/matzehuels/meteomap/pkg/geometry
// [project]: github.com/matzehuels/meteomap/pkg/project
// [storage]: github.com/matzehuels/meteomap/pkg/storage
// [autosave]: github.com/matzehuels/meteomap/pkg/autosave
// [export]: github.com/matzehuels/meteomap/pkg/export
// [errors]: github.com/matzehuels/meteomap/pkg/errors
// [observability]: github.com/matzehuels/meteomap/pkg/observability
// [buildinfo]: github.com/matzehuels/meteomap/pkg/buildinfo
package pkg
