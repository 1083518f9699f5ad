// Package pkg provides the core libraries for layerspec chart-spec rewriting.
//
// # Overview
//
// Layerspec takes a declarative chart spec (scales, sources, and a tree of
// units) and rewrites it through a pipeline of plugins. The layers plugin
// overlays extra measures on an existing chart as additional panes. The pkg
// directory is organized into these areas:
//
//  1. [spec] - Spec data model and tree utilities (traverse, reduce, clone)
//  2. [sdk] - Accessors over specs and units used by plugins
//  3. [layers] - The layer rewrite strategy (dock, split, merge)
//  4. [plugin] - Plugin contract and registry
//  5. [pipeline] - Host runner driving plugin lifecycles
//  6. [io] - JSON spec and TOML config import/export
//  7. [server] - HTTP surface over the pipeline
//
// # Architecture
//
// The typical data flow through layerspec:
//
//	chart.json + layers.toml
//	         ↓
//	    [io] package (decode, validate)
//	         ↓
//	    [pipeline] package (Init → SpecReady → RenderComplete)
//	         ↓
//	    [layers] package (rewrite through [sdk] accessors)
//	         ↓
//	    rewritten chart.json
//
// # Quick Start
//
//	import (
//	    specio "github.com/matzehuels/layerspec/pkg/io"
//	    "github.com/matzehuels/layerspec/pkg/pipeline"
//	)
//
//	s, _ := specio.ImportSpec("chart.json")
//	cfg, _ := specio.ImportConfig("layers.toml")
//	r, _ := pipeline.NewRunner(s, pipeline.Options{
//	    Plugins:  cfg.Plugins,
//	    Decoders: cfg.Decoders(),
//	})
//	result, _ := r.Execute(ctx)
//	specio.ExportSpec(result.Spec, "out.json")
//
// Supporting packages: [errors] defines coded errors, [observability] holds
// pass and request hooks, [render/treeviz] draws unit trees with Graphviz,
// and [buildinfo] carries version information.
//
// [spec]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/spec
// [sdk]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/sdk
// [layers]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/layers
// [plugin]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/plugin
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/pipeline
// [io]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/io
// [server]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/observability
// [render/treeviz]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/render/treeviz
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/layerspec/pkg/buildinfo
package pkg
