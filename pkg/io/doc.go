// Package io reads and writes chart specs as JSON and plugin configuration as
// TOML.
//
// # Spec Format
//
// A spec is a JSON object with a root unit and two registries:
//
//	{
//	  "scales": {
//	    "x": {"type": "linear", "source": "/", "dim": "date"},
//	    "y": {"type": "linear", "source": "/", "dim": "sales"}
//	  },
//	  "sources": {
//	    "/": {
//	      "dims": {"date": {"type": "measure"}, "sales": {"type": "measure"}},
//	      "data": [{"date": 1, "sales": 3}]
//	    }
//	  },
//	  "unit": {
//	    "type": "COORDS.RECT", "x": "x", "y": "y",
//	    "expression": {"source": "/", "inherit": false},
//	    "units": [{"type": "ELEMENT.LINE", "x": "x", "y": "y"}]
//	  }
//	}
//
// Transformation functions are code, not data: they are never read or
// written. Plugins register the ones they reference.
//
// # Validation
//
// [ReadSpec] rejects specs that break the tree or reference invariants:
// a missing root, cycles, malformed unit types, scale references that do not
// resolve, and scales whose source or dimension is unknown. Errors carry the
// INVALID_INPUT code and wrap the underlying cause.
//
// # Plugin Configuration
//
// [ReadConfig] decodes a TOML file naming the plugins to run and holding one
// table per plugin:
//
//	[pipeline]
//	plugins = ["layers"]
//
//	[plugins.layers]
//	mode = "merge"
//
//	[[plugins.layers.layers]]
//	type = "bar"
//	y = "profit"
//
// Plugin tables are decoded lazily by the plugin itself through
// [Config.Decoders], so this package knows nothing about plugin settings.
package io
