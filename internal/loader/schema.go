package loader

import "github.com/panelframe/panelframe/frame"

// SalesSchema returns parse options pinned to the weekly retail sales
// panel layout: store and week are integer identifiers, brand is a label,
// and the measures are floats. Inference would get most of these right,
// but pinning keeps sparse columns from drifting between loads.
func SalesSchema() Options {
	opts := DefaultOptions()
	opts.Kinds = map[string]frame.Kind{
		"store":   frame.KindInt,
		"brand":   frame.KindString,
		"week":    frame.KindInt,
		"logmove": frame.KindFloat,
		"price":   frame.KindFloat,
		"income":  frame.KindFloat,
		"feat":    frame.KindFloat,
		"deal":    frame.KindFloat,
	}
	return opts
}
