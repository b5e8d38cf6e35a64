// Package treeio loads declaration trees from YAML files.
//
// A tree file describes one source file: its package, imports, file
// annotations and declarations. Every declaration is a mapping whose kind
// key carries the name:
//
//	package: demo
//	imports: [other.Box, "other.util.*", "kotlin.collections.List as L"]
//	decls:
//	  - class: Outer
//	    supertypes: [Base]
//	    members:
//	      - fun: size
//	        params: ["n: Int"]
//	        expr: count(n)
//	      - val: label
//	        value: '"outer"'
//
// Kind keys: class, interface, object, enum, annotation, anonymous, fun,
// val, var, typealias, entry, field, init, constructor. Expressions are
// literals, dotted references and calls.
package treeio
