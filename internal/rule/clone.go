package rule

import "reflect"

// Clone creates an independent copy of a rule so per-invocation
// settings never leak into the registry's instance. The copy is a
// reflect-based shallow copy of the concrete struct, which is enough
// because rule fields are plain thresholds and severities.
func Clone(r Rule) Rule {
	rv := reflect.ValueOf(r)
	if rv.Kind() == reflect.Ptr {
		newPtr := reflect.New(rv.Elem().Type())
		newPtr.Elem().Set(rv.Elem())
		return newPtr.Interface().(Rule)
	}
	// Value type — already a copy.
	return r
}
