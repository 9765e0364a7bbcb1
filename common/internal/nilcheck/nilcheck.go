// Package nilcheck detects nil values hidden behind non-nil interface
// headers, so functional options can reject typed-nil dependencies.
package nilcheck

import "reflect"

// Interface reports whether value is nil, including typed-nil cases such as
// a nil *T stored in a non-nil interface.
func Interface(value any) bool {
	if value == nil {
		return true
	}

	reflected := reflect.ValueOf(value)

	switch reflected.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return reflected.IsNil()
	default:
		return false
	}
}
