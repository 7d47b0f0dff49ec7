package core

import (
	"reflect"

	"github.com/huandu/go-clone"

	"github.com/mapeditor/esdlcore/model"
)

// CopyValue returns an independent copy of a plain attribute value. Scalars
// are returned as is; slices, maps and pointers are deep-copied so the copy
// never aliases the original's data. Objects are never copied here.
func CopyValue(v any) any {
	if v == nil {
		return nil
	}
	if _, ok := v.(*model.Object); ok {
		return v
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128, reflect.String:
		return v
	}
	return clone.Clone(v)
}
