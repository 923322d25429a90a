package models

import "reflect"

var stringPtrType = reflect.TypeOf((*string)(nil))

// ToEmptyStrings returns a copy of v whose nil *string fields point to "".
// Editing surfaces work on plain text and cannot represent null.
func ToEmptyStrings[T any](v T) T {
	return mapStringPointers(v, func(p *string) *string {
		if p == nil {
			empty := ""
			return &empty
		}
		return p
	})
}

// ToNullValues returns a copy of v whose *string fields holding "" become nil.
// It is applied before an entity is submitted.
func ToNullValues[T any](v T) T {
	return mapStringPointers(v, func(p *string) *string {
		if p != nil && *p == "" {
			return nil
		}
		return p
	})
}

// mapStringPointers touches top level fields only; nested relations are not form fields.
func mapStringPointers[T any](v T, fn func(*string) *string) T {
	rv := reflect.ValueOf(&v).Elem()
	if rv.Kind() != reflect.Struct {
		return v
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Type() != stringPtrType || !f.CanSet() {
			continue
		}
		p, _ := f.Interface().(*string)
		f.Set(reflect.ValueOf(fn(p)))
	}
	return v
}
