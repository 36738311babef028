package config

import (
	"errors"
	"reflect"
)

// mergeStructs layers src over *dst: lists are appended, maps are unioned,
// booleans are or-ed, nested structs merge field by field and any other
// non-zero value in src replaces the one in dst
func mergeStructs(dst, src any) error {
	d := reflect.ValueOf(dst)
	if d.Kind() != reflect.Pointer || d.Elem().Kind() != reflect.Struct {
		return errors.New("merge destination must be a pointer to a struct")
	}
	s := reflect.Indirect(reflect.ValueOf(src))
	if s.Kind() != reflect.Struct {
		return errors.New("merge source must be a struct")
	}
	if d.Elem().Type() != s.Type() {
		return errors.New("merge source and destination differ in type")
	}
	mergeValue(d.Elem(), s)
	return nil
}

func mergeValue(dst, src reflect.Value) {
	switch dst.Kind() {
	case reflect.Struct:
		for i := range dst.NumField() {
			if f := dst.Field(i); f.CanSet() {
				mergeValue(f, src.Field(i))
			}
		}
	case reflect.Slice:
		if src.Len() > 0 {
			dst.Set(reflect.AppendSlice(dst, src))
		}
	case reflect.Map:
		if src.Len() == 0 {
			return
		}
		if dst.IsNil() {
			dst.Set(reflect.MakeMapWithSize(dst.Type(), src.Len()))
		}
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(iter.Key(), iter.Value())
		}
	case reflect.Bool:
		dst.SetBool(dst.Bool() || src.Bool())
	default:
		if !src.IsZero() {
			dst.Set(src)
		}
	}
}
