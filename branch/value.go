package branch

import (
	"fmt"
	"reflect"
)

// Values are held either directly or behind a pointer (as filled in by the
// tree reader). Any numeric or boolean element type is accepted.

func indirect(name string, v any) reflect.Value {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		panic(fmt.Errorf("branch %s holds no value", name))
	}
	return rv
}

func scalar(name string, v any) reflect.Value {
	rv := indirect(name, v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		panic(fmt.Errorf("branch %s is an array, not a scalar", name))
	}
	return rv
}

func array(name string, v any) reflect.Value {
	rv := indirect(name, v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		panic(fmt.Errorf("branch %s is a scalar, not an array", name))
	}
	return rv
}

func element(name string, v any, i int) reflect.Value {
	rv := array(name, v)
	if i < 0 || i >= rv.Len() {
		panic(fmt.Errorf("branch %s: index %d out of range [0, %d)", name, i, rv.Len()))
	}
	return rv.Index(i)
}

func asFloat(name string, rv reflect.Value) float64 {
	switch {
	case rv.CanFloat():
		return rv.Float()
	case rv.CanInt():
		return float64(rv.Int())
	case rv.CanUint():
		return float64(rv.Uint())
	case rv.Kind() == reflect.Bool:
		if rv.Bool() {
			return 1
		}
		return 0
	}
	panic(fmt.Errorf("branch %s: unsupported type %s", name, rv.Type()))
}

func asInt(name string, rv reflect.Value) int64 {
	switch {
	case rv.CanInt():
		return rv.Int()
	case rv.CanUint():
		return int64(rv.Uint())
	case rv.Kind() == reflect.Bool:
		if rv.Bool() {
			return 1
		}
		return 0
	}
	panic(fmt.Errorf("branch %s: %s is not an integer type", name, rv.Type()))
}

func asUint(name string, rv reflect.Value) uint64 {
	switch {
	case rv.CanUint():
		return rv.Uint()
	case rv.CanInt():
		return uint64(rv.Int())
	}
	panic(fmt.Errorf("branch %s: %s is not an integer type", name, rv.Type()))
}
