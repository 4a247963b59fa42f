package templet

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Value is a value manipulated by the template engine. It defines string
// conversion and truthiness semantics. The engine's value space is a closed
// union: None, Bool, Int, Float, String, List, Dict, Callable, plus Opaque
// for arbitrary host objects.
type Value interface {
	String() string
	Truth() bool
}

// AttrGetter is implemented by values exposing named attributes. The
// resolver tries attribute access before item access, and never skips a
// level.
type AttrGetter interface {
	Attr(name string) (Value, bool)
}

// ItemGetter is implemented by values exposing keyed items.
type ItemGetter interface {
	Item(key string) (Value, bool)
}

// Callable is implemented by values that can be invoked from a template,
// either as a filter or as a nullary method reached through a dotted path.
type Callable interface {
	Value
	Call(args []Value) (Value, error)
}

// NoneValue represents the absence of a value.
type NoneValue struct{}

func (NoneValue) String() string { return "" }
func (NoneValue) Truth() bool    { return false }

// BoolValue wraps a boolean.
type BoolValue bool

func (b BoolValue) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b BoolValue) Truth() bool { return bool(b) }

// IntValue wraps a 64-bit integer.
type IntValue int64

func (i IntValue) String() string { return strconv.FormatInt(int64(i), 10) }
func (i IntValue) Truth() bool    { return int64(i) != 0 }

// FloatValue wraps a 64-bit float.
type FloatValue float64

func (f FloatValue) String() string { return strconv.FormatFloat(float64(f), 'g', -1, 64) }
func (f FloatValue) Truth() bool    { return float64(f) != 0 }

// StringValue wraps a string.
type StringValue string

func (s StringValue) String() string { return string(s) }
func (s StringValue) Truth() bool    { return len(s) > 0 }

// ListValue wraps an ordered list of values.
type ListValue []Value

func (l ListValue) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}
func (l ListValue) Truth() bool { return len(l) > 0 }

// DictValue wraps a string-keyed mapping. Its entries are reached from
// templates through item access.
type DictValue map[string]Value

func (d DictValue) String() string { return "{...}" }
func (d DictValue) Truth() bool    { return len(d) > 0 }

func (d DictValue) Item(key string) (Value, bool) {
	v, ok := d[key]
	return v, ok
}

// CallableValue wraps an invocable function value.
type CallableValue struct {
	Fn func(args []Value) (Value, error)
}

func (c CallableValue) String() string { return "<function>" }
func (c CallableValue) Truth() bool    { return true }

func (c CallableValue) Call(args []Value) (Value, error) { return c.Fn(args) }

// OpaqueValue adapts an arbitrary host object. Attribute access resolves
// struct fields and methods (case-insensitively, so exported Go names are
// reachable under template spelling); item access resolves map keys.
type OpaqueValue struct {
	v any
}

// Opaque wraps a host object without conversion.
func Opaque(v any) OpaqueValue { return OpaqueValue{v: v} }

// Unwrap returns the wrapped host object.
func (o OpaqueValue) Unwrap() any { return o.v }

func (o OpaqueValue) String() string { return fmt.Sprintf("%v", o.v) }

func (o OpaqueValue) Truth() bool {
	if o.v == nil {
		return false
	}
	rv := reflect.ValueOf(o.v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return !rv.IsZero()
}

func (o OpaqueValue) Attr(name string) (Value, bool) {
	rv := reflect.ValueOf(o.v)
	if !rv.IsValid() {
		return nil, false
	}
	// Methods first on the value as given, so pointer receivers stay
	// reachable.
	rt := rv.Type()
	for i := 0; i < rt.NumMethod(); i++ {
		if strings.EqualFold(rt.Method(i).Name, name) {
			return FromGo(rv.Method(i).Interface()), true
		}
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		fv := rv.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
		if fv.IsValid() && fv.CanInterface() {
			return FromGo(fv.Interface()), true
		}
	}
	return nil, false
}

func (o OpaqueValue) Item(key string) (Value, bool) {
	rv := reflect.ValueOf(o.v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		mv := rv.MapIndex(reflect.ValueOf(key))
		if mv.IsValid() {
			return FromGo(mv.Interface()), true
		}
	}
	return nil, false
}

// FromGo converts a Go value to a Value. Maps and slices convert
// recursively; functions become Callables invoked through reflection;
// anything else is wrapped as Opaque.
func FromGo(v any) Value {
	if v == nil {
		return NoneValue{}
	}
	switch t := v.(type) {
	case Value:
		return t
	case string:
		return StringValue(t)
	case bool:
		return BoolValue(t)
	case int:
		return IntValue(int64(t))
	case int32:
		return IntValue(int64(t))
	case int64:
		return IntValue(t)
	case float32:
		return FloatValue(float64(t))
	case float64:
		return FloatValue(t)
	case []byte:
		return StringValue(string(t))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		n := rv.Len()
		out := make(ListValue, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, FromGo(rv.Index(i).Interface()))
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			out := DictValue{}
			it := rv.MapRange()
			for it.Next() {
				out[it.Key().String()] = FromGo(it.Value().Interface())
			}
			return out
		}
	case reflect.Func:
		return CallableValue{Fn: wrapGoFunc(rv)}
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NoneValue{}
		}
	}
	return OpaqueValue{v: v}
}

// ToGo converts a Value back to a plain Go value.
func ToGo(v Value) any {
	switch t := v.(type) {
	case nil:
		return nil
	case NoneValue:
		return nil
	case BoolValue:
		return bool(t)
	case IntValue:
		return int64(t)
	case FloatValue:
		return float64(t)
	case StringValue:
		return string(t)
	case ListValue:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToGo(e)
		}
		return out
	case DictValue:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = ToGo(e)
		}
		return out
	case OpaqueValue:
		return t.v
	default:
		return v
	}
}

var valueType = reflect.TypeOf((*Value)(nil)).Elem()
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// wrapGoFunc adapts a plain Go function so templates can call it. Arguments
// are converted to the parameter types; a trailing error result propagates.
func wrapGoFunc(fn reflect.Value) func(args []Value) (Value, error) {
	ft := fn.Type()
	return func(args []Value) (Value, error) {
		if ft.IsVariadic() {
			if len(args) < ft.NumIn()-1 {
				return nil, fmt.Errorf("function takes at least %d arguments, got %d", ft.NumIn()-1, len(args))
			}
		} else if len(args) != ft.NumIn() {
			return nil, fmt.Errorf("function takes %d arguments, got %d", ft.NumIn(), len(args))
		}
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			pt := ft.In(min(i, ft.NumIn()-1))
			if ft.IsVariadic() && i >= ft.NumIn()-1 {
				pt = ft.In(ft.NumIn() - 1).Elem()
			}
			av, err := convertArg(a, pt)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			in[i] = av
		}
		out := fn.Call(in)
		if n := len(out); n > 0 && ft.Out(n-1) == errorType {
			if !out[n-1].IsNil() {
				return nil, out[n-1].Interface().(error)
			}
			out = out[:n-1]
		}
		if len(out) == 0 {
			return NoneValue{}, nil
		}
		return FromGo(out[0].Interface()), nil
	}
}

func convertArg(a Value, pt reflect.Type) (reflect.Value, error) {
	if pt == valueType {
		return reflect.ValueOf(a), nil
	}
	if pt.Kind() == reflect.String {
		return reflect.ValueOf(a.String()).Convert(pt), nil
	}
	gv := reflect.ValueOf(ToGo(a))
	if !gv.IsValid() {
		return reflect.Zero(pt), nil
	}
	if gv.Type().AssignableTo(pt) {
		return gv, nil
	}
	if pt.Kind() != reflect.Interface && gv.Type().ConvertibleTo(pt) {
		return gv.Convert(pt), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", gv.Type(), pt)
}

// iterate converts a value into its element sequence for loop semantics.
// Dict iteration yields keys in sorted order so renders are deterministic.
func iterate(v Value) ([]Value, error) {
	switch t := v.(type) {
	case StringValue:
		out := make([]Value, 0, len(t))
		for _, r := range string(t) {
			out = append(out, StringValue(string(r)))
		}
		return out, nil
	case ListValue:
		out := make([]Value, len(t))
		copy(out, t)
		return out, nil
	case DictValue:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Value, len(keys))
		for i, k := range keys {
			out[i] = StringValue(k)
		}
		return out, nil
	case OpaqueValue:
		rv := reflect.ValueOf(t.v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			out := make([]Value, rv.Len())
			for i := range out {
				out[i] = FromGo(rv.Index(i).Interface())
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("not iterable: %s", typeName(v))
}

func typeName(v Value) string {
	switch v.(type) {
	case nil, NoneValue:
		return "none"
	case BoolValue:
		return "bool"
	case IntValue:
		return "int"
	case FloatValue:
		return "float"
	case StringValue:
		return "string"
	case ListValue:
		return "list"
	case DictValue:
		return "dict"
	case CallableValue:
		return "function"
	default:
		return fmt.Sprintf("%T", v)
	}
}
