package starlark

import (
	"fmt"

	"go.starlark.net/starlark"

	"github.com/rainfd/template-engine-plus/pkg/templet"
)

// ConvertToStarlark converts an engine value to a Starlark value.
func ConvertToStarlark(val templet.Value) starlark.Value {
	if val == nil {
		return starlark.None
	}

	switch v := val.(type) {
	case templet.StringValue:
		return starlark.String(string(v))
	case templet.IntValue:
		return starlark.MakeInt64(int64(v))
	case templet.FloatValue:
		return starlark.Float(float64(v))
	case templet.BoolValue:
		return starlark.Bool(bool(v))
	case templet.ListValue:
		items := make([]starlark.Value, len(v))
		for i, item := range v {
			items[i] = ConvertToStarlark(item)
		}
		return starlark.NewList(items)
	case templet.DictValue:
		dict := starlark.NewDict(len(v))
		for key, value := range v {
			dict.SetKey(starlark.String(key), ConvertToStarlark(value))
		}
		return dict
	case templet.NoneValue:
		return starlark.None
	case templet.Callable:
		return wrapEngineCallable(v)
	default:
		// For unknown types, convert to string
		return starlark.String(val.String())
	}
}

// ConvertFromStarlark converts a Starlark value to an engine value.
func ConvertFromStarlark(val starlark.Value) templet.Value {
	if val == nil || val == starlark.None {
		return templet.NoneValue{}
	}

	switch v := val.(type) {
	case starlark.String:
		return templet.StringValue(string(v))
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return templet.IntValue(i)
		}
		// For very large integers, convert to string
		return templet.StringValue(v.String())
	case starlark.Float:
		return templet.FloatValue(float64(v))
	case starlark.Bool:
		return templet.BoolValue(bool(v))
	case *starlark.List:
		items := make(templet.ListValue, v.Len())
		for i := 0; i < v.Len(); i++ {
			items[i] = ConvertFromStarlark(v.Index(i))
		}
		return items
	case starlark.Tuple:
		items := make(templet.ListValue, len(v))
		for i, item := range v {
			items[i] = ConvertFromStarlark(item)
		}
		return items
	case *starlark.Dict:
		dict := make(templet.DictValue)
		for _, item := range v.Items() {
			key, value := item[0], item[1]
			if keyStr, ok := key.(starlark.String); ok {
				dict[string(keyStr)] = ConvertFromStarlark(value)
			} else {
				dict[key.String()] = ConvertFromStarlark(value)
			}
		}
		return dict
	case starlark.Callable:
		return wrapStarlarkCallable(v)
	default:
		// For unknown types, convert to string
		return templet.StringValue(val.String())
	}
}

// wrapStarlarkCallable turns a Starlark function into an engine callable,
// so script-defined functions can serve as template filters.
func wrapStarlarkCallable(fn starlark.Callable) templet.Value {
	return templet.CallableValue{Fn: func(args []templet.Value) (templet.Value, error) {
		thread := &starlark.Thread{Name: "filter"}
		tuple := make(starlark.Tuple, len(args))
		for i, a := range args {
			tuple[i] = ConvertToStarlark(a)
		}
		out, err := starlark.Call(thread, fn, tuple, nil)
		if err != nil {
			return nil, fmt.Errorf("calling %s: %w", fn.Name(), err)
		}
		return ConvertFromStarlark(out), nil
	}}
}

// wrapEngineCallable exposes an engine callable to Starlark code.
func wrapEngineCallable(fn templet.Callable) starlark.Value {
	return starlark.NewBuiltin("callable", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return starlark.None, fmt.Errorf("keyword arguments are not supported")
		}
		in := make([]templet.Value, len(args))
		for i, a := range args {
			in[i] = ConvertFromStarlark(a)
		}
		out, err := fn.Call(in)
		if err != nil {
			return starlark.None, err
		}
		return ConvertToStarlark(out), nil
	})
}
