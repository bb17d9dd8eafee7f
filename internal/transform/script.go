package transform

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	lua "github.com/yuin/gopher-lua"

	"dte/internal/value"
	"dte/internal/xerr"
)

type scriptTransformer struct {
	vm *lua.LState
	fn lua.LValue
}

// NewScript compiles source once into a sandboxed *lua.LState: no
// os/io/package libraries are opened, so the script has no filesystem or
// process access (§9). source must define a global function
// `transform(row)` returning either a table (kept columns, projective per
// §4.5) or nil/false (row dropped). The VM is reused across rows, which is
// safe because the engine never calls into a Transformer concurrently
// (§5: "single-threaded cooperative").
func NewScript(source string) (Transformer, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSandboxedLibs(vm)

	if err := vm.DoString(source); err != nil {
		vm.Close()
		return nil, xerr.Transform("compiling script: %v", err)
	}
	fn := vm.GetGlobal("transform")
	if fn == lua.LNil {
		vm.Close()
		return nil, xerr.Transform("script must define a global transform(row) function")
	}

	return &scriptTransformer{vm: vm, fn: fn}, nil
}

// Close releases the underlying Lua VM. The engine calls this once a
// transfer completes.
func (t *scriptTransformer) Close() {
	t.vm.Close()
}

// openSandboxedLibs opens only the base, string, table, and math libraries
// — no os, io, package, or debug — per the "no side effects, no I/O, no
// access to the host environment" sandbox contract (§9).
func openSandboxedLibs(vm *lua.LState) {
	for _, pair := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		vm.Push(vm.NewFunction(pair.fn))
		vm.Push(lua.LString(pair.name))
		vm.Call(1, 0)
	}
}

func (t *scriptTransformer) Apply(row value.Row) (value.Row, bool, error) {
	rowTable, err := rowToLua(t.vm, row)
	if err != nil {
		return value.Row{}, false, xerr.Transform("building row view: %v", err)
	}

	if err := t.vm.CallByParam(lua.P{Fn: t.fn, NRet: 1, Protect: true}, rowTable); err != nil {
		return value.Row{}, false, xerr.Transform("running script: %v", err)
	}
	result := t.vm.Get(-1)
	t.vm.Pop(1)

	if result == lua.LNil || result == lua.LFalse {
		return value.Row{}, true, nil
	}
	table, ok := result.(*lua.LTable)
	if !ok {
		return value.Row{}, false, xerr.Transform("script must return a table or nil, got %s", result.Type())
	}

	var fields []value.Field
	var iterErr error
	table.ForEach(func(k, v lua.LValue) {
		if iterErr != nil {
			return
		}
		name, ok := k.(lua.LString)
		if !ok {
			iterErr = fmt.Errorf("transform: script result has non-string key %v", k)
			return
		}
		val, err := fromLua(v)
		if err != nil {
			iterErr = err
			return
		}
		fields = append(fields, value.Field{Name: string(name), Value: val})
	})
	if iterErr != nil {
		return value.Row{}, false, xerr.Transform("%v", iterErr)
	}
	// A Lua table keeps no key order, so kept columns are emitted sorted by
	// name to give every row (and the derived schema) a stable column order.
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	return value.NewRow(fields...), false, nil
}

func rowToLua(vm *lua.LState, row value.Row) (*lua.LTable, error) {
	t := vm.NewTable()
	for _, f := range row.Fields {
		v, err := rowGetter(row, f.Name)
		if err != nil {
			return nil, err
		}
		lv, err := toLua(v)
		if err != nil {
			return nil, err
		}
		t.RawSetString(f.Name, lv)
	}
	return t, nil
}

func toLua(v interface{}) (lua.LValue, error) {
	switch t := v.(type) {
	case nil:
		return lua.LNil, nil
	case string:
		return lua.LString(t), nil
	case float64:
		return lua.LNumber(t), nil
	case bool:
		return lua.LBool(t), nil
	default:
		return nil, fmt.Errorf("transform: unsupported row value type %T", v)
	}
}

func fromLua(v lua.LValue) (value.Value, error) {
	switch t := v.(type) {
	case *lua.LNilType:
		return value.Null(), nil
	case lua.LString:
		return value.NewString(string(t)), nil
	case lua.LNumber:
		f := float64(t)
		if f == float64(int64(f)) {
			return value.NewInteger(int64(f)), nil
		}
		return value.NewDecimal(decimal.NewFromFloat(f)), nil
	case lua.LBool:
		return value.NewBoolean(bool(t)), nil
	default:
		return value.Value{}, fmt.Errorf("transform: script returned unsupported value type %s", v.Type())
	}
}
