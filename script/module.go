package script

import (
	"errors"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/dynecs/ecs"
	"github.com/milk9111/dynecs/ecs/component"
)

// ModuleName is the import name of the builtin module scripts use to reach
// the registry, as in `ecs := import("ecs")`.
const ModuleName = "ecs"

func (h *Host) buildModule() map[string]tengo.Object {
	fn := func(name string, f tengo.CallableFunc) *tengo.UserFunction {
		return &tengo.UserFunction{Name: name, Value: f}
	}

	return map[string]tengo.Object{
		"null": entityObject(ecs.Null),
		"create": fn("create", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 0 {
				return nil, tengo.ErrWrongNumArguments
			}
			return entityObject(h.proxy.Create()), nil
		}),
		"valid": fn("valid", func(args ...tengo.Object) (tengo.Object, error) {
			e, err := entityArgs(args, 1)
			if err != nil {
				return nil, err
			}
			return boolObject(h.proxy.Valid(e)), nil
		}),
		"destroy": fn("destroy", func(args ...tengo.Object) (tengo.Object, error) {
			e, err := entityArgs(args, 1)
			if err != nil {
				return nil, err
			}
			if err := h.proxy.Destroy(e); err != nil {
				return errorObject(err), nil
			}
			return tengo.TrueValue, nil
		}),
		"set": fn("set", func(args ...tengo.Object) (tengo.Object, error) {
			e, name, err := entityNameArgs(args, 3)
			if err != nil {
				return nil, err
			}
			v, err := h.proxy.Set(e, name, args[2])
			if err != nil {
				return errorObject(err), nil
			}
			return *v, nil
		}),
		"get": fn("get", func(args ...tengo.Object) (tengo.Object, error) {
			e, name, err := entityNameArgs(args, 2)
			if err != nil {
				return nil, err
			}
			return h.lookup(e, name), nil
		}),
		"has": fn("has", func(args ...tengo.Object) (tengo.Object, error) {
			e, name, err := entityNameArgs(args, 2)
			if err != nil {
				return nil, err
			}
			return boolObject(h.proxy.Has(e, name)), nil
		}),
		"remove": fn("remove", func(args ...tengo.Object) (tengo.Object, error) {
			e, name, err := entityNameArgs(args, 2)
			if err != nil {
				return nil, err
			}
			if err := h.proxy.Remove(e, name); err != nil {
				return errorObject(err), nil
			}
			return tengo.TrueValue, nil
		}),
		"view": fn("view", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) < 1 || len(args) > 2 {
				return nil, tengo.ErrWrongNumArguments
			}
			required, err := stringsArg("required", args[0])
			if err != nil {
				return nil, err
			}
			var excluded []string
			if len(args) == 2 {
				if excluded, err = stringsArg("excluded", args[1]); err != nil {
					return nil, err
				}
			}
			out := &tengo.Array{}
			for e := range h.proxy.View(required, excluded).All() {
				out.Value = append(out.Value, entityObject(e))
			}
			return out, nil
		}),
		"names": fn("names", func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 0 {
				return nil, tengo.ErrWrongNumArguments
			}
			out := &tengo.Array{}
			for _, name := range h.proxy.Table().Names() {
				out.Value = append(out.Value, &tengo.String{Value: name})
			}
			for _, name := range h.proxy.Registry().Exposed() {
				out.Value = append(out.Value, &tengo.String{Value: name})
			}
			return out, nil
		}),
	}
}

// lookup returns the dynamic component name of e, falling back to an exposed
// native component converted with tengo.FromInterface.
func (h *Host) lookup(e ecs.Entity, name string) tengo.Object {
	v, err := h.proxy.Get(e, name)
	if err == nil {
		return *v
	}
	if !errors.Is(err, component.ErrUnknownComponent) {
		return errorObject(err)
	}
	native, nerr := h.proxy.Registry().Component(e, name)
	if nerr != nil {
		return errorObject(nerr)
	}
	obj, cerr := toObject(native)
	if cerr != nil {
		return errorObject(cerr)
	}
	return obj
}

func entityObject(e ecs.Entity) tengo.Object {
	return &tengo.Int{Value: int64(e)}
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func errorObject(err error) tengo.Object {
	return &tengo.Error{Value: &tengo.String{Value: err.Error()}}
}

func toEntity(name string, obj tengo.Object) (ecs.Entity, error) {
	i, ok := obj.(*tengo.Int)
	if !ok {
		return ecs.Null, tengo.ErrInvalidArgumentType{Name: name, Expected: "int", Found: obj.TypeName()}
	}
	return ecs.Entity(uint64(i.Value)), nil
}

func entityArgs(args []tengo.Object, n int) (ecs.Entity, error) {
	if len(args) != n {
		return ecs.Null, tengo.ErrWrongNumArguments
	}
	return toEntity("entity", args[0])
}

func entityNameArgs(args []tengo.Object, n int) (ecs.Entity, string, error) {
	e, err := entityArgs(args, n)
	if err != nil {
		return ecs.Null, "", err
	}
	s, ok := args[1].(*tengo.String)
	if !ok {
		return ecs.Null, "", tengo.ErrInvalidArgumentType{Name: "name", Expected: "string", Found: args[1].TypeName()}
	}
	name := strings.TrimSpace(s.Value)
	if name == "" {
		return ecs.Null, "", tengo.ErrInvalidArgumentType{Name: "name", Expected: "non-empty string", Found: "empty string"}
	}
	return e, name, nil
}

func stringsArg(name string, obj tengo.Object) ([]string, error) {
	var items []tengo.Object
	switch v := obj.(type) {
	case *tengo.Array:
		items = v.Value
	case *tengo.ImmutableArray:
		items = v.Value
	case *tengo.Undefined:
		return nil, nil
	default:
		return nil, tengo.ErrInvalidArgumentType{Name: name, Expected: "array", Found: obj.TypeName()}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(*tengo.String)
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: name, Expected: "array of strings", Found: item.TypeName()}
		}
		out = append(out, s.Value)
	}
	return out, nil
}
