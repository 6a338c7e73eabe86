package param

import (
	"fmt"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/vango-dev/pegelboard/internal/errors"
)

// Decl is a declarative schema as it appears in configuration.
type Decl struct {
	// Name is the parameter name.
	Name string `json:"name" yaml:"name"`

	// Type is "string" (default), "int" or "bool".
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Default is the value returned when nothing valid is stored.
	Default any `json:"default,omitempty" yaml:"default,omitempty"`

	// Values restricts the parsed value to a fixed set.
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`

	// Validate is an expr-lang boolean expression over `value`.
	Validate string `json:"validate,omitempty" yaml:"validate,omitempty"`
}

// Compile turns a declaration into a Schema. The default must pass the
// declaration's own validator.
func Compile(d Decl) (Named, error) {
	if d.Name == "" {
		return Named{}, errors.New("P102").WithDetail("parameter declaration without a name")
	}

	var parser Parser
	switch d.Type {
	case "", "string":
		parser = AsString
	case "int":
		parser = AsInt
	case "bool":
		parser = AsBool
	default:
		return Named{}, errors.New("P102").WithDetail(fmt.Sprintf("parameter %q: unknown type %q", d.Name, d.Type))
	}

	var allowed []any
	for _, v := range d.Values {
		p := parser(v)
		if p == Invalid {
			return Named{}, errors.New("P102").WithDetail(fmt.Sprintf("parameter %q: value %v does not parse as %s", d.Name, v, d.Type))
		}
		allowed = append(allowed, p)
	}

	var program *vm.Program
	if d.Validate != "" {
		var err error
		program, err = expr.Compile(d.Validate, expr.Env(map[string]any{"value": nil}), expr.AsBool())
		if err != nil {
			return Named{}, errors.New("P102").WithDetail(fmt.Sprintf("parameter %q: validate expression", d.Name)).Wrap(err)
		}
	}

	validator := func(v any) bool {
		if len(allowed) > 0 && !slices.Contains(allowed, v) {
			return false
		}
		if program == nil {
			return true
		}
		out, err := expr.Run(program, map[string]any{"value": v})
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}

	s := Schema{Parser: parser, Validator: validator}
	if d.Default != nil {
		def, ok := s.Resolve(d.Default)
		if !ok {
			return Named{}, errors.New("P102").WithDetail(fmt.Sprintf("parameter %q: default %v fails validation", d.Name, d.Default))
		}
		s.Default = def
	}
	return Define(d.Name, s), nil
}

// CompileAll compiles a list of declarations in order.
func CompileAll(decls []Decl) (Schemas, error) {
	out := make(Schemas, 0, len(decls))
	for _, d := range decls {
		n, err := Compile(d)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
