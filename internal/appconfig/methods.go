package appconfig

import (
	"errors"
	"fmt"
	"math"

	"github.com/delaneyj/minivue/reactive"
	"github.com/delaneyj/minivue/surface"
	"github.com/delaneyj/minivue/vm"
)

// MethodSpec is a declarative method:
//
//	set:    key = value
//	incr:   key += value (1 when value is empty)
//	toggle: key = !key
//	copy:   key = from
type MethodSpec struct {
	Op    string `mapstructure:"op"`
	Key   string `mapstructure:"key"`
	Value any    `mapstructure:"value"`
	From  string `mapstructure:"from"`
}

func (s MethodSpec) validate() error {
	switch s.Op {
	case "set", "incr", "toggle":
	case "copy":
		if s.From == "" {
			return errors.New("copy needs a from key")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, s.Op)
	}
	if s.Key == "" {
		return fmt.Errorf("%s needs a key", s.Op)
	}
	return nil
}

// Method turns the spec into a view-model method.
func (s MethodSpec) Method() vm.Method {
	switch s.Op {
	case "set":
		return func(v *vm.VM, _ *surface.Event) {
			v.Set(s.Key, s.Value)
		}
	case "incr":
		return func(v *vm.VM, _ *surface.Event) {
			step := 1.0
			if s.Value != nil {
				step = toNumber(s.Value)
			}
			v.Set(s.Key, numberValue(toNumber(v.Get(s.Key))+step))
		}
	case "toggle":
		return func(v *vm.VM, _ *surface.Event) {
			cur, _ := v.Get(s.Key).(bool)
			v.Set(s.Key, !cur)
		}
	case "copy":
		return func(v *vm.VM, _ *surface.Event) {
			v.Set(s.Key, v.Get(s.From))
		}
	}
	return nil
}

// BuildMethods converts every spec of the config.
func (c *Config) BuildMethods() map[string]vm.Method {
	out := make(map[string]vm.Method, len(c.Methods))
	for name, spec := range c.Methods {
		if m := spec.Method(); m != nil {
			out[name] = m
		}
	}
	return out
}

func toNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		return reactive.ToNumber(x)
	case bool:
		if x {
			return 1
		}
		return 0
	}
	f, err := numberOf(v)
	if err != nil {
		return math.NaN()
	}
	return f
}

func numberOf(v any) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	}
	return 0, fmt.Errorf("%T is not a number", v)
}

// numberValue keeps integral results as ints.
func numberValue(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}
