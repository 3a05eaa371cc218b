package cel

import (
	"net"
	"path/filepath"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
)

// NewConditionEnvironment creates a CEL environment for evaluating
// CapabilityPolicy.Condition expressions against the free-form Vars map
// an EvaluationContext carries. A condition that indexes vars directly
// needs the key present in Vars at evaluation time; var_get(vars, key)
// resolves an absent key to CEL's null instead.
//
// Because Vars is caller-defined rather than a fixed schema, the
// environment declares a single dynamic map variable, "vars", plus the
// destination/network/glob helper functions the rest of the platform's
// CEL rules rely on.
func NewConditionEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),
		ext.Sets(),

		cel.Variable("vars", cel.MapType(cel.StringType, cel.DynType)),

		// glob: shell-style pattern matching, e.g. glob("admin.*", capability_id).
		cel.Function("glob",
			cel.Overload("glob_string_string",
				[]*cel.Type{cel.StringType, cel.StringType},
				cel.BoolType,
				cel.BinaryBinding(func(pattern, name ref.Val) ref.Val {
					p := pattern.Value().(string)
					n := name.Value().(string)
					matched, _ := filepath.Match(p, n)
					return types.Bool(matched)
				}),
			),
		),

		// ip_in_cidr: checks if an IP string falls within a CIDR range.
		cel.Function("ip_in_cidr",
			cel.Overload("ip_in_cidr_string_string",
				[]*cel.Type{cel.StringType, cel.StringType},
				cel.BoolType,
				cel.BinaryBinding(func(ipVal, cidrVal ref.Val) ref.Val {
					ip := net.ParseIP(ipVal.Value().(string))
					if ip == nil {
						return types.Bool(false)
					}
					_, network, err := net.ParseCIDR(cidrVal.Value().(string))
					if err != nil {
						return types.Bool(false)
					}
					return types.Bool(network.Contains(ip))
				}),
			),
		),

		// var_get: extract a key from the vars map, returning null if absent.
		cel.Function("var_get",
			cel.Overload("var_get_map_string",
				[]*cel.Type{cel.MapType(cel.StringType, cel.DynType), cel.StringType},
				cel.DynType,
				cel.BinaryBinding(func(mapVal, keyVal ref.Val) ref.Val {
					key := keyVal.Value().(string)
					if m, ok := mapVal.Value().(map[string]any); ok {
						if v, found := m[key]; found {
							return types.DefaultTypeAdapter.NativeToValue(v)
						}
					}
					return types.NullValue
				}),
			),
		),

		// var_contains: true if any string value in the vars map contains substr.
		cel.Function("var_contains",
			cel.Overload("var_contains_map_string",
				[]*cel.Type{cel.MapType(cel.StringType, cel.DynType), cel.StringType},
				cel.BoolType,
				cel.BinaryBinding(func(mapVal, substrVal ref.Val) ref.Val {
					substr := substrVal.Value().(string)
					m, ok := mapVal.Value().(map[string]any)
					if !ok {
						return types.Bool(false)
					}
					for _, v := range m {
						if s, ok := v.(string); ok && strings.Contains(s, substr) {
							return types.Bool(true)
						}
					}
					return types.Bool(false)
				}),
			),
		),
	)
}
