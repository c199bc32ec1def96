// Edge-detection operator registry
package operators

import (
	"fmt"
	"sort"

	"realtime-edge-processing/internal/core"
)

// Operator is the interface every edge/feature-extraction transform
// implements. Apply consumes one RGBA frame and returns a fresh RGBA buffer
// of identical dimensions.
type Operator interface {
	Apply(input *core.Buffer, params map[string]interface{}) (*core.Buffer, error)
	Name() string
	DefaultParams() map[string]interface{}
	Validate(params map[string]interface{}) error
	ParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for UI generation
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "int", "float"
	Min         interface{} `json:"min,omitempty"`
	Max         interface{} `json:"max,omitempty"`
	Default     interface{} `json:"default"`
	Description string      `json:"description"`
}

// Well-known parameter keys.
const (
	ParamThreshold     = "threshold"
	ParamLowThreshold  = "low_threshold"
	ParamHighThreshold = "high_threshold"
	ParamBlurRadius    = "blur_radius"
	ParamKernelSize    = "kernel_size"
)

var registry = make(map[string]Operator)

// Register adds an operator under its name.
func Register(op Operator) {
	registry[op.Name()] = op
}

// Get looks up a registered operator.
func Get(name string) (Operator, bool) {
	op, exists := registry[name]
	return op, exists
}

// IsValid reports whether name is a registered operator.
func IsValid(name string) bool {
	_, exists := registry[name]
	return exists
}

// Names returns all registered operator names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs a registered operator by name.
func Apply(name string, input *core.Buffer, params map[string]interface{}) (*core.Buffer, error) {
	op, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedOperator, name)
	}
	return op.Apply(input, params)
}

// ValidateParameters checks params against a registered operator.
func ValidateParameters(name string, params map[string]interface{}) error {
	op, exists := registry[name]
	if !exists {
		return fmt.Errorf("%w: %s", core.ErrUnsupportedOperator, name)
	}
	return op.Validate(params)
}

// floatParam reads a numeric parameter, tolerating the float64/int mix that
// flag parsing and JSON both produce.
func floatParam(params map[string]interface{}, key string, def float64) float64 {
	if val, ok := params[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return def
}

func intParam(params map[string]interface{}, key string, def int) int {
	return int(floatParam(params, key, float64(def)))
}

func init() {
	Register(NewSobel())
	Register(NewPrewitt())
	Register(NewRoberts())
	Register(NewLaplacian())
	Register(NewGaussian())
	Register(NewCanny())
}
