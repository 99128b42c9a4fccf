package statement

import (
	"fmt"
	"maps"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ParamsFromStruct converts a protobuf Struct into keyed parameter values.
// Whole numbers become int64.
func ParamsFromStruct(s *structpb.Struct) map[string]any {
	if s == nil {
		return map[string]any{}
	}
	m := s.AsMap()
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

// ParamsToStruct converts keyed parameter values into a protobuf Struct.
func ParamsToStruct(params map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(params)
	if err != nil {
		return nil, fmt.Errorf("%w: params: %w", ErrInvalidDocument, err)
	}
	return s, nil
}

// ParseParamsJSON decodes a JSON object of parameter values.
func ParseParamsJSON(data []byte) (map[string]any, error) {
	var s structpb.Struct
	if err := protojson.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: params: %w", ErrInvalidDocument, err)
	}
	return ParamsFromStruct(&s), nil
}

// ParseAssignments decodes key=value pairs. Values that parse as integers,
// floats or booleans keep that type; "null" is nil; anything else is a
// string.
func ParseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q is not key=value", ErrInvalidDocument, p)
		}
		out[key] = scalar(raw)
	}
	return out, nil
}

func scalar(raw string) any {
	if raw == "null" {
		return nil
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// MergeParams layers parameter maps; later maps win.
func MergeParams(layers ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, l := range layers {
		maps.Copy(out, l)
	}
	return out
}
