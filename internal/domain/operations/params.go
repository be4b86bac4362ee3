package operations

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/GriffinCanCode/FileFlex/client/internal/shared/types"
)

// FormDefaults returns the initial values of the user-supplied parameters
// of d. The implicit path key is never part of the form.
func FormDefaults(d types.OperationDescriptor) types.Payload {
	key := d.PathKey()
	defaults := make(types.Payload, len(d.ParamSchema))
	for _, p := range d.ParamSchema {
		if p.Key == key || p.DefaultValue == nil {
			continue
		}
		defaults[p.Key] = p.DefaultValue
	}
	return defaults
}

// PrepareSubmission merges form over the defaults of d, coerces values to
// their declared kinds and injects the resolved path key. All violations
// are returned together as a *multierror.Error of *types.ValidationError.
func PrepareSubmission(d types.OperationDescriptor, form map[string]any, selection []string, entry types.Entry) (types.Payload, error) {
	key := d.PathKey()
	payload := FormDefaults(d)
	for k, v := range form {
		payload[k] = v
	}
	delete(payload, types.SelectPathKey)
	delete(payload, types.SelectedPathsKey)

	var result *multierror.Error
	for _, p := range d.ParamSchema {
		if p.Key == key {
			continue
		}
		value, present := payload[p.Key]
		if !present || isBlank(value) {
			if p.Required {
				result = multierror.Append(result, &types.ValidationError{
					Field:   p.Key,
					Message: fmt.Sprintf("%s is required", label(p)),
				})
			}
			delete(payload, p.Key)
			continue
		}
		coerced, err := coerce(p, value)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		payload[p.Key] = coerced
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	for k, v := range BuildPayload(d, selection, entry) {
		payload[k] = v
	}
	return payload, nil
}

func label(p types.ParameterSpec) string {
	if p.Label != "" {
		return p.Label
	}
	return p.Key
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

func invalid(p types.ParameterSpec, format string, args ...any) error {
	return &types.ValidationError{
		Field:   p.Key,
		Message: label(p) + " " + fmt.Sprintf(format, args...),
	}
}

func coerce(p types.ParameterSpec, value any) (any, error) {
	switch p.Kind() {
	case types.KindNumber:
		return coerceNumber(p, value)
	case types.KindBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, invalid(p, "must be true or false")
			}
			return b, nil
		}
		return nil, invalid(p, "must be true or false")
	case types.KindSelect:
		want := fmt.Sprint(value)
		for _, opt := range p.Options {
			if fmt.Sprint(opt.Value) == want {
				return opt.Value, nil
			}
		}
		return nil, invalid(p, "must be one of %s", optionList(p.Options))
	case types.KindPath:
		if p.MultiPath() {
			return splitList(value), nil
		}
		if s, ok := value.(string); ok {
			return strings.TrimSpace(s), nil
		}
		return nil, invalid(p, "must be a single path")
	case types.KindList:
		return splitList(value), nil
	}
	return value, nil
}

func coerceNumber(p types.ParameterSpec, value any) (any, error) {
	var f float64
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, invalid(p, "must be a number")
		}
		f = parsed
	default:
		return nil, invalid(p, "must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalid(p, "must be a number")
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int64(f), nil
	}
	return f, nil
}

func splitList(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func optionList(opts []types.ParamOption) string {
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = fmt.Sprint(o.Value)
	}
	return strings.Join(values, ", ")
}
