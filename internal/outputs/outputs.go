// Package outputs flattens loosely typed per-agent output mappings into
// strings for display.
package outputs

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

// Coerce converts every value of raw to a string. Numbers use their shortest
// form, booleans become true/false, null becomes "", and nested objects or
// arrays are kept as compact JSON. A nil map yields a nil result.
func Coerce(raw map[string]any) (map[string]string, error) {
	if raw == nil {
		return nil, nil
	}
	flat := make(map[string]any, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case map[string]any, []any:
			buf, err := json.Marshal(val)
			if err != nil {
				return nil, fmt.Errorf("encoding %q: %w", k, err)
			}
			flat[k] = string(buf)
		case bool:
			flat[k] = strconv.FormatBool(val)
		case nil:
			flat[k] = ""
		default:
			flat[k] = val
		}
	}

	out := map[string]string{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(flat); err != nil {
		return nil, err
	}
	return out, nil
}
