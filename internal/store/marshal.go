package store

import (
	"fmt"

	"github.com/roach88/cadcad/internal/ir"
)

// marshalData converts point data to canonical JSON TEXT for storage.
// Canonical floats always carry a '.' or exponent, so the int/float
// distinction survives the round trip.
func marshalData(data ir.Object) (string, error) {
	if data == nil {
		data = ir.Object{}
	}
	b, err := ir.MarshalCanonical(data)
	if err != nil {
		return "", fmt.Errorf("marshal data: %w", err)
	}
	return string(b), nil
}

// unmarshalData parses canonical JSON TEXT back into point data.
func unmarshalData(data string) (ir.Object, error) {
	if data == "" || data == "{}" {
		return ir.Object{}, nil
	}
	obj, err := ir.ParseObject([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal data: %w", err)
	}
	return obj, nil
}
