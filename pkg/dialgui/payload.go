package dialgui

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"
)

// payload fields of a structured key+value change
const (
	payloadKeyField   = "key"
	payloadValueField = "value"
)

var errNoValue = errors.New("payload carries no value")

// NormalizedValue is a decoded store payload. Key is only set when the payload was a structured key+value pair
type NormalizedValue struct {
	Key string
	Raw float64
}

// DecodePayload decodes a store payload into a normalized scalar. Booleans decode as 0 or 1
func DecodePayload(payload interface{}) (NormalizedValue, error) {
	switch v := payload.(type) {
	case nil:
		return NormalizedValue{}, errNoValue
	case map[string]interface{}:
		return decodePair(v)
	case map[interface{}]interface{}:
		return decodePair(cast.ToStringMap(v))
	}

	raw, err := decodeScalar(payload)
	if err != nil {
		return NormalizedValue{}, err
	}

	return NormalizedValue{Raw: raw}, nil
}

// Truthy reports whether a trigger payload requests a navigation step
func Truthy(payload interface{}) bool {
	value, err := DecodePayload(payload)
	if err != nil {
		return false
	}

	return value.Raw != 0
}

func decodePair(pair map[string]interface{}) (NormalizedValue, error) {
	inner, ok := pair[payloadValueField]
	if !ok {
		return NormalizedValue{}, errNoValue
	}

	raw, err := decodeScalar(inner)
	if err != nil {
		return NormalizedValue{}, err
	}

	return NormalizedValue{
		Key: cast.ToString(pair[payloadKeyField]),
		Raw: raw,
	}, nil
}

func decodeScalar(payload interface{}) (float64, error) {
	if b, ok := payload.(bool); ok {
		if b {
			return 1, nil
		}
		return 0, nil
	}

	raw, err := cast.ToFloat64E(payload)
	if err == nil {
		return raw, nil
	}

	// "true"/"false" style strings
	if b, boolErr := cast.ToBoolE(payload); boolErr == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("decode scalar %v: %w", payload, err)
}
