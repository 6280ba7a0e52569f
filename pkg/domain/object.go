package domain

import (
	"encoding/json"
	"math"
	"reflect"
)

// IsKeyedMap reports whether x is a string-keyed map. Sequences, scalars and nil
// are not keyed maps, so a JSON array never passes where an object is required.
func IsKeyedMap(x any) bool {
	if x == nil {
		return false
	}
	v := reflect.ValueOf(x)
	return v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String && !v.IsNil()
}

// asObject normalises raw decoded JSON objects and canonical records into a
// string-keyed field map. ok is false for anything that is not object-shaped.
func asObject(x any) (map[string]any, bool) {
	switch v := x.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return v, v != nil
	case Elevator:
		return v.fields(), true
	case *Elevator:
		if v == nil {
			return nil, false
		}
		return v.fields(), true
	case Building:
		return v.fields(), true
	case *Building:
		if v == nil {
			return nil, false
		}
		return v.fields(), true
	}
	if !IsKeyedMap(x) {
		return nil, false
	}
	rv := reflect.ValueOf(x)
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func (e Elevator) fields() map[string]any {
	return map[string]any{
		"active": e.Active,
		"status": e.Status,
		"floor":  e.Floor,
		"action": e.Action,
	}
}

func (b Building) fields() map[string]any {
	elevators := b.Elevators
	if elevators == nil {
		elevators = Elevators{}
	}
	return map[string]any{
		"floorCount": b.FloorCount,
		"ground":     b.Ground,
		"elevators":  elevators,
	}
}

// numeric returns x as a float64 when x has a Go numeric kind.
func numeric(x any) (float64, bool) {
	switch v := x.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func integral(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && math.Trunc(f) == f
}
