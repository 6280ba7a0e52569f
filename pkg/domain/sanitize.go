package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The sanitizers coerce loosely typed input into canonical records, dropping
// unrecognised fields. They run after validation and do not re-check ranges.
// Absent or non-object input fails with ErrInvalidInput.

// ToBuilding coerces a raw building object into a Building.
func ToBuilding(x any) (Building, error) {
	if b, ok := canonicalBuilding(x); ok {
		return b.Clone(), nil
	}
	obj, ok := asObject(x)
	if !ok {
		return Building{}, fmt.Errorf("sanitize building: %w", ErrInvalidInput)
	}
	floorCount, err := toNumber(obj["floorCount"])
	if err != nil {
		return Building{}, fmt.Errorf("sanitize building floorCount: %w", err)
	}
	ground, err := toNumber(obj["ground"])
	if err != nil {
		return Building{}, fmt.Errorf("sanitize building ground: %w", err)
	}
	elevators, err := ToElevators(obj["elevators"])
	if err != nil {
		return Building{}, err
	}
	return Building{FloorCount: floorCount, Ground: ground, Elevators: elevators}, nil
}

// ToBuildings applies ToBuilding to every value, preserving addresses. A nil
// input yields an empty map.
func ToBuildings(x any) (Buildings, error) {
	if b, ok := x.(Buildings); ok {
		return b.Clone(), nil
	}
	if x == nil {
		return Buildings{}, nil
	}
	obj, ok := asObject(x)
	if !ok {
		return nil, fmt.Errorf("sanitize buildings: %w", ErrInvalidInput)
	}
	out := make(Buildings, len(obj))
	for addr, raw := range obj {
		building, err := ToBuilding(raw)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", addr, err)
		}
		out[addr] = building
	}
	return out, nil
}

// ToElevator coerces a raw elevator object into an Elevator.
func ToElevator(x any) (Elevator, error) {
	switch v := x.(type) {
	case Elevator:
		return v, nil
	case *Elevator:
		if v != nil {
			return *v, nil
		}
	}
	obj, ok := asObject(x)
	if !ok {
		return Elevator{}, fmt.Errorf("sanitize elevator: %w", ErrInvalidInput)
	}
	floor, err := toNumber(obj["floor"])
	if err != nil {
		return Elevator{}, fmt.Errorf("sanitize elevator floor: %w", err)
	}
	return Elevator{
		Active: toBool(obj["active"]),
		Status: toText(obj["status"]),
		Floor:  floor,
		Action: toText(obj["action"]),
	}, nil
}

// ToElevators applies ToElevator to every value, preserving indices. A nil
// input yields an empty map.
func ToElevators(x any) (Elevators, error) {
	if e, ok := x.(Elevators); ok {
		return e.Clone(), nil
	}
	if x == nil {
		return Elevators{}, nil
	}
	obj, ok := asObject(x)
	if !ok {
		return nil, fmt.Errorf("sanitize elevators: %w", ErrInvalidInput)
	}
	out := make(Elevators, len(obj))
	for idx, raw := range obj {
		elevator, err := ToElevator(raw)
		if err != nil {
			return nil, fmt.Errorf("elevator %s: %w", idx, err)
		}
		out[idx] = elevator
	}
	return out, nil
}

func canonicalBuilding(x any) (Building, bool) {
	switch v := x.(type) {
	case Building:
		return v, true
	case *Building:
		if v != nil {
			return *v, true
		}
	}
	return Building{}, false
}

// toNumber mirrors numeric coercion of loosely typed JSON: numbers pass
// through, numeric strings are parsed, booleans become 0 or 1 and nil or the
// empty string become 0. Values that are not integers are rejected.
func toNumber(x any) (int, error) {
	switch v := x.(type) {
	case nil:
		return 0, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int:
		return v, nil
	case uint64:
		if v > math.MaxInt {
			return 0, fmt.Errorf("%d overflows int: %w", v, ErrInvalidInput)
		}
		return int(v), nil
	case uint:
		if uint64(v) > math.MaxInt {
			return 0, fmt.Errorf("%d overflows int: %w", v, ErrInvalidInput)
		}
		return int(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not numeric: %w", v, ErrInvalidInput)
		}
		return fromFloat(f)
	case json.Number:
		return toNumber(v.String())
	}
	if f, ok := numeric(x); ok {
		return fromFloat(f)
	}
	return 0, fmt.Errorf("%T is not numeric: %w", x, ErrInvalidInput)
}

func fromFloat(f float64) (int, error) {
	if !integral(f) {
		return 0, fmt.Errorf("%v is not an integer: %w", f, ErrInvalidInput)
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%v overflows int: %w", f, ErrInvalidInput)
	}
	return int(f), nil
}

// toBool treats the strings "true"/"false" (and the other spellings accepted by
// strconv.ParseBool) literally; any other value follows truthiness.
func toBool(x any) bool {
	switch v := x.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
		return v != ""
	}
	if f, ok := numeric(x); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

func toText(x any) string {
	switch v := x.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
