package domain

import (
	"encoding/json"
	"math"
	"testing"
)

func decodeRaw(t *testing.T, src string) any {
	t.Helper()
	var out any
	if err := json.Unmarshal([]byte(src), &out); err != nil {
		t.Fatalf("decode %s: %v", src, err)
	}
	return out
}

func validElevatorRaw() map[string]any {
	return map[string]any{"active": true, "status": StatusDoorsOpen, "floor": float64(1), "action": "idle"}
}

func validBuildingRaw() map[string]any {
	return map[string]any{
		"floorCount": float64(5),
		"ground":     float64(1),
		"elevators": map[string]any{
			"1": validElevatorRaw(),
		},
	}
}

func copyRaw(base map[string]any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	return out
}

// with returns a copy of base with key set to value, or removed when value is nil.
func with(base map[string]any, key string, value any) map[string]any {
	out := copyRaw(base)
	if value == nil {
		delete(out, key)
		return out
	}
	out[key] = value
	return out
}

// withNull returns a copy of base with key present but explicitly null.
func withNull(base map[string]any, key string) map[string]any {
	out := copyRaw(base)
	out[key] = nil
	return out
}

func TestIsInteger(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"int", 3, true},
		{"negative int", -2, true},
		{"whole float", float64(4), true},
		{"json number", json.Number("7"), true},
		{"fraction", 1.5, false},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
		{"string", "3", false},
		{"bool", true, false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsInteger(tc.in); got != tc.want {
				t.Fatalf("IsInteger(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsKeyedMap(t *testing.T) {
	if !IsKeyedMap(map[string]any{}) {
		t.Fatalf("empty object should be a keyed map")
	}
	if !IsKeyedMap(Elevators{}) {
		t.Fatalf("Elevators should be a keyed map")
	}
	if IsKeyedMap([]any{map[string]any{}}) {
		t.Fatalf("array must not be a keyed map")
	}
	if IsKeyedMap(nil) || IsKeyedMap("x") || IsKeyedMap(map[int]any{}) {
		t.Fatalf("nil, scalars and int-keyed maps are not keyed maps")
	}
	var nilMap map[string]any
	if IsKeyedMap(nilMap) {
		t.Fatalf("nil map is not a keyed map")
	}
}

func TestIsValidBuilding(t *testing.T) {
	base := validBuildingRaw()
	invalidElevators := map[string]any{"1": with(validElevatorRaw(), "floor", float64(10))}
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"valid", base, true},
		{"no floor count", with(base, "floorCount", nil), false},
		{"no ground", with(base, "ground", nil), false},
		{"null floor count", withNull(base, "floorCount"), false},
		{"null ground", withNull(base, "ground"), false},
		{"floor count not a number", with(base, "floorCount", "5"), false},
		{"floor count infinite", with(base, "floorCount", math.Inf(1)), false},
		{"floor count nan", with(base, "floorCount", math.NaN()), false},
		{"floor count fractional", with(base, "floorCount", 2.5), false},
		{"ground not a number", with(base, "ground", "1"), false},
		{"ground infinite", with(base, "ground", math.Inf(-1)), false},
		{"ground nan", with(base, "ground", math.NaN()), false},
		{"ground fractional", with(base, "ground", 0.5), false},
		{"elevators not an object", with(base, "elevators", "none"), false},
		{"elevators array", with(base, "elevators", []any{base["elevators"]}), false},
		{"missing elevators", with(base, "elevators", nil), false},
		{"floor count below one", with(base, "floorCount", float64(0)), false},
		{"ground below zero", with(base, "ground", float64(-1)), false},
		{"ground at floor count", with(base, "ground", float64(5)), false},
		{"invalid elevators", with(base, "elevators", invalidElevators), false},
		{"not an object", []any{}, false},
		{"nil", nil, false},
		{"canonical", Building{FloorCount: 3, Ground: 0, Elevators: Elevators{"1": {Active: true, Status: StatusDoorsOpen, Floor: 2, Action: "idle"}}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidBuilding(tc.in); got != tc.want {
				t.Fatalf("IsValidBuilding = %v, want %v", got, tc.want)
			}
		})
	}
}

// Floors must satisfy -G <= f < F-G for every F >= 1 and 0 <= G < F.
func TestIsValidBuildingFloorRangeProperty(t *testing.T) {
	for floorCount := 1; floorCount <= 6; floorCount++ {
		for ground := 0; ground < floorCount; ground++ {
			for floor := -ground - 2; floor < floorCount-ground+2; floor++ {
				building := map[string]any{
					"floorCount": float64(floorCount),
					"ground":     float64(ground),
					"elevators":  map[string]any{"1": with(validElevatorRaw(), "floor", float64(floor))},
				}
				want := floor >= -ground && floor < floorCount-ground
				if got := IsValidBuilding(building); got != want {
					t.Fatalf("F=%d G=%d f=%d: got %v want %v", floorCount, ground, floor, got, want)
				}
			}
		}
	}
}

func TestIsValidBuildings(t *testing.T) {
	raw := decodeRaw(t, `{
		"1": {"floorCount": 5, "ground": 0, "elevators": {"1": {"active": true, "status": "doors open", "floor": 2, "action": "idle"}}},
		"2": {"floorCount": 2, "ground": 1, "elevators": {}}
	}`)
	if !IsValidBuildings(raw) {
		t.Fatalf("expected valid buildings")
	}
	bad := decodeRaw(t, `{
		"1": {"floorCount": 5, "ground": 0, "elevators": {}},
		"2": {"floorCount": 2, "ground": 2, "elevators": {}}
	}`)
	if IsValidBuildings(bad) {
		t.Fatalf("expected invalid buildings when one building is invalid")
	}
	if IsValidBuildings([]any{}) {
		t.Fatalf("array is not a building map")
	}
	if !IsValidBuildings(map[string]any{}) {
		t.Fatalf("empty map should be valid")
	}
}

func TestIsValidElevator(t *testing.T) {
	building := Building{FloorCount: 5, Ground: 1}
	base := validElevatorRaw()
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"valid", base, true},
		{"no active", with(base, "active", nil), false},
		{"no status", with(base, "status", nil), false},
		{"no floor", with(base, "floor", nil), false},
		{"no action", with(base, "action", nil), false},
		{"null status", withNull(base, "status"), false},
		{"active not boolean", with(base, "active", "true"), false},
		{"floor not a number", with(base, "floor", "1"), false},
		{"floor infinite", with(base, "floor", math.Inf(1)), false},
		{"floor nan", with(base, "floor", math.NaN()), false},
		{"floor fractional", with(base, "floor", 1.25), false},
		{"floor too low", with(base, "floor", float64(-2)), false},
		{"floor at lowest", with(base, "floor", float64(-1)), true},
		{"floor at highest", with(base, "floor", float64(3)), true},
		{"floor too high", with(base, "floor", float64(4)), false},
		{"status value unchecked", with(base, "status", "teleporting"), true},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidElevator(tc.in, building); got != tc.want {
				t.Fatalf("IsValidElevator = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsValidElevators(t *testing.T) {
	building := Building{FloorCount: 3, Ground: 0}
	good := map[string]any{"1": validElevatorRaw(), "2": with(validElevatorRaw(), "floor", float64(2))}
	if !IsValidElevators(good, building) {
		t.Fatalf("expected valid elevators")
	}
	bad := map[string]any{"1": validElevatorRaw(), "2": with(validElevatorRaw(), "floor", float64(3))}
	if IsValidElevators(bad, building) {
		t.Fatalf("expected invalid elevators")
	}
	if IsValidElevators([]any{validElevatorRaw()}, building) {
		t.Fatalf("array of elevators must be rejected")
	}
}

func TestIsValidFloor(t *testing.T) {
	building := Building{FloorCount: 5, Ground: 0}
	if !IsValidFloor(float64(4), building) {
		t.Fatalf("floor 4 should be valid")
	}
	if IsValidFloor(float64(5), building) {
		t.Fatalf("floor 5 should be out of range")
	}
	if IsValidFloor("2", building) || IsValidFloor(nil, building) {
		t.Fatalf("non-numeric floors must be rejected")
	}
}
