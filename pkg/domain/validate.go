package domain

// The validators inspect raw decoded input (typically the result of
// json.Unmarshal into an any) before it is sanitized. They never panic: a
// missing, null or wrongly typed required field is a rejection.

var (
	requiredBuildingKeys = []string{"floorCount", "ground"}
	requiredElevatorKeys = []string{"active", "status", "floor", "action"}
)

// floorRange carries a building's bounds as floats so oversized raw integers
// compare correctly without overflowing int.
type floorRange struct {
	floorCount float64
	ground     float64
}

func rangeOf(b Building) floorRange {
	return floorRange{floorCount: float64(b.FloorCount), ground: float64(b.Ground)}
}

func (r floorRange) contains(floor float64) bool {
	return floor >= -r.ground && floor < r.floorCount-r.ground
}

// IsInteger reports whether x is numeric, finite, not NaN and has no fractional part.
func IsInteger(x any) bool {
	f, ok := numeric(x)
	return ok && integral(f)
}

// IsValidBuilding reports whether b is a well-formed building whose elevators
// all sit within its floor range.
func IsValidBuilding(b any) bool {
	obj, ok := asObject(b)
	if !ok {
		return false
	}
	for _, key := range requiredBuildingKeys {
		if obj[key] == nil {
			return false
		}
	}
	if !IsInteger(obj["floorCount"]) || !IsInteger(obj["ground"]) {
		return false
	}
	if !IsKeyedMap(obj["elevators"]) {
		return false
	}
	floorCount, _ := numeric(obj["floorCount"])
	ground, _ := numeric(obj["ground"])
	if floorCount < 1 {
		return false
	}
	if ground < 0 || ground >= floorCount {
		return false
	}
	return validElevators(obj["elevators"], floorRange{floorCount: floorCount, ground: ground})
}

// IsValidBuildings reports whether m is a keyed map of valid buildings.
func IsValidBuildings(m any) bool {
	obj, ok := asObject(m)
	if !ok {
		return false
	}
	for _, building := range obj {
		if !IsValidBuilding(building) {
			return false
		}
	}
	return true
}

// IsValidElevator reports whether e is a well-formed elevator positioned
// inside building. Status and action are only checked for presence.
func IsValidElevator(e any, building Building) bool {
	return validElevator(e, rangeOf(building))
}

// IsValidElevators reports whether m is a keyed map of elevators that are all
// valid for the same building.
func IsValidElevators(m any, building Building) bool {
	return validElevators(m, rangeOf(building))
}

// IsValidFloor reports whether f is an integer floor inside building.
func IsValidFloor(f any, building Building) bool {
	if !IsInteger(f) {
		return false
	}
	floor, _ := numeric(f)
	return rangeOf(building).contains(floor)
}

func validElevator(e any, r floorRange) bool {
	obj, ok := asObject(e)
	if !ok {
		return false
	}
	for _, key := range requiredElevatorKeys {
		if obj[key] == nil {
			return false
		}
	}
	if _, ok := obj["active"].(bool); !ok {
		return false
	}
	if !IsInteger(obj["floor"]) {
		return false
	}
	floor, _ := numeric(obj["floor"])
	return r.contains(floor)
}

func validElevators(m any, r floorRange) bool {
	obj, ok := asObject(m)
	if !ok {
		return false
	}
	for _, elevator := range obj {
		if !validElevator(elevator, r) {
			return false
		}
	}
	return true
}
