// Package domain defines the building and elevator records managed by citycore,
// together with the validation and sanitization rules applied to inbound data.
package domain

// Elevator status values understood by the elevator command. Other values are
// stored as-is.
const (
	StatusDoorsOpen   = "doors open"
	StatusDoorsClosed = "doors closed"
)

// Elevator is the canonical elevator record. Floor is relative to the owning
// building's ground floor.
type Elevator struct {
	Active bool   `json:"active"`
	Status string `json:"status"`
	Floor  int    `json:"floor"`
	Action string `json:"action"`
}

// Elevators maps an elevator index to its record. Indices are unique per building.
type Elevators map[string]Elevator

// Building is the canonical building record.
type Building struct {
	FloorCount int       `json:"floorCount"`
	Ground     int       `json:"ground"`
	Elevators  Elevators `json:"elevators"`
}

// Buildings maps a building address to its record. It is also the snapshot
// shape handed to persistence.
type Buildings map[string]Building

// MinFloor returns the lowest valid elevator floor for the building.
func (b Building) MinFloor() int { return -b.Ground }

// MaxFloor returns the highest valid elevator floor for the building.
func (b Building) MaxFloor() int { return b.FloorCount - b.Ground - 1 }

// HasFloor reports whether floor lies within [-Ground, FloorCount-Ground).
func (b Building) HasFloor(floor int) bool {
	return floor >= -b.Ground && floor < b.FloorCount-b.Ground
}

// Clone returns a deep copy of the elevator map. A nil map clones to an empty one.
func (e Elevators) Clone() Elevators {
	out := make(Elevators, len(e))
	for idx, elevator := range e {
		out[idx] = elevator
	}
	return out
}

// Clone returns a deep copy of the building.
func (b Building) Clone() Building {
	cp := b
	cp.Elevators = b.Elevators.Clone()
	return cp
}

// Clone returns a deep copy of every building.
func (b Buildings) Clone() Buildings {
	out := make(Buildings, len(b))
	for addr, building := range b {
		out[addr] = building.Clone()
	}
	return out
}
