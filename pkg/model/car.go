package model

import (
	"errors"
	"fmt"
)

var ErrAttributeOutOfRange = errors.New("attribute out of range")

// CarAttributes is a point-budgeted car build.
// The json names follow the naming used by the racing contract.
//
//nolint:tagliatelle // contract naming
type CarAttributes struct {
	Reliability     int `json:"reliability"     yaml:"reliability"`
	Maneuverability int `json:"maniability"     yaml:"maneuverability"`
	Speed           int `json:"speed"           yaml:"speed"`
	Brakes          int `json:"brakes"          yaml:"brakes"`
	Balance         int `json:"car_balance"     yaml:"balance"`
	Aerodynamics    int `json:"aerodynamics"    yaml:"aerodynamics"`
	DriverSkill     int `json:"driver_skills"   yaml:"driverSkill"`
	Luck            int `json:"luck"            yaml:"luck"`
}

// AttributeRange is an inclusive value range for a single attribute.
type AttributeRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// SimulationRange is the attribute space accepted by the simulator.
var SimulationRange = AttributeRange{Min: 0, Max: 99}

func (r AttributeRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Named returns the attributes in contract order
// (reliability, maneuverability, speed, brakes, balance, aerodynamics, driver skill, luck).
func (a CarAttributes) Named() []NamedAttribute {
	return []NamedAttribute{
		{"reliability", a.Reliability},
		{"maneuverability", a.Maneuverability},
		{"speed", a.Speed},
		{"brakes", a.Brakes},
		{"balance", a.Balance},
		{"aerodynamics", a.Aerodynamics},
		{"driverSkill", a.DriverSkill},
		{"luck", a.Luck},
	}
}

type NamedAttribute struct {
	Name  string
	Value int
}

// FromValues builds attributes from values given in contract order.
func FromValues(v [8]int) CarAttributes {
	return CarAttributes{
		Reliability:     v[0],
		Maneuverability: v[1],
		Speed:           v[2],
		Brakes:          v[3],
		Balance:         v[4],
		Aerodynamics:    v[5],
		DriverSkill:     v[6],
		Luck:            v[7],
	}
}

// Values returns the attributes in contract order.
func (a CarAttributes) Values() [8]int {
	return [8]int{
		a.Reliability, a.Maneuverability, a.Speed, a.Brakes,
		a.Balance, a.Aerodynamics, a.DriverSkill, a.Luck,
	}
}

// Validate checks every attribute against r.
func (a CarAttributes) Validate(r AttributeRange) error {
	for _, n := range a.Named() {
		if !r.Contains(n.Value) {
			return fmt.Errorf("%w: %s=%d not in [%d,%d]",
				ErrAttributeOutOfRange, n.Name, n.Value, r.Min, r.Max)
		}
	}
	return nil
}

// BudgetPoints is the sum of all budget-consuming attributes (everything but luck).
func (a CarAttributes) BudgetPoints() int {
	return a.Reliability + a.Maneuverability + a.Speed + a.Brakes +
		a.Balance + a.Aerodynamics + a.DriverSkill
}
