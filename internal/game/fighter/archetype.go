package fighter

import (
	"fmt"
	"sort"
	"strings"
)

// Archetype is a named full-format stat preset offered at registration.
type Archetype struct {
	Name  string
	Stats map[string]float64
}

var archetypes = map[string]Archetype{
	"striker": {Name: "striker", Stats: map[string]float64{
		"striking": 88, "punchSpeed": 85, "kickPower": 80, "headMovement": 78,
		"footwork": 72, "combinations": 80, "wrestling": 30, "takedownDefense": 65,
		"clinchControl": 50, "trips": 30, "throws": 30, "submissions": 20,
		"submissionDefense": 50, "groundAndPound": 50, "guardPassing": 40,
		"sweeps": 30, "topControl": 40, "bottomGame": 30, "cardio": 78,
		"chin": 75, "recovery": 70, "strength": 65, "flexibility": 55,
	}},
	"grappler": {Name: "grappler", Stats: map[string]float64{
		"striking": 45, "punchSpeed": 45, "kickPower": 40, "headMovement": 55,
		"footwork": 55, "combinations": 40, "wrestling": 90, "takedownDefense": 85,
		"clinchControl": 78, "trips": 72, "throws": 68, "submissions": 82,
		"submissionDefense": 80, "groundAndPound": 70, "guardPassing": 75,
		"sweeps": 65, "topControl": 85, "bottomGame": 70, "cardio": 85,
		"chin": 70, "recovery": 75, "strength": 80, "flexibility": 75,
	}},
	"balanced": {Name: "balanced", Stats: map[string]float64{
		"striking": 72, "punchSpeed": 70, "kickPower": 65, "headMovement": 68,
		"footwork": 65, "combinations": 68, "wrestling": 70, "takedownDefense": 72,
		"clinchControl": 62, "trips": 55, "throws": 52, "submissions": 58,
		"submissionDefense": 65, "groundAndPound": 62, "guardPassing": 58,
		"sweeps": 50, "topControl": 65, "bottomGame": 55, "cardio": 78,
		"chin": 72, "recovery": 70, "strength": 68, "flexibility": 62,
	}},
	"pressure": {Name: "pressure", Stats: map[string]float64{
		"striking": 80, "punchSpeed": 78, "kickPower": 72, "headMovement": 55,
		"footwork": 68, "combinations": 82, "wrestling": 68, "takedownDefense": 62,
		"clinchControl": 75, "trips": 60, "throws": 55, "submissions": 45,
		"submissionDefense": 55, "groundAndPound": 68, "guardPassing": 55,
		"sweeps": 45, "topControl": 65, "bottomGame": 45, "cardio": 92,
		"chin": 80, "recovery": 80, "strength": 72, "flexibility": 55,
	}},
	"counter": {Name: "counter", Stats: map[string]float64{
		"striking": 75, "punchSpeed": 72, "kickPower": 65, "headMovement": 88,
		"footwork": 85, "combinations": 65, "wrestling": 55, "takedownDefense": 80,
		"clinchControl": 55, "trips": 45, "throws": 45, "submissions": 50,
		"submissionDefense": 70, "groundAndPound": 52, "guardPassing": 52,
		"sweeps": 55, "topControl": 52, "bottomGame": 60, "cardio": 75,
		"chin": 70, "recovery": 72, "strength": 60, "flexibility": 70,
	}},
}

// ArchetypeNames returns the preset names in sorted order.
func ArchetypeNames() []string {
	names := make([]string, 0, len(archetypes))
	for n := range archetypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupArchetype returns the preset with the given case-insensitive name.
func LookupArchetype(name string) (Archetype, error) {
	a, ok := archetypes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Archetype{}, fmt.Errorf("unknown archetype %q (choose: %s)", name, strings.Join(ArchetypeNames(), ", "))
	}
	stats := make(map[string]float64, len(a.Stats))
	for k, v := range a.Stats {
		stats[k] = v
	}
	return Archetype{Name: a.Name, Stats: stats}, nil
}

// Raw returns the preset stats as a loosely typed map suitable for FromRaw
// and ValidateStats.
func (a Archetype) Raw() map[string]any {
	out := make(map[string]any, len(a.Stats))
	for k, v := range a.Stats {
		out[k] = v
	}
	return out
}
