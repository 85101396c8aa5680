package fighter

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// snakeToCamel maps the snake_case keys CLI agents submit to stored keys.
var snakeToCamel = map[string]string{
	"punch_speed":        "punchSpeed",
	"punch_power":        "punchPower",
	"head_movement":      "headMovement",
	"kick_power":         "kickPower",
	"takedown_defense":   "takedownDefense",
	"clinch_control":     "clinchControl",
	"submission_defense": "submissionDefense",
	"ground_and_pound":   "groundAndPound",
	"guard_passing":      "guardPassing",
	"top_control":        "topControl",
	"bottom_game":        "bottomGame",
	"fight_iq":           "fightIQ",
	"ring_generalship":   "ringGeneralship",
	"finishing_instinct": "finishingInstinct",
	"defensive_tendency": "defensiveTendency",
}

// NormalizeKeys returns a copy of raw with snake_case keys rewritten to camelCase.
// Unknown keys pass through untouched.
func NormalizeKeys(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if camel, ok := snakeToCamel[k]; ok {
			k = camel
		}
		out[k] = v
	}
	return out
}

// FromRaw builds a Profile from a stored stat map.
//
// Two stored shapes are accepted. The legacy six-stat web format is detected
// by the presence of "grappling" and derives the grappling and defence
// attributes from it. Every other map is read as the full skills format,
// where "strength" feeds punchPower. Absent or non-numeric attributes read
// as DefaultStat.
func FromRaw(id, name string, raw map[string]any) Profile {
	raw = NormalizeKeys(raw)
	get := func(keys ...string) float64 {
		for _, k := range keys {
			if v, ok := number(raw[k]); ok {
				return v
			}
		}
		return DefaultStat
	}

	if _, legacy := raw["grappling"]; legacy {
		grappling := get("grappling")
		speed := get("speed")
		return Profile{
			ID:   id,
			Name: name,
			Stats: Stats{
				Striking:        get(KeyStriking),
				PunchSpeed:      speed,
				PunchPower:      get("power"),
				Wrestling:       grappling,
				Submissions:     math.Round(grappling * 0.8),
				Cardio:          get("stamina"),
				Chin:            get(KeyChin),
				HeadMovement:    math.Round(speed * 0.8),
				TakedownDefense: math.Round(grappling * 0.7),
			},
		}
	}

	return Profile{
		ID:   id,
		Name: name,
		Stats: Stats{
			Striking:        get(KeyStriking),
			PunchSpeed:      get(KeyPunchSpeed),
			PunchPower:      get("strength", KeyPunchPower),
			Wrestling:       get(KeyWrestling),
			Submissions:     get(KeySubmissions),
			Cardio:          get(KeyCardio),
			Chin:            get(KeyChin),
			HeadMovement:    get(KeyHeadMovement),
			TakedownDefense: get(KeyTakedownDefense),
		},
	}
}

// number extracts a finite float from the loosely typed values JSON and YAML produce.
func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
