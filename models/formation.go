// Package models - formation templates and position slot metadata.
// File: models/formation.go
package models

// Slot is a named on-field role, e.g. "GK" or "LW".
type Slot string

// Line groups slots into the three tactical lines.
type Line string

// Axis places slots on the left/center/right of the pitch.
type Axis string

const (
	LineDefense Line = "defense"
	LineMid     Line = "mid"
	LineAttack  Line = "attack"

	AxisLeft   Axis = "left"
	AxisCenter Axis = "center"
	AxisRight  Axis = "right"
)

// The full slot vocabulary across all templates.
const (
	SlotGK  Slot = "GK"
	SlotLB  Slot = "LB"
	SlotLCB Slot = "LCB"
	SlotCB  Slot = "CB"
	SlotRCB Slot = "RCB"
	SlotRB  Slot = "RB"
	SlotLWB Slot = "LWB"
	SlotRWB Slot = "RWB"
	SlotLM  Slot = "LM"
	SlotLCM Slot = "LCM"
	SlotCM  Slot = "CM"
	SlotRCM Slot = "RCM"
	SlotRM  Slot = "RM"
	SlotLW  Slot = "LW"
	SlotST  Slot = "ST"
	SlotLS  Slot = "LS"
	SlotRS  Slot = "RS"
	SlotRW  Slot = "RW"
)

type slotInfo struct {
	line Line
	axis Axis
}

// slotTable classifies every slot the templates use.
var slotTable = map[Slot]slotInfo{
	SlotGK:  {LineDefense, AxisCenter},
	SlotLB:  {LineDefense, AxisLeft},
	SlotLCB: {LineDefense, AxisLeft},
	SlotCB:  {LineDefense, AxisCenter},
	SlotRCB: {LineDefense, AxisRight},
	SlotRB:  {LineDefense, AxisRight},
	SlotLWB: {LineMid, AxisLeft},
	SlotRWB: {LineMid, AxisRight},
	SlotLM:  {LineMid, AxisLeft},
	SlotLCM: {LineMid, AxisLeft},
	SlotCM:  {LineMid, AxisCenter},
	SlotRCM: {LineMid, AxisRight},
	SlotRM:  {LineMid, AxisRight},
	SlotLW:  {LineAttack, AxisLeft},
	SlotST:  {LineAttack, AxisCenter},
	SlotLS:  {LineAttack, AxisLeft},
	SlotRS:  {LineAttack, AxisRight},
	SlotRW:  {LineAttack, AxisRight},
}

// Line returns the tactical line of the slot.
func (s Slot) Line() Line { return slotTable[s].line }

// Axis returns the left/center/right placement of the slot.
func (s Slot) Axis() Axis { return slotTable[s].axis }

// Valid reports whether the slot code is known.
func (s Slot) Valid() bool {
	_, ok := slotTable[s]
	return ok
}

// FormationCapacity is the number of players in a full formation.
const FormationCapacity = 11

// formations is static lookup data; templates are not persisted per match.
// Slot order matters: it is the tie-break order for catch-all placement.
var formations = map[string][]Slot{
	"4-3-3": {SlotGK, SlotLB, SlotLCB, SlotRCB, SlotRB, SlotLCM, SlotCM, SlotRCM, SlotLW, SlotST, SlotRW},
	"4-4-2": {SlotGK, SlotLB, SlotLCB, SlotRCB, SlotRB, SlotLM, SlotLCM, SlotRCM, SlotRM, SlotLS, SlotRS},
	"3-5-2": {SlotGK, SlotLCB, SlotCB, SlotRCB, SlotLWB, SlotLCM, SlotCM, SlotRCM, SlotRWB, SlotLS, SlotRS},
}

// FormationTemplate returns the ordered slot list for a tactical shape.
func FormationTemplate(name string) ([]Slot, bool) {
	tpl, ok := formations[name]
	if !ok {
		return nil, false
	}
	out := make([]Slot, len(tpl))
	copy(out, tpl)
	return out, true
}

// FormationNames lists the known tactical shapes.
func FormationNames() []string {
	names := make([]string, 0, len(formations))
	for name := range formations {
		names = append(names, name)
	}
	return names
}
