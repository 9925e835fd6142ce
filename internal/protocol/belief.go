package protocol

// =============================================================================
// BELIEF GRID DECODING
// =============================================================================

// BeliefCategory classifies one cell of the agent's belief grid.
type BeliefCategory int

const (
	BeliefUnknown BeliefCategory = iota
	BeliefVisitedSafe
	BeliefGold
	BeliefPossibleWumpus
	BeliefPossiblePit
	BeliefConfirmedWumpus
	BeliefConfirmedPit
	BeliefPossibleHazard
	BeliefLowThreat
	BeliefScent
	BeliefBreezeResidue
	BeliefScentAndBreeze
	BeliefUnrecognized
)

// BeliefCell is the decoded form of a belief-grid code: a category, a short
// display label, the confidence percentage the code implies (-1 when the code
// carries none), and hover text.
type BeliefCell struct {
	Category   BeliefCategory
	Label      string
	Confidence int
	Tooltip    string
}

// beliefTable is the closed set of codes the agent process emits. Codes are
// compared as strings because the vocabulary mixes numerals and letters.
var beliefTable = map[string]BeliefCell{
	"0":  {BeliefUnknown, "unknown", -1, "Unvisited, nothing inferred"},
	"1":  {BeliefVisitedSafe, "safe", 100, "Visited and confirmed safe (100%)"},
	"99": {BeliefGold, "gold", -1, "Gold located here"},
	"-1": {BeliefPossibleWumpus, "wumpus?", 50, "Possible wumpus (50%)"},
	"-2": {BeliefPossiblePit, "pit?", 50, "Possible pit (50%)"},
	"-3": {BeliefConfirmedWumpus, "wumpus", 100, "Confirmed wumpus (100%)"},
	"-4": {BeliefConfirmedPit, "pit", 100, "Confirmed pit (100%)"},
	"-5": {BeliefPossibleHazard, "hazard?", 50, "Possible wumpus or pit (50%)"},
	"-6": {BeliefLowThreat, "threat?", 20, "Low-confidence threat (20%)"},
	"S":  {BeliefScent, "scent", -1, "Scent marker"},
	"B":  {BeliefBreezeResidue, "breeze", -1, "Breeze residue"},
	"T":  {BeliefScentAndBreeze, "scent+breeze", -1, "Scent and breeze residue"},
}

// DecodeBeliefCode maps a raw belief code to its cell. Codes outside the
// known vocabulary decode to BeliefUnrecognized with the raw code preserved
// in the tooltip; they never render blank and never fail.
func DecodeBeliefCode(code string) BeliefCell {
	if cell, ok := beliefTable[code]; ok {
		return cell
	}
	return BeliefCell{
		Category:   BeliefUnrecognized,
		Label:      "?",
		Confidence: -1,
		Tooltip:    "Unrecognized code " + code,
	}
}
