package stages

import (
	"math"
	"math/rand"
)

// Stage is one of the four fixed narrative stages, in story order.
type Stage int

const (
	Introduction Stage = iota
	RisingAction
	Climax
	Resolution
)

// stageOrder is the canonical traversal order. Stage boundaries are
// always computed by walking this array, never by iterating a map.
var stageOrder = [...]Stage{Introduction, RisingAction, Climax, Resolution}

var stageNames = map[Stage]string{
	Introduction: "Introduction",
	RisingAction: "Rising Action",
	Climax:       "Climax",
	Resolution:   "Resolution",
}

func (s Stage) String() string { return stageNames[s] }

// stageHints is how narrative pacing reaches the model: one sentence
// per stage, inserted verbatim into the prompt. The model itself never
// tracks story state.
var stageHints = map[Stage]string{
	Introduction: "This is the introduction. Focus on setting the scene, introducing characters, and hinting at the quest or conflict.",
	RisingAction: "This is the rising action. Add challenges, discoveries, or surprises that keep the story moving toward the climax.",
	Climax:       "This is the climax. Make this the most exciting and important challenge of the quest. Set up the resolution.",
	Resolution:   "This is the resolution. Wrap up the story with a satisfying, happy conclusion that ties back to the quest.",
}

// Guidance returns the pacing hint for a stage.
func Guidance(s Stage) string { return stageHints[s] }

// Plan divides a story's total paragraph budget across the four
// stages. Once a plan has been returned to a caller it is replayed
// verbatim on every later turn and never recomputed, so stage
// boundaries stay stable for the story's lifetime.
type Plan map[Stage]int

// Allowed fraction of the total step count per stage.
var stageProportions = map[Stage][2]float64{
	Introduction: {0.10, 0.20},
	RisingAction: {0.40, 0.60},
	Climax:       {0.15, 0.25},
	Resolution:   {0.10, 0.20},
}

// GeneratePlan draws a fresh allocation of totalSteps across the four
// stages. Entropy comes from the supplied rng so allocation stays
// reproducible under a fixed seed.
func GeneratePlan(totalSteps int, rng *rand.Rand) Plan {
	// Draw a random fraction per stage, then normalize so they sum to 1.
	raw := make(map[Stage]float64, len(stageOrder))
	var totalFrac float64
	for _, s := range stageOrder {
		bounds := stageProportions[s]
		frac := bounds[0] + rng.Float64()*(bounds[1]-bounds[0])
		raw[s] = frac
		totalFrac += frac
	}

	// Every stage keeps at least one step, except for stories too short
	// to cover all four stages.
	floor := 0
	if totalSteps >= len(stageOrder) {
		floor = 1
	}

	plan := make(Plan, len(stageOrder))
	sum := 0
	for _, s := range stageOrder {
		steps := int(math.Round(raw[s] / totalFrac * float64(totalSteps)))
		if steps < floor {
			steps = floor
		}
		plan[s] = steps
		sum += steps
	}

	// Reconcile rounding drift one step at a time. Decrements never
	// take a stage below the floor.
	for diff := totalSteps - sum; diff != 0; {
		s := stageOrder[rng.Intn(len(stageOrder))]
		switch {
		case diff > 0:
			plan[s]++
			diff--
		case plan[s] > floor:
			plan[s]--
			diff++
		}
	}

	return plan
}

// ResolvePlan returns the caller's echoed plan unchanged when one is
// present, mapping wire labels back to stages and silently dropping
// labels that match none of the four canonical names. Without an
// existing plan it generates a new one for totalSteps.
func ResolvePlan(totalSteps int, existing map[string]int, rng *rand.Rand) Plan {
	if existing == nil {
		return GeneratePlan(totalSteps, rng)
	}
	plan := make(Plan, len(stageOrder))
	for _, s := range stageOrder {
		if count, ok := existing[s.String()]; ok {
			plan[s] = count
		}
	}
	return plan
}

// Strings converts the plan to the wire labels the caller echoes back.
func (p Plan) Strings() map[string]int {
	out := make(map[string]int, len(p))
	for s, count := range p {
		out[s.String()] = count
	}
	return out
}

// Total returns the number of steps the plan allocates.
func (p Plan) Total() int {
	total := 0
	for _, count := range p {
		total += count
	}
	return total
}

// StageForStep maps a 1-based step index to its stage by accumulating
// counts in stage order. A step past the plan total resolves to the
// last stage rather than failing.
func (p Plan) StageForStep(step int) Stage {
	cumulative := 0
	for _, s := range stageOrder {
		cumulative += p[s]
		if step <= cumulative {
			return s
		}
	}
	return stageOrder[len(stageOrder)-1]
}
