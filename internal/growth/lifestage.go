package growth

// LifeStage is a coarse age bracket.
type LifeStage string

// Life stages.
const (
	Infant   LifeStage = "infant"
	Juvenile LifeStage = "juvenile"
	Adult    LifeStage = "adult"
)

const (
	infantMaxMonths   = 6
	juvenileMaxMonths = 18
)

// ClassifyLifeStage maps an age onto a life stage. It returns nil when the
// age is unknown.
//
// Up to and including 6 whole months is infant, up to and including 18 is
// juvenile, anything older is adult. Leftover days push an age past a
// boundary, so 6 months and 1 day is juvenile. This is stricter than a
// rule on total months alone, which would call 6 months and 1 day infant.
func ClassifyLifeStage(age Age, ok bool) *LifeStage {
	if !ok {
		return nil
	}
	stage := Adult
	switch {
	case atMost(age, infantMaxMonths):
		stage = Infant
	case atMost(age, juvenileMaxMonths):
		stage = Juvenile
	}
	return &stage
}

func atMost(age Age, months int) bool {
	total := age.TotalMonths()
	return total < months || (total == months && age.Days <= 0)
}
