package approval

// Level is an authorization tier gated by a monetary threshold
type Level string

const (
	LevelL1 Level = "L1"
	LevelL2 Level = "L2"
	LevelL3 Level = "L3"
	LevelL4 Level = "L4"
	LevelL5 Level = "L5"
)

// levelsDescending lists levels from highest threshold to lowest,
// the order in which ResolveLevel evaluates them
var levelsDescending = []Level{LevelL5, LevelL4, LevelL3, LevelL2, LevelL1}

// levelThresholds maps each level to the minimum amount (base currency)
// that requires sign-off at that level
var levelThresholds = map[Level]float64{
	LevelL1: 0,
	LevelL2: 50_000,
	LevelL3: 200_000,
	LevelL4: 500_000,
	LevelL5: 1_000_000,
}

var levelRanks = map[Level]int{
	LevelL1: 1,
	LevelL2: 2,
	LevelL3: 3,
	LevelL4: 4,
	LevelL5: 5,
}

// ResolveLevel maps a requested amount to the required authorization level:
// the highest-threshold level whose minimum amount does not exceed the amount.
// A negative amount fails with ErrInvalidAmount.
func ResolveLevel(amount float64) (Level, error) {
	if amount < 0 {
		return "", ErrInvalidAmount
	}
	for _, level := range levelsDescending {
		if amount >= levelThresholds[level] {
			return level, nil
		}
	}
	return LevelL1, nil
}

// IsValid returns true if the level is a known authorization tier
func (l Level) IsValid() bool {
	_, ok := levelRanks[l]
	return ok
}

// String returns the string representation of the level
func (l Level) String() string {
	return string(l)
}

// Rank returns the ordinal position of the level, 1 through 5
func (l Level) Rank() int {
	return levelRanks[l]
}

// MinAmount returns the threshold bound to the level
func (l Level) MinAmount() float64 {
	return levelThresholds[l]
}

// Next returns the next level up, saturating at L5
func (l Level) Next() Level {
	switch l {
	case LevelL1:
		return LevelL2
	case LevelL2:
		return LevelL3
	case LevelL3:
		return LevelL4
	default:
		return LevelL5
	}
}
