package session

// levelThresholds holds the cumulative experience required to reach
// each level, indexed by level. Standard D&D 5e advancement table.
var levelThresholds = []int{
	0,      // unused
	0,      // level 1
	300,    // level 2
	900,    // level 3
	2700,   // level 4
	6500,   // level 5
	14000,  // level 6
	23000,  // level 7
	34000,  // level 8
	48000,  // level 9
	64000,  // level 10
	85000,  // level 11
	100000, // level 12
	120000, // level 13
	140000, // level 14
	165000, // level 15
	195000, // level 16
	225000, // level 17
	265000, // level 18
	305000, // level 19
	355000, // level 20
}

// MaxLevel is the highest attainable character level.
const MaxLevel = 20

// ThresholdFor returns the cumulative experience required to reach the
// given level. Levels outside [1, MaxLevel] report ok=false.
func ThresholdFor(level int) (int, bool) {
	if level < 1 || level > MaxLevel {
		return 0, false
	}
	return levelThresholds[level], true
}
