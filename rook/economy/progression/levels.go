package progression

import (
	"math"

	"github.com/rookgg/rook/rook/economy/utils"
)

// Level converts lifetime XP into a level. The curve is a square root over
// 1000-XP units, so level 2 lands at 1000 XP and level 3 at 4000 XP.
func Level(totalXP int64) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return int(math.Floor(math.Sqrt(float64(totalXP)/float64(utils.XPPerLevelUnit)))) + 1
}

// XPForLevel returns the minimum lifetime XP required to hold the given
// level. Levels below 2 require nothing.
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return n * n * utils.XPPerLevelUnit
}
