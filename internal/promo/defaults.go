package promo

// Denomination ladder for inferred promo amounts.
var amountLadder = []int64{50, 100, 200, 500, 1000, 2000}

const (
	defaultAmount      int64 = 100
	DefaultExpiresDays       = 30
)

// SmartAmount snaps the average completed-order amount to the nearest
// ladder value. With no completed orders the default is 100. On an
// equidistant tie the lower value wins.
func SmartAmount(avgOrderAmount int64) int64 {
	if avgOrderAmount <= 0 {
		avgOrderAmount = defaultAmount
	}
	best := amountLadder[0]
	bestDiff := abs(amountLadder[0] - avgOrderAmount)
	for _, v := range amountLadder[1:] {
		if d := abs(v - avgOrderAmount); d < bestDiff {
			best, bestDiff = v, d
		}
	}
	return best
}

// SmartMaxUses steps the use limit by the recent active-user count.
func SmartMaxUses(activeUsers int64) int {
	switch {
	case activeUsers > 100:
		return 50
	case activeUsers > 50:
		return 25
	case activeUsers > 20:
		return 10
	default:
		return 5
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
