package deck

const (
	smallPoolGoal = 1
	defaultGoal   = 3

	// Pools below this size only ask for one favorite.
	smallPoolLimit = 3
)

// LikeGoal is the number of likes needed before picking. It is derived once
// from the filtered pool size and never retuned mid-session.
func LikeGoal(poolSize int) int {
	switch {
	case poolSize <= 0:
		return 0
	case poolSize < smallPoolLimit:
		return smallPoolGoal
	default:
		return defaultGoal
	}
}
