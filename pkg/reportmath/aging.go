package reportmath

// AgingBuckets is the fixed display order for aging analysis. Reports must
// emit buckets in this order, not sorted by label.
var AgingBuckets = []string{"Current", "1-30", "31-60", "61-90", "91-180", "180+"}

// AgingBucket maps days past due to its bucket label.
func AgingBucket(dpd int) string {
	switch {
	case dpd <= 0:
		return "Current"
	case dpd <= 30:
		return "1-30"
	case dpd <= 60:
		return "31-60"
	case dpd <= 90:
		return "61-90"
	case dpd <= 180:
		return "91-180"
	default:
		return "180+"
	}
}
