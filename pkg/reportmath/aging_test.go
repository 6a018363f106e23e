package reportmath

import "testing"

func TestAgingBucket(t *testing.T) {
	cases := []struct {
		dpd  int
		want string
	}{
		{0, "Current"},
		{1, "1-30"},
		{30, "1-30"},
		{31, "31-60"},
		{60, "31-60"},
		{61, "61-90"},
		{90, "61-90"},
		{91, "91-180"},
		{180, "91-180"},
		{181, "180+"},
		{999, "180+"},
	}
	for _, tc := range cases {
		if got := AgingBucket(tc.dpd); got != tc.want {
			t.Errorf("AgingBucket(%d)=%q want %q", tc.dpd, got, tc.want)
		}
	}
}

func TestAgingBucketLabelsMatchDisplayOrder(t *testing.T) {
	// every label AgingBucket can emit must appear in the display list
	seen := map[string]bool{}
	for dpd := -5; dpd <= 400; dpd++ {
		seen[AgingBucket(dpd)] = true
	}
	if len(seen) != len(AgingBuckets) {
		t.Fatalf("AgingBucket emits %d labels, display list has %d", len(seen), len(AgingBuckets))
	}
	for _, label := range AgingBuckets {
		if !seen[label] {
			t.Errorf("display bucket %q is never produced by AgingBucket", label)
		}
	}
}
