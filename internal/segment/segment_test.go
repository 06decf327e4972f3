package segment

import (
	"reflect"
	"testing"

	"salespipe/internal/aggregate"
)

func profile(key string, ticketSpend, merchSpend int64, ticketItems, merchItems int) aggregate.BuyerProfile {
	return aggregate.BuyerProfile{
		Key: key,
		Tickets: aggregate.Stats{
			Orders:     btoi(ticketItems > 0),
			Items:      ticketItems,
			SpendCents: ticketSpend,
		},
		Merch: aggregate.Stats{
			Orders:     btoi(merchItems > 0),
			Items:      merchItems,
			SpendCents: merchSpend,
		},
	}
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Two dense groups of buyers, far apart in spend.
func twoGroups() []aggregate.BuyerProfile {
	return []aggregate.BuyerProfile{
		profile("a@x.com", 15000, 0, 1, 0),
		profile("b@x.com", 15000, 4000, 1, 1),
		profile("c@x.com", 11500, 0, 1, 0),
		profile("d@x.com", 200000, 80000, 12, 6),
		profile("e@x.com", 180000, 90000, 11, 7),
	}
}

func TestSegmentLabelsCoverAllClusters(t *testing.T) {
	res, err := Segment(twoGroups(), 2)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if res.K != 2 {
		t.Fatalf("K = %d, want 2", res.K)
	}
	seen := map[int]bool{}
	for _, a := range res.Assignments {
		if a.Cluster < 0 || a.Cluster >= res.K {
			t.Fatalf("cluster %d out of range", a.Cluster)
		}
		seen[a.Cluster] = true
	}
	if len(seen) != 2 {
		t.Fatalf("labels used = %v, want both clusters populated", seen)
	}
}

func TestSegmentSeparatesObviousGroups(t *testing.T) {
	res, err := Segment(twoGroups(), 2)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	byKey := map[string]int{}
	for _, a := range res.Assignments {
		byKey[a.Key] = a.Cluster
	}
	if byKey["a@x.com"] != byKey["b@x.com"] || byKey["b@x.com"] != byKey["c@x.com"] {
		t.Fatalf("small buyers split across clusters: %v", byKey)
	}
	if byKey["d@x.com"] != byKey["e@x.com"] {
		t.Fatalf("big buyers split across clusters: %v", byKey)
	}
	if byKey["a@x.com"] == byKey["d@x.com"] {
		t.Fatalf("small and big buyers merged: %v", byKey)
	}
}

func TestSegmentDeterministic(t *testing.T) {
	first, err := Segment(twoGroups(), 2)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Segment(twoGroups(), 2)
		if err != nil {
			t.Fatalf("Segment: %v", err)
		}
		if !reflect.DeepEqual(first.Assignments, again.Assignments) {
			t.Fatalf("run %d differs:\n%v\n%v", i, first.Assignments, again.Assignments)
		}
	}
}

func TestSegmentDropsZeroVectors(t *testing.T) {
	profiles := append(twoGroups(), aggregate.BuyerProfile{Key: "ghost@x.com"})
	res, err := Segment(profiles, 2)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	for _, a := range res.Assignments {
		if a.Key == "ghost@x.com" {
			t.Fatal("all-zero profile must not be assigned a cluster")
		}
	}
	if len(res.Assignments) != 5 {
		t.Fatalf("len(Assignments) = %d, want 5", len(res.Assignments))
	}
}

func TestSegmentClampsK(t *testing.T) {
	profiles := []aggregate.BuyerProfile{
		profile("a@x.com", 15000, 0, 1, 0),
		profile("b@x.com", 200000, 80000, 12, 6),
	}
	res, err := Segment(profiles, 10)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if res.K != 2 {
		t.Fatalf("K = %d, want clamp to 2", res.K)
	}
}

func TestSegmentRejectsBadK(t *testing.T) {
	if _, err := Segment(twoGroups(), 0); err == nil {
		t.Fatal("want error for k = 0")
	}
}

func TestSegmentEmptyInput(t *testing.T) {
	res, err := Segment(nil, 3)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(res.Assignments) != 0 || res.K != 0 {
		t.Fatalf("want empty result, got %+v", res)
	}
}

func TestCentroidsInOriginalSpace(t *testing.T) {
	res, err := Segment(twoGroups(), 2)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	if len(res.Centroids) != 2 {
		t.Fatalf("len(Centroids) = %d, want 2", len(res.Centroids))
	}
	var maxSpend float64
	for _, c := range res.Centroids {
		if c[0] > maxSpend {
			maxSpend = c[0]
		}
	}
	// The big-buyer centroid averages 200000 and 180000 cents.
	if maxSpend < 100000 {
		t.Fatalf("centroid ticket spend = %f, want original-scale cents", maxSpend)
	}
}

func singleDataset(key string, d int, spend int64, items int) aggregate.BuyerProfile {
	p := aggregate.BuyerProfile{Key: key}
	s := aggregate.Stats{Orders: 1, Items: items, SpendCents: spend}
	switch d {
	case 0:
		p.Tickets = s
	case 1:
		p.Merch = s
	case 2:
		p.Party = s
	}
	return p
}

func TestChooseKFindsElbow(t *testing.T) {
	// Three symmetric clusters, each active in exactly one dataset.
	var profiles []aggregate.BuyerProfile
	for d := 0; d < 3; d++ {
		for i := 0; i < 3; i++ {
			key := string(rune('a'+d*3+i)) + "@x.com"
			profiles = append(profiles, singleDataset(key, d, int64(150000+i*500), 10+i))
		}
	}
	k, err := ChooseK(profiles, 6)
	if err != nil {
		t.Fatalf("ChooseK: %v", err)
	}
	if k != 3 {
		t.Fatalf("ChooseK = %d, want 3", k)
	}
}

func TestChooseKEmpty(t *testing.T) {
	k, err := ChooseK(nil, 5)
	if err != nil {
		t.Fatalf("ChooseK: %v", err)
	}
	if k != 0 {
		t.Fatalf("ChooseK = %d, want 0", k)
	}
}
