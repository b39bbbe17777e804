package domain

import "testing"

func TestCapacityForAliasLookup(t *testing.T) {
	table := DefaultCapacityTable()

	p, ok := table.CapacityFor("Standard Parcel - Custom Delivery Van 16ft")
	if !ok {
		t.Fatal("expected exact match for CDV16")
	}
	if p.MaxBags != 48 {
		t.Fatalf("MaxBags = %d, want 48", p.MaxBags)
	}

	// Aliases resolve case-insensitively with surrounding whitespace ignored.
	p, ok = table.CapacityFor("  CDV16 ")
	if !ok {
		t.Fatal("expected alias match for cdv16")
	}
	if p.MaxBags != 48 {
		t.Fatalf("alias MaxBags = %d, want 48", p.MaxBags)
	}

	if _, ok := table.CapacityFor("Hovercraft"); ok {
		t.Fatal("unknown service type should not resolve")
	}
}

func TestIsElectricClassification(t *testing.T) {
	table := DefaultCapacityTable()

	if !table.IsElectric("Rivian MEDIUM") {
		t.Fatal("Rivian MEDIUM should be electric")
	}
	if table.IsElectric("Standard Parcel - Extra Large Van - US") {
		t.Fatal("extra large van should not be electric")
	}
	if table.IsElectric("Hovercraft") {
		t.Fatal("unknown type should default to non-electric")
	}
}

func TestRouteIsElectricDesignated(t *testing.T) {
	cases := []struct {
		serviceType string
		want        bool
	}{
		{"Electric Step Van - XL", true},
		{"Rivian LARGE", true},
		{"rivian medium", true},
		{"4WD P31 Delivery Truck", false},
		{"Standard Parcel - Custom Delivery Van 14ft", false},
	}
	for _, c := range cases {
		if got := RouteIsElectricDesignated(c.serviceType); got != c.want {
			t.Errorf("RouteIsElectricDesignated(%q) = %v, want %v", c.serviceType, got, c.want)
		}
	}
}

func TestPercentFull(t *testing.T) {
	table := DefaultCapacityTable()

	u, ok := table.PercentFull("Rivian MEDIUM", 18, 185.035)
	if !ok {
		t.Fatal("expected profile for Rivian MEDIUM")
	}
	if u.BagPct != 50 {
		t.Fatalf("BagPct = %v, want 50", u.BagPct)
	}
	if u.CubicPct != 50 {
		t.Fatalf("CubicPct = %v, want 50", u.CubicPct)
	}
	if u.BagsRemaining != 18 {
		t.Fatalf("BagsRemaining = %d, want 18", u.BagsRemaining)
	}

	if _, ok := table.PercentFull("Hovercraft", 10, 10); ok {
		t.Fatal("unknown type should yield no usage")
	}
}

func TestPercentFullZeroCapacity(t *testing.T) {
	table := CapacityTable{"Zero Van": {MaxBags: 0, CubicCapacity: 0}}

	u, ok := table.PercentFull("Zero Van", 10, 10)
	if !ok {
		t.Fatal("expected profile for Zero Van")
	}
	if u.BagPct != 0 || u.CubicPct != 0 {
		t.Fatalf("zero-capacity percentages = %v/%v, want 0/0", u.BagPct, u.CubicPct)
	}
}

func TestAtThresholdEitherDimension(t *testing.T) {
	table := DefaultCapacityTable()

	// Bags at 50% but cubic over 85%: either dimension saturating binds.
	if !table.AtThreshold("Rivian MEDIUM", 18, 340, DefaultThresholdPct) {
		t.Fatal("cubic at threshold should flag the van")
	}
	if table.AtThreshold("Rivian MEDIUM", 18, 100, DefaultThresholdPct) {
		t.Fatal("van below threshold on both dimensions should not flag")
	}
	if table.AtThreshold("Hovercraft", 1000, 1000, DefaultThresholdPct) {
		t.Fatal("unknown type must never hit the threshold")
	}
}

func TestOverCapacity(t *testing.T) {
	table := DefaultCapacityTable()

	if !table.OverCapacity("Small Van", 17, 0) {
		t.Fatal("17 bags in a 16-bag van is over capacity")
	}
	if table.OverCapacity("Small Van", 16, 168.62) {
		t.Fatal("at the exact limit is not over capacity")
	}
	if table.OverCapacity("Hovercraft", 1000, 1000) {
		t.Fatal("unknown type must never be over capacity")
	}
}
