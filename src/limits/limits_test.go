package limits

import "testing"

func TestTakeGiveRoundTrip(t *testing.T) {
	var s Sysatomic_t = 2
	if !s.Take() {
		t.Fatalf("first take should succeed")
	}
	if !s.Take() {
		t.Fatalf("second take should succeed")
	}
	if s.Take() {
		t.Fatalf("third take should fail, limit exhausted")
	}
	if s.Val() != 0 {
		t.Fatalf("val = %d, want 0 after exhausting", s.Val())
	}
	s.Give()
	if s.Val() != 1 {
		t.Fatalf("val = %d, want 1 after one give", s.Val())
	}
	if !s.Take() {
		t.Fatalf("take after give should succeed")
	}
	if s.Val() != 0 {
		t.Fatalf("val = %d, want 0", s.Val())
	}
}

func TestTakenNeverGoesNegative(t *testing.T) {
	var s Sysatomic_t = 1
	if !s.Taken(1) {
		t.Fatalf("taking the only unit should succeed")
	}
	if s.Taken(5) {
		t.Fatalf("taking past zero should fail")
	}
	if s.Val() != 0 {
		t.Fatalf("val = %d, want 0 unchanged after failed take", s.Val())
	}
}

func TestGivenRestoresExactAmount(t *testing.T) {
	var s Sysatomic_t = 0
	s.Given(5)
	if s.Val() != 5 {
		t.Fatalf("val = %d, want 5", s.Val())
	}
}
