package runtime

import "testing"

func TestRent_MinimumBalance(t *testing.T) {
	r := DefaultRent()
	want := uint64(128+370) * 3480 * 2
	if got := r.MinimumBalance(370); got != want {
		t.Fatalf("MinimumBalance = %d, want %d", got, want)
	}
}

func TestRent_IsExempt(t *testing.T) {
	r := DefaultRent()
	min := r.MinimumBalance(370)
	if !r.IsExempt(min, 370) {
		t.Fatalf("exact minimum must be exempt")
	}
	if r.IsExempt(min-1, 370) {
		t.Fatalf("below minimum must not be exempt")
	}
}
