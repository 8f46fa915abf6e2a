package bus

import (
	"errors"
	"reflect"
	"testing"
)

func TestExpandChainedSpecifiers(t *testing.T) {
	got, err := Expand("A[0..1].X[3,7]")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := []string{"A0.X3", "A0.X7", "A1.X3", "A1.X7"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestExpandPlain(t *testing.T) {
	got, err := Expand("PLAIN")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"PLAIN"}) {
		t.Errorf("Expected [PLAIN], got %v", got)
	}
}

func TestExpandDescending(t *testing.T) {
	got, err := Expand("B[3..0]")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := []string{"B3", "B2", "B1", "B0"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestExpandTrailingText(t *testing.T) {
	got, err := Expand("D[0,1]_N")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := []string{"D0_N", "D1_N"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestExpandMixedListAndRange(t *testing.T) {
	got, err := Expand("P[0..1,5]")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := []string{"P0", "P1", "P5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestExpandUnclosedBracketIsLiteral(t *testing.T) {
	got, err := Expand("Q[1..2]R[3")
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	want := []string{"Q1R[3", "Q2R[3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestExpandErrors(t *testing.T) {
	for _, in := range []string{"A[]", "A[x..3]", "A[1..y]"} {
		if _, err := Expand(in); !errors.Is(err, ErrSpecifier) {
			t.Errorf("Expand(%q): expected ErrSpecifier, got %v", in, err)
		}
	}
}

func TestExpandWidthLimit(t *testing.T) {
	for _, in := range []string{
		"D[0..2000000000]",
		"D[5..-9223372036854775808]",
		"A[0..999].B[0..999]",
		"A[0..65535,x]",
	} {
		if _, err := Expand(in); !errors.Is(err, ErrSpecifier) {
			t.Errorf("Expand(%q): expected ErrSpecifier, got %v", in, err)
		}
	}

	n, err := Width("D[0..65535]")
	if err != nil {
		t.Fatalf("Width failed: %v", err)
	}
	if n != MaxWidth {
		t.Errorf("Expected width %d, got %d", MaxWidth, n)
	}
	n, err = Width("D[65535..0]")
	if err != nil {
		t.Fatalf("Width failed: %v", err)
	}
	if n != MaxWidth {
		t.Errorf("Expected width %d, got %d", MaxWidth, n)
	}
}

func TestWidth(t *testing.T) {
	n, err := Width("U[1..3].D[0..7]")
	if err != nil {
		t.Fatalf("Width failed: %v", err)
	}
	if n != 24 {
		t.Errorf("Expected width 24, got %d", n)
	}
	if HasSpecifier("VCC") {
		t.Error("VCC should not carry a specifier")
	}
	if !HasSpecifier("D[0..3]") {
		t.Error("D[0..3] should carry a specifier")
	}
}
