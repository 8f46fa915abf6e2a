package packages

import (
	"errors"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	tests := []struct {
		id       string
		name     string
		pins     int
		firstPin string
		lastPin  string
	}{
		{"DIP-28", "DIP-28", 28, "1", "28"},
		{"dil8", "DIP-8", 8, "1", "8"},
		{"tqfp32", "TQFP-32", 32, "1", "32"},
		{"MLF-32", "MLF-32", 32, "1", "32"},
		{"cabga-256", "CABGA-256", 256, "A1", "T16"},
		{"BGA4", "BGA4", 4, "A1", "B2"},
		{"sot23", "SOT23", 23, "1", "23"},
	}

	for _, tt := range tests {
		pkg, err := reg.Generate(tt.id)
		if err != nil {
			t.Errorf("%s: %v", tt.id, err)
			continue
		}
		if pkg.Name() != tt.name {
			t.Errorf("%s: name = %q, want %q", tt.id, pkg.Name(), tt.name)
		}
		pins := pkg.Pins()
		if len(pins) != tt.pins {
			t.Errorf("%s: %d pins, want %d", tt.id, len(pins), tt.pins)
			continue
		}
		if pins[0].Name() != tt.firstPin || pins[len(pins)-1].Name() != tt.lastPin {
			t.Errorf("%s: pins %s..%s, want %s..%s", tt.id, pins[0].Name(), pins[len(pins)-1].Name(), tt.firstPin, tt.lastPin)
		}
	}
}

func TestBGARowMajor(t *testing.T) {
	pkg, err := BGA.Generate("BGA9")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"A1", "A2", "A3", "B1", "B2", "B3", "C1", "C2", "C3"}
	for i, p := range pkg.Pins() {
		if p.Name() != want[i] {
			t.Errorf("ball %d = %s, want %s", i, p.Name(), want[i])
		}
	}

	if _, err := BGA.Generate("BGA10"); !errors.Is(err, ErrNotSquare) {
		t.Errorf("BGA10: got %v, want ErrNotSquare", err)
	}
}

func TestRowNameSkipsAmbiguousLetters(t *testing.T) {
	tests := map[int]string{0: "A", 7: "H", 8: "J", 19: "Y", 20: "AA", 21: "AB", 40: "BA"}
	for row, want := range tests {
		if got := RowName(row); got != want {
			t.Errorf("RowName(%d) = %s, want %s", row, got, want)
		}
	}
}

func TestRegistryOrder(t *testing.T) {
	reg := NewRegistry(Generic, DIP)
	pkg, err := reg.Generate("DIP-8")
	if err != nil {
		t.Fatal(err)
	}
	if pkg.Name() != "DIP-8" {
		t.Errorf("name = %s", pkg.Name())
	}
	if pkg, _ := reg.Generate("dip8"); pkg.Name() != "DIP8" {
		t.Errorf("generic registered first must win, got %s", pkg.Name())
	}

	empty := NewRegistry()
	if _, err := empty.Generate("DIP-8"); !errors.Is(err, ErrNoGenerator) {
		t.Errorf("got %v, want ErrNoGenerator", err)
	}
	if Default().Match("QFN") {
		t.Error("ids without a count must not match")
	}
}
