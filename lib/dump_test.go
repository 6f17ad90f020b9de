package lib

import (
	"bytes"
	"testing"

	"github.com/parcel-sim/parcel/lib/eq"
)

func TestPositionRoundTrip(t *testing.T) {
	x := make([][3]float64, 1000)
	for i := range x {
		for d := 0; d < 3; d++ {
			x[i][d] = float64(i*3+d) / 17
		}
	}

	buf := &bytes.Buffer{}
	if err := writePositions(buf, x); err != nil {
		t.Fatalf("Expected write to succeed, got: %s", err.Error())
	}

	y, err := readPositions(buf)
	if err != nil {
		t.Fatalf("Expected read to succeed, got: %s", err.Error())
	}
	if !eq.VecsEps(x, y, 0) {
		t.Errorf("Positions changed across a write/read cycle.")
	}
}

func TestPositionRoundTripEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := writePositions(buf, nil); err != nil {
		t.Fatalf("Expected empty write to succeed, got: %s", err.Error())
	}

	y, err := readPositions(buf)
	if err != nil {
		t.Fatalf("Expected empty read to succeed, got: %s", err.Error())
	}
	if len(y) != 0 {
		t.Errorf("Expected 0 positions, got %d.", len(y))
	}
}

func TestPositionBadFlag(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := writePositions(buf, make([][3]float64, 4)); err != nil {
		t.Fatalf("Expected write to succeed, got: %s", err.Error())
	}

	b := buf.Bytes()
	b[0] ^= 0xff
	if _, err := readPositions(bytes.NewReader(b)); err == nil {
		t.Errorf("Expected a corrupted flag to be rejected.")
	}
}
