package phantom

import (
	"math"
	"math/cmplx"
	"testing"

	"mricoilcombine/pkg/combine"
)

// TestAcquireShapes verifies the volume and map dimensions produced by
// the generator.
func TestAcquireShapes(t *testing.T) {
	p := Params{Width: 16, Height: 12, Coils: 4, Echoes: 2, EchoSpacing: 1e-3}
	ydata, smap := Acquire(p)

	wantY := []int{12, 16, 4, 2}
	for i, d := range wantY {
		if ydata.Shape[i] != d {
			t.Fatalf("Expected volume shape %v, got %v", wantY, ydata.Shape)
		}
	}
	if len(ydata.Data) != 12*16*4*2 {
		t.Errorf("Expected %d samples, got %d", 12*16*4*2, len(ydata.Data))
	}

	wantS := []int{12, 16, 4}
	for i, d := range wantS {
		if smap.Shape[i] != d {
			t.Fatalf("Expected map shape %v, got %v", wantS, smap.Shape)
		}
	}
}

// TestWeightedCombineRecoversObject checks that combining the phantom
// data with its ground-truth sensitivities recovers the object: unit
// magnitude (up to T2* decay) at the center, exact zero outside the
// object support.
func TestWeightedCombineRecoversObject(t *testing.T) {
	p := DefaultParams()
	p.Width, p.Height = 32, 32
	ydata, smap := Acquire(p)

	zdata, sos, err := combine.WeightedCombine(ydata, smap)
	if err != nil {
		t.Fatalf("WeightedCombine failed: %v", err)
	}

	center := (p.Height/2)*p.Width + p.Width/2
	decay := math.Exp(-p.EchoSpacing / p.T2Star)
	if got := cmplx.Abs(zdata.At(center, 0)); math.Abs(got-decay) > 1e-9 {
		t.Errorf("Expected |z|=%v at center, got %v", decay, got)
	}
	if sos.At(center) <= 0 {
		t.Errorf("Expected positive sos at center, got %v", sos.At(center))
	}

	// Corner is outside the disk; the data is zero there, so the
	// combined value must be exactly zero.
	if got := zdata.At(0, 0); got != 0 {
		t.Errorf("Expected z=0 outside the object, got %v", got)
	}
}

// TestWeightedCombinePhaseEvolution verifies that the combined phase
// advances between echoes by the off-resonance at that location, the
// quantity the downstream field-map estimator fits.
func TestWeightedCombinePhaseEvolution(t *testing.T) {
	p := DefaultParams()
	p.Width, p.Height = 32, 32
	ydata, smap := Acquire(p)

	zdata, _, err := combine.WeightedCombine(ydata, smap)
	if err != nil {
		t.Fatalf("WeightedCombine failed: %v", err)
	}

	x, y := p.Width/2, p.Height/2
	s := y*p.Width + x
	dphi := cmplx.Phase(zdata.At(s, 1) * cmplx.Conj(zdata.At(s, 0)))
	want := 2 * math.Pi * p.fieldHz(x, y) * p.EchoSpacing
	// Compare modulo 2*pi.
	diff := math.Mod(dphi-want+3*math.Pi, 2*math.Pi) - math.Pi
	if math.Abs(diff) > 1e-9 {
		t.Errorf("Expected phase advance %v, got %v", want, dphi)
	}
}

// TestSelfWeightedPhantom checks the self-weighted variant on phantom
// data: normalized SOS peaks at 1 and stays exactly zero outside the
// object support.
func TestSelfWeightedPhantom(t *testing.T) {
	p := DefaultParams()
	p.Width, p.Height = 24, 24
	ydata, _ := Acquire(p)

	zdata, sos, err := combine.SelfWeightedCombine(ydata)
	if err != nil {
		t.Fatalf("SelfWeightedCombine failed: %v", err)
	}

	max := 0.0
	for _, v := range sos.Data {
		if v > max {
			max = v
		}
	}
	if math.Abs(max-1) > 1e-12 {
		t.Errorf("Expected max(sos)=1, got %v", max)
	}
	if sos.At(0) != 0 {
		t.Errorf("Expected sos=0 outside the object, got %v", sos.At(0))
	}
	if zdata.At(0, 0) != 0 {
		t.Errorf("Expected z=0 outside the object, got %v", zdata.At(0, 0))
	}
}
