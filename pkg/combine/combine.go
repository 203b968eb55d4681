package combine

import (
	"fmt"
	"math"
	"math/cmplx"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// Combiner performs coil combination. The computation is pure and
// stateless; the only tunable is the number of worker goroutines used to
// split the spatial index range. Results are bit-identical for any
// worker count: each spatial location is written by exactly one worker
// and the coil reduction always runs in ascending coil order.
type Combiner struct {
	workers int
}

// NewCombiner returns a combiner using the given number of worker
// goroutines. A value <= 0 selects one worker per available CPU.
func NewCombiner(workers int) *Combiner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Combiner{workers: workers}
}

// WeightedCombine combines multi-coil data with a default combiner.
// See Combiner.WeightedCombine.
func WeightedCombine(ydata *ImageVolume, smap *SensitivityMap) (*CombinedImage, *SOSMap, error) {
	return NewCombiner(0).WeightedCombine(ydata, smap)
}

// SelfWeightedCombine combines multi-coil data with a default combiner.
// See Combiner.SelfWeightedCombine.
func SelfWeightedCombine(ydata *ImageVolume) (*CombinedImage, *SOSMap, error) {
	return NewCombiner(0).SelfWeightedCombine(ydata)
}

// WeightedCombine computes the SNR-optimal linear combination of coil
// data under the given sensitivity model:
//
//	sos[s]     = sum_c |smap[s,c]|^2
//	norm[s,c]  = smap[s,c] / sos[s]        (0 where sos[s] = 0)
//	zdata[s,e] = sum_c conj(norm[s,c]) * ydata[s,c,e]
//
// For a single coil this reduces to dividing out the coil's sensitivity.
// The SOS map is returned unscaled. Wherever all coil sensitivities are
// zero, both outputs are exactly zero; division by zero never occurs.
//
// The sensitivity map's shape must equal the volume's spatial shape plus
// its coil count; otherwise ErrShapeMismatch is returned before any
// numeric work.
func (c *Combiner) WeightedCombine(ydata *ImageVolume, smap *SensitivityMap) (*CombinedImage, *SOSMap, error) {
	if err := validateVolume(ydata); err != nil {
		return nil, nil, err
	}
	spatial := ydata.SpatialShape()
	nc := ydata.NumCoils()
	ne := ydata.NumEchoes()

	want := make([]int, 0, len(spatial)+1)
	want = append(append(want, spatial...), nc)
	if smap == nil || !shapeEqual(smap.Shape, want) {
		var got []int
		if smap != nil {
			got = smap.Shape
		}
		return nil, nil, fmt.Errorf("combine: sensitivity map shape %v, volume requires %v: %w",
			got, want, ErrShapeMismatch)
	}
	if len(smap.Data) != numElements(smap.Shape) {
		return nil, nil, fmt.Errorf("combine: sensitivity map has %d samples but shape %v implies %d: %w",
			len(smap.Data), smap.Shape, numElements(smap.Shape), ErrDimension)
	}

	zdata := NewCombinedImage(append(append([]int{}, spatial...), ne)...)
	sos := NewSOSMap(append([]int{}, spatial...)...)

	c.forEachRange(numElements(spatial), func(lo, hi int) {
		norm := make([]complex128, nc)
		for s := lo; s < hi; s++ {
			var ssq float64
			for ci := 0; ci < nc; ci++ {
				v := smap.Data[s*nc+ci]
				ssq += real(v)*real(v) + imag(v)*imag(v)
			}
			sos.Data[s] = ssq
			for ci := 0; ci < nc; ci++ {
				norm[ci] = safeDiv(smap.Data[s*nc+ci], ssq)
			}
			for e := 0; e < ne; e++ {
				var z complex128
				for ci := 0; ci < nc; ci++ {
					z += cmplx.Conj(norm[ci]) * ydata.Data[(s*nc+ci)*ne+e]
				}
				zdata.Data[s*ne+e] = z
			}
		}
	})

	return zdata, sos, nil
}

// SelfWeightedCombine combines multi-coil data without a sensitivity
// map, using the first echo's coil images as a surrogate sensitivity
// estimate:
//
//	sos[s]     = sqrt(sum_c |ydata[s,c,0]|^2)
//	w[s,c]     = ydata[s,c,0] / sos[s]      (0 where sos[s] = 0)
//	zdata[s,e] = sum_c conj(w[s,c]) * ydata[s,c,e]
//
// The first-echo weights are applied unchanged to every echo. The SOS
// map is rescaled by its global maximum to the range [0, 1], so a
// downstream regularization parameter tied to the SOS scale stays
// independent of absolute image intensity; the rescale is skipped when
// the map is identically zero.
func (c *Combiner) SelfWeightedCombine(ydata *ImageVolume) (*CombinedImage, *SOSMap, error) {
	if err := validateVolume(ydata); err != nil {
		return nil, nil, err
	}
	spatial := ydata.SpatialShape()
	nc := ydata.NumCoils()
	ne := ydata.NumEchoes()

	zdata := NewCombinedImage(append(append([]int{}, spatial...), ne)...)
	sos := NewSOSMap(append([]int{}, spatial...)...)

	c.forEachRange(numElements(spatial), func(lo, hi int) {
		w := make([]complex128, nc)
		for s := lo; s < hi; s++ {
			var ssq float64
			for ci := 0; ci < nc; ci++ {
				y1 := ydata.Data[(s*nc+ci)*ne]
				ssq += real(y1)*real(y1) + imag(y1)*imag(y1)
			}
			rss := math.Sqrt(ssq)
			sos.Data[s] = rss
			for ci := 0; ci < nc; ci++ {
				w[ci] = safeDiv(ydata.Data[(s*nc+ci)*ne], rss)
			}
			for e := 0; e < ne; e++ {
				var z complex128
				for ci := 0; ci < nc; ci++ {
					z += cmplx.Conj(w[ci]) * ydata.Data[(s*nc+ci)*ne+e]
				}
				zdata.Data[s*ne+e] = z
			}
		}
	})

	if len(sos.Data) > 0 {
		if max := floats.Max(sos.Data); max > 0 {
			floats.Scale(1/max, sos.Data)
		}
	}

	return zdata, sos, nil
}

// safeDiv divides a complex numerator by a real divisor, returning zero
// when the divisor is exactly zero. Both variants produce their
// normalized weights through this policy, so locations with no coil
// signal yield exact zeros instead of NaN or Inf.
func safeDiv(a complex128, b float64) complex128 {
	if b == 0 {
		return 0
	}
	return complex(real(a)/b, imag(a)/b)
}

// validateVolume checks that a volume exposes trailing (coil, echo) axes
// with nc >= 1 and ne >= 1 and that its data array matches its shape.
func validateVolume(v *ImageVolume) error {
	if v == nil {
		return fmt.Errorf("combine: nil volume: %w", ErrDimension)
	}
	if len(v.Shape) < 2 {
		return fmt.Errorf("combine: volume shape %v has no coil/echo axes: %w", v.Shape, ErrDimension)
	}
	for _, d := range v.Shape {
		if d < 0 {
			return fmt.Errorf("combine: volume shape %v has a negative axis: %w", v.Shape, ErrDimension)
		}
	}
	if v.NumCoils() < 1 || v.NumEchoes() < 1 {
		return fmt.Errorf("combine: volume shape %v needs nc >= 1 and ne >= 1: %w", v.Shape, ErrDimension)
	}
	if len(v.Data) != numElements(v.Shape) {
		return fmt.Errorf("combine: volume has %d samples but shape %v implies %d: %w",
			len(v.Data), v.Shape, numElements(v.Shape), ErrDimension)
	}
	return nil
}

// forEachRange splits [0, n) into contiguous per-worker ranges and runs
// fn on each. Locations are independent, so no synchronization beyond
// the final wait is needed.
func (c *Combiner) forEachRange(n int, fn func(lo, hi int)) {
	if n == 0 {
		return
	}
	workers := c.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	per := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * per
		hi := lo + per
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
