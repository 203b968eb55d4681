// Package combine implements multi-coil MRI image combination. Given
// per-coil complex image data, optionally across several echo times, it
// produces a single combined complex image per echo together with a
// real-valued sum-of-squares (SOS) weighting map. The combined image and
// SOS map are the inputs expected by a downstream B0 field-map
// estimation stage.
//
// Two variants are provided: WeightedCombine uses externally supplied
// coil sensitivity maps, SelfWeightedCombine derives its own weighting
// from the first echo when no sensitivity map is available.
package combine

// ImageVolume holds per-coil complex image data across echoes as a flat
// array in row-major order with the last axis fastest.
type ImageVolume struct {
	// Data is the complex sample array, one value per
	// (spatial location, coil, echo) triple.
	Data []complex128

	// Shape lists the axis sizes as (spatial..., coil, echo).
	// The spatial prefix may have any rank, including zero for a
	// single-location volume.
	Shape []int
}

// NewImageVolume allocates a zeroed volume with the given shape.
func NewImageVolume(shape ...int) *ImageVolume {
	return &ImageVolume{
		Data:  make([]complex128, numElements(shape)),
		Shape: shape,
	}
}

// NumCoils returns the size of the coil axis.
func (v *ImageVolume) NumCoils() int { return v.Shape[len(v.Shape)-2] }

// NumEchoes returns the size of the echo axis.
func (v *ImageVolume) NumEchoes() int { return v.Shape[len(v.Shape)-1] }

// SpatialShape returns the spatial axis sizes, everything before the
// trailing (coil, echo) pair.
func (v *ImageVolume) SpatialShape() []int { return v.Shape[:len(v.Shape)-2] }

// At returns the sample at flattened spatial index s, coil c, echo e.
func (v *ImageVolume) At(s, c, e int) complex128 {
	return v.Data[(s*v.NumCoils()+c)*v.NumEchoes()+e]
}

// Set stores a sample at flattened spatial index s, coil c, echo e.
func (v *ImageVolume) Set(s, c, e int, val complex128) {
	v.Data[(s*v.NumCoils()+c)*v.NumEchoes()+e] = val
}

// SensitivityMap holds per-coil complex receive sensitivities. The
// magnitude is the relative coil sensitivity at each location, the phase
// the coil-dependent phase offset.
type SensitivityMap struct {
	// Data is the complex sensitivity array, one value per
	// (spatial location, coil) pair.
	Data []complex128

	// Shape lists the axis sizes as (spatial..., coil) and must match
	// the spatial shape and coil count of the associated ImageVolume.
	Shape []int
}

// NewSensitivityMap allocates a zeroed sensitivity map with the given shape.
func NewSensitivityMap(shape ...int) *SensitivityMap {
	return &SensitivityMap{
		Data:  make([]complex128, numElements(shape)),
		Shape: shape,
	}
}

// NumCoils returns the size of the coil axis.
func (m *SensitivityMap) NumCoils() int { return m.Shape[len(m.Shape)-1] }

// At returns the sensitivity at flattened spatial index s, coil c.
func (m *SensitivityMap) At(s, c int) complex128 {
	return m.Data[s*m.NumCoils()+c]
}

// Set stores a sensitivity at flattened spatial index s, coil c.
func (m *SensitivityMap) Set(s, c int, val complex128) {
	m.Data[s*m.NumCoils()+c] = val
}

// CombinedImage is the coil-combined complex image, one value per
// (spatial location, echo) pair.
type CombinedImage struct {
	Data []complex128

	// Shape lists the axis sizes as (spatial..., echo).
	Shape []int
}

// NewCombinedImage allocates a zeroed combined image with the given shape.
func NewCombinedImage(shape ...int) *CombinedImage {
	return &CombinedImage{
		Data:  make([]complex128, numElements(shape)),
		Shape: shape,
	}
}

// NumEchoes returns the size of the echo axis.
func (z *CombinedImage) NumEchoes() int { return z.Shape[len(z.Shape)-1] }

// At returns the combined sample at flattened spatial index s, echo e.
func (z *CombinedImage) At(s, e int) complex128 {
	return z.Data[s*z.NumEchoes()+e]
}

// SOSMap is the real, non-negative sum-of-squares weight map over the
// spatial axes. The downstream field-map estimator uses it as an
// SNR-proportional per-location weight.
type SOSMap struct {
	Data []float64

	// Shape lists the spatial axis sizes.
	Shape []int
}

// NewSOSMap allocates a zeroed SOS map with the given spatial shape.
func NewSOSMap(shape ...int) *SOSMap {
	return &SOSMap{
		Data:  make([]float64, numElements(shape)),
		Shape: shape,
	}
}

// At returns the weight at flattened spatial index s.
func (m *SOSMap) At(s int) float64 { return m.Data[s] }

// numElements returns the product of the axis sizes. An empty shape has
// one element, the rank-0 case.
func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// shapeEqual reports whether two shapes have identical rank and sizes.
func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
