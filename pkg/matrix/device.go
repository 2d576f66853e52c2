package matrix

// DeviceMatrix is what a device stamps into. Indices are 1-based, ground is
// never stamped.
type DeviceMatrix interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
	AddComplexElement(i, j int, real, imag float64)
	AddComplexRHS(i int, real, imag float64)
}
