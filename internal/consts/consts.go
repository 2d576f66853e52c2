package consts

const (
	KELVIN = 273.15 // Kelvin temperature (K)
	TNOM   = 300.15 // Nominal temperature, 27C (K)
	GMIN   = 1e-12  // Conductance to ground on every node
)

// Work directory files of one simulation.
const (
	NetlistFile = "circuit.sp"
	LogFile     = "out.log"
	RawFile     = "output.raw"
)

// Labels reported when the result file does not provide better ones.
const (
	DefaultPlotTitle = "Simulation Results"
	DefaultXLabel    = "Frequency (Hz)"
	DefaultYLabel    = "Magnitude"
)
