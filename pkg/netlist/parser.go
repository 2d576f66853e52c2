package netlist

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/spiceplot/pkg/device"
)

type AnalysisType int

const (
	AnalysisOP AnalysisType = iota
	AnalysisTRAN
	AnalysisAC
	AnalysisDC
)

func (t AnalysisType) String() string {
	switch t {
	case AnalysisTRAN:
		return "tran"
	case AnalysisAC:
		return "ac"
	case AnalysisDC:
		return "dc"
	default:
		return "op"
	}
}

type TranParam struct {
	TStep  float64 // timestep
	TStop  float64 // stop time
	TStart float64 // start time
	TMax   float64 // max timestep
	UIC    bool    // Use Initial Conditions
}

type ACParam struct {
	Sweep  string  // DEC, OCT, LIN
	Points int     // points per decade/octave, total for LIN
	FStart float64 // start frequency
	FStop  float64 // stop frequency
}

type DCParam struct {
	Source    string
	Start     float64
	Stop      float64
	Increment float64
}

// Analysis is one analysis directive. Only the params of Type are set.
type Analysis struct {
	Type AnalysisType
	Tran TranParam
	AC   ACParam
	DC   DCParam
}

type NetlistData struct {
	Title     string
	Elements  []Element  // Circuit elements
	Analyses  []Analysis // in netlist order
	WritePath string     // write target of the control block, if any
	Ignored   []string   // dot commands the engine does not act on
}

type Element struct {
	Type     string            // Part type (R, L, C, V, I)
	Name     string            // Part name
	Nodes    []string          // Node names
	Value    float64           // Part value
	Params   map[string]string // key=value parameters, lower-cased keys
	Waveform *device.Waveform  // V and I only
}

var unitMap = map[byte]float64{
	't': 1e12,  // tera
	'g': 1e9,   // giga
	'k': 1e3,   // kilo
	'm': 1e-3,  // milli
	'u': 1e-6,  // micro
	'n': 1e-9,  // nano
	'p': 1e-12, // pico
	'f': 1e-15, // femto
}

var valueRe = regexp.MustCompile(`^([-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?)([a-zA-Z]*)$`)

// Parse reads a netlist for the built-in engine. The first line is the
// title, '*' starts a comment line, ';' an inline comment and '+' continues
// the previous line. Parsing stops at .end.
func Parse(input string) (*NetlistData, error) {
	netlistData := &NetlistData{}

	input = strings.ReplaceAll(input, "\r\n", "\n")
	scanner := bufio.NewScanner(strings.NewReader(input))

	// Title
	if scanner.Scan() {
		netlistData.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)

		switch {
		case line == "", strings.HasPrefix(line, "*"):
			continue
		case strings.HasPrefix(line, "+"):
			if len(lines) > 0 {
				lines[len(lines)-1] += " " + strings.TrimSpace(line[1:])
			}
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading netlist: %v", err)
	}

	inControl := false
	for _, line := range lines {
		kw := keyword(line)

		if inControl {
			switch kw {
			case controlExit:
				inControl = false
			case "write":
				if fields := strings.Fields(line); len(fields) > 1 {
					netlistData.WritePath = fields[1]
				}
			}
			continue
		}

		switch {
		case kw == controlEntry:
			inControl = true
			continue
		case kw == netlistEnd:
			return netlistData, nil
		}

		if err := parseLine(netlistData, line); err != nil {
			return nil, err
		}
	}

	return netlistData, nil
}

func parseLine(netlistData *NetlistData, line string) error {
	if strings.HasPrefix(line, ".") {
		return parseDotOperator(netlistData, line)
	}
	// analyses hoisted out of a control block carry no dot
	if isAnalysis(keyword(line)) {
		return parseDotOperator(netlistData, "."+line)
	}

	element, err := parseElement(line)
	if err != nil {
		return err
	}
	netlistData.Elements = append(netlistData.Elements, *element)

	return nil
}

// Parse .op, .tran, .ac, .dc
func parseDotOperator(netlistData *NetlistData, line string) error {
	var err error

	fields := strings.Fields(line)

	switch strings.ToLower(fields[0]) {
	case ".op":
		netlistData.Analyses = append(netlistData.Analyses, Analysis{Type: AnalysisOP})

	case ".tran":
		a := Analysis{Type: AnalysisTRAN}
		if len(fields) < 3 {
			return fmt.Errorf("insufficient tran parameters, need at least tstep and tstop")
		}
		a.Tran.TStep, err = ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid tstep: %v", err)
		}
		a.Tran.TStop, err = ParseValue(fields[2])
		if err != nil {
			return fmt.Errorf("invalid tstop: %v", err)
		}

		optional := []*float64{&a.Tran.TStart, &a.Tran.TMax}
		for _, field := range fields[3:] {
			if strings.EqualFold(field, "uic") {
				a.Tran.UIC = true
				continue
			}
			if len(optional) == 0 {
				return fmt.Errorf("unexpected tran parameter: %s", field)
			}
			*optional[0], err = ParseValue(field)
			if err != nil {
				return fmt.Errorf("invalid tran parameter: %v", err)
			}
			optional = optional[1:]
		}

		if a.Tran.TStep <= 0 || a.Tran.TStop <= 0 {
			return fmt.Errorf("tstep and tstop must be positive")
		}
		if a.Tran.TStart < 0 || a.Tran.TStart >= a.Tran.TStop {
			return fmt.Errorf("tstart must be in [0, tstop)")
		}
		if a.Tran.TMax == 0 {
			a.Tran.TMax = a.Tran.TStep
		}
		netlistData.Analyses = append(netlistData.Analyses, a)

	case ".ac":
		a := Analysis{Type: AnalysisAC}
		if len(fields) < 5 {
			return fmt.Errorf("insufficient AC parameters, need sweep type, points, fstart, and fstop")
		}

		// DEC, OCT, LIN
		a.AC.Sweep = strings.ToUpper(fields[1])
		if a.AC.Sweep != "DEC" && a.AC.Sweep != "OCT" && a.AC.Sweep != "LIN" {
			return fmt.Errorf("invalid sweep type: %s", fields[1])
		}

		a.AC.Points, err = strconv.Atoi(fields[2])
		if err != nil || a.AC.Points < 1 {
			return fmt.Errorf("invalid points number: %s", fields[2])
		}
		a.AC.FStart, err = ParseValue(fields[3])
		if err != nil {
			return fmt.Errorf("invalid fstart: %v", err)
		}
		a.AC.FStop, err = ParseValue(fields[4])
		if err != nil {
			return fmt.Errorf("invalid fstop: %v", err)
		}

		if a.AC.FStop < a.AC.FStart {
			return fmt.Errorf("fstop must not be below fstart")
		}
		if a.AC.Sweep != "LIN" && a.AC.FStart <= 0 {
			return fmt.Errorf("fstart must be positive for a %s sweep", strings.ToLower(a.AC.Sweep))
		}
		netlistData.Analyses = append(netlistData.Analyses, a)

	case ".dc":
		a := Analysis{Type: AnalysisDC}
		if len(fields) < 5 {
			return fmt.Errorf("insufficient DC sweep parameters")
		}

		a.DC.Source = fields[1]
		a.DC.Start, err = ParseValue(fields[2])
		if err != nil {
			return fmt.Errorf("invalid start value: %v", err)
		}
		a.DC.Stop, err = ParseValue(fields[3])
		if err != nil {
			return fmt.Errorf("invalid stop value: %v", err)
		}
		a.DC.Increment, err = ParseValue(fields[4])
		if err != nil {
			return fmt.Errorf("invalid increment value: %v", err)
		}

		if a.DC.Increment == 0 || (a.DC.Stop-a.DC.Start)*a.DC.Increment < 0 {
			return fmt.Errorf("increment %g does not reach %g from %g", a.DC.Increment, a.DC.Stop, a.DC.Start)
		}
		netlistData.Analyses = append(netlistData.Analyses, a)

	case ".title":
		netlistData.Title = strings.TrimSpace(line[len(fields[0]):])

	default:
		netlistData.Ignored = append(netlistData.Ignored, line)
	}

	return nil
}

// Parse circuit element
func parseElement(line string) (*Element, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, fmt.Errorf("invalid element format: %s", line)
	}

	elem := &Element{
		Name:   fields[0],
		Type:   strings.ToUpper(fields[0][:1]),
		Nodes:  fields[1:3],
		Params: make(map[string]string),
	}

	switch elem.Type {
	case "V", "I":
		waveform, err := parseSource(fields[3:])
		if err != nil {
			return nil, fmt.Errorf("%s: %v", elem.Name, err)
		}
		elem.Waveform = waveform
		elem.Value = waveform.Value(0)

	case "R", "C", "L":
		hasValue := false
		for _, field := range fields[3:] {
			if key, value, ok := strings.Cut(field, "="); ok {
				elem.Params[strings.ToLower(key)] = value
				continue
			}
			if hasValue {
				return nil, fmt.Errorf("%s: unexpected field %q", elem.Name, field)
			}
			value, err := ParseValue(field)
			if err != nil {
				return nil, fmt.Errorf("%s: %v", elem.Name, err)
			}
			elem.Value, hasValue = value, true
		}
		if !hasValue {
			return nil, fmt.Errorf("%s: missing value", elem.Name)
		}

	default:
		return nil, fmt.Errorf("unsupported element type: %s", elem.Name)
	}

	return elem, nil
}

// parseSource reads the source description of a V or I line:
// [DC] value, AC mag [phase] and one of SIN/PULSE/PWL(...), in any order.
func parseSource(fields []string) (*device.Waveform, error) {
	desc := strings.Join(fields, " ")
	desc = strings.NewReplacer("(", " ", ")", " ", ",", " ").Replace(desc)
	words := strings.Fields(desc)

	waveform := device.NewDCWaveform(0)
	var dc *float64

	// numbers returns the values starting at words[i].
	numbers := func(i int) []float64 {
		var values []float64
		for ; i < len(words); i++ {
			v, err := ParseValue(words[i])
			if err != nil {
				break
			}
			values = append(values, v)
		}
		return values
	}

	for i := 0; i < len(words); {
		word := strings.ToUpper(words[i])
		args := numbers(i + 1)

		switch word {
		case "DC":
			if len(args) == 0 {
				return nil, fmt.Errorf("missing DC value")
			}
			dc = &args[0]
			i += 2

		case "AC":
			if len(args) == 0 {
				return nil, fmt.Errorf("missing AC magnitude")
			}
			waveform.ACMag = args[0]
			i += 2
			if len(args) > 1 {
				waveform.ACPhase = args[1]
				i++
			}

		case "SIN", "PULSE", "PWL":
			var (
				shaped *device.Waveform
				err    error
			)
			switch word {
			case "SIN":
				shaped, err = device.NewSinWaveform(args)
			case "PULSE":
				shaped, err = device.NewPulseWaveform(args)
			default:
				shaped, err = device.NewPWLWaveform(args)
			}
			if err != nil {
				return nil, err
			}
			shaped.ACMag, shaped.ACPhase = waveform.ACMag, waveform.ACPhase
			waveform = shaped
			i += 1 + len(args)

		default:
			v, err := ParseValue(words[i])
			if err != nil {
				return nil, fmt.Errorf("unsupported source type: %s", words[i])
			}
			dc = &v
			i++
		}
	}

	if dc != nil && waveform.Type == device.DC {
		waveform.DC = *dc
	}

	return waveform, nil
}

// ParseValue - Parse value and factor. 1k -> 1000, 10meg -> 1e7, 5V -> 5.
// Letters after the scale factor are units and ignored.
func ParseValue(val string) (float64, error) {
	matches := valueRe.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	suffix := strings.ToLower(matches[2])
	switch {
	case suffix == "":
	case strings.HasPrefix(suffix, "meg"):
		num *= 1e6
	case strings.HasPrefix(suffix, "mil"):
		num *= 25.4e-6
	default:
		if multiplier, ok := unitMap[suffix[0]]; ok {
			num *= multiplier
		}
	}

	return num, nil
}

// CreateDevice builds the device of a parsed element.
func CreateDevice(elem Element) (device.Device, error) {
	switch elem.Type {
	case "R":
		r := device.NewResistor(elem.Name, elem.Nodes, elem.Value)
		var err error
		if r.Tc1, err = floatParam(elem, "tc1"); err != nil {
			return nil, err
		}
		if r.Tc2, err = floatParam(elem, "tc2"); err != nil {
			return nil, err
		}
		return r, nil

	case "C":
		c := device.NewCapacitor(elem.Name, elem.Nodes, elem.Value)
		ic, err := floatParam(elem, "ic")
		if err != nil {
			return nil, err
		}
		c.IC = ic
		return c, nil

	case "L":
		l := device.NewInductor(elem.Name, elem.Nodes, elem.Value)
		ic, err := floatParam(elem, "ic")
		if err != nil {
			return nil, err
		}
		l.IC = ic
		return l, nil

	case "V":
		return device.NewVoltageSource(elem.Name, elem.Nodes, elem.Waveform), nil

	case "I":
		return device.NewCurrentSource(elem.Name, elem.Nodes, elem.Waveform), nil
	}

	return nil, fmt.Errorf("unsupported device type: %s", elem.Type)
}

func floatParam(elem Element, key string) (float64, error) {
	s, ok := elem.Params[key]
	if !ok {
		return 0, nil
	}
	v, err := ParseValue(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid %s: %v", elem.Name, key, err)
	}
	return v, nil
}
