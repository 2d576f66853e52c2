package circuit

import (
	"fmt"
	"io"
	"strings"

	"github.com/edp1096/spiceplot/internal/consts"
	"github.com/edp1096/spiceplot/pkg/device"
	"github.com/edp1096/spiceplot/pkg/matrix"
	"github.com/edp1096/spiceplot/pkg/netlist"
)

// Circuit holds the devices of a netlist and the MNA systems they stamp.
// Unknowns are numbered nodes first, in order of appearance, then branch
// currents of voltage sources and inductors.
type Circuit struct {
	name        string
	nodeMap     map[string]int
	nodeNames   []string
	branchMap   map[string]int
	branchNames []string
	devices     []device.Device
	numNodes    int
	matrix      *matrix.CircuitMatrix
	acMatrix    *matrix.CircuitMatrix
	Status      *device.CircuitStatus
}

func New(name string) *Circuit {
	return &Circuit{
		name:      name,
		nodeMap:   make(map[string]int),
		branchMap: make(map[string]int),
		Status:    &device.CircuitStatus{Temp: consts.TNOM},
	}
}

// Build creates a circuit ready for analysis from parsed netlist data.
func Build(data *netlist.NetlistData) (*Circuit, error) {
	ckt := New(data.Title)
	if err := ckt.AssignNodeBranchMaps(data.Elements); err != nil {
		return nil, err
	}
	if err := ckt.SetupDevices(data.Elements); err != nil {
		ckt.Destroy()
		return nil, err
	}
	return ckt, nil
}

func isGround(node string) bool {
	return node == "0" || strings.EqualFold(node, "gnd")
}

func (c *Circuit) AssignNodeBranchMaps(elements []netlist.Element) error {
	for _, elem := range elements {
		for _, nodeName := range elem.Nodes {
			if isGround(nodeName) {
				continue
			}
			if _, exists := c.nodeMap[nodeName]; !exists {
				c.nodeNames = append(c.nodeNames, nodeName)
				c.nodeMap[nodeName] = len(c.nodeNames)
			}
		}
	}

	branchStart := len(c.nodeMap) + 1
	for _, elem := range elements {
		if elem.Type != "V" && elem.Type != "L" {
			continue
		}
		key := strings.ToLower(elem.Name)
		if _, exists := c.branchMap[key]; exists {
			return fmt.Errorf("duplicate element %s", elem.Name)
		}
		c.branchMap[key] = branchStart
		c.branchNames = append(c.branchNames, elem.Name)
		branchStart++
	}

	c.numNodes = len(c.nodeMap)
	if c.numNodes == 0 {
		return fmt.Errorf("circuit has no nodes besides ground")
	}
	return nil
}

func (c *Circuit) SetupDevices(elements []netlist.Element) error {
	var err error

	names := make(map[string]bool)
	for _, elem := range elements {
		key := strings.ToLower(elem.Name)
		if names[key] {
			return fmt.Errorf("duplicate element %s", elem.Name)
		}
		names[key] = true

		dev, err := netlist.CreateDevice(elem)
		if err != nil {
			return fmt.Errorf("creating device %s: %v", elem.Name, err)
		}

		// Node index
		nodeIndices := make([]int, len(elem.Nodes))
		for i, nodeName := range elem.Nodes {
			if isGround(nodeName) {
				continue
			}
			nodeIndices[i] = c.nodeMap[nodeName]
		}
		dev.SetNodes(nodeIndices)

		if b, ok := dev.(device.BranchDevice); ok {
			b.SetBranchIndex(c.branchMap[key])
		}

		c.devices = append(c.devices, dev)
	}

	c.matrix, err = matrix.NewMatrix(c.Size(), false)
	if err != nil {
		return err
	}

	return nil
}

// Size is the number of MNA unknowns.
func (c *Circuit) Size() int {
	return len(c.nodeMap) + len(c.branchMap)
}

func (c *Circuit) Stamp(mat matrix.DeviceMatrix, status *device.CircuitStatus) error {
	var err error

	for _, dev := range c.devices {
		err = dev.Stamp(mat, status)
		if err != nil {
			return fmt.Errorf("stamping device %s: %v", dev.GetName(), err)
		}
	}
	return nil
}

// Solve stamps and solves the system of status.Mode. AC uses a separate
// complex matrix.
func (c *Circuit) Solve(status *device.CircuitStatus) error {
	var err error

	c.Status = status
	mat := c.matrix
	if status.Mode == device.ACAnalysis {
		if c.acMatrix == nil {
			c.acMatrix, err = matrix.NewMatrix(c.Size(), true)
			if err != nil {
				return err
			}
		}
		mat = c.acMatrix
	}

	mat.Clear()
	err = c.Stamp(mat, status)
	if err != nil {
		return err
	}
	mat.LoadGmin(consts.GMIN, c.numNodes)

	return mat.Solve()
}

// WriteSystem stamps the operating point equations and prints them
// without solving.
func (c *Circuit) WriteSystem(w io.Writer) error {
	status := &device.CircuitStatus{Mode: device.OperatingPointAnalysis, Temp: consts.TNOM, Gmin: consts.GMIN}

	c.matrix.Clear()
	if err := c.Stamp(c.matrix, status); err != nil {
		return err
	}
	c.matrix.LoadGmin(consts.GMIN, c.numNodes)
	c.matrix.WriteSystem(w)
	return nil
}

// Accept stores the last real solution as the state of time dependent
// devices.
func (c *Circuit) Accept() {
	solution := c.matrix.Solution()
	for _, dev := range c.devices {
		if td, ok := dev.(device.TimeDependent); ok {
			td.UpdateState(solution, c.Status)
		}
	}
}

// InitState applies the initial conditions of capacitors and inductors.
func (c *Circuit) InitState() {
	for _, dev := range c.devices {
		if d, ok := dev.(interface{ InitState() }); ok {
			d.InitState()
		}
	}
}

// VariableNames lists the solution variables in matrix order, v(node)
// followed by i(branch).
func (c *Circuit) VariableNames() []string {
	names := make([]string, 0, c.Size())
	for _, node := range c.nodeNames {
		names = append(names, fmt.Sprintf("v(%s)", node))
	}
	for _, branch := range c.branchNames {
		names = append(names, fmt.Sprintf("i(%s)", strings.ToLower(branch)))
	}
	return names
}

// Values is the last real solution in VariableNames order.
func (c *Circuit) Values() []float64 {
	solution := c.matrix.Solution()
	values := make([]float64, c.Size())
	if len(solution) > 1 {
		copy(values, solution[1:])
	}
	return values
}

// ComplexValues is the last AC solution in VariableNames order.
func (c *Circuit) ComplexValues() []complex128 {
	values := make([]complex128, c.Size())
	if c.acMatrix == nil {
		return values
	}
	for i := range values {
		values[i] = c.acMatrix.ComplexSolution(i + 1)
	}
	return values
}

func (c *Circuit) GetMatrix() *matrix.CircuitMatrix {
	return c.matrix
}

func (c *Circuit) GetNodeMap() map[string]int {
	return c.nodeMap
}

func (c *Circuit) GetBranchMap() map[string]int {
	return c.branchMap
}

func (c *Circuit) GetDevices() []device.Device {
	return c.devices
}

// Device looks a device up by name, ignoring case.
func (c *Circuit) Device(name string) device.Device {
	for _, dev := range c.devices {
		if strings.EqualFold(dev.GetName(), name) {
			return dev
		}
	}
	return nil
}

// GetNodeVoltage is the last real solution at a node, 0 for ground.
func (c *Circuit) GetNodeVoltage(nodeName string) float64 {
	idx, ok := c.nodeMap[nodeName]
	if !ok {
		return 0
	}
	solution := c.matrix.Solution()
	if idx >= len(solution) {
		return 0
	}
	return solution[idx]
}

func (c *Circuit) Destroy() {
	if c.matrix != nil {
		c.matrix.Destroy()
	}
	if c.acMatrix != nil {
		c.acMatrix.Destroy()
	}
}

func (c *Circuit) Name() string {
	return c.name
}

func (c *Circuit) GetNumNodes() int {
	return c.numNodes
}
