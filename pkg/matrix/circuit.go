package matrix

import (
	"fmt"
	"io"
	"log"

	"github.com/edp1096/sparse"
)

// CircuitMatrix is an MNA system over a sparse matrix. Rows and columns are
// 1-based: node equations first, then branch equations.
type CircuitMatrix struct {
	Size         int
	matrix       *sparse.Matrix
	elements     [][]*sparse.Element
	rhs          []float64
	rhsImag      []float64
	solution     []float64
	solutionImag []float64
	isComplex    bool
	config       *sparse.Configuration
}

var _ DeviceMatrix = (*CircuitMatrix)(nil)

func NewMatrix(size int, isComplex bool) (*CircuitMatrix, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 isComplex,
		SeparatedComplexVectors: true,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}

	m := &CircuitMatrix{
		Size:      size,
		matrix:    mat,
		rhs:       make([]float64, size+1), // 1-based indexing
		rhsImag:   make([]float64, size+1),
		isComplex: isComplex,
		config:    config,
	}
	m.setupElements()

	return m, nil
}

// setupElements creates every element up front and keeps the pointers, which
// stay valid when the factorization reorders rows and columns.
func (m *CircuitMatrix) setupElements() {
	m.elements = make([][]*sparse.Element, m.Size+1)
	for i := 1; i <= m.Size; i++ {
		m.elements[i] = make([]*sparse.Element, m.Size+1)
		for j := 1; j <= m.Size; j++ {
			m.elements[i][j] = m.matrix.GetElement(int64(i), int64(j))
		}
	}
}

func (m *CircuitMatrix) inBounds(i, j int) bool {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		log.Printf("matrix: index out of bounds (i=%d, j=%d, size=%d)", i, j, m.Size)
		return false
	}
	return true
}

func (m *CircuitMatrix) AddElement(i, j int, value float64) {
	if m.inBounds(i, j) {
		m.elements[i][j].Real += value
	}
}

func (m *CircuitMatrix) AddComplexElement(i, j int, real, imag float64) {
	if !m.inBounds(i, j) {
		return
	}
	element := m.elements[i][j]
	element.Real += real
	element.Imag += imag
}

func (m *CircuitMatrix) AddRHS(i int, value float64) {
	if m.inBounds(i, 1) {
		m.rhs[i] += value
	}
}

func (m *CircuitMatrix) AddComplexRHS(i int, real, imag float64) {
	if m.inBounds(i, 1) {
		m.rhs[i] += real
		m.rhsImag[i] += imag
	}
}

// LoadGmin adds gmin to the diagonal of rows 1..n.
func (m *CircuitMatrix) LoadGmin(gmin float64, n int) {
	for i := 1; i <= min(n, m.Size); i++ {
		m.elements[i][i].Real += gmin
	}
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	clear(m.rhs)
	clear(m.rhsImag)
}

func (m *CircuitMatrix) Solve() error {
	var err error

	// The first call orders the matrix, later calls keep the pivot order
	// unless a pivot has become too small.
	err = m.matrix.OrderAndFactor(nil, 0, 0, true)
	if err != nil {
		return fmt.Errorf("matrix factorization failed: %v", err)
	}

	if m.isComplex {
		m.solution, m.solutionImag, err = m.matrix.SolveComplex(m.rhs, m.rhsImag)
	} else {
		m.solution, err = m.matrix.Solve(m.rhs)
	}

	if err != nil {
		return fmt.Errorf("matrix solve failed: %v", err)
	}

	return nil
}

func (m *CircuitMatrix) IsComplex() bool {
	return m.isComplex
}

func (m *CircuitMatrix) RHS() []float64 {
	return m.rhs
}

// Solution is the real solution vector, 1-based.
func (m *CircuitMatrix) Solution() []float64 {
	return m.solution
}

func (m *CircuitMatrix) ComplexSolution(i int) complex128 {
	if i <= 0 || i >= len(m.solution) {
		return 0
	}
	if !m.isComplex {
		return complex(m.solution[i], 0)
	}
	return complex(m.solution[i], m.solutionImag[i])
}

// WriteSystem prints the stamped equations, one row per line.
func (m *CircuitMatrix) WriteSystem(w io.Writer) {
	fmt.Fprintf(w, "Circuit equations (%dx%d):\n", m.Size, m.Size)
	for i := 1; i <= m.Size; i++ {
		fmt.Fprintf(w, "%4d:", i)
		for j := 1; j <= m.Size; j++ {
			element := m.elements[i][j]
			switch {
			case element.Real == 0 && element.Imag == 0:
				continue
			case m.isComplex && element.Imag != 0:
				fmt.Fprintf(w, "  (%g%+gj)*x%d", element.Real, element.Imag, j)
			default:
				fmt.Fprintf(w, "  %+g*x%d", element.Real, j)
			}
		}
		if m.isComplex {
			fmt.Fprintf(w, " = %g%+gj\n", m.rhs[i], m.rhsImag[i])
		} else {
			fmt.Fprintf(w, " = %g\n", m.rhs[i])
		}
	}
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
		m.matrix = nil
	}
}
