package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/molel-gt/ffcx/ufc"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type su2Type struct {
	dim, nodes int
	shape      ufc.Shape
	order      []int
}

var su2Types = map[int]su2Type{
	1:  {dim: 0, nodes: 1},
	3:  {dim: 1, nodes: 2, shape: ufc.Interval},
	5:  {dim: 2, nodes: 3, shape: ufc.Triangle},
	9:  {dim: 2, nodes: 4, shape: ufc.Quadrilateral, order: []int{0, 1, 3, 2}},
	10: {dim: 3, nodes: 4, shape: ufc.Tetrahedron},
	12: {dim: 3, nodes: 8, shape: ufc.Hexahedron, order: []int{0, 1, 3, 2, 4, 5, 7, 6}},
}

type su2Reader struct {
	scanner *bufio.Scanner
}

// ReadSU2File reads an ASCII SU2 mesh file.
func ReadSU2File(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := ReadSU2(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// ReadSU2 reads a single zone ASCII SU2 mesh. Markers tag the facets they
// list 1, 2, ... in file order and are named in TagNames.
func ReadSU2(r io.Reader) (m *Mesh, err error) {
	var (
		rd       = &su2Reader{scanner: bufio.NewScanner(r)}
		dim, n   int
		shape    ufc.Shape
		cells    [][]int
		vertices [][]float64
	)
	if dim, err = rd.number("NDIME"); err != nil {
		return
	}
	if n, err = rd.number("NELEM"); err != nil {
		return
	}
	for k := 0; k < n; k++ {
		typ, nodes, err := rd.element()
		if err != nil {
			return nil, err
		}
		if typ.dim != dim {
			return nil, fmt.Errorf("%d dimensional element in a %d dimensional mesh", typ.dim, dim)
		}
		if k == 0 {
			shape = typ.shape
		} else if typ.shape != shape {
			return nil, fmt.Errorf("mixed %s and %s cells: %w", shape, typ.shape, ufc.ErrUnsupported)
		}
		cells = append(cells, nodes)
	}
	if n, err = rd.number("NPOIN"); err != nil {
		return
	}
	for i := 0; i < n; i++ {
		fields := strings.Fields(rd.line())
		if len(fields) < dim {
			return nil, fmt.Errorf("short point line %v", fields)
		}
		x := make([]float64, dim)
		for j := range x {
			if x[j], err = strconv.ParseFloat(fields[j], 64); err != nil {
				return
			}
		}
		vertices = append(vertices, x)
	}
	if m, err = New(shape, dim, vertices, cells, nil); err != nil {
		return
	}
	// markers are optional
	var nmark int
	if nmark, err = rd.number("NMARK"); err != nil {
		return m, nil
	}
	for tag := 1; tag <= nmark; tag++ {
		var (
			name string
			ne   int
		)
		if name, err = rd.token("MARKER_TAG"); err != nil {
			return
		}
		if ne, err = rd.number("MARKER_ELEMS"); err != nil {
			return
		}
		m.TagNames[tag] = name
		for e := 0; e < ne; e++ {
			_, nodes, err := rd.element()
			if err != nil {
				return nil, err
			}
			f, ok := m.FindEntity(dim-1, nodes)
			if !ok {
				return nil, fmt.Errorf("marker %s element %v is not a mesh facet", name, nodes)
			}
			m.FacetTags[f] = tag
		}
	}
	tracer().Infof("su2: %d %s cells, %d markers", len(cells), shape, nmark)
	return
}

// line returns the next line that is neither blank nor a comment, empty at
// end of input.
func (rd *su2Reader) line() string {
	for rd.scanner.Scan() {
		line := strings.TrimSpace(rd.scanner.Text())
		if line != "" && !strings.HasPrefix(line, "%") {
			return line
		}
	}
	return ""
}

func (rd *su2Reader) token(key string) (val string, err error) {
	line := rd.line()
	ind := strings.Index(line, "=")
	if ind < 0 || strings.TrimSpace(line[:ind]) != key {
		return "", fmt.Errorf("badly formed input line [%s], expected %s=", line, key)
	}
	return strings.TrimSpace(line[ind+1:]), nil
}

func (rd *su2Reader) number(key string) (num int, err error) {
	var val string
	if val, err = rd.token(key); err != nil {
		return
	}
	fields := strings.Fields(val)
	if len(fields) == 0 {
		return 0, fmt.Errorf("no value for %s", key)
	}
	return strconv.Atoi(fields[0])
}

// element reads one element line, node lists in the local vertex order of
// the shape.
func (rd *su2Reader) element() (typ su2Type, nodes []int, err error) {
	var vals []int
	if vals, err = atoi(strings.Fields(rd.line())); err != nil {
		return
	}
	if len(vals) == 0 {
		return typ, nil, fmt.Errorf("unexpected end of element list")
	}
	var ok bool
	if typ, ok = su2Types[vals[0]]; !ok {
		return typ, nil, fmt.Errorf("su2 element type %d: %w", vals[0], ufc.ErrUnsupported)
	}
	if len(vals) < 1+typ.nodes {
		return typ, nil, fmt.Errorf("element of type %d with %d nodes", vals[0], len(vals)-1)
	}
	nodes = make([]int, typ.nodes)
	for i, v := range vals[1 : 1+typ.nodes] {
		li := i
		if typ.order != nil {
			li = typ.order[i]
		}
		nodes[li] = v
	}
	return
}
