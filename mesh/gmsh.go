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

type gmshType struct {
	dim, nodes int
	shape      ufc.Shape
	order      []int // gmsh node i goes to local vertex order[i]
}

// gmshTypes maps the first order Gmsh 2.2 element types
var gmshTypes = map[int]gmshType{
	15: {dim: 0, nodes: 1},
	1:  {dim: 1, nodes: 2, shape: ufc.Interval},
	2:  {dim: 2, nodes: 3, shape: ufc.Triangle},
	3:  {dim: 2, nodes: 4, shape: ufc.Quadrilateral, order: []int{0, 1, 3, 2}},
	4:  {dim: 3, nodes: 4, shape: ufc.Tetrahedron},
	5:  {dim: 3, nodes: 8, shape: ufc.Hexahedron, order: []int{0, 1, 3, 2, 4, 5, 7, 6}},
}

type gmshElement struct {
	typ   gmshType
	tag   int
	nodes []int
}

type gmshFile struct {
	names    map[int]string
	nodeIDs  map[int]int
	coords   [][]float64
	elements []gmshElement
}

// ReadGmsh22File reads an ASCII Gmsh 2.2 mesh file.
func ReadGmsh22File(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := ReadGmsh22(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// ReadGmsh22 reads an ASCII Gmsh 2.2 mesh. Elements of the highest
// dimension become cells, lower dimensional elements one dimension below
// tag the facets they cover with their physical tag.
func ReadGmsh22(r io.Reader) (m *Mesh, err error) {
	var (
		scanner = bufio.NewScanner(r)
		gf      = &gmshFile{names: make(map[int]string), nodeIDs: make(map[int]int)}
	)
	const maxScanTokenSize = 1024 * 1024
	scanner.Buffer(make([]byte, maxScanTokenSize), maxScanTokenSize)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "$MeshFormat":
			err = readMeshFormat(scanner)
		case "$PhysicalNames":
			err = gf.readPhysicalNames(scanner)
		case "$Nodes":
			err = gf.readNodes(scanner)
		case "$Elements":
			err = gf.readElements(scanner)
		}
		if err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return gf.build()
}

func readMeshFormat(scanner *bufio.Scanner) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}
	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line %q", scanner.Text())
	}
	if !strings.HasPrefix(parts[0], "2") {
		return fmt.Errorf("gmsh format version %s: %w", parts[0], ufc.ErrUnsupported)
	}
	if parts[1] != "0" {
		return fmt.Errorf("binary gmsh files: %w", ufc.ErrUnsupported)
	}
	return skipSection(scanner, "$EndMeshFormat")
}

func skipSection(scanner *bufio.Scanner, end string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == end {
			return nil
		}
	}
	return fmt.Errorf("unexpected EOF looking for %s", end)
}

func scanCount(scanner *bufio.Scanner, section string) (n int, err error) {
	if !scanner.Scan() {
		return 0, fmt.Errorf("unexpected EOF in %s", section)
	}
	if n, err = strconv.Atoi(strings.TrimSpace(scanner.Text())); err != nil {
		return 0, fmt.Errorf("invalid %s count: %w", section, err)
	}
	return
}

func atoi(fields []string) (vals []int, err error) {
	vals = make([]int, len(fields))
	for i, f := range fields {
		if vals[i], err = strconv.Atoi(f); err != nil {
			return nil, err
		}
	}
	return
}

func (gf *gmshFile) readPhysicalNames(scanner *bufio.Scanner) error {
	n, err := scanCount(scanner, "PhysicalNames")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in PhysicalNames")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			return fmt.Errorf("invalid physical name %q", scanner.Text())
		}
		tag, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("invalid physical tag %q: %w", fields[1], err)
		}
		gf.names[tag] = strings.Trim(strings.Join(fields[2:], " "), "\"")
	}
	return skipSection(scanner, "$EndPhysicalNames")
}

func (gf *gmshFile) readNodes(scanner *bufio.Scanner) error {
	n, err := scanCount(scanner, "Nodes")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Nodes")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			return fmt.Errorf("invalid node line %q", scanner.Text())
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return fmt.Errorf("invalid node id %q: %w", fields[0], err)
		}
		x := make([]float64, 3)
		for j := range x {
			if x[j], err = strconv.ParseFloat(fields[1+j], 64); err != nil {
				return fmt.Errorf("node %d: %w", id, err)
			}
		}
		gf.nodeIDs[id] = len(gf.coords)
		gf.coords = append(gf.coords, x)
	}
	return skipSection(scanner, "$EndNodes")
}

func (gf *gmshFile) readElements(scanner *bufio.Scanner) error {
	n, err := scanCount(scanner, "Elements")
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in Elements")
		}
		vals, err := atoi(strings.Fields(scanner.Text()))
		if err != nil || len(vals) < 3 {
			return fmt.Errorf("invalid element line %q", scanner.Text())
		}
		typ, ok := gmshTypes[vals[1]]
		if !ok {
			return fmt.Errorf("gmsh element type %d: %w", vals[1], ufc.ErrUnsupported)
		}
		var (
			ntags  = vals[2]
			offset = 3 + ntags
			el     = gmshElement{typ: typ}
		)
		if len(vals) != offset+typ.nodes {
			return fmt.Errorf("element %d: %d fields, need %d", vals[0], len(vals), offset+typ.nodes)
		}
		if ntags > 0 {
			el.tag = vals[3]
		}
		for _, id := range vals[offset:] {
			node, ok := gf.nodeIDs[id]
			if !ok {
				return fmt.Errorf("element %d references unknown node %d", vals[0], id)
			}
			el.nodes = append(el.nodes, node)
		}
		gf.elements = append(gf.elements, el)
	}
	return skipSection(scanner, "$EndElements")
}

func (gf *gmshFile) build() (m *Mesh, err error) {
	tdim := -1
	for _, el := range gf.elements {
		if el.typ.dim > tdim {
			tdim = el.typ.dim
		}
	}
	if tdim < 1 {
		return nil, fmt.Errorf("no cells in gmsh file")
	}
	var (
		shape    ufc.Shape
		cells    [][]int
		tags     []int
		compact  = make(map[int]int)
		vertices [][]float64
	)
	local := func(node int) int {
		v, ok := compact[node]
		if !ok {
			v = len(vertices)
			compact[node] = v
			vertices = append(vertices, gf.coords[node][:tdim])
		}
		return v
	}
	for _, el := range gf.elements {
		if el.typ.dim != tdim {
			continue
		}
		if len(cells) == 0 {
			shape = el.typ.shape
		} else if el.typ.shape != shape {
			return nil, fmt.Errorf("mixed %s and %s cells: %w", shape, el.typ.shape, ufc.ErrUnsupported)
		}
		cell := make([]int, el.typ.nodes)
		for i, node := range el.nodes {
			li := i
			if el.typ.order != nil {
				li = el.typ.order[i]
			}
			cell[li] = local(node)
		}
		cells = append(cells, cell)
		tags = append(tags, el.tag)
	}
	if m, err = New(shape, tdim, vertices, cells, tags); err != nil {
		return
	}
	for tag, name := range gf.names {
		m.TagNames[tag] = name
	}
	for _, el := range gf.elements {
		if el.typ.dim != tdim-1 || el.tag == 0 {
			continue
		}
		verts := make([]int, 0, len(el.nodes))
		for _, node := range el.nodes {
			v, ok := compact[node]
			if !ok {
				return nil, fmt.Errorf("facet element on node %d outside every cell", node)
			}
			verts = append(verts, v)
		}
		f, ok := m.FindEntity(tdim-1, verts)
		if !ok {
			return nil, fmt.Errorf("facet element %v is not a mesh facet", verts)
		}
		m.FacetTags[f] = el.tag
	}
	tracer().Infof("gmsh: %d %s cells, %d tagged facets", len(cells), shape, len(m.FacetTags))
	return
}
