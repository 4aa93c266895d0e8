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

type gambitType struct {
	shape ufc.Shape
	nodes int
	order []int   // gambit node i goes to local vertex order[i]
	faces [][]int // gambit face j in gambit node numbering
}

// gambitTypes maps the NTYPE codes of linear Gambit cells
var gambitTypes = map[int]gambitType{
	2: {shape: ufc.Quadrilateral, nodes: 4, order: []int{0, 1, 3, 2},
		faces: [][]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}},
	3: {shape: ufc.Triangle, nodes: 3,
		faces: [][]int{{0, 1}, {1, 2}, {2, 0}}},
	4: {shape: ufc.Hexahedron, nodes: 8,
		faces: [][]int{{0, 1, 5, 4}, {1, 3, 7, 5}, {3, 2, 6, 7}, {2, 0, 4, 6}, {1, 0, 2, 3}, {4, 5, 7, 6}}},
	6: {shape: ufc.Tetrahedron, nodes: 4,
		faces: [][]int{{1, 0, 2}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3}}},
}

type gambitFile struct {
	numNodes, numElements, numGroups, numBCs, dim int
	nodeIDs                                      map[int]int
	coords                                       [][]float64
	elementIDs                                   map[int]int
	types                                        []gambitType
	nodes                                        [][]int
	groups                                       map[int]int // element -> group id
	groupNames                                   map[int]string
	bcs                                          []gambitBC
}

type gambitBC struct {
	name  string
	faces [][2]int // element id, gambit face 1..n
}

// ReadGambitNeutralFile reads a Gambit neutral (.neu) mesh file.
func ReadGambitNeutralFile(filename string) (*Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	m, err := ReadGambitNeutral(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

// ReadGambitNeutral reads a Gambit neutral mesh of triangles,
// quadrilaterals, tetrahedra or hexahedra. Element group ids become cell
// tags, boundary condition sets tag their faces 1, 2, ... in file order and
// name them in TagNames.
func ReadGambitNeutral(r io.Reader) (m *Mesh, err error) {
	var (
		scanner = bufio.NewScanner(r)
		gf      = &gambitFile{
			nodeIDs:    make(map[int]int),
			elementIDs: make(map[int]int),
			groups:     make(map[int]int),
			groupNames: make(map[int]string),
		}
		control bool
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "NUMNP"):
			if err = gf.readControl(scanner); err != nil {
				return
			}
			control = true
		case strings.HasPrefix(line, "NODAL COORDINATES"):
			err = gf.readNodes(scanner)
		case strings.HasPrefix(line, "ELEMENTS/CELLS"):
			err = gf.readElements(scanner)
		case strings.HasPrefix(line, "ELEMENT GROUP"):
			err = gf.readGroup(scanner)
		case strings.HasPrefix(line, "BOUNDARY CONDITIONS"):
			err = gf.readBC(scanner)
		}
		if err != nil {
			return
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}
	if !control {
		return nil, fmt.Errorf("no control info in gambit file")
	}
	return gf.build()
}

func (gf *gambitFile) readControl(scanner *bufio.Scanner) (err error) {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF after control header")
	}
	var vals []int
	if vals, err = atoi(strings.Fields(scanner.Text())); err != nil {
		return
	}
	if len(vals) < 5 {
		return fmt.Errorf("short control info line %q", scanner.Text())
	}
	gf.numNodes, gf.numElements, gf.numGroups, gf.numBCs, gf.dim = vals[0], vals[1], vals[2], vals[3], vals[4]
	return skipSection(scanner, "ENDOFSECTION")
}

func (gf *gambitFile) readNodes(scanner *bufio.Scanner) (err error) {
	for i := 0; i < gf.numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 1+gf.dim {
			return fmt.Errorf("short node line %q", scanner.Text())
		}
		var id int
		if id, err = strconv.Atoi(fields[0]); err != nil {
			return
		}
		x := make([]float64, gf.dim)
		for j := range x {
			if x[j], err = strconv.ParseFloat(fields[1+j], 64); err != nil {
				return
			}
		}
		gf.nodeIDs[id] = len(gf.coords)
		gf.coords = append(gf.coords, x)
	}
	return skipSection(scanner, "ENDOFSECTION")
}

func (gf *gambitFile) readElements(scanner *bufio.Scanner) (err error) {
	for i := 0; i < gf.numElements; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading elements")
		}
		var vals []int
		if vals, err = atoi(strings.Fields(scanner.Text())); err != nil {
			return
		}
		if len(vals) < 3 {
			return fmt.Errorf("short element line %q", scanner.Text())
		}
		typ, ok := gambitTypes[vals[1]]
		if !ok || typ.nodes != vals[2] {
			return fmt.Errorf("gambit element type %d with %d nodes: %w", vals[1], vals[2], ufc.ErrUnsupported)
		}
		// long node lists continue on the next line
		for len(vals) < 3+typ.nodes && scanner.Scan() {
			var more []int
			if more, err = atoi(strings.Fields(scanner.Text())); err != nil {
				return
			}
			vals = append(vals, more...)
		}
		if len(vals) != 3+typ.nodes {
			return fmt.Errorf("element %d has %d nodes, expected %d", vals[0], len(vals)-3, typ.nodes)
		}
		nodes := make([]int, typ.nodes)
		for j, id := range vals[3:] {
			if nodes[j], ok = gf.nodeIDs[id]; !ok {
				return fmt.Errorf("element %d references unknown node %d", vals[0], id)
			}
		}
		gf.elementIDs[vals[0]] = len(gf.nodes)
		gf.types = append(gf.types, typ)
		gf.nodes = append(gf.nodes, nodes)
	}
	return skipSection(scanner, "ENDOFSECTION")
}

func (gf *gambitFile) readGroup(scanner *bufio.Scanner) (err error) {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading element group")
	}
	var (
		fields            = strings.Fields(scanner.Text())
		group, n, nflags int
	)
	for i := 0; i+1 < len(fields); i++ {
		switch fields[i] {
		case "GROUP:":
			group, err = strconv.Atoi(fields[i+1])
		case "ELEMENTS:":
			n, err = strconv.Atoi(fields[i+1])
		case "NFLAGS:":
			nflags, err = strconv.Atoi(fields[i+1])
		}
		if err != nil {
			return
		}
	}
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading group %d", group)
	}
	gf.groupNames[group] = strings.TrimSpace(scanner.Text())
	if nflags > 0 && !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading group %d", group)
	}
	for read := 0; read < n; {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading group %d", group)
		}
		var ids []int
		if ids, err = atoi(strings.Fields(scanner.Text())); err != nil {
			return
		}
		for _, id := range ids {
			gf.groups[id] = group
		}
		read += len(ids)
	}
	return skipSection(scanner, "ENDOFSECTION")
}

func (gf *gambitFile) readBC(scanner *bufio.Scanner) (err error) {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF reading boundary conditions")
	}
	fields := strings.Fields(scanner.Text())
	if len(fields) < 3 {
		return fmt.Errorf("short boundary condition line %q", scanner.Text())
	}
	var (
		bc            = gambitBC{name: fields[0]}
		itype, nentry int
	)
	if itype, err = strconv.Atoi(fields[1]); err != nil {
		return
	}
	if nentry, err = strconv.Atoi(fields[2]); err != nil {
		return
	}
	for i := 0; i < nentry; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading boundary condition %s", bc.name)
		}
		// node sets carry no faces
		if itype != 1 {
			continue
		}
		var vals []int
		if vals, err = atoi(strings.Fields(scanner.Text())); err != nil {
			return
		}
		if len(vals) < 3 {
			return fmt.Errorf("short boundary face line %q", scanner.Text())
		}
		bc.faces = append(bc.faces, [2]int{vals[0], vals[2]})
	}
	gf.bcs = append(gf.bcs, bc)
	return skipSection(scanner, "ENDOFSECTION")
}

func (gf *gambitFile) build() (m *Mesh, err error) {
	if len(gf.nodes) == 0 {
		return nil, fmt.Errorf("no cells in gambit file")
	}
	var (
		shape = gf.types[0].shape
		cells = make([][]int, len(gf.nodes))
		tags  = make([]int, len(gf.nodes))
	)
	for id, k := range gf.elementIDs {
		typ := gf.types[k]
		if typ.shape != shape {
			return nil, fmt.Errorf("mixed %s and %s cells: %w", shape, typ.shape, ufc.ErrUnsupported)
		}
		cells[k] = make([]int, typ.nodes)
		for i, v := range gf.nodes[k] {
			li := i
			if typ.order != nil {
				li = typ.order[i]
			}
			cells[k][li] = v
		}
		tags[k] = gf.groups[id]
	}
	if m, err = New(shape, gf.dim, gf.coords, cells, tags); err != nil {
		return
	}
	for b, bc := range gf.bcs {
		m.TagNames[b+1] = bc.name
		for _, face := range bc.faces {
			k, ok := gf.elementIDs[face[0]]
			if !ok {
				return nil, fmt.Errorf("boundary condition %s on unknown element %d", bc.name, face[0])
			}
			faces := gf.types[k].faces
			if face[1] < 1 || face[1] > len(faces) {
				return nil, fmt.Errorf("boundary condition %s on face %d of element %d", bc.name, face[1], face[0])
			}
			verts := make([]int, 0, len(faces[face[1]-1]))
			for _, i := range faces[face[1]-1] {
				verts = append(verts, gf.nodes[k][i])
			}
			f, ok := m.FindEntity(m.TopologicalDimension()-1, verts)
			if !ok {
				return nil, fmt.Errorf("face %v is not a mesh facet", verts)
			}
			m.FacetTags[f] = b + 1
		}
	}
	tracer().Infof("gambit: %d %s cells, %d groups, %d boundary sets", len(cells), shape, len(gf.groupNames), len(gf.bcs))
	return
}
