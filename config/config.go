// Package config reads the YAML problem files driving the assemble command.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/molel-gt/ffcx/mesh"
	"github.com/molel-gt/ffcx/ufc"
)

// MeshParameters selects a generated mesh or a mesh file.
type MeshParameters struct {
	Generator string       `json:"Generator"` // unit_interval, unit_square, unit_cube
	File      string       `json:"File"`      // .msh (Gmsh 2.2), .neu (Gambit) or .su2, used when Generator is empty
	Shape     string       `json:"Shape"`
	Divisions int          `json:"Divisions"` // cells per side of generated meshes
	Points    [][2]float64 `json:"Points"`    // Delaunay generator input
}

// Problem holds the parameters obtained from the YAML problem file
type Problem struct {
	Title              string             `json:"Title"`
	Form               string             `json:"Form"`   // formlib name of the bilinear form
	Linear             string             `json:"Linear"` // optional right hand side form
	Mesh               MeshParameters     `json:"Mesh"`
	Workers            int                `json:"Workers"`
	Partitioner        string             `json:"Partitioner"`        // block or metis
	Coefficients       []float64          `json:"Coefficients"`       // constant values of the form coefficients
	LinearCoefficients []float64          `json:"LinearCoefficients"` // constant values of the right hand side coefficients
	NamedCoefficients  map[string]float64 `json:"NamedCoefficients"`  // coefficient name -> value, for either form
	Dirichlet          map[int]float64    `json:"Dirichlet"`          // facet tag -> prescribed value
	Solve              bool               `json:"Solve"`
}

// Parse reads a YAML problem. Unknown keys are errors, so that a misspelt
// key, or one YAML reads as a boolean, is not silently dropped.
func (p *Problem) Parse(data []byte) (err error) {
	var js []byte
	if js, err = yaml.YAMLToJSON(data); err != nil {
		return
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.DisallowUnknownFields()
	if err = dec.Decode(p); err != nil {
		return fmt.Errorf("problem file: %w", err)
	}
	return p.validate()
}

// ReadFile parses the problem file at path.
func ReadFile(path string) (p *Problem, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	p = &Problem{}
	if err = p.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return
}

func (p *Problem) validate() error {
	if p.Form == "" {
		return fmt.Errorf("no form given")
	}
	if p.Workers < 1 {
		p.Workers = 1
	}
	switch p.Partitioner {
	case "":
		p.Partitioner = "block"
	case "block", "metis":
	default:
		return fmt.Errorf("partitioner %q: %w", p.Partitioner, ufc.ErrUnsupported)
	}
	if p.Mesh.Generator == "" && p.Mesh.File == "" {
		return fmt.Errorf("mesh needs a generator or a file")
	}
	if p.Mesh.Generator != "" && p.Mesh.Generator != "delaunay" && p.Mesh.Divisions < 1 {
		return fmt.Errorf("mesh generator %s needs Divisions >= 1, got %d", p.Mesh.Generator, p.Mesh.Divisions)
	}
	if len(p.Dirichlet) != 0 && p.Linear == "" {
		return fmt.Errorf("dirichlet conditions without a right hand side form")
	}
	return nil
}

// CellShape parses the cell shape of the mesh, a triangle when none is given.
func (mp MeshParameters) CellShape() (ufc.Shape, error) {
	if mp.Shape == "" {
		return ufc.Triangle, nil
	}
	return ufc.ParseShape(mp.Shape)
}

// BuildMesh generates or reads the mesh and partitions it over the workers.
func (p *Problem) BuildMesh() (m *mesh.Mesh, err error) {
	var shape ufc.Shape
	if shape, err = p.Mesh.CellShape(); err != nil {
		return
	}
	switch p.Mesh.Generator {
	case "":
		m, err = readMeshFile(p.Mesh.File)
	case "unit_interval":
		m, err = mesh.UnitInterval(p.Mesh.Divisions)
	case "unit_square":
		m, err = mesh.UnitSquare(p.Mesh.Divisions, p.Mesh.Divisions, shape)
	case "unit_cube":
		m, err = mesh.UnitCube(p.Mesh.Divisions, shape)
	case "delaunay":
		m, err = mesh.Delaunay(p.Mesh.Points)
	default:
		err = fmt.Errorf("mesh generator %q: %w", p.Mesh.Generator, ufc.ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}
	if p.Workers > 1 {
		config := mesh.DefaultPartitionConfig(int32(p.Workers))
		config.Method = p.Partitioner
		if err = m.Partition(config); err != nil {
			return nil, err
		}
	}
	return
}

// readMeshFile picks the reader from the file extension.
func readMeshFile(path string) (*mesh.Mesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msh":
		return mesh.ReadGmsh22File(path)
	case ".neu":
		return mesh.ReadGambitNeutralFile(path)
	case ".su2":
		return mesh.ReadSU2File(path)
	}
	return nil, fmt.Errorf("mesh file %s: %w", path, ufc.ErrUnsupported)
}

// DirichletTags returns the tags carrying boundary values in ascending order.
func (p *Problem) DirichletTags() (tags []int) {
	for tag := range p.Dirichlet {
		tags = append(tags, tag)
	}
	sort.Ints(tags)
	return
}

func (p *Problem) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", p.Title)
	fmt.Fprintf(w, "[%s]\t\t= Form\n", p.Form)
	if p.Linear != "" {
		fmt.Fprintf(w, "[%s]\t\t= Linear Form\n", p.Linear)
	}
	if p.Mesh.Generator != "" {
		fmt.Fprintf(w, "[%s %s %d]\t= Mesh\n", p.Mesh.Generator, p.Mesh.Shape, p.Mesh.Divisions)
	} else {
		fmt.Fprintf(w, "[%s]\t= Mesh File\n", p.Mesh.File)
	}
	fmt.Fprintf(w, "[%d]\t\t\t= Workers (%s)\n", p.Workers, p.Partitioner)
	fmt.Fprintf(w, "%v\t\t= Coefficients\n", p.Coefficients)
	names := make([]string, 0, len(p.NamedCoefficients))
	for name := range p.NamedCoefficients {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s = %8.5f\n", name, p.NamedCoefficients[name])
	}
	for _, tag := range p.DirichletTags() {
		fmt.Fprintf(w, "Dirichlet[%d] = %8.5f\n", tag, p.Dirichlet[tag])
	}
}
