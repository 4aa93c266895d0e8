package mesh

import (
	"fmt"
	"math"

	"github.com/molel-gt/ffcx/ufc"
	"github.com/molel-gt/ffcx/utils"
	metis "github.com/notargets/go-metis"
)

// PartitionConfig selects how cells are distributed over workers.
type PartitionConfig struct {
	NumPartitions   int32
	Method          string  // "block" or "metis"
	ImbalanceFactor float32 // e.g., 1.05 for 5% imbalance
	Objective       string  // "cut" or "vol"
}

func DefaultPartitionConfig(nparts int32) *PartitionConfig {
	return &PartitionConfig{
		NumPartitions:   nparts,
		Method:          "block",
		ImbalanceFactor: 1.05,
		Objective:       "vol",
	}
}

// Partition assigns every cell to a partition, stored in EToP.
func (m *Mesh) Partition(config *PartitionConfig) (err error) {
	if config.NumPartitions < 1 {
		return fmt.Errorf("%d partitions", config.NumPartitions)
	}
	switch config.Method {
	case "block", "":
		m.EToP = blockPartition(len(m.Cells), int(config.NumPartitions))
	case "metis":
		if config.NumPartitions == 1 || len(m.Cells) <= int(config.NumPartitions) {
			m.EToP = blockPartition(len(m.Cells), int(config.NumPartitions))
			break
		}
		if m.EToP, err = m.metisPartition(config); err != nil {
			return
		}
	default:
		return fmt.Errorf("partition method %q: %w", config.Method, ufc.ErrUnsupported)
	}
	m.analyzePartition(int(config.NumPartitions))
	return
}

func blockPartition(ncells, nparts int) (part []int) {
	pm := utils.NewPartitionMap(nparts, ncells)
	part = make([]int, ncells)
	for k := range part {
		part[k], _, _ = pm.GetBucket(k)
	}
	return
}

// DualGraph returns the cell adjacency through interior facets in CSR
// form, with the number of facet vertices as edge weight.
func (m *Mesh) DualGraph() (xadj, adjncy, adjwgt []int32) {
	var (
		tdim = m.TopologicalDimension()
	)
	xadj = make([]int32, len(m.Cells)+1)
	for k := range m.Cells {
		for _, f := range m.cellEntities[k][tdim-1] {
			for _, ce := range m.facetCells[f] {
				if ce.Cell != k {
					adjncy = append(adjncy, int32(ce.Cell))
					adjwgt = append(adjwgt, int32(len(m.FacetVertices(f))))
				}
			}
		}
		xadj[k+1] = int32(len(adjncy))
	}
	return
}

func (m *Mesh) metisPartition(config *PartitionConfig) (part []int, err error) {
	xadj, adjncy, adjwgt := m.DualGraph()
	opts := make([]int32, metis.NoOptions)
	if err = metis.SetDefaultOptions(opts); err != nil {
		return nil, fmt.Errorf("failed to set METIS options: %w", err)
	}
	if config.Objective == "vol" {
		opts[metis.OptionObjType] = metis.ObjTypeVol
	} else {
		opts[metis.OptionObjType] = metis.ObjTypeCut
	}
	ubvec := []float32{config.ImbalanceFactor}
	mpart, objval, err := metis.PartGraphKwayWeighted(xadj, adjncy, nil, adjwgt,
		config.NumPartitions, nil, ubvec, opts)
	if err != nil {
		return nil, fmt.Errorf("METIS partitioning failed: %w", err)
	}
	tracer().Debugf("METIS objective value %d", objval)
	part = make([]int, len(mpart))
	for k, p := range mpart {
		part[k] = int(p)
	}
	return
}

// PartitionCells lists the cells of every partition in ascending order.
func (m *Mesh) PartitionCells() (cells [][]int) {
	if m.EToP == nil {
		return [][]int{utils.NewRange(0, len(m.Cells))}
	}
	nparts := 0
	for _, p := range m.EToP {
		nparts = max(nparts, p+1)
	}
	cells = make([][]int, nparts)
	for k, p := range m.EToP {
		cells[p] = append(cells[p], k)
	}
	return
}

func (m *Mesh) analyzePartition(nparts int) {
	var (
		load      = make([]int, nparts)
		cutFacets int
		minLoad   = math.MaxInt
		maxLoad   int
		tdim      = m.TopologicalDimension()
	)
	for _, p := range m.EToP {
		load[p]++
	}
	for _, cells := range m.facetCells {
		if len(cells) == 2 && m.EToP[cells[0].Cell] != m.EToP[cells[1].Cell] {
			cutFacets++
		}
	}
	for _, l := range load {
		minLoad, maxLoad = min(minLoad, l), max(maxLoad, l)
	}
	avgLoad := float64(len(m.Cells)) / float64(nparts)
	tracer().Infof("partitioned %d cells into %d parts: load [%d, %d], imbalance %.2f%%, %d cut facets of dimension %d",
		len(m.Cells), nparts, minLoad, maxLoad, 100*(float64(maxLoad)/avgLoad-1), cutFacets, tdim-1)
}
