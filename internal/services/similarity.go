package services

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/config"
)

// Neighbor is one nonzero off-diagonal entry of a similarity row.
type Neighbor struct {
	Row int     `json:"row"`
	Sim float64 `json:"sim"`
}

// SimilarityMatrix is the derived movie x movie cosine similarity. Rows hold
// only nonzero neighbors, in descending similarity order (ties by lower row
// index). When a neighbor cap was applied, each list is the true top-k of its
// row; Sim consults both rows' lists so lookups stay symmetric either way.
type SimilarityMatrix struct {
	neighbors [][]Neighbor
	diag      []float64
	capped    bool
}

func (m *SimilarityMatrix) Dim() int { return len(m.diag) }

// Neighbors returns row i's list. Callers must not mutate it.
func (m *SimilarityMatrix) Neighbors(i int) []Neighbor { return m.neighbors[i] }

// Diag returns the self-similarity of row i: 1 when the movie's feature
// vector is nonzero, 0 otherwise.
func (m *SimilarityMatrix) Diag(i int) float64 { return m.diag[i] }

// Sim returns the cosine similarity between rows i and j, 0 when the pair
// shares no features or was pruned from both rows' neighbor lists.
func (m *SimilarityMatrix) Sim(i, j int) float64 {
	if i == j {
		return m.diag[i]
	}
	for _, n := range m.neighbors[i] {
		if n.Row == j {
			return n.Sim
		}
	}
	if !m.capped {
		return 0
	}
	for _, n := range m.neighbors[j] {
		if n.Row == i {
			return n.Sim
		}
	}
	return 0
}

type SimilarityService struct {
	config *config.RecommendationConfig
	logger *logrus.Logger
}

func NewSimilarityService(cfg *config.RecommendationConfig, logger *logrus.Logger) *SimilarityService {
	return &SimilarityService{config: cfg, logger: logger}
}

// BuildSimilarity derives the cosine similarity matrix from the incidence
// matrix. For binary rows the cosine of movies i and j is
// |Ai n Aj| / sqrt(|Ai| * |Aj|), so each row is computed by counting shared
// features through the column lists instead of a dense dot product. The
// denominator is guarded: a movie with no features has similarity 0 with
// everything, including itself.
func (s *SimilarityService) BuildSimilarity(cat *FeatureCatalog) *SimilarityMatrix {
	n := cat.MovieCount()
	m := &SimilarityMatrix{
		neighbors: make([][]Neighbor, n),
		diag:      make([]float64, n),
		capped:    s.config.NeighborCap > 0,
	}

	shared := make([]int, n)
	touched := make([]int, 0, 64)

	for i := 0; i < n; i++ {
		deg := len(cat.RowFeatures(i))
		if deg == 0 {
			continue
		}
		m.diag[i] = 1

		touched = touched[:0]
		for _, col := range cat.RowFeatures(i) {
			for _, j := range cat.ColumnMovies(col) {
				if j == i {
					continue
				}
				if shared[j] == 0 {
					touched = append(touched, j)
				}
				shared[j]++
			}
		}

		row := make([]Neighbor, 0, len(touched))
		for _, j := range touched {
			sim := float64(shared[j]) / math.Sqrt(float64(deg)*float64(len(cat.RowFeatures(j))))
			row = append(row, Neighbor{Row: j, Sim: sim})
			shared[j] = 0
		}
		sort.Slice(row, func(a, b int) bool {
			if row[a].Sim != row[b].Sim {
				return row[a].Sim > row[b].Sim
			}
			return row[a].Row < row[b].Row
		})
		if s.config.NeighborCap > 0 && len(row) > s.config.NeighborCap {
			row = row[:s.config.NeighborCap:s.config.NeighborCap]
		}
		m.neighbors[i] = row
	}

	s.logger.WithFields(logrus.Fields{
		"movies":       n,
		"neighbor_cap": s.config.NeighborCap,
	}).Info("Similarity matrix built")

	return m
}

// NewSimilarityFromArtifacts reconstructs the matrix from persisted rows. The
// entries carry every stored (i, j, sim) cell including the diagonal; rows are
// re-sorted to restore the descending order Build produces.
func NewSimilarityFromArtifacts(dim int, entries []SimilarityEntry, capped bool) (*SimilarityMatrix, error) {
	m := &SimilarityMatrix{
		neighbors: make([][]Neighbor, dim),
		diag:      make([]float64, dim),
		capped:    capped,
	}
	for _, e := range entries {
		if e.Row < 0 || e.Row >= dim || e.Col < 0 || e.Col >= dim {
			return nil, &ConfigurationError{Reason: "similarity entry out of range"}
		}
		if e.Row == e.Col {
			m.diag[e.Row] = e.Sim
			continue
		}
		m.neighbors[e.Row] = append(m.neighbors[e.Row], Neighbor{Row: e.Col, Sim: e.Sim})
	}
	for _, row := range m.neighbors {
		sort.Slice(row, func(a, b int) bool {
			if row[a].Sim != row[b].Sim {
				return row[a].Sim > row[b].Sim
			}
			return row[a].Row < row[b].Row
		})
	}
	return m, nil
}

// SimilarityEntry is one stored cell of the similarity artifact.
type SimilarityEntry struct {
	Row int
	Col int
	Sim float64
}

// Entries lists every stored cell, diagonal included, in row-major order.
func (m *SimilarityMatrix) Entries() []SimilarityEntry {
	var entries []SimilarityEntry
	for i := range m.diag {
		if m.diag[i] != 0 {
			entries = append(entries, SimilarityEntry{Row: i, Col: i, Sim: m.diag[i]})
		}
		for _, n := range m.neighbors[i] {
			entries = append(entries, SimilarityEntry{Row: i, Col: n.Row, Sim: n.Sim})
		}
	}
	return entries
}
