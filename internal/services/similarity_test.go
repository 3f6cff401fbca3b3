package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelwise/reelwise/pkg/models"
)

func TestSimilarityService_BuildSimilarity(t *testing.T) {
	cat := buildTestCatalog(t)
	svc := NewSimilarityService(testRecommendationConfig(), testLogger())
	sim := svc.BuildSimilarity(cat)

	t.Run("self-similarity is one for featured movies and zero otherwise", func(t *testing.T) {
		require.Equal(t, 4, sim.Dim())
		assert.Equal(t, 1.0, sim.Diag(0))
		assert.Equal(t, 1.0, sim.Diag(1))
		assert.Equal(t, 1.0, sim.Diag(2))
		// Movie 4 carries no features.
		assert.Equal(t, 0.0, sim.Diag(3))
		assert.Equal(t, 0.0, sim.Sim(3, 3))
	})

	t.Run("symmetry and range hold for every pair", func(t *testing.T) {
		for i := 0; i < sim.Dim(); i++ {
			for j := 0; j < sim.Dim(); j++ {
				v := sim.Sim(i, j)
				assert.Equal(t, sim.Sim(j, i), v)
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		}
	})

	t.Run("disjoint feature sets yield zero", func(t *testing.T) {
		assert.Equal(t, 0.0, sim.Sim(0, 2))
		assert.Equal(t, 0.0, sim.Sim(1, 2))
		assert.Empty(t, sim.Neighbors(2))
	})

	t.Run("shared director gives full cosine for single-feature rows", func(t *testing.T) {
		assert.InDelta(t, 1.0, sim.Sim(0, 1), 1e-12)
	})
}

func TestSimilarityService_CosineValue(t *testing.T) {
	// Movie 1 has two features, movie 2 shares one of them: 1/sqrt(2*1).
	svc := NewCatalogService(testLogger())
	cat, err := svc.BuildCatalog(
		[]string{"1", "2"},
		map[string][]models.MetadataRecord{
			"directors": {
				{MovieID: "1", Value: "X"},
				{MovieID: "2", Value: "X"},
			},
			"genres": {
				{MovieID: "1", Value: "Action"},
			},
		},
	)
	require.NoError(t, err)

	sim := NewSimilarityService(testRecommendationConfig(), testLogger()).BuildSimilarity(cat)
	assert.InDelta(t, 1.0/math.Sqrt(2), sim.Sim(0, 1), 1e-12)
}

func TestSimilarityService_NeighborCap(t *testing.T) {
	// Five movies sharing one genre, split into a director pair {0, 1} and a
	// writer trio {2, 3, 4}, so every row has four neighbors and a clear top.
	svc := NewCatalogService(testLogger())
	cat, err := svc.BuildCatalog(
		[]string{"0", "1", "2", "3", "4"},
		map[string][]models.MetadataRecord{
			"genres": {
				{MovieID: "0", Value: "Action"},
				{MovieID: "1", Value: "Action"},
				{MovieID: "2", Value: "Action"},
				{MovieID: "3", Value: "Action"},
				{MovieID: "4", Value: "Action"},
			},
			"directors": {
				{MovieID: "0", Value: "X"},
				{MovieID: "1", Value: "X"},
			},
			"writers": {
				{MovieID: "2", Value: "W"},
				{MovieID: "3", Value: "W"},
				{MovieID: "4", Value: "W"},
			},
		},
	)
	require.NoError(t, err)

	cfg := testRecommendationConfig()
	cfg.NeighborCap = 2
	capped := NewSimilarityService(cfg, testLogger()).BuildSimilarity(cat)

	uncfg := testRecommendationConfig()
	full := NewSimilarityService(uncfg, testLogger()).BuildSimilarity(cat)

	t.Run("each row keeps its true top entries in descending order", func(t *testing.T) {
		row := capped.Neighbors(0)
		require.Len(t, row, 2)
		assert.Equal(t, 1, row[0].Row)
		assert.GreaterOrEqual(t, row[0].Sim, row[1].Sim)

		fullRow := full.Neighbors(0)
		require.GreaterOrEqual(t, len(fullRow), 2)
		assert.Equal(t, fullRow[:2], row)
	})

	t.Run("ties break toward the lower row index", func(t *testing.T) {
		// Movies 2 and 3 tie as neighbors of movie 4; 2 must come first.
		row := capped.Neighbors(4)
		require.Len(t, row, 2)
		assert.Equal(t, row[0].Sim, row[1].Sim)
		assert.Equal(t, 2, row[0].Row)
		assert.Equal(t, 3, row[1].Row)
	})

	t.Run("pruned pairs stay symmetric through the reverse row", func(t *testing.T) {
		for i := 0; i < capped.Dim(); i++ {
			for j := 0; j < capped.Dim(); j++ {
				assert.Equal(t, capped.Sim(j, i), capped.Sim(i, j))
			}
		}
	})
}

func TestNewSimilarityFromArtifacts(t *testing.T) {
	cat := buildTestCatalog(t)
	original := NewSimilarityService(testRecommendationConfig(), testLogger()).BuildSimilarity(cat)

	t.Run("round trip preserves every cell", func(t *testing.T) {
		restored, err := NewSimilarityFromArtifacts(original.Dim(), original.Entries(), false)
		require.NoError(t, err)

		require.Equal(t, original.Dim(), restored.Dim())
		for i := 0; i < original.Dim(); i++ {
			assert.Equal(t, original.Diag(i), restored.Diag(i))
			for j := 0; j < original.Dim(); j++ {
				assert.Equal(t, original.Sim(i, j), restored.Sim(i, j))
			}
		}
	})

	t.Run("out-of-range entry is rejected", func(t *testing.T) {
		_, err := NewSimilarityFromArtifacts(2, []SimilarityEntry{{Row: 5, Col: 0, Sim: 1}}, false)
		require.Error(t, err)
		assert.IsType(t, &ConfigurationError{}, err)
	})
}
