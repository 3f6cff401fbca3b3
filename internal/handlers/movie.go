package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/services"
	"github.com/reelwise/reelwise/pkg/models"
)

type MovieHandler struct {
	logger     *logrus.Logger
	catalog    *services.FeatureCatalog
	similarity *services.SimilarityMatrix
}

func NewMovieHandler(logger *logrus.Logger, catalog *services.FeatureCatalog, similarity *services.SimilarityMatrix) *MovieHandler {
	return &MovieHandler{logger: logger, catalog: catalog, similarity: similarity}
}

// Get lists the attributes a movie carries in the catalog.
func (h *MovieHandler) Get(c *gin.Context) {
	movieID := c.Param("id")
	row, ok := h.catalog.Row(movieID)
	if !ok {
		writeError(c, http.StatusNotFound, "UNKNOWN_MOVIE", "Movie is not in the catalog")
		return
	}

	cols := h.catalog.RowFeatures(row)
	features := make([]models.Feature, 0, len(cols))
	for _, col := range cols {
		features = append(features, h.catalog.FeatureAt(col))
	}

	c.JSON(http.StatusOK, models.MovieDetails{
		MovieID:  movieID,
		Row:      row,
		Features: features,
	})
}

// Similar returns the seed movie's nearest neighbors by cosine similarity.
func (h *MovieHandler) Similar(c *gin.Context) {
	movieID := c.Param("id")
	row, ok := h.catalog.Row(movieID)
	if !ok {
		writeError(c, http.StatusNotFound, "UNKNOWN_MOVIE", "Movie is not in the catalog")
		return
	}

	count := 10
	if countStr := c.Query("count"); countStr != "" {
		parsed, err := strconv.Atoi(countStr)
		if err != nil || parsed < 1 {
			writeError(c, http.StatusBadRequest, "VALIDATION_FAILED", "count must be a positive integer")
			return
		}
		count = parsed
	}

	neighbors := h.similarity.Neighbors(row)
	if len(neighbors) > count {
		neighbors = neighbors[:count]
	}

	similar := make([]models.SimilarMovie, 0, len(neighbors))
	for _, n := range neighbors {
		similar = append(similar, models.SimilarMovie{
			MovieID:    h.catalog.MovieAt(n.Row).ID,
			Similarity: n.Sim,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"movie_id": movieID,
		"similar":  similar,
	})
}
