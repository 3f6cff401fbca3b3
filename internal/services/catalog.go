package services

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"

	"github.com/reelwise/reelwise/pkg/models"
)

// FeatureCatalog holds the immutable movie x feature incidence matrix and the
// bidirectional index mappings. It is built once and shared read-only; no
// method mutates it after Build returns.
type FeatureCatalog struct {
	movies   []models.Movie
	features []models.Feature

	rowByID  map[string]int
	colByKey map[models.FeatureKey]int

	// Sparse binary incidence in both orientations: rows[r] is the sorted
	// list of feature columns movie r carries, cols[c] the sorted list of
	// movie rows carrying feature c.
	rows [][]int
	cols [][]int
}

func (c *FeatureCatalog) MovieCount() int   { return len(c.movies) }
func (c *FeatureCatalog) FeatureCount() int { return len(c.features) }

func (c *FeatureCatalog) Movies() []models.Movie     { return c.movies }
func (c *FeatureCatalog) Features() []models.Feature { return c.features }

// Row returns the matrix row of a movie id.
func (c *FeatureCatalog) Row(movieID string) (int, bool) {
	r, ok := c.rowByID[movieID]
	return r, ok
}

// Column returns the matrix column of a (category, value) pair.
func (c *FeatureCatalog) Column(key models.FeatureKey) (int, bool) {
	col, ok := c.colByKey[key]
	return col, ok
}

func (c *FeatureCatalog) MovieAt(row int) models.Movie     { return c.movies[row] }
func (c *FeatureCatalog) FeatureAt(col int) models.Feature { return c.features[col] }

// RowFeatures returns the columns of the features movie row r carries.
func (c *FeatureCatalog) RowFeatures(row int) []int { return c.rows[row] }

// ColumnMovies returns the rows of the movies carrying feature column c.
func (c *FeatureCatalog) ColumnMovies(col int) []int { return c.cols[col] }

// Support is the number of movies carrying the feature.
func (c *FeatureCatalog) Support(col int) int { return len(c.cols[col]) }

// SupportCensus returns the support of every feature, column-aligned. Health
// reporting derives the masked-feature count and the support ceiling from it.
func (c *FeatureCatalog) SupportCensus() []int {
	census := make([]int, len(c.cols))
	for col, rows := range c.cols {
		census[col] = len(rows)
	}
	return census
}

type CatalogService struct {
	logger *logrus.Logger
}

func NewCatalogService(logger *logrus.Logger) *CatalogService {
	return &CatalogService{logger: logger}
}

// BuildCatalog constructs the incidence matrix from the authoritative movie
// list and the per-category metadata sources. Row order follows the first
// appearance of each movie id; column order is the (category, value) sort of
// the unique feature pairs, so rebuilding from the same inputs reproduces the
// same indices.
func (s *CatalogService) BuildCatalog(
	movieIDs []string,
	sources map[string][]models.MetadataRecord,
) (*FeatureCatalog, error) {
	if len(movieIDs) == 0 {
		return nil, &ConfigurationError{Reason: "authoritative movie list is empty"}
	}
	if len(sources) == 0 {
		return nil, &ConfigurationError{Reason: "no metadata sources configured"}
	}
	for category, records := range sources {
		if records == nil {
			return nil, &ConfigurationError{Reason: "metadata source " + category + " is absent"}
		}
	}

	cat := &FeatureCatalog{
		rowByID:  make(map[string]int, len(movieIDs)),
		colByKey: make(map[models.FeatureKey]int),
	}
	for _, id := range movieIDs {
		if _, dup := cat.rowByID[id]; dup {
			continue
		}
		cat.rowByID[id] = len(cat.movies)
		cat.movies = append(cat.movies, models.Movie{ID: id, Row: len(cat.movies)})
	}

	// First pass: collect the unique (category, value) pairs of records whose
	// movie is on the list. Records for unknown movies are dropped silently.
	type pair struct {
		row int
		key models.FeatureKey
	}
	var pairs []pair
	keySet := make(map[models.FeatureKey]struct{})
	dropped := 0
	for category, records := range sources {
		for _, rec := range records {
			row, ok := cat.rowByID[rec.MovieID]
			if !ok {
				dropped++
				continue
			}
			key := models.FeatureKey{
				Category: category,
				Value:    normalizeValue(rec.Value),
			}
			if key.Value == "" {
				continue
			}
			pairs = append(pairs, pair{row: row, key: key})
			keySet[key] = struct{}{}
		}
	}

	keys := make([]models.FeatureKey, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Category != keys[j].Category {
			return keys[i].Category < keys[j].Category
		}
		return keys[i].Value < keys[j].Value
	})

	cat.features = make([]models.Feature, len(keys))
	for col, key := range keys {
		cat.colByKey[key] = col
		cat.features[col] = models.Feature{ID: col, Category: key.Category, Value: key.Value}
	}

	// Second pass: fill both orientations. Duplicate (movie, feature) pairs
	// collapse to a single entry.
	rowSets := make([]map[int]struct{}, len(cat.movies))
	for i := range rowSets {
		rowSets[i] = make(map[int]struct{})
	}
	for _, p := range pairs {
		rowSets[p.row][cat.colByKey[p.key]] = struct{}{}
	}

	cat.rows = make([][]int, len(cat.movies))
	cat.cols = make([][]int, len(cat.features))
	for row, set := range rowSets {
		cat.rows[row] = make([]int, 0, len(set))
		for col := range set {
			cat.rows[row] = append(cat.rows[row], col)
		}
		sort.Ints(cat.rows[row])
		for _, col := range cat.rows[row] {
			cat.cols[col] = append(cat.cols[col], row)
		}
	}
	// Column lists come out sorted because rows are appended in order.

	s.logger.WithFields(logrus.Fields{
		"movies":          len(cat.movies),
		"features":        len(cat.features),
		"dropped_records": dropped,
	}).Info("Catalog built")

	return cat, nil
}

// NewCatalogFromArtifacts reconstructs a catalog from the persisted movie
// index, feature index and incidence entries. Movies and features must be
// ordered by their row and column indices, the way SaveCatalog wrote them.
func NewCatalogFromArtifacts(
	movies []models.Movie,
	features []models.Feature,
	entries []IncidenceEntry,
) (*FeatureCatalog, error) {
	if len(movies) == 0 {
		return nil, &ConfigurationError{Reason: "persisted movie index is empty"}
	}

	cat := &FeatureCatalog{
		movies:   movies,
		features: features,
		rowByID:  make(map[string]int, len(movies)),
		colByKey: make(map[models.FeatureKey]int, len(features)),
		rows:     make([][]int, len(movies)),
		cols:     make([][]int, len(features)),
	}
	for i, m := range movies {
		if m.Row != i {
			return nil, &ConfigurationError{Reason: "movie index rows are not contiguous"}
		}
		cat.rowByID[m.ID] = i
	}
	for i, f := range features {
		if f.ID != i {
			return nil, &ConfigurationError{Reason: "feature index columns are not contiguous"}
		}
		cat.colByKey[f.Key()] = i
	}
	for _, e := range entries {
		if e.Row < 0 || e.Row >= len(movies) || e.Col < 0 || e.Col >= len(features) {
			return nil, &ConfigurationError{Reason: "incidence entry out of range"}
		}
		cat.rows[e.Row] = append(cat.rows[e.Row], e.Col)
		cat.cols[e.Col] = append(cat.cols[e.Col], e.Row)
	}
	for _, cols := range cat.rows {
		sort.Ints(cols)
	}
	for _, rows := range cat.cols {
		sort.Ints(rows)
	}
	return cat, nil
}

// IncidenceEntry is one nonzero cell of the persisted incidence matrix.
type IncidenceEntry struct {
	Row int
	Col int
}

// IncidenceEntries lists the nonzero cells in row-major order, for the
// artifact store to persist.
func (c *FeatureCatalog) IncidenceEntries() []IncidenceEntry {
	var entries []IncidenceEntry
	for row, cols := range c.rows {
		for _, col := range cols {
			entries = append(entries, IncidenceEntry{Row: row, Col: col})
		}
	}
	return entries
}

// normalizeValue canonicalizes a scraped attribute value so that byte-level
// variants of the same string map to one feature column.
func normalizeValue(v string) string {
	return norm.NFC.String(strings.TrimSpace(v))
}
