// Package storage persists and loads the offline-built artifacts the serving
// process depends on: the movie and feature indices, the incidence and
// similarity matrices, raw metadata, and the per-user rating tables.
package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	"github.com/reelwise/reelwise/internal/services"
	"github.com/reelwise/reelwise/pkg/models"
)

// Querier is the slice of pgxpool.Pool the store uses; pgxmock implements it
// in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type ArtifactStore struct {
	db     Querier
	logger *logrus.Logger
}

func NewArtifactStore(db Querier, logger *logrus.Logger) *ArtifactStore {
	return &ArtifactStore{db: db, logger: logger}
}

// LoadMovieList returns the authoritative movie ids in list order.
func (s *ArtifactStore) LoadMovieList(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT movie_id FROM movies ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load movie list: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan movie id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LoadMetadata returns the raw (movie, value) records grouped by category.
func (s *ArtifactStore) LoadMetadata(ctx context.Context) (map[string][]models.MetadataRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT category, movie_id, value FROM movie_metadata ORDER BY category, movie_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	defer rows.Close()

	sources := make(map[string][]models.MetadataRecord)
	for rows.Next() {
		var category string
		var rec models.MetadataRecord
		if err := rows.Scan(&category, &rec.MovieID, &rec.Value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata record: %w", err)
		}
		sources[category] = append(sources[category], rec)
	}
	return sources, rows.Err()
}

// LoadCatalog reconstructs the catalog from the persisted index and incidence
// tables. It returns nil without error when no artifact has been written yet,
// in which case the caller rebuilds from raw metadata.
func (s *ArtifactStore) LoadCatalog(ctx context.Context) (*services.FeatureCatalog, error) {
	movieRows, err := s.db.Query(ctx, `SELECT movie_id, row_index FROM movie_index ORDER BY row_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to load movie index: %w", err)
	}
	defer movieRows.Close()

	var movies []models.Movie
	for movieRows.Next() {
		var m models.Movie
		if err := movieRows.Scan(&m.ID, &m.Row); err != nil {
			return nil, fmt.Errorf("failed to scan movie index row: %w", err)
		}
		movies = append(movies, m)
	}
	if err := movieRows.Err(); err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, nil
	}

	featureRows, err := s.db.Query(ctx,
		`SELECT feature_id, category, value FROM feature_index ORDER BY feature_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load feature index: %w", err)
	}
	defer featureRows.Close()

	var features []models.Feature
	for featureRows.Next() {
		var f models.Feature
		if err := featureRows.Scan(&f.ID, &f.Category, &f.Value); err != nil {
			return nil, fmt.Errorf("failed to scan feature index row: %w", err)
		}
		features = append(features, f)
	}
	if err := featureRows.Err(); err != nil {
		return nil, err
	}

	entryRows, err := s.db.Query(ctx,
		`SELECT row_index, col_index FROM movie_features ORDER BY row_index, col_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to load incidence entries: %w", err)
	}
	defer entryRows.Close()

	var entries []services.IncidenceEntry
	for entryRows.Next() {
		var e services.IncidenceEntry
		if err := entryRows.Scan(&e.Row, &e.Col); err != nil {
			return nil, fmt.Errorf("failed to scan incidence entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := entryRows.Err(); err != nil {
		return nil, err
	}

	return services.NewCatalogFromArtifacts(movies, features, entries)
}

// SaveCatalog replaces the persisted catalog artifact.
func (s *ArtifactStore) SaveCatalog(ctx context.Context, cat *services.FeatureCatalog) error {
	for _, table := range []string{"movie_features", "feature_index", "movie_index"} {
		if _, err := s.db.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	for _, m := range cat.Movies() {
		if _, err := s.db.Exec(ctx,
			`INSERT INTO movie_index (movie_id, row_index) VALUES ($1, $2)`, m.ID, m.Row); err != nil {
			return fmt.Errorf("failed to insert movie index row: %w", err)
		}
	}
	for _, f := range cat.Features() {
		if _, err := s.db.Exec(ctx,
			`INSERT INTO feature_index (feature_id, category, value) VALUES ($1, $2, $3)`,
			f.ID, f.Category, f.Value); err != nil {
			return fmt.Errorf("failed to insert feature index row: %w", err)
		}
	}
	for _, e := range cat.IncidenceEntries() {
		if _, err := s.db.Exec(ctx,
			`INSERT INTO movie_features (row_index, col_index) VALUES ($1, $2)`, e.Row, e.Col); err != nil {
			return fmt.Errorf("failed to insert incidence entry: %w", err)
		}
	}
	s.logger.WithFields(logrus.Fields{
		"movies":   cat.MovieCount(),
		"features": cat.FeatureCount(),
	}).Info("Catalog artifact saved")
	return nil
}

// LoadSimilarity reconstructs the similarity artifact. Returns nil without
// error when none has been written.
func (s *ArtifactStore) LoadSimilarity(ctx context.Context, dim int, capped bool) (*services.SimilarityMatrix, error) {
	rows, err := s.db.Query(ctx,
		`SELECT row_index, col_index, similarity FROM movie_similarity ORDER BY row_index, col_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to load similarity entries: %w", err)
	}
	defer rows.Close()

	var entries []services.SimilarityEntry
	for rows.Next() {
		var e services.SimilarityEntry
		if err := rows.Scan(&e.Row, &e.Col, &e.Sim); err != nil {
			return nil, fmt.Errorf("failed to scan similarity entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return services.NewSimilarityFromArtifacts(dim, entries, capped)
}

// SaveSimilarity replaces the persisted similarity artifact.
func (s *ArtifactStore) SaveSimilarity(ctx context.Context, sim *services.SimilarityMatrix) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM movie_similarity"); err != nil {
		return fmt.Errorf("failed to clear movie_similarity: %w", err)
	}
	for _, e := range sim.Entries() {
		if _, err := s.db.Exec(ctx,
			`INSERT INTO movie_similarity (row_index, col_index, similarity) VALUES ($1, $2, $3)`,
			e.Row, e.Col, e.Sim); err != nil {
			return fmt.Errorf("failed to insert similarity entry: %w", err)
		}
	}
	return nil
}

// LoadUserRatings returns the user's stored real ratings.
func (s *ArtifactStore) LoadUserRatings(ctx context.Context, userID string) (map[string]float64, error) {
	rows, err := s.db.Query(ctx,
		`SELECT movie_id, rating FROM user_ratings WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[string]float64)
	for rows.Next() {
		var movieID string
		var value float64
		if err := rows.Scan(&movieID, &value); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings[movieID] = value
	}
	return ratings, rows.Err()
}

// SavePredictedRatings replaces the user's predicted-rating table. Real
// ratings live in user_ratings and are never touched here, so a predicted
// value can never shadow a real one at the storage layer either.
func (s *ArtifactStore) SavePredictedRatings(ctx context.Context, userID string, ratings map[string]float64) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM predicted_ratings WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear predicted ratings: %w", err)
	}
	for movieID, value := range ratings {
		if _, err := s.db.Exec(ctx,
			`INSERT INTO predicted_ratings (user_id, movie_id, rating) VALUES ($1, $2, $3)`,
			userID, movieID, value); err != nil {
			return fmt.Errorf("failed to insert predicted rating: %w", err)
		}
	}
	return nil
}

// LoadPredictedRatings returns the user's persisted predicted ratings.
func (s *ArtifactStore) LoadPredictedRatings(ctx context.Context, userID string) (map[string]float64, error) {
	rows, err := s.db.Query(ctx,
		`SELECT movie_id, rating FROM predicted_ratings WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load predicted ratings: %w", err)
	}
	defer rows.Close()

	ratings := make(map[string]float64)
	for rows.Next() {
		var movieID string
		var value float64
		if err := rows.Scan(&movieID, &value); err != nil {
			return nil, fmt.Errorf("failed to scan predicted rating: %w", err)
		}
		ratings[movieID] = value
	}
	return ratings, rows.Err()
}
