package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelwise/reelwise/internal/services"
	"github.com/reelwise/reelwise/pkg/models"
)

func newStore(t *testing.T) (*ArtifactStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewArtifactStore(mockDB, logger), mockDB
}

func TestArtifactStore_LoadMovieList(t *testing.T) {
	store, mockDB := newStore(t)

	t.Run("returns ids in list order", func(t *testing.T) {
		mockDB.ExpectQuery("SELECT movie_id FROM movies").
			WillReturnRows(pgxmock.NewRows([]string{"movie_id"}).
				AddRow("10").AddRow("20").AddRow("30"))

		ids, err := store.LoadMovieList(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"10", "20", "30"}, ids)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("propagates query errors", func(t *testing.T) {
		mockDB.ExpectQuery("SELECT movie_id FROM movies").
			WillReturnError(errors.New("connection refused"))

		_, err := store.LoadMovieList(context.Background())
		assert.Error(t, err)
	})
}

func TestArtifactStore_LoadMetadata(t *testing.T) {
	store, mockDB := newStore(t)

	mockDB.ExpectQuery("SELECT category, movie_id, value FROM movie_metadata").
		WillReturnRows(pgxmock.NewRows([]string{"category", "movie_id", "value"}).
			AddRow("directors", "1", "X").
			AddRow("genres", "1", "Action").
			AddRow("genres", "2", "Drama"))

	sources, err := store.LoadMetadata(context.Background())
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, []models.MetadataRecord{{MovieID: "1", Value: "X"}}, sources["directors"])
	assert.Len(t, sources["genres"], 2)
	assert.NoError(t, mockDB.ExpectationsWereMet())
}

func TestArtifactStore_CatalogRoundTrip(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	cat, err := services.NewCatalogService(logger).BuildCatalog(
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

	t.Run("save clears tables then writes every row", func(t *testing.T) {
		store, mockDB := newStore(t)

		mockDB.ExpectExec("DELETE FROM movie_features").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mockDB.ExpectExec("DELETE FROM feature_index").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mockDB.ExpectExec("DELETE FROM movie_index").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		for _, m := range cat.Movies() {
			mockDB.ExpectExec("INSERT INTO movie_index").
				WithArgs(m.ID, m.Row).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		for _, f := range cat.Features() {
			mockDB.ExpectExec("INSERT INTO feature_index").
				WithArgs(f.ID, f.Category, f.Value).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		for _, e := range cat.IncidenceEntries() {
			mockDB.ExpectExec("INSERT INTO movie_features").
				WithArgs(e.Row, e.Col).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}

		require.NoError(t, store.SaveCatalog(context.Background(), cat))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("load rebuilds the same incidence structure", func(t *testing.T) {
		store, mockDB := newStore(t)

		movieRows := pgxmock.NewRows([]string{"movie_id", "row_index"})
		for _, m := range cat.Movies() {
			movieRows.AddRow(m.ID, m.Row)
		}
		featureRows := pgxmock.NewRows([]string{"feature_id", "category", "value"})
		for _, f := range cat.Features() {
			featureRows.AddRow(f.ID, f.Category, f.Value)
		}
		entryRows := pgxmock.NewRows([]string{"row_index", "col_index"})
		for _, e := range cat.IncidenceEntries() {
			entryRows.AddRow(e.Row, e.Col)
		}

		mockDB.ExpectQuery("SELECT movie_id, row_index FROM movie_index").
			WillReturnRows(movieRows)
		mockDB.ExpectQuery("SELECT feature_id, category, value FROM feature_index").
			WillReturnRows(featureRows)
		mockDB.ExpectQuery("SELECT row_index, col_index FROM movie_features").
			WillReturnRows(entryRows)

		loaded, err := store.LoadCatalog(context.Background())
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, cat.MovieCount(), loaded.MovieCount())
		assert.Equal(t, cat.FeatureCount(), loaded.FeatureCount())
		for row := 0; row < cat.MovieCount(); row++ {
			assert.ElementsMatch(t, cat.RowFeatures(row), loaded.RowFeatures(row))
		}
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("empty movie index means no artifact", func(t *testing.T) {
		store, mockDB := newStore(t)

		mockDB.ExpectQuery("SELECT movie_id, row_index FROM movie_index").
			WillReturnRows(pgxmock.NewRows([]string{"movie_id", "row_index"}))

		loaded, err := store.LoadCatalog(context.Background())
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})
}

func TestArtifactStore_SimilarityRoundTrip(t *testing.T) {
	entries := []services.SimilarityEntry{
		{Row: 0, Col: 0, Sim: 1.0},
		{Row: 0, Col: 1, Sim: 0.5},
		{Row: 1, Col: 0, Sim: 0.5},
		{Row: 1, Col: 1, Sim: 1.0},
	}
	sim, err := services.NewSimilarityFromArtifacts(2, entries, false)
	require.NoError(t, err)

	t.Run("save writes every cell including the diagonal", func(t *testing.T) {
		store, mockDB := newStore(t)

		mockDB.ExpectExec("DELETE FROM movie_similarity").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		for _, e := range sim.Entries() {
			mockDB.ExpectExec("INSERT INTO movie_similarity").
				WithArgs(e.Row, e.Col, e.Sim).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}

		require.NoError(t, store.SaveSimilarity(context.Background(), sim))
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("load reproduces the matrix", func(t *testing.T) {
		store, mockDB := newStore(t)

		rows := pgxmock.NewRows([]string{"row_index", "col_index", "similarity"})
		for _, e := range entries {
			rows.AddRow(e.Row, e.Col, e.Sim)
		}
		mockDB.ExpectQuery("SELECT row_index, col_index, similarity FROM movie_similarity").
			WillReturnRows(rows)

		loaded, err := store.LoadSimilarity(context.Background(), 2, false)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, 0.5, loaded.Sim(0, 1))
		assert.Equal(t, 1.0, loaded.Diag(1))
	})

	t.Run("no stored entries means no artifact", func(t *testing.T) {
		store, mockDB := newStore(t)

		mockDB.ExpectQuery("SELECT row_index, col_index, similarity FROM movie_similarity").
			WillReturnRows(pgxmock.NewRows([]string{"row_index", "col_index", "similarity"}))

		loaded, err := store.LoadSimilarity(context.Background(), 2, false)
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})
}

func TestArtifactStore_UserRatings(t *testing.T) {
	t.Run("load returns the user's map", func(t *testing.T) {
		store, mockDB := newStore(t)

		mockDB.ExpectQuery("SELECT movie_id, rating FROM user_ratings").
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows([]string{"movie_id", "rating"}).
				AddRow("1", 5.0).AddRow("2", 3.5))

		ratings, err := store.LoadUserRatings(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"1": 5.0, "2": 3.5}, ratings)
	})

	t.Run("save predicted replaces the previous table", func(t *testing.T) {
		store, mockDB := newStore(t)

		mockDB.ExpectExec("DELETE FROM predicted_ratings").
			WithArgs("alice").
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		mockDB.ExpectExec("INSERT INTO predicted_ratings").
			WithArgs("alice", "9", 4.25).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := store.SavePredictedRatings(context.Background(), "alice",
			map[string]float64{"9": 4.25})
		require.NoError(t, err)
		assert.NoError(t, mockDB.ExpectationsWereMet())
	})

	t.Run("load predicted mirrors the stored rows", func(t *testing.T) {
		store, mockDB := newStore(t)

		mockDB.ExpectQuery("SELECT movie_id, rating FROM predicted_ratings").
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows([]string{"movie_id", "rating"}).
				AddRow("9", 4.25))

		ratings, err := store.LoadPredictedRatings(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"9": 4.25}, ratings)
	})
}
