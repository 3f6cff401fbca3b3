package models

// Movie is one row of the incidence matrix. The ID is the stable external
// identifier from the movie list; Row is its matrix row index.
type Movie struct {
	ID  string `json:"id" db:"movie_id"`
	Row int    `json:"row" db:"row_index"`
}

// FeatureKey is a (category, value) attribute pair, e.g. (genres, "Action").
type FeatureKey struct {
	Category string `json:"category"`
	Value    string `json:"value"`
}

// Feature is one column of the incidence matrix. ID equals the column index
// assigned at catalog build time.
type Feature struct {
	ID       int    `json:"id" db:"feature_id"`
	Category string `json:"category" db:"category"`
	Value    string `json:"value" db:"value"`
}

func (f Feature) Key() FeatureKey {
	return FeatureKey{Category: f.Category, Value: f.Value}
}

// MetadataRecord associates a movie with one attribute value. The category
// comes from the source the record was read from.
type MetadataRecord struct {
	MovieID string `json:"movie_id" db:"movie_id"`
	Value   string `json:"value" db:"value"`
}
