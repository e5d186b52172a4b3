// search.go: result-set queries backing the live hike list and detail views
package datastore

import (
	"strings"
)

// obsCountSelect pairs each hike with its observation count via a correlated
// subquery, so the count is always computed against current state.
const obsCountSelect = "hikes.*, (SELECT COUNT(*) FROM observations o WHERE o.hike_id = hikes.id) AS obs_count"

// Date-ordered lists tie-break on id DESC so the most recent insert sorts
// first among equal dates. The name-ordered prefix search tie-breaks on
// id ASC. Both orders are deterministic regardless of storage order.
const (
	orderByDateDesc = "date DESC, id DESC"
	orderByNameAsc  = "name COLLATE NOCASE ASC, id ASC"
)

// AllHikesWithCounts returns every hike with its observation count,
// ordered by date descending.
func (ds *DataStore) AllHikesWithCounts() ([]HikeWithObsCount, error) {
	var hikes []HikeWithObsCount
	err := ds.DB.Model(&Hike{}).
		Select(obsCountSelect).
		Order(orderByDateDesc).
		Scan(&hikes).Error
	if err != nil {
		return nil, dbError(err, "all_hikes_with_counts")
	}
	return hikes, nil
}

// SearchHikesByNamePrefix returns the hikes whose name starts with prefix,
// case-insensitively, ordered by name ascending.
func (ds *DataStore) SearchHikesByNamePrefix(prefix string) ([]HikeWithObsCount, error) {
	var hikes []HikeWithObsCount
	err := ds.DB.Model(&Hike{}).
		Select(obsCountSelect).
		Where("name LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order(orderByNameAsc).
		Scan(&hikes).Error
	if err != nil {
		return nil, dbError(err, "search_hikes_by_name_prefix", "prefix", prefix)
	}
	return hikes, nil
}

// AdvancedSearchHikes returns the hikes matching the conjunction of the
// filter's supplied constraints, ordered by date descending. Nil constraints
// do not restrict the result set.
func (ds *DataStore) AdvancedSearchHikes(filter AdvancedFilter) ([]HikeWithObsCount, error) {
	query := ds.DB.Model(&Hike{}).Select(obsCountSelect)

	if filter.Name != nil {
		query = query.Where("name LIKE ? ESCAPE '\\'", escapeLike(*filter.Name)+"%")
	}
	if filter.Location != nil {
		query = query.Where("location LIKE ? ESCAPE '\\'", escapeLike(*filter.Location)+"%")
	}
	if filter.MinLen != nil {
		query = query.Where("length_km >= ?", *filter.MinLen)
	}
	if filter.MaxLen != nil {
		query = query.Where("length_km <= ?", *filter.MaxLen)
	}
	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}

	var hikes []HikeWithObsCount
	if err := query.Order(orderByDateDesc).Scan(&hikes).Error; err != nil {
		return nil, dbError(err, "advanced_search_hikes")
	}
	return hikes, nil
}

// ObservationsForHike returns the observations of one hike, most recent
// first.
func (ds *DataStore) ObservationsForHike(hikeID uint) ([]Observation, error) {
	var observations []Observation
	err := ds.DB.
		Where("hike_id = ?", hikeID).
		Order("observed_at DESC, id DESC").
		Find(&observations).Error
	if err != nil {
		return nil, dbError(err, "observations_for_hike", "hike_id", hikeID)
	}
	return observations, nil
}

// escapeLike escapes the LIKE wildcards in user input so a prefix search
// matches them literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
