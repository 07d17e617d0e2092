package model

import "time"

// SavedPlant is one entry in a user's personal plant collection. The
// botanical fields are copied from the Trefle catalog record at save
// time (denormalized; the catalog remains the source of truth), the
// rest is user-entered growing data. Photos, growth stages and care
// reminders are stored as JSON columns since they are only ever read
// and written as part of their parent row.
//
// A composite unique key on (subject_id, trefle_id) guarantees at most
// one collection entry per user and catalog record, so two concurrent
// saves cannot both succeed.
type SavedPlant struct {
	ID             uint64 // saved_plants.id
	SubjectID      string // saved_plants.subject_id (owning user)
	TrefleID       int64  // saved_plants.trefle_id (external catalog id)
	Slug           string // saved_plants.slug
	ScientificName string // saved_plants.scientific_name
	CommonName     string // saved_plants.common_name
	Family         string // saved_plants.family
	Genus          string // saved_plants.genus
	ImageURL       string // saved_plants.image_url

	// User-entered growing data.
	Nickname    string     // saved_plants.nickname
	Notes       string     // saved_plants.notes
	Location    string     // saved_plants.location (where the user grows it)
	PlantedDate *time.Time // saved_plants.planted_date (nullable)
	HarvestDate *time.Time // saved_plants.harvest_date (nullable)

	Photos        []Photo        // saved_plants.photos (JSON column)
	GrowthStages  []GrowthStage  // saved_plants.growth_stages (JSON column)
	CareReminders []CareReminder // saved_plants.care_reminders (JSON column)

	IsActive  bool      // saved_plants.is_active
	CreatedAt time.Time // saved_plants.created_at
	UpdatedAt time.Time // saved_plants.updated_at
}

// Photo is a progress photo attached to a saved plant.
type Photo struct {
	URL       string    `json:"url"`
	Caption   string    `json:"caption,omitempty"`
	DateTaken time.Time `json:"date_taken"`
}

// GrowthStage records one step of a plant's progress, e.g. "seed",
// "sprout", "growing", "flowering", "harvesting".
type GrowthStage struct {
	Stage string    `json:"stage"`
	Date  time.Time `json:"date"`
	Notes string    `json:"notes,omitempty"`
	Photo string    `json:"photo,omitempty"`
}

// CareReminder schedules a recurring care task such as watering or
// fertilizing.
type CareReminder struct {
	Type      string     `json:"type"`      // water | fertilize | prune | harvest
	Frequency string     `json:"frequency"` // daily | weekly | monthly
	LastDone  *time.Time `json:"last_done,omitempty"`
	NextDue   *time.Time `json:"next_due,omitempty"`
}

// FavoritePlant is a bookmarked catalog record. Unlike SavedPlant it
// carries no user-entered data; it only pins the botanical identity.
// (subject_id, trefle_id) is unique at the storage layer.
type FavoritePlant struct {
	ID             uint64    // favorite_plants.id
	SubjectID      string    // favorite_plants.subject_id
	TrefleID       int64     // favorite_plants.trefle_id
	Slug           string    // favorite_plants.slug
	ScientificName string    // favorite_plants.scientific_name
	CommonName     string    // favorite_plants.common_name
	Family         string    // favorite_plants.family
	Genus          string    // favorite_plants.genus
	CreatedAt      time.Time // favorite_plants.created_at
}

// SearchRecord is one append-only entry of a user's plant search
// history. Writing it is best effort; a failed insert never fails the
// search request that produced it.
type SearchRecord struct {
	ID          uint64    // search_history.id
	SubjectID   string    // search_history.subject_id
	Query       string    // search_history.query
	ResultCount int       // search_history.result_count
	CreatedAt   time.Time // search_history.created_at
}
