package database

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// ─── Models ──────────────────────────────────────────────────────────────────

type Search struct {
	ID            string    `json:"id"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureDate string    `json:"departure_date"`
	ReturnDate    string    `json:"return_date"`
	TripType      string    `json:"trip_type"`
	Adults        int       `json:"adults"`
	Children      int       `json:"children"`
	TravelClass   string    `json:"travel_class"`
	Currency      string    `json:"currency"`
	ResultCount   int       `json:"result_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type Itinerary struct {
	ID           string    `json:"id"`
	SearchID     string    `json:"search_id,omitempty"`
	Name         string    `json:"name"`
	OfferJSON    string    `json:"offer_json"`
	PDFData      []byte    `json:"-"`
	TravelerName string    `json:"traveler_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repository keeps the search log and saved itineraries with their PDFs.
type Repository interface {
	SaveSearch(s *Search) error
	SaveItinerary(i *Itinerary) error
	GetItinerary(id string) (*Itinerary, error)
}

// ─── Postgres ─────────────────────────────────────────────────────────────────

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) SaveSearch(s *Search) error {
	_, err := p.db.Exec(`
		INSERT INTO searches (id, origin, destination, departure_date, return_date, trip_type,
			adults, children, travel_class, currency, result_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.ID, s.Origin, s.Destination, s.DepartureDate, s.ReturnDate, s.TripType,
		s.Adults, s.Children, s.TravelClass, s.Currency, s.ResultCount)
	return err
}

func (p *Postgres) SaveItinerary(i *Itinerary) error {
	var searchID any
	if i.SearchID != "" {
		searchID = i.SearchID
	}
	_, err := p.db.Exec(`
		INSERT INTO saved_itineraries (id, search_id, name, offer_json, pdf_data, traveler_name)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		i.ID, searchID, i.Name, i.OfferJSON, i.PDFData, i.TravelerName)
	return err
}

func (p *Postgres) GetItinerary(id string) (*Itinerary, error) {
	i := &Itinerary{}
	var searchID, traveler sql.NullString
	err := p.db.QueryRow(`
		SELECT id, search_id, name, offer_json, pdf_data, traveler_name, created_at
		FROM saved_itineraries WHERE id = $1`, id).
		Scan(&i.ID, &searchID, &i.Name, &i.OfferJSON, &i.PDFData, &traveler, &i.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	i.SearchID = searchID.String
	i.TravelerName = traveler.String
	return i, nil
}

// ─── Memory ───────────────────────────────────────────────────────────────────

// Memory is the Repository used when no database is configured.
type Memory struct {
	mu          sync.RWMutex
	searches    map[string]Search
	itineraries map[string]Itinerary
	now         func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		searches:    make(map[string]Search),
		itineraries: make(map[string]Itinerary),
		now:         time.Now,
	}
}

func (m *Memory) SaveSearch(s *Search) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now().UTC()
	}
	m.searches[c.ID] = c
	return nil
}

func (m *Memory) SaveItinerary(i *Itinerary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *i
	c.PDFData = append([]byte(nil), i.PDFData...)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now().UTC()
	}
	m.itineraries[c.ID] = c
	return nil
}

func (m *Memory) GetItinerary(id string) (*Itinerary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.itineraries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &i, nil
}

// SearchCount reports how many searches have been logged.
func (m *Memory) SearchCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.searches)
}
