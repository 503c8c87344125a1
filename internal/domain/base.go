package domain

import "time"

// RawRecord holds the untyped cells of one dataset row as read by a source
// adapter, before numeric parsing.
type RawRecord struct {
	Base      string `json:"Base"`
	Latitude  string `json:"Latitude"`
	Longitude string `json:"Longitude"`
	Readiness string `json:"Readiness"`

	// Line is the 1-based position of the row in the source, header included.
	Line int `json:"-"`
}

// Base is one row of the readiness table.
type Base struct {
	Name      string  `json:"name"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Readiness float64 `json:"readiness"`
	Region    Region  `json:"region,omitempty"`
}

// Table is the loaded, classified dataset. It is built once by the dataset
// loader and must not be modified afterwards.
type Table struct {
	Rows     []Base    `json:"rows"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

// NewTable classifies every row and stamps the table with the current time.
// The rows slice is owned by the returned table.
func NewTable(source string, rows []Base) *Table {
	for i := range rows {
		rows[i].Region = Classify(rows[i].Lat)
	}
	return &Table{
		Rows:     rows,
		Source:   source,
		LoadedAt: clock.Now(),
	}
}

// Len returns the number of rows, treating a nil table as empty.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Unclassified counts rows that fall outside every region.
func (t *Table) Unclassified() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, b := range t.Rows {
		if b.Region == RegionNone {
			n++
		}
	}
	return n
}
