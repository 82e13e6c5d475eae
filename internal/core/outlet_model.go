package core

import "time"

// Outlet is a row in the read-only outlets table (spec §6).
type Outlet struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	State             string    `json:"state"`
	PostalCode        string    `json:"postal_code"`
	MapsURL           string    `json:"maps_url"`
	LocationCategory  string    `json:"location_category"`
	Source            string    `json:"source"`
	FetchedAt         time.Time `json:"fetched_at"`
}

// OutletResultKind identifies the shape of an Outlet Gate answer.
type OutletResultKind string

const (
	OutletKindList   OutletResultKind = "list"
	OutletKindCount  OutletResultKind = "count"
	OutletKindSingle OutletResultKind = "single"
	OutletKindEmpty  OutletResultKind = "empty"
	OutletKindError  OutletResultKind = "error"
)

// OutletAnswer is the structured result of OutletGate.Answer.
type OutletAnswer struct {
	Kind         OutletResultKind `json:"kind"`
	Rows         []Outlet         `json:"rows,omitempty"`
	Count        int              `json:"count"`
	FormattedText string          `json:"formatted_text"`
	SQL          string           `json:"sql"`
}
