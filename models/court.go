package models

import "time"

// TennisCourt is one venue from the court directory the client browses
// when creating a matching. Records are seeded with a default set and
// kept in the snapshot afterwards.
type TennisCourt struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	Lat            float64   `json:"lat"`
	Lng            float64   `json:"lng"`
	Region         string    `json:"region"`
	District       string    `json:"district"`
	CourtCount     int       `json:"courtCount"`
	SurfaceType    string    `json:"surfaceType"`
	HasLighting    bool      `json:"hasLighting"`
	HasParking     bool      `json:"hasParking"`
	HasShower      bool      `json:"hasShower"`
	HasLocker      bool      `json:"hasLocker"`
	PricePerHour   int       `json:"pricePerHour"`
	OperatingHours string    `json:"operatingHours"`
	PhoneNumber    string    `json:"phoneNumber"`
	Description    string    `json:"description"`
	Facilities     []string  `json:"facilities"`
	Images         []string  `json:"images"`
	Rating         float64   `json:"rating"`
	ReviewCount    int       `json:"reviewCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Clone returns a deep copy safe to hand outside the store lock.
func (t *TennisCourt) Clone() *TennisCourt {
	c := *t
	c.Facilities = append([]string(nil), t.Facilities...)
	c.Images = append([]string(nil), t.Images...)
	return &c
}
