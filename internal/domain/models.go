package domain

import (
	"encoding/json"
	"errors"
)

// Location is a single geocoding result as returned by Nominatim.
// Values are treated as immutable once decoded.
type Location struct {
	PlaceID     int64             `json:"place_id"`
	Licence     string            `json:"licence,omitempty"`
	OSMType     string            `json:"osm_type,omitempty"`
	OSMID       int64             `json:"osm_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Category    string            `json:"category,omitempty"`
	Class       string            `json:"class,omitempty"`
	Type        string            `json:"type"`
	AddressType string            `json:"addresstype,omitempty"`
	PlaceRank   int               `json:"place_rank"`
	Importance  float64           `json:"importance"`
	Name        string            `json:"name,omitempty"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address,omitempty"`
	BoundingBox []string          `json:"boundingbox"`

	// Raw is the entry exactly as received
	Raw json.RawMessage `json:"-"`
}

// Label returns the text shown for the location in the dropdown and input.
func (l Location) Label() string {
	return l.DisplayName
}

// Kind returns the classification of the place. The "json" output format
// reports it as "class", "jsonv2" as "category".
func (l Location) Kind() string {
	if l.Category != "" {
		return l.Category
	}
	return l.Class
}

// Same reports whether two locations refer to the same place.
func (l Location) Same(other Location) bool {
	if l.PlaceID != 0 || other.PlaceID != 0 {
		return l.PlaceID == other.PlaceID
	}
	return l.DisplayName == other.DisplayName && l.Lat == other.Lat && l.Lon == other.Lon
}

type locationAlias Location

// UnmarshalJSON decodes a Location without validating it. Fields with
// unexpected types are left zero and the rest are kept; input that is not an
// object yields a zero Location carrying only Raw.
func (l *Location) UnmarshalJSON(data []byte) error {
	var alias locationAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return err
		}
	}
	*l = Location(alias)
	l.Raw = append(json.RawMessage(nil), data...)
	return nil
}
