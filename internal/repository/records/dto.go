package records

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/glowpages/spaseek/internal/domain/geo"
	"github.com/glowpages/spaseek/internal/domain/record"
)

// System hash fields. Numeric facets are stored as plain unprefixed
// fields so HINCRBY can bump them in place (upvotes).
const (
	fieldKind          = "__kind"
	fieldName          = "__name"
	fieldLocation      = "__location"
	fieldNeighborhood  = "__neighborhood"
	fieldTitle         = "__title"
	fieldExcerpt       = "__excerpt"
	fieldTreatments    = "__treatments"
	fieldPractitioners = "__practitioners"
	fieldTags          = "__tags"
	fieldLat           = "__lat"
	fieldLng           = "__lng"
	fieldCreatedAt     = "__created_at"
	flagPrefix         = "__flag_"
)

// treatmentDTO is the JSON shape of one treatment inside the hash.
type treatmentDTO struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price,omitempty"`
}

// buildHashFields converts a domain Record into a flat map[string]string for HSET.
func buildHashFields(rec *record.Record) (map[string]string, error) {
	m := make(map[string]string, 8+len(rec.Numerics())+len(rec.Flags()))
	m[fieldKind] = string(rec.Kind())
	m[fieldCreatedAt] = strconv.FormatInt(rec.CreatedAt(), 10)

	putText := func(field, v string) {
		if v != "" {
			m[field] = v
		}
	}
	putText(fieldName, rec.Name())
	putText(fieldLocation, rec.Location())
	putText(fieldNeighborhood, rec.Neighborhood())
	putText(fieldTitle, rec.Title())
	putText(fieldExcerpt, rec.Excerpt())

	if len(rec.Treatments()) > 0 {
		dtos := make([]treatmentDTO, len(rec.Treatments()))
		for i, t := range rec.Treatments() {
			dtos[i] = treatmentDTO{Name: t.Name, Price: t.Price}
		}
		data, err := json.Marshal(dtos)
		if err != nil {
			return nil, err
		}
		m[fieldTreatments] = string(data)
	}
	if err := putJSONList(m, fieldPractitioners, rec.Practitioners()); err != nil {
		return nil, err
	}
	if err := putJSONList(m, fieldTags, rec.Tags()); err != nil {
		return nil, err
	}

	if c := rec.Coordinate(); c != nil {
		m[fieldLat] = strconv.FormatFloat(c.Lat(), 'f', -1, 64)
		m[fieldLng] = strconv.FormatFloat(c.Lng(), 'f', -1, 64)
	}

	for k, v := range rec.Numerics() {
		m[k] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	for k, v := range rec.Flags() {
		if v {
			m[flagPrefix+k] = "1"
		} else {
			m[flagPrefix+k] = "0"
		}
	}
	return m, nil
}

// parseHashFields converts a flat hash map back into a domain Record.
// Unknown non-numeric fields are skipped so schema additions stay
// backward compatible.
func parseHashFields(id string, m map[string]string) record.Record {
	var (
		kind                                        record.Kind
		name, location, neighborhood, title, exc    string
		treatments                                  []record.Treatment
		practitioners, tags                         []string
		lat, lng                                    *float64
		createdAt                                   int64
	)
	numerics := make(map[string]float64)
	flags := make(map[string]bool)

	for k, v := range m {
		if strings.HasPrefix(k, flagPrefix) {
			flags[strings.TrimPrefix(k, flagPrefix)] = v == "1"
			continue
		}
		switch k {
		case fieldKind:
			kind = record.Kind(v)
		case fieldName:
			name = v
		case fieldLocation:
			location = v
		case fieldNeighborhood:
			neighborhood = v
		case fieldTitle:
			title = v
		case fieldExcerpt:
			exc = v
		case fieldTreatments:
			treatments = parseTreatments(v)
		case fieldPractitioners:
			practitioners = parseStringList(v)
		case fieldTags:
			tags = parseStringList(v)
		case fieldLat:
			lat = parseFloatPtr(v)
		case fieldLng:
			lng = parseFloatPtr(v)
		case fieldCreatedAt:
			createdAt, _ = strconv.ParseInt(v, 10, 64)
		default:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				numerics[k] = f
			}
		}
	}

	var coord *geo.Coordinate
	if lat != nil && lng != nil {
		c := geo.NewCoordinate(*lat, *lng)
		coord = &c
	}

	return record.Reconstruct(
		id, kind,
		name, location, neighborhood,
		treatments, practitioners,
		title, exc,
		tags,
		numerics, flags,
		coord, createdAt,
	)
}

func putJSONList(m map[string]string, field string, list []string) error {
	if len(list) == 0 {
		return nil
	}
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	m[field] = string(data)
	return nil
}

func parseTreatments(v string) []record.Treatment {
	var dtos []treatmentDTO
	if err := json.Unmarshal([]byte(v), &dtos); err != nil {
		return nil
	}
	out := make([]record.Treatment, len(dtos))
	for i, d := range dtos {
		out[i] = record.Treatment{Name: d.Name, Price: d.Price}
	}
	return out
}

func parseStringList(v string) []string {
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return nil
	}
	return out
}

func parseFloatPtr(v string) *float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
