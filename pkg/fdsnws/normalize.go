package fdsnws

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mohammed-shakir/fdsnws-client/internal/xmltree"
)

// ToArray normalizes a decoded XML node that may hold one value or a list:
// nil gives an empty list, a list is returned as is, anything else is
// wrapped in a one-element list.
func ToArray(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{}
	case []any:
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out
	default:
		return []any{v}
	}
}

// StationFromRecord maps one SC3ML station element to a Station.
func StationFromRecord(raw map[string]any) (Station, error) {
	r := record{raw: raw, path: "station"}
	st := Station{
		Code:        r.str(xmltree.AttrPrefix + "code"),
		PublicID:    r.str(xmltree.AttrPrefix + "publicID"),
		Description: r.str("description"),
		Latitude:    r.num("latitude"),
		Longitude:   r.num("longitude"),
		Elevation:   r.num("elevation"),
		Location: StationLocation{
			Name:    r.str("place"),
			Country: r.str("country"),
		},
		Remark:      r.blob("remark"),
		Restricted:  r.flag("restricted"),
		Shared:      r.flag("shared"),
		StartDate:   r.date("start"),
		EndDate:     r.optDate("end"),
		Affiliation: r.str("affiliation"),
	}
	st.Active = st.EndDate == nil
	if r.err != nil {
		return Station{}, r.err
	}
	return st, nil
}

// NetworkFromRecord maps one SC3ML network element, stations included.
func NetworkFromRecord(raw map[string]any) (Network, error) {
	r := record{raw: raw, path: "network"}
	n := Network{
		Code:         r.str(xmltree.AttrPrefix + "code"),
		PublicID:     r.str(xmltree.AttrPrefix + "publicID"),
		StartDate:    r.date("start"),
		EndDate:      r.optDate("end"),
		Description:  r.str("description"),
		Institutions: r.str("institutions"),
		Region:       r.str("region"),
		Type:         r.str("type"),
		NetworkClass: r.str("netClass"),
		Restricted:   r.flag("restricted"),
		Shared:       r.flag("shared"),
	}
	n.Active = n.EndDate == nil
	if r.err != nil {
		return Network{}, r.err
	}

	stations, err := mapRecords(raw["station"], "network.station", StationFromRecord)
	if err != nil {
		return Network{}, err
	}
	n.Stations = stations
	return n, nil
}

// StationQueryParams converts the flat StationQuery into wire parameters.
// nodata=404 and format=sc3ml are always present.
func StationQueryParams(q StationQuery) Params {
	p := Params{
		{Key: "nodata", Value: "404"},
		{Key: "format", Value: "sc3ml"},
	}
	if q.NetworkCode != "" {
		p.Set("net", q.NetworkCode)
	}
	if q.ChannelCode != "" {
		p.Set("cha", q.ChannelCode)
	}
	if q.StationCode != "" {
		p.Set("sta", q.StationCode)
	}
	if q.LocationCode != "" {
		p.Set("loc", q.LocationCode)
	}
	if q.Level != nil {
		level := *q.Level
		if level == "" {
			level = "response"
		}
		p.Set("level", level)
	}
	return p
}

// inventory walks seiscomp.Inventory in a decoded SC3ML document.
func inventory(doc any) (map[string]any, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, malformed("", fmt.Errorf("document is %T, want element", doc))
	}
	sc, ok := root["seiscomp"].(map[string]any)
	if !ok {
		return nil, malformed("seiscomp", nil)
	}
	v, ok := sc["Inventory"]
	if !ok {
		return nil, malformed("seiscomp.Inventory", nil)
	}
	switch inv := v.(type) {
	case map[string]any:
		return inv, nil
	case string:
		// <Inventory/> with no networks
		if strings.TrimSpace(inv) == "" {
			return map[string]any{}, nil
		}
	}
	return nil, malformed("seiscomp.Inventory", fmt.Errorf("unexpected %T", v))
}

// stationsFromDocument returns the stations of every network in doc.
func stationsFromDocument(doc any) ([]Station, error) {
	inv, err := inventory(doc)
	if err != nil {
		return nil, err
	}
	out := []Station{}
	for i, n := range ToArray(inv["network"]) {
		net, ok := n.(map[string]any)
		if !ok {
			return nil, malformed(fmt.Sprintf("seiscomp.Inventory.network[%d]", i), fmt.Errorf("unexpected %T", n))
		}
		path := fmt.Sprintf("seiscomp.Inventory.network[%d].station", i)
		stations, err := mapRecords(net["station"], path, StationFromRecord)
		if err != nil {
			return nil, err
		}
		out = append(out, stations...)
	}
	return out, nil
}

// networksFromDocument returns nil when the inventory holds no network.
func networksFromDocument(doc any) ([]Network, error) {
	inv, err := inventory(doc)
	if err != nil {
		return nil, err
	}
	if inv["network"] == nil {
		return nil, nil
	}
	return mapRecords(inv["network"], "seiscomp.Inventory.network", NetworkFromRecord)
}

func mapRecords[T any](node any, path string, fn func(map[string]any) (T, error)) ([]T, error) {
	items := ToArray(node)
	out := make([]T, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, malformed(fmt.Sprintf("%s[%d]", path, i), fmt.Errorf("unexpected %T", it))
		}
		v, err := fn(m)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", path, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// record reads typed fields from a decoded element and keeps the first
// conversion error.
type record struct {
	raw  map[string]any
	path string
	err  error
}

func (r *record) fail(key string, err error) {
	if r.err == nil {
		r.err = malformed(r.path+"."+key, err)
	}
}

func (r *record) str(key string) string {
	switch v := r.raw[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if s, ok := v[xmltree.TextKey].(string); ok {
			return s
		}
	}
	r.fail(key, fmt.Errorf("unexpected %T", r.raw[key]))
	return ""
}

// blob reads either plain text or an SC3ML Blob with a content child.
func (r *record) blob(key string) string {
	if m, ok := r.raw[key].(map[string]any); ok {
		if s, ok := m["content"].(string); ok {
			return s
		}
	}
	return r.str(key)
}

func (r *record) num(key string) float64 {
	s := r.str(key)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		r.fail(key, err)
		return 0
	}
	return f
}

func (r *record) flag(key string) bool {
	s := r.str(key)
	if s == "" {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		r.fail(key, err)
		return false
	}
	return b
}

func (r *record) date(key string) time.Time {
	s := r.str(key)
	if s == "" {
		return time.Time{}
	}
	t, err := ParseTime(s)
	if err != nil {
		r.fail(key, err)
	}
	return t
}

func (r *record) optDate(key string) *time.Time {
	if r.str(key) == "" {
		return nil
	}
	t := r.date(key)
	return &t
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTime parses the date forms SC3ML documents use. Times without a zone
// are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
