package fdsnws

import "time"

// StationQuery is the flat query accepted by the deprecated
// StationService.QueryStation.
type StationQuery struct {
	NetworkCode string
	ChannelCode string
	StationCode string
	// LocationCode "00" is not the same as an empty code.
	LocationCode string
	// Level defaults to "response" when set to an empty string. Leave nil
	// unless you need a specific level.
	Level *string
}

// StationLocation is where a station is installed.
type StationLocation struct {
	// Name is usually "City - State".
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Station is an FDSNWS station record.
type Station struct {
	Code        string          `json:"code,omitempty"`
	PublicID    string          `json:"publicId,omitempty"`
	Description string          `json:"description,omitempty"`
	Latitude    float64         `json:"latitude"`
	Longitude   float64         `json:"longitude"`
	Elevation   float64         `json:"elevation"`
	Location    StationLocation `json:"location"`
	// Remark often lists the installed instruments.
	Remark     string `json:"remark,omitempty"`
	Restricted bool   `json:"restricted"`
	// Active is true when the station has no end date.
	Active    bool       `json:"active"`
	Shared    bool       `json:"shared"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	// Affiliation is the institution operating the station.
	Affiliation string `json:"affiliation,omitempty"`
}

// Network is an FDSNWS network record with its stations.
type Network struct {
	Code         string     `json:"code,omitempty"`
	PublicID     string     `json:"publicId,omitempty"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Description  string     `json:"description,omitempty"`
	Institutions string     `json:"institutions,omitempty"`
	// Region is usually empty for global networks.
	Region       string    `json:"region,omitempty"`
	Type         string    `json:"type,omitempty"`
	NetworkClass string    `json:"networkClass"`
	Restricted   bool      `json:"restricted"`
	Active       bool      `json:"active"`
	Shared       bool      `json:"shared"`
	Stations     []Station `json:"stations"`
}
