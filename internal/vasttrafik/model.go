package vasttrafik

// DeparturesResponse is the body of GET /stop-areas/{gid}/departures.
// Results is a pointer so a body without the field can be told apart from an
// empty result list.
type DeparturesResponse struct {
	Results    *[]Departure `json:"results"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

// Pagination echoes the paging parameters of a departures request.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Size   int `json:"size"`
}

// Departure is one scheduled or real-time departure as returned upstream.
// Timestamps are kept as strings; they carry their own UTC offset.
type Departure struct {
	DetailsReference              string          `json:"detailsReference,omitempty"`
	ServiceJourney                *ServiceJourney `json:"serviceJourney,omitempty"`
	StopPoint                     *StopPoint      `json:"stopPoint,omitempty"`
	PlannedTime                   *string         `json:"plannedTime,omitempty"`
	EstimatedTime                 *string         `json:"estimatedTime,omitempty"`
	EstimatedOtherwisePlannedTime *string         `json:"estimatedOtherwisePlannedTime,omitempty"`
	IsCancelled                   bool            `json:"isCancelled"`
	IsPartCancelled               bool            `json:"isPartCancelled"`
}

// ServiceJourney bundles the line and direction of one scheduled run.
type ServiceJourney struct {
	Gid              string            `json:"gid,omitempty"`
	Direction        string            `json:"direction,omitempty"`
	DirectionDetails *DirectionDetails `json:"directionDetails,omitempty"`
	Line             *Line             `json:"line,omitempty"`
}

// DirectionDetails holds the direction names of a journey.
type DirectionDetails struct {
	FullDirection  string `json:"fullDirection,omitempty"`
	ShortDirection string `json:"shortDirection,omitempty"`
}

// Line describes a transit line and its display colours.
type Line struct {
	Name            string  `json:"name,omitempty"`
	ShortName       string  `json:"shortName,omitempty"`
	DesignationText string  `json:"designation,omitempty"`
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	ForegroundColor *string `json:"foregroundColor,omitempty"`
	BorderColor     *string `json:"borderColor,omitempty"`
	TransportMode   string  `json:"transportMode,omitempty"`
}

// StopPoint is the platform-level stop a departure leaves from.
type StopPoint struct {
	Gid      string  `json:"gid,omitempty"`
	Name     string  `json:"name,omitempty"`
	Platform *string `json:"platform,omitempty"`
}
