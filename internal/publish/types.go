package publish

// ExposurePlaceCode is one admin unit's value for an exposure indicator.
type ExposurePlaceCode struct {
	PlaceCode string  `json:"placeCode"`
	Amount    float64 `json:"amount"`
}

// ExposureRecord is the payload for admin-area-dynamic-data/exposure.
type ExposureRecord struct {
	CountryCodeISO3    string              `json:"countryCodeISO3"`
	LeadTime           string              `json:"leadTime"` // "{n}-day"
	DynamicIndicator   string              `json:"dynamicIndicator"`
	AdminLevel         int                 `json:"adminLevel"`
	ExposurePlaceCodes []ExposurePlaceCode `json:"exposurePlaceCodes"`
	DisasterType       string              `json:"disasterType"`
	EventName          *string             `json:"eventName"`
	Date               string              `json:"date"`
}

// Dynamic indicator names recognized by the downstream exposure endpoint.
const (
	IndicatorPopAffected    = "population_affected"
	IndicatorPopAffectedPct = "population_affected_percentage"
	IndicatorSeverity       = "forecast_severity"
	IndicatorTrigger        = "forecast_trigger"
)

// PointDataValue is one station's value for a dynamic point-data key.
type PointDataValue struct {
	FID   string  `json:"fid"`
	Value float64 `json:"value"`
}

// PointDataRecord is the payload for point-data/dynamic.
type PointDataRecord struct {
	LeadTime          string           `json:"leadTime"`
	Key               string           `json:"key"`
	DynamicPointData  []PointDataValue `json:"dynamicPointData"`
	PointDataCategory string           `json:"pointDataCategory"`
	DisasterType      string           `json:"disasterType"`
	CountryCodeISO3   string           `json:"countryCodeISO3"`
	Date              string           `json:"date"`
}

// Dynamic point-data keys recognized by the downstream station endpoint.
const (
	KeyForecastLevel       = "forecastLevel"
	KeyEAPAlertClass       = "eapAlertClass"
	KeyForecastReturnPeriod = "forecastReturnPeriod"
	KeyTriggerLevel        = "triggerLevel"
)

// LeadTimeAlert is one lead time's alert/trigger flags.
type LeadTimeAlert struct {
	LeadTime        int  `json:"leadTime"`
	ForecastAlert   bool `json:"forecastAlert"`
	ForecastTrigger bool `json:"forecastTrigger"`
}

// AlertsPerLeadTimeRecord is the payload for event/alerts-per-lead-time.
type AlertsPerLeadTimeRecord struct {
	CountryCodeISO3    string          `json:"countryCodeISO3"`
	AlertsPerLeadTime  []LeadTimeAlert `json:"alertsPerLeadTime"`
	DisasterType       string          `json:"disasterType"`
	EventName          *string         `json:"eventName"`
	Date               string          `json:"date"`
}

// EventsProcessRecord is the payload for events/process.
type EventsProcessRecord struct {
	CountryCodeISO3 string `json:"countryCodeISO3"`
	DisasterType    string `json:"disasterType"`
	Date            string `json:"date"`
}

const disasterTypeFloods = "floods"
