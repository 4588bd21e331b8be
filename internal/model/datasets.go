package model

import "sort"

// adminKey identifies one admin unit at one lead time.
type adminKey struct {
	Pcode    string
	LeadTime int
}

// stationKey identifies one station at one lead time.
type stationKey struct {
	StationCode string
	LeadTime    int
}

// AdminThresholdSet holds the validated thresholds for every admin unit of a
// country, independent of any particular run.
type AdminThresholdSet struct {
	Country string
	byPcode map[string]AdminThreshold
}

// NewAdminThresholdSet builds an empty set for a country.
func NewAdminThresholdSet(country string) *AdminThresholdSet {
	return &AdminThresholdSet{Country: country, byPcode: make(map[string]AdminThreshold)}
}

// Upsert inserts or replaces the thresholds for one admin unit.
func (s *AdminThresholdSet) Upsert(t AdminThreshold) {
	s.byPcode[t.Pcode] = t
}

// Get returns the thresholds for one admin unit.
func (s *AdminThresholdSet) Get(pcode string) (AdminThreshold, bool) {
	t, ok := s.byPcode[pcode]
	return t, ok
}

// Pcodes returns every admin unit pcode in the set, sorted.
func (s *AdminThresholdSet) Pcodes() []string {
	out := make([]string, 0, len(s.byPcode))
	for p := range s.byPcode {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// StationThresholdSet holds the validated thresholds for every gauge station
// of a country.
type StationThresholdSet struct {
	Country    string
	byStation map[string]StationThreshold
}

// NewStationThresholdSet builds an empty set for a country.
func NewStationThresholdSet(country string) *StationThresholdSet {
	return &StationThresholdSet{Country: country, byStation: make(map[string]StationThreshold)}
}

// Upsert inserts or replaces the thresholds for one station.
func (s *StationThresholdSet) Upsert(t StationThreshold) {
	s.byStation[t.StationCode] = t
}

// Get returns the thresholds for one station.
func (s *StationThresholdSet) Get(stationCode string) (StationThreshold, bool) {
	t, ok := s.byStation[stationCode]
	return t, ok
}

// StationCodes returns every station code in the set, sorted.
func (s *StationThresholdSet) StationCodes() []string {
	out := make([]string, 0, len(s.byStation))
	for c := range s.byStation {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// DischargeAdminDataset holds the ingested ensemble discharge for every
// (pcode, lead_time) pair produced by one run.
type DischargeAdminDataset struct {
	Timestamp  string
	Country    string
	AdmLevels  []int
	byKey      map[adminKey]DischargeAdmin
}

// NewDischargeAdminDataset builds an empty dataset stamped with the run's
// timestamp, country and the admin levels it will hold.
func NewDischargeAdminDataset(timestamp, country string, admLevels []int) *DischargeAdminDataset {
	return &DischargeAdminDataset{
		Timestamp: timestamp,
		Country:   country,
		AdmLevels: admLevels,
		byKey:     make(map[adminKey]DischargeAdmin),
	}
}

// Upsert inserts or replaces the discharge sample for (pcode, lead_time).
func (d *DischargeAdminDataset) Upsert(v DischargeAdmin) {
	d.byKey[adminKey{Pcode: v.Pcode, LeadTime: v.LeadTime}] = v
}

// Get returns the discharge sample for one (pcode, lead_time) pair.
func (d *DischargeAdminDataset) Get(pcode string, leadTime int) (DischargeAdmin, bool) {
	v, ok := d.byKey[adminKey{Pcode: pcode, LeadTime: leadTime}]
	return v, ok
}

// ListByLeadTime returns every admin unit's sample at one lead time, sorted
// by pcode.
func (d *DischargeAdminDataset) ListByLeadTime(leadTime int) []DischargeAdmin {
	out := make([]DischargeAdmin, 0)
	for k, v := range d.byKey {
		if k.LeadTime == leadTime {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pcode < out[j].Pcode })
	return out
}

// ListByAdmLevel returns every sample belonging to admin units at the given
// level, sorted by pcode then lead time.
func (d *DischargeAdminDataset) ListByAdmLevel(admLevel int) []DischargeAdmin {
	out := make([]DischargeAdmin, 0)
	for _, v := range d.byKey {
		if v.AdmLevel == admLevel {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pcode != out[j].Pcode {
			return out[i].Pcode < out[j].Pcode
		}
		return out[i].LeadTime < out[j].LeadTime
	})
	return out
}

// LeadTimes returns the distinct lead times present, ascending.
func (d *DischargeAdminDataset) LeadTimes() []int {
	return distinctLeadTimesAdmin(d.byKey)
}

func distinctLeadTimesAdmin(m map[adminKey]DischargeAdmin) []int {
	seen := make(map[int]bool)
	for k := range m {
		seen[k.LeadTime] = true
	}
	out := make([]int, 0, len(seen))
	for lt := range seen {
		out = append(out, lt)
	}
	sort.Ints(out)
	return out
}

// DischargeStationDataset holds the ingested ensemble discharge for every
// (station_code, lead_time) pair produced by one run.
type DischargeStationDataset struct {
	Timestamp string
	Country   string
	byKey     map[stationKey]DischargeStation
}

// NewDischargeStationDataset builds an empty dataset stamped with the run's
// timestamp and country.
func NewDischargeStationDataset(timestamp, country string) *DischargeStationDataset {
	return &DischargeStationDataset{Timestamp: timestamp, Country: country, byKey: make(map[stationKey]DischargeStation)}
}

// Upsert inserts or replaces the discharge sample for (station_code, lead_time).
func (d *DischargeStationDataset) Upsert(v DischargeStation) {
	d.byKey[stationKey{StationCode: v.StationCode, LeadTime: v.LeadTime}] = v
}

// Get returns the discharge sample for one (station_code, lead_time) pair.
func (d *DischargeStationDataset) Get(stationCode string, leadTime int) (DischargeStation, bool) {
	v, ok := d.byKey[stationKey{StationCode: stationCode, LeadTime: leadTime}]
	return v, ok
}

// StationCodes returns the distinct station codes present, sorted.
func (d *DischargeStationDataset) StationCodes() []string {
	seen := make(map[string]bool)
	for k := range d.byKey {
		seen[k.StationCode] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// LeadTimes returns the distinct lead times present, ascending.
func (d *DischargeStationDataset) LeadTimes() []int {
	seen := make(map[int]bool)
	for k := range d.byKey {
		seen[k.LeadTime] = true
	}
	out := make([]int, 0, len(seen))
	for lt := range seen {
		out = append(out, lt)
	}
	sort.Ints(out)
	return out
}

// ForecastAdminDataset holds the derived forecast for every (pcode, lead_time)
// pair produced by one run.
type ForecastAdminDataset struct {
	Timestamp string
	Country   string
	AdmLevels []int
	byKey     map[adminKey]ForecastAdmin
}

// NewForecastAdminDataset builds an empty dataset stamped with the run's
// timestamp, country and admin levels.
func NewForecastAdminDataset(timestamp, country string, admLevels []int) *ForecastAdminDataset {
	return &ForecastAdminDataset{
		Timestamp: timestamp,
		Country:   country,
		AdmLevels: admLevels,
		byKey:     make(map[adminKey]ForecastAdmin),
	}
}

// Upsert inserts or replaces the forecast for (pcode, lead_time).
func (d *ForecastAdminDataset) Upsert(v ForecastAdmin) {
	d.byKey[adminKey{Pcode: v.Pcode, LeadTime: v.LeadTime}] = v
}

// Get returns the forecast for one (pcode, lead_time) pair.
func (d *ForecastAdminDataset) Get(pcode string, leadTime int) (ForecastAdmin, bool) {
	v, ok := d.byKey[adminKey{Pcode: pcode, LeadTime: leadTime}]
	return v, ok
}

// ListByLeadTime returns every admin unit's forecast at one lead time,
// sorted by pcode.
func (d *ForecastAdminDataset) ListByLeadTime(leadTime int) []ForecastAdmin {
	out := make([]ForecastAdmin, 0)
	for k, v := range d.byKey {
		if k.LeadTime == leadTime {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pcode < out[j].Pcode })
	return out
}

// ListByAdmLevel returns every forecast belonging to admin units at the
// given level, sorted by pcode then lead time.
func (d *ForecastAdminDataset) ListByAdmLevel(admLevel int) []ForecastAdmin {
	out := make([]ForecastAdmin, 0)
	for _, v := range d.byKey {
		if v.AdmLevel == admLevel {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pcode != out[j].Pcode {
			return out[i].Pcode < out[j].Pcode
		}
		return out[i].LeadTime < out[j].LeadTime
	})
	return out
}

// AnyTriggered reports whether any forecast in the dataset triggered,
// regardless of lead time or admin level.
func (d *ForecastAdminDataset) AnyTriggered() bool {
	for _, v := range d.byKey {
		if v.Triggered {
			return true
		}
	}
	return false
}

// LeadTimes returns the distinct lead times present, ascending.
func (d *ForecastAdminDataset) LeadTimes() []int {
	seen := make(map[int]bool)
	for k := range d.byKey {
		seen[k.LeadTime] = true
	}
	out := make([]int, 0, len(seen))
	for lt := range seen {
		out = append(out, lt)
	}
	sort.Ints(out)
	return out
}

// ForecastStationDataset holds the derived forecast for every
// (station_code, lead_time) pair produced by one run.
type ForecastStationDataset struct {
	Timestamp string
	Country   string
	byKey     map[stationKey]ForecastStation
}

// NewForecastStationDataset builds an empty dataset stamped with the run's
// timestamp and country.
func NewForecastStationDataset(timestamp, country string) *ForecastStationDataset {
	return &ForecastStationDataset{Timestamp: timestamp, Country: country, byKey: make(map[stationKey]ForecastStation)}
}

// Upsert inserts or replaces the forecast for (station_code, lead_time).
func (d *ForecastStationDataset) Upsert(v ForecastStation) {
	d.byKey[stationKey{StationCode: v.StationCode, LeadTime: v.LeadTime}] = v
}

// Get returns the forecast for one (station_code, lead_time) pair.
func (d *ForecastStationDataset) Get(stationCode string, leadTime int) (ForecastStation, bool) {
	v, ok := d.byKey[stationKey{StationCode: stationCode, LeadTime: leadTime}]
	return v, ok
}

// StationCodes returns the distinct station codes present, sorted.
func (d *ForecastStationDataset) StationCodes() []string {
	seen := make(map[string]bool)
	for k := range d.byKey {
		seen[k.StationCode] = true
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// AnyTriggered reports whether any station forecast in the dataset triggered.
func (d *ForecastStationDataset) AnyTriggered() bool {
	for _, v := range d.byKey {
		if v.Triggered {
			return true
		}
	}
	return false
}

// LeadTimes returns the distinct lead times present, ascending.
func (d *ForecastStationDataset) LeadTimes() []int {
	seen := make(map[int]bool)
	for k := range d.byKey {
		seen[k.LeadTime] = true
	}
	out := make([]int, 0, len(seen))
	for lt := range seen {
		out = append(out, lt)
	}
	sort.Ints(out)
	return out
}
