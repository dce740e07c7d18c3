package model

// TrackProfile holds the descriptive data of a circuit in raw physical units.
type TrackProfile struct {
	Index             int     `json:"index"             yaml:"index"`
	Name              string  `json:"name"              yaml:"name"`
	LapLength         float64 `json:"lapLength"         yaml:"lapLength"`         // km
	MaxSpeed          float64 `json:"maxSpeed"          yaml:"maxSpeed"`          // km/h
	FullThrottle      float64 `json:"fullThrottle"      yaml:"fullThrottle"`      // fraction of lap 0..1
	LongestFlatOut    float64 `json:"longestFlatOut"    yaml:"longestFlatOut"`    // m
	DownforceLevel    float64 `json:"downforceLevel"    yaml:"downforceLevel"`    // 0..100
	GearChangesPerLap float64 `json:"gearChangesPerLap" yaml:"gearChangesPerLap"` // count
	TechnicalFactor   float64 `json:"technicalFactor"   yaml:"technicalFactor"`   // 0..1
	BestLapTime       int     `json:"bestLapTime"       yaml:"bestLapTime"`       // ms
}

// NormalizedTrack is a TrackProfile whose factors are mapped to [0,1].
// Values of this type are produced by track.Normalize only, so a profile
// cannot be normalized twice.
type NormalizedTrack struct {
	Index             int
	Name              string
	BestLapTime       int     // ms, unchanged
	LapLength         float64 // km, unchanged
	MaxSpeed          float64 // [0.1,1]
	FullThrottle      float64 // [0,1]
	LongestFlatOut    float64 // [0,1]
	DownforceLevel    float64 // [0,1]
	GearChangesPerLap float64 // [0,1]
	TechnicalFactor   float64 // [0,1]
}
