package models

// ReferencesModel References model for related data
type ReferencesModel struct {
	Agencies   []interface{} `json:"agencies"`
	Routes     []interface{} `json:"routes"`
	Situations []interface{} `json:"situations"`
	StopTimes  []interface{} `json:"stopTimes"`
	Stops      []Stop        `json:"stops"`
	Trips      []interface{} `json:"trips"`
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Agencies:   []interface{}{},
		Routes:     []interface{}{},
		Situations: []interface{}{},
		StopTimes:  []interface{}{},
		Stops:      []Stop{},
		Trips:      []interface{}{},
	}
}

// NewStopReferences returns references listing the given stops
func NewStopReferences(stops []Stop) ReferencesModel {
	refs := NewEmptyReferences()
	if stops != nil {
		refs.Stops = stops
	}
	return refs
}
