package models

type Stop struct {
	ID   string  `json:"id"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

func NewStop(id, name string, lat, lon float64) Stop {
	return Stop{
		ID:   id,
		Lat:  lat,
		Lon:  lon,
		Name: name,
	}
}
