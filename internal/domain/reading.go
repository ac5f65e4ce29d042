package domain

import "time"

// Reading is the latest known observation for a room, as held by the hot
// cache and returned by the current-state endpoints. LastUpdate is stamped
// by the cache when the entry is written and is never persisted.
type Reading struct {
	RoomID       string    `json:"roomId"`
	BuildingID   string    `json:"buildingId,omitempty"`
	Floor        string    `json:"floor"`
	Temperature  float64   `json:"temperature"`
	Humidity     float64   `json:"humidity"`
	WifiDevices  int       `json:"wifiDevices"`
	Occupancy    int       `json:"occupancy"`
	SensorStatus string    `json:"sensorStatus"`
	Timestamp    time.Time `json:"timestamp"`
	LastUpdate   time.Time `json:"lastUpdate,omitempty"`
}

// RecordMetadata is the metaField of the time-series collection. Floor is
// always a string here so the partition key keeps a uniform type no matter
// what the sensor sent.
type RecordMetadata struct {
	RoomID     string `json:"roomId" bson:"roomId"`
	BuildingID string `json:"buildingId,omitempty" bson:"buildingId,omitempty"`
	Floor      string `json:"floor" bson:"floor"`
}

// ReadingRecord is one durable row. Records are append-only: nothing in the
// system updates or deletes them once written.
type ReadingRecord struct {
	Timestamp    time.Time      `json:"timestamp" bson:"timestamp"`
	Metadata     RecordMetadata `json:"metadata" bson:"metadata"`
	Temperature  float64        `json:"temperature" bson:"temperature"`
	Humidity     float64        `json:"humidity" bson:"humidity"`
	WifiDevices  int            `json:"wifiDevices" bson:"wifiDevices"`
	Occupancy    int            `json:"occupancy" bson:"occupancy"`
	SensorStatus string         `json:"sensorStatus" bson:"sensorStatus"`
}

// Record projects a normalized Reading into its durable representation.
func (r Reading) Record() ReadingRecord {
	return ReadingRecord{
		Timestamp: r.Timestamp,
		Metadata: RecordMetadata{
			RoomID:     r.RoomID,
			BuildingID: r.BuildingID,
			Floor:      r.Floor,
		},
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		WifiDevices:  r.WifiDevices,
		Occupancy:    r.Occupancy,
		SensorStatus: r.SensorStatus,
	}
}

// RoomStats is the grouped aggregate over a room's records in a time window.
type RoomStats struct {
	AvgTemp       float64 `json:"avgTemp" bson:"avgTemp"`
	MinTemp       float64 `json:"minTemp" bson:"minTemp"`
	MaxTemp       float64 `json:"maxTemp" bson:"maxTemp"`
	AvgHumidity   float64 `json:"avgHumidity" bson:"avgHumidity"`
	AvgOccupancy  float64 `json:"avgOccupancy" bson:"avgOccupancy"`
	MaxOccupancy  int     `json:"maxOccupancy" bson:"maxOccupancy"`
	TotalReadings int64   `json:"totalReadings" bson:"totalReadings"`
}
