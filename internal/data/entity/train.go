package entity

// Train is read-only for the booking core. Departure and arrival are "HH:MM".
type Train struct {
	BaseNoDelete
	Name          string `db:"name"`
	Number        string `db:"number"`
	Source        string `db:"source"`
	Destination   string `db:"destination"`
	DepartureTime string `db:"departure_time"`
	ArrivalTime   string `db:"arrival_time"`
	TotalSeats    int    `db:"total_seats"`
}
