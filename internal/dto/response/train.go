package response

import "railway-booking/internal/data/entity"

type TrainResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Number        string `json:"number"`
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	TotalSeats    int    `json:"total_seats"`
}

func TrainToResponse(train *entity.Train) TrainResponse {
	return TrainResponse{
		ID:            train.ID.String(),
		Name:          train.Name,
		Number:        train.Number,
		Source:        train.Source,
		Destination:   train.Destination,
		DepartureTime: train.DepartureTime,
		ArrivalTime:   train.ArrivalTime,
		TotalSeats:    train.TotalSeats,
	}
}

func TrainsToResponse(trains []*entity.Train) []TrainResponse {
	out := make([]TrainResponse, len(trains))
	for i, t := range trains {
		out[i] = TrainToResponse(t)
	}
	return out
}
