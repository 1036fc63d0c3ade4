package request

type SearchTrainRequest struct {
	Source      string `json:"source" validate:"max=100"`
	Destination string `json:"destination" validate:"max=100"`
}
