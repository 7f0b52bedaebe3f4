package maps

import "encoding/json"

type apiResponse interface {
	apiStatus() (status, message string)
}

type envelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (e *envelope) apiStatus() (string, string) {
	return e.Status, e.ErrorMessage
}

type distanceMatrixResponse struct {
	envelope
	Rows []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Text  string  `json:"text"`
				Value float64 `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

type directionsResponse struct {
	envelope
	Routes []json.RawMessage `json:"routes"`
}

type geocodeResponse struct {
	envelope
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}
