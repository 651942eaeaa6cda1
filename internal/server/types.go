package server

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RenderersResponse lists the renderer names of GET /renderers.
type RenderersResponse struct {
	Renderers []string `json:"renderers"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// AvailabilityResponse answers GET /remoteCanComputeMB.
type AvailabilityResponse struct {
	Available bool `json:"available"`
	Width     int  `json:"width"`
	Workers   int  `json:"workers"`
}
