package health

// Response represents the health check response
type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
	Backend string `json:"backend,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}
