package responses

type Health struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Resources map[string]string `json:"resources,omitempty"`
}
