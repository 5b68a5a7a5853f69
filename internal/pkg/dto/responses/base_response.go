package responses

import "telehealth-service/internal/pkg/exceptions"

type ResponseDTO struct {
	Success    bool        `json:"success"`
	Timestamp  string      `json:"timestamp"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type ErrorResponseDTO struct {
	Success    bool                  `json:"success"`
	Timestamp  string                `json:"timestamp"`
	Message    string                `json:"message"`
	Details    any                   `json:"details,omitempty"`
	DevMessage string                `json:"dev_message,omitempty"`
	Locations  []exceptions.Location `json:"locations,omitempty"`
}

type Pagination struct {
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	NextURL  string `json:"next_url,omitempty"`
	PrevURL  string `json:"prev_url,omitempty"`
}
