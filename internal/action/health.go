package action

import (
	"net/http"
	"time"
)

type healthStatus struct {
	Success          bool      `json:"success"`
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
	AvailableActions []string  `json:"availableActions"`
}

func (h *Handler) health(*http.Request) (any, error) {
	return healthStatus{
		Success:          true,
		Status:           "healthy",
		Timestamp:        h.now().UTC(),
		AvailableActions: Names(),
	}, nil
}
