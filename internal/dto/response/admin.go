package response

import "local-services/pkg/queue"

type StatsResponse struct {
	Users     int64 `json:"users"`
	Providers int64 `json:"providers"`
	Services  int64 `json:"services"`
	Bookings  int64 `json:"bookings"`
}

type QueueStatusResponse struct {
	Queues  map[string]queue.Counts `json:"queues"`
	Clients int                     `json:"realtime_clients"`
}
