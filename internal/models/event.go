package models

import "time"

type EventType string

const (
	EventCreated       EventType = "created"
	EventStatusUpdated EventType = "status_updated"
	EventDeleted       EventType = "deleted"
)

// ComplaintEvent is published after every successful complaint mutation.
type ComplaintEvent struct {
	Type        EventType `json:"type"`
	ComplaintID string    `json:"complaintId"`
	HostelCode  string    `json:"hostelCode"`
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	Status      Status    `json:"status"`
	At          time.Time `json:"at"`
}

func NewComplaintEvent(t EventType, c *Complaint, at time.Time) ComplaintEvent {
	return ComplaintEvent{
		Type:        t,
		ComplaintID: c.ID,
		HostelCode:  c.HostelCode,
		Title:       c.Title,
		Category:    c.Category,
		Status:      c.Status,
		At:          at.UTC(),
	}
}
