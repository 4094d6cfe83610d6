package models

// FeedResponse is a user's notification list with their unread count.
type FeedResponse struct {
	Notifications []*Notification `json:"notifications"`
	UnreadCount   int             `json:"unread_count"`
}

type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}
