package models

type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

type Notification struct {
	Title              string               `json:"title"`
	Body               string               `json:"body"`
	Icon               string               `json:"icon,omitempty"`
	Tag                string               `json:"tag,omitempty"`
	Actions            []NotificationAction `json:"actions,omitempty"`
	RequireInteraction bool                 `json:"requireInteraction"`
	// Audio is a base64 MP3 rendition of Body, set when speech is enabled.
	Audio string `json:"audio,omitempty"`
}
