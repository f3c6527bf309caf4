package models

// Settings is the flat application configuration record kept alongside the
// data collections. It is not interpreted by the scheduling core beyond the
// default snooze length.
type Settings struct {
	SoundEnabled        bool    `json:"soundEnabled"`
	NotificationEnabled bool    `json:"notificationEnabled"`
	Theme               string  `json:"theme"`
	Volume              float64 `json:"volume"`
	ReminderSnoozeTime  int     `json:"reminderSnoozeTime"`
}

// DefaultSettings returns the documented defaults, used whenever the
// settings collection is absent or unreadable.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:        true,
		NotificationEnabled: true,
		Theme:               "light",
		Volume:              0.8,
		ReminderSnoozeTime:  5,
	}
}
