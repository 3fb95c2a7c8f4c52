package config

import "time"

// DefaultConfig returns the stock three-modality configuration: voice
// outranks gesture outranks eye, voice blocks the camera modalities while
// it is active, and eye plus gesture may act together.
func DefaultConfig() *Config {
	return &Config{
		Sources: []SourceConfig{
			{
				ID:            "voice",
				Priority:      3,
				RecencyWindow: 500 * time.Millisecond,
				Actions: map[string]string{
					"next_tab":     "next_tab",
					"previous_tab": "previous_tab",
					"close_tab":    "close_tab",
					"new_tab":      "new_tab",
					"copy":         "copy",
					"paste":        "paste",
					"undo":         "undo",
					"redo":         "redo",
					"play":         "play_pause",
					"pause":        "play_pause",
					"mute":         "mute",
					"volume_up":    "volume_up",
					"volume_down":  "volume_down",
					"screenshot":   "screenshot",
				},
			},
			{
				ID:            "gesture",
				Priority:      2,
				RecencyWindow: 300 * time.Millisecond,
				Actions: map[string]string{
					"pinch":       "copy",
					"peace":       "paste",
					"scroll_up":   "next_tab",
					"scroll_down": "previous_tab",
					"ok":          "enter",
					"fist":        "escape",
					"thumbs_up":   "play_pause",
					"thumbs_down": "volume_down",
					"open_palm":   "show_desktop",
					"pinky_up":    "pause_toggle",
				},
			},
			{
				ID:            "eye",
				Priority:      1,
				RecencyWindow: 300 * time.Millisecond,
				Actions: map[string]string{
					"left_gaze":    "previous_tab",
					"right_gaze":   "next_tab",
					"double_blink": "next_tab",
					"triple_blink": "show_desktop",
				},
			},
		},
		Conflicts: []ConflictConfig{
			{Between: []string{"voice", "eye"}, AllowSimultaneous: false},
			{Between: []string{"voice", "gesture"}, AllowSimultaneous: false},
			{Between: []string{"eye", "gesture"}, AllowSimultaneous: true},
		},
		Cooldown: CooldownConfig{
			Scope:   "action",
			Default: 200 * time.Millisecond,
			PerAction: map[string]time.Duration{
				"pause_toggle": 800 * time.Millisecond,
			},
		},
		Bus: BusConfig{
			QueueSize:       100,
			SubmitTimeout:   50 * time.Millisecond,
			DispatchTimeout: time.Second,
			Debug:           false,
		},
		History: HistoryConfig{
			Capacity: 100,
			LogFile:  "action_log.txt",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
