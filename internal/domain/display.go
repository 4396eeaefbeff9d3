package domain

import "time"

// DisplayInstance is one physical kiosk/location, independently configured.
type DisplayInstance struct {
	ID               string    `json:"id"`
	LocationName     string    `json:"location_name"`
	QRCodeURL        string    `json:"qr_code_url,omitempty"`
	IsActive         bool      `json:"is_active"`
	Timezone         string    `json:"timezone"`
	LogoURL          string    `json:"logo_url,omitempty"`
	BackgroundConfig string    `json:"background_config,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// DisplayStats is the aggregate view shown in the admin dashboard.
type DisplayStats struct {
	TotalPlayers      int64            `json:"total_players"`
	TotalSessions     int64            `json:"total_sessions"`
	CompletedSessions int64            `json:"completed_sessions"`
	OutcomeCounts     map[string]int64 `json:"outcome_counts"`
	ActiveConnections int              `json:"active_connections"`
}
