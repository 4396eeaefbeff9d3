package domain

// DailyAttemptStat is one day of submission traffic on a display.
type DailyAttemptStat struct {
	Date          string `json:"date"`
	TotalAttempts int64  `json:"total_attempts"`
	UniqueEmails  int64  `json:"unique_emails"`
	UniquePhones  int64  `json:"unique_phones"`
}

// DuplicateAttemptReport summarizes repeat-play pressure over a period.
// BlockedDuplicates counts identities that attempted more than once.
type DuplicateAttemptReport struct {
	DailyStats        []DailyAttemptStat `json:"daily_stats"`
	BlockedDuplicates int64              `json:"blocked_duplicates"`
	PeriodDays        int                `json:"period_days"`
}

// ValidationReport pairs the display's anti-abuse policy with aggregate play
// counts.
type ValidationReport struct {
	Policy        ValidationPolicy `json:"config"`
	TotalPlayers  int64            `json:"total_players"`
	TotalSessions int64            `json:"total_sessions"`
	MultiplePlays int64            `json:"multiple_plays"`
}
