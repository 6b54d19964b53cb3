package service

import (
	"time"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/models"
)

const clockLayout = "15:04"

// EntryView is the wire shape of one session row on the operator console.
type EntryView struct {
	ID            int64    `json:"id"`
	Plate         string   `json:"plate"`
	Token         string   `json:"token"`
	EntryTime     string   `json:"entry_time"`
	ExitTime      *string  `json:"exit_time"`
	Amount        int64    `json:"amount"`
	Paid          bool     `json:"paid"`
	Status        string   `json:"status"`
	DurationHours *float64 `json:"duration_hours"`
	FlaggedError  bool     `json:"flagged_error"`
}

func newEntryView(s *models.Session, loc *time.Location) EntryView {
	view := EntryView{
		ID:           s.ID,
		Plate:        s.Plate,
		Token:        s.Token,
		EntryTime:    s.EntryTime.In(loc).Format(clockLayout),
		Amount:       s.Amount,
		Paid:         s.Paid,
		Status:       s.Status(),
		FlaggedError: s.FlaggedError,
	}
	if s.ExitTime != nil {
		exit := s.ExitTime.In(loc).Format(clockLayout)
		view.ExitTime = &exit
		hours := s.DurationHours()
		view.DurationHours = &hours
	}
	return view
}

func newEntryViews(sessions []models.Session, loc *time.Location) []EntryView {
	views := make([]EntryView, 0, len(sessions))
	for i := range sessions {
		views = append(views, newEntryView(&sessions[i], loc))
	}
	return views
}

// Receipt is the payload for a settled session's receipt.
type Receipt struct {
	SessionID int64  `json:"session_id"`
	Plate     string `json:"plate"`
	EntryTime string `json:"entry_time"`
	ExitTime  string `json:"exit_time"`
	Duration  string `json:"duration"`
	Amount    int64  `json:"amount"`
}
