package models

import (
	"time"

	"gorm.io/gorm"
)

// Match statuses
const (
	MatchStatusScheduled  = "scheduled"
	MatchStatusInProgress = "in_progress"
	MatchStatusFinalized  = "finalized"
	MatchStatusCancelled  = "cancelled"
)

// Team sides
const (
	TeamSideHome = "home"
	TeamSideAway = "away"
)

// Goal kinds
const (
	GoalKindRegular = "goal"
	GoalKindOwnGoal = "own_goal"
	GoalKindPenalty = "penalty"
)

// Card colors
const (
	CardYellow = "yellow"
	CardRed    = "red"
)

// Match is a scheduled or finalized game. Disciplinary fines are
// generated from its card events when it transitions into finalized.
type Match struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Date         time.Time      `gorm:"type:date;not null;index" json:"date"`
	KickoffTime  string         `gorm:"size:10;not null" json:"kickoff_time"`
	Location     string         `gorm:"size:100" json:"location,omitempty"`
	Status       string         `gorm:"size:20;not null;default:'scheduled';index" json:"status"`
	HomeScore    int            `gorm:"default:0" json:"home_score"`
	AwayScore    int            `gorm:"default:0" json:"away_score"`
	Notes        string         `gorm:"type:text" json:"notes,omitempty"`
	RefereeCPF   string         `gorm:"size:11" json:"referee_cpf,omitempty"`
	RefereeName  string         `gorm:"size:100" json:"referee_name,omitempty"`
	RegisteredBy string         `gorm:"size:11;not null" json:"registered_by"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Teams []MatchTeam `gorm:"foreignKey:MatchID" json:"teams,omitempty"`
}

func (Match) TableName() string {
	return "matches"
}

// Team returns the team sub-record for a side, or nil.
func (m *Match) Team(side string) *MatchTeam {
	for i := range m.Teams {
		if m.Teams[i].Side == side {
			return &m.Teams[i]
		}
	}
	return nil
}

// Cards returns the card events of both teams.
func (m *Match) Cards() []MatchCard {
	var cards []MatchCard
	for i := range m.Teams {
		cards = append(cards, m.Teams[i].Cards...)
	}
	return cards
}

// MatchTeam is one side of a match with its roster and events.
type MatchTeam struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	MatchID uint   `gorm:"not null;index" json:"match_id"`
	Side    string `gorm:"size:10;not null" json:"side"`
	Name    string `gorm:"size:100;not null" json:"name"`

	Roster []MatchRosterEntry `gorm:"foreignKey:TeamID" json:"roster,omitempty"`
	Goals  []MatchGoal        `gorm:"foreignKey:TeamID" json:"goals,omitempty"`
	Cards  []MatchCard        `gorm:"foreignKey:TeamID" json:"cards,omitempty"`
}

func (MatchTeam) TableName() string {
	return "match_teams"
}

// MatchRosterEntry is one player lined up for a team.
type MatchRosterEntry struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	TeamID      uint   `gorm:"not null;index" json:"team_id"`
	PlayerCPF   string `gorm:"size:11;not null;index" json:"player_cpf"`
	PlayerName  string `gorm:"size:100;not null" json:"player_name"`
	ShirtNumber *int   `json:"shirt_number,omitempty"`
	Position    string `gorm:"size:30" json:"position,omitempty"`
}

func (MatchRosterEntry) TableName() string {
	return "match_roster_entries"
}

// MatchGoal is one goal event.
type MatchGoal struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	TeamID     uint   `gorm:"not null;index" json:"team_id"`
	PlayerCPF  string `gorm:"size:11;not null" json:"player_cpf"`
	PlayerName string `gorm:"size:100;not null" json:"player_name"`
	Minute     int    `gorm:"not null" json:"minute"`
	Kind       string `gorm:"size:20;not null;default:'goal'" json:"kind"`
}

func (MatchGoal) TableName() string {
	return "match_goals"
}

// MatchCard is one disciplinary card event. (PlayerCPF, Minute) is the
// event identity the fine generator keys on.
type MatchCard struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	TeamID     uint   `gorm:"not null;index" json:"team_id"`
	PlayerCPF  string `gorm:"size:11;not null" json:"player_cpf"`
	PlayerName string `gorm:"size:100;not null" json:"player_name"`
	Minute     int    `gorm:"not null" json:"minute"`
	Color      string `gorm:"size:10;not null" json:"color"`
	Reason     string `gorm:"size:255" json:"reason,omitempty"`
}

func (MatchCard) TableName() string {
	return "match_cards"
}
