package streak

import (
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the calendar-day format used for activity dates (UTC).
const DateLayout = "2006-01-02"

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlockedAt"`
	Rarity      Rarity    `json:"rarity"`
}

// Milestone is a streak length that unlocks a badge the first time it is hit.
type Milestone struct {
	Days   int
	Name   string
	Icon   string
	Rarity Rarity
}

var Milestones = []Milestone{
	{Days: 7, Name: "Week Warrior", Icon: "🔥", Rarity: RarityRare},
	{Days: 14, Name: "Fortnight Fighter", Icon: "⚡", Rarity: RarityRare},
	{Days: 30, Name: "Monthly Master", Icon: "👑", Rarity: RarityEpic},
	{Days: 60, Name: "Dedication Dynamo", Icon: "💎", Rarity: RarityEpic},
	{Days: 100, Name: "Century Crusher", Icon: "🏆", Rarity: RarityLegendary},
	{Days: 365, Name: "Year Yearner", Icon: "🌟", Rarity: RarityLegendary},
}

const (
	DefaultWeeklyGoal = 5
	MinWeeklyGoal     = 1
	MaxWeeklyGoal     = 7
)

type StreakRecord struct {
	UserID           string `gorm:"column:user_id;primaryKey;type:varchar(255)" json:"userId"`
	CurrentStreak    int    `gorm:"column:current_streak;not null;default:0" json:"currentStreak"`
	LongestStreak    int    `gorm:"column:longest_streak;not null;default:0" json:"longestStreak"`
	TotalDays        int    `gorm:"column:total_days;not null;default:0" json:"totalDays"`
	LastActivityDate string `gorm:"column:last_activity_date;type:varchar(10)" json:"lastActivityDate"`
	WeeklyGoal       int    `gorm:"column:weekly_goal;not null;default:5" json:"weeklyGoal"`
	WeeklyProgress   int    `gorm:"column:weekly_progress;not null;default:0" json:"weeklyProgress"`
	// WeekStart is the Monday (YYYY-MM-DD) of the ISO week WeeklyProgress counts.
	WeekStart string         `gorm:"column:week_start;type:varchar(10)" json:"weekStart"`
	Badges    datatypes.JSON `gorm:"column:badges" json:"-"`
	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"not null" json:"updatedAt"`
}

func (StreakRecord) TableName() string { return "streak_record" }
