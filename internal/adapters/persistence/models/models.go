package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Players & Auth
// ============================================================

// Player roles
const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// Player statuses
const (
	PlayerStatusActive                 = "active"
	PlayerStatusInactive               = "inactive"
	PlayerStatusAuthorizedUnregistered = "authorized_unregistered"
	PlayerStatusPendingApproval        = "pending_approval"
)

// Player represents players table. The CPF is the login key and the
// identifier every billing record hangs off.
type Player struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	CPF                   string         `gorm:"column:cpf;uniqueIndex;size:11;not null" json:"cpf"`
	Name                  string         `gorm:"size:100;default:'Pending Registration'" json:"name"`
	Nickname              string         `gorm:"size:50" json:"nickname,omitempty"`
	Email                 string         `gorm:"size:100" json:"email,omitempty"`
	Phone                 string         `gorm:"size:20" json:"phone,omitempty"`
	BirthDate             *time.Time     `gorm:"type:date" json:"birth_date,omitempty"`
	Position              string         `gorm:"size:30" json:"position,omitempty"`
	ShirtNumber           *int           `json:"shirt_number,omitempty"`
	Role                  string         `gorm:"size:20" json:"role"`
	Status                string         `gorm:"size:30;not null;default:'authorized_unregistered';index" json:"status"`
	Authorized            bool           `gorm:"default:false" json:"authorized"`
	RegistrationCompleted bool           `gorm:"default:false" json:"registration_completed"`
	Password              string         `gorm:"size:255" json:"-"`
	GoalsScored           int            `gorm:"default:0" json:"goals_scored"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Player) TableName() string {
	return "players"
}

// Billable reports whether dues may be generated for this player.
func (p *Player) Billable() bool {
	return p.RegistrationCompleted && p.Status == PlayerStatusActive
}

// PlayerResponse DTO
type PlayerResponse struct {
	ID                    uint       `json:"id"`
	CPF                   string     `json:"cpf"`
	Name                  string     `json:"name"`
	Nickname              string     `json:"nickname,omitempty"`
	Email                 string     `json:"email,omitempty"`
	Phone                 string     `json:"phone,omitempty"`
	BirthDate             *time.Time `json:"birth_date,omitempty"`
	Position              string     `json:"position,omitempty"`
	ShirtNumber           *int       `json:"shirt_number,omitempty"`
	Role                  string     `json:"role"`
	Status                string     `json:"status"`
	Authorized            bool       `json:"authorized"`
	RegistrationCompleted bool       `json:"registration_completed"`
	GoalsScored           int        `json:"goals_scored"`
	CreatedAt             time.Time  `json:"created_at"`
}

func (p *Player) ToResponse() *PlayerResponse {
	return &PlayerResponse{
		ID:                    p.ID,
		CPF:                   p.CPF,
		Name:                  p.Name,
		Nickname:              p.Nickname,
		Email:                 p.Email,
		Phone:                 p.Phone,
		BirthDate:             p.BirthDate,
		Position:              p.Position,
		ShirtNumber:           p.ShirtNumber,
		Role:                  p.Role,
		Status:                p.Status,
		Authorized:            p.Authorized,
		RegistrationCompleted: p.RegistrationCompleted,
		GoalsScored:           p.GoalsScored,
		CreatedAt:             p.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	PlayerCPF string     `gorm:"column:player_cpf;size:11;index;not null" json:"player_cpf"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Billing
// ============================================================

// Payable item kinds
const (
	ItemMonthlyFee     = "MONTHLY_FEE"
	ItemYellowCardFine = "YELLOW_CARD_FINE"
	ItemRedCardFine    = "RED_CARD_FINE"
)

// Payable item statuses
const (
	ItemStatusPending = "PENDING"
	ItemStatusPaid    = "PAID"
	ItemStatusOverdue = "OVERDUE"
)

// Payment methods
const (
	PaymentMethodPix  = "PIX"
	PaymentMethodCash = "CASH"
)

// PayableItem is a single monetary obligation owed by one player.
// DedupKey carries the structured (owner, kind, period-or-event) identity
// and is unique-indexed so the generators can insert-if-absent instead of
// racing a check-then-insert.
type PayableItem struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	OwnerCPF      string     `gorm:"column:owner_cpf;size:11;not null;index" json:"owner_cpf"`
	Kind          string     `gorm:"size:30;not null" json:"kind"`
	Description   string     `gorm:"size:255;not null" json:"description"`
	DedupKey      string     `gorm:"size:100;uniqueIndex;not null" json:"-"`
	Amount        float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status        string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ReferenceDate time.Time  `gorm:"type:date;not null" json:"reference_date"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	PaymentMethod string     `gorm:"size:10" json:"payment_method,omitempty"`
	MatchID       *uint      `gorm:"index" json:"match_id,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PayableItem) TableName() string {
	return "payable_items"
}

// Transaction is one checkout attempt bundling payable items into a
// single gateway charge. It is deleted outright if charge creation fails.
type Transaction struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	OwnerCPF         string    `gorm:"column:owner_cpf;size:11;not null;index" json:"owner_cpf"`
	TotalAmount      float64   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod    string    `gorm:"size:10;not null" json:"payment_method"`
	GatewayPaymentID *int64    `gorm:"index" json:"gateway_payment_id,omitempty"`
	PaymentDate      time.Time `gorm:"not null" json:"payment_date"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Items []PayableItem `gorm:"many2many:transaction_items;" json:"items,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// AppConfig is the singleton billing configuration row, seeded with
// defaults at startup and edited by administrators.
type AppConfig struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	PixKey               string    `gorm:"size:100;not null" json:"pix_key"`
	MonthlyFeeAmount     float64   `gorm:"type:decimal(10,2);not null" json:"monthly_fee_amount"`
	YellowCardFineAmount float64   `gorm:"type:decimal(10,2);not null" json:"yellow_card_fine_amount"`
	RedCardFineAmount    float64   `gorm:"type:decimal(10,2);not null" json:"red_card_fine_amount"`
	PayeeName            string    `gorm:"size:100;not null" json:"payee_name"`
	PayeeCity            string    `gorm:"size:50;not null" json:"payee_city"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AppConfig) TableName() string {
	return "app_config"
}

// ============================================================
// Admin: expenses & audit trail
// ============================================================

// Expense is an association expense recorded by an admin, feeding the
// public transparency report.
type Expense struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Description string         `gorm:"size:255;not null" json:"description"`
	Amount      float64        `gorm:"type:decimal(10,2);not null" json:"amount"`
	Date        time.Time      `gorm:"type:date;not null;index" json:"date"`
	Category    string         `gorm:"size:50;not null" json:"category"`
	RecordedBy  string         `gorm:"size:11;not null" json:"recorded_by"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Expense) TableName() string {
	return "expenses"
}

// AuditLog records who did what. Details is a free-form JSON document.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Action    string    `gorm:"size:100;not null;index" json:"action"`
	ActorCPF  string    `gorm:"column:actor_cpf;size:11;index" json:"actor_cpf,omitempty"`
	Role      string    `gorm:"size:20" json:"role,omitempty"`
	Details   string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Player{},
		&RefreshToken{},
		&AppConfig{},
		&PayableItem{},
		&Transaction{},
		&Match{},
		&MatchTeam{},
		&MatchRosterEntry{},
		&MatchGoal{},
		&MatchCard{},
		&Expense{},
		&AuditLog{},
	)
}
