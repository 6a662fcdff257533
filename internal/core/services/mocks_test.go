package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Common test errors
var (
	errMockDB      = errors.New("mock db error")
	errMockGateway = errors.New("mock gateway error")
)

// ============================================================
// Player repository fake
// ============================================================

type mockPlayerRepo struct {
	players        map[string]*models.Player
	goalIncrements map[string]int
	failGetByCPF   bool
}

func newMockPlayerRepo() *mockPlayerRepo {
	return &mockPlayerRepo{
		players:        map[string]*models.Player{},
		goalIncrements: map[string]int{},
	}
}

func (m *mockPlayerRepo) Create(ctx context.Context, player *models.Player) error {
	if _, ok := m.players[player.CPF]; ok {
		return gorm.ErrDuplicatedKey
	}
	player.ID = uint(len(m.players) + 1)
	m.players[player.CPF] = player
	return nil
}

func (m *mockPlayerRepo) GetByCPF(ctx context.Context, cpf string) (*models.Player, error) {
	if m.failGetByCPF {
		return nil, errMockDB
	}
	player, ok := m.players[cpf]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return player, nil
}

func (m *mockPlayerRepo) Update(ctx context.Context, player *models.Player) error {
	m.players[player.CPF] = player
	return nil
}

func (m *mockPlayerRepo) List(ctx context.Context, status string, offset, limit int) ([]*models.Player, int64, error) {
	var out []*models.Player
	for _, p := range m.players {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockPlayerRepo) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	_, ok := m.players[cpf]
	return ok, nil
}

func (m *mockPlayerRepo) IncrementGoals(ctx context.Context, cpf string, delta int) error {
	m.goalIncrements[cpf] += delta
	if p, ok := m.players[cpf]; ok {
		p.GoalsScored += delta
	}
	return nil
}

// ============================================================
// Refresh token repository fake
// ============================================================

type mockRefreshTokenRepo struct {
	tokens map[string]*models.RefreshToken // by hash
	nextID uint
}

func newMockRefreshTokenRepo() *mockRefreshTokenRepo {
	return &mockRefreshTokenRepo{tokens: map[string]*models.RefreshToken{}}
}

func (m *mockRefreshTokenRepo) Create(ctx context.Context, token *models.RefreshToken) error {
	m.nextID++
	token.ID = m.nextID
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *mockRefreshTokenRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	token, ok := m.tokens[tokenHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return token, nil
}

func (m *mockRefreshTokenRepo) Revoke(ctx context.Context, id uint) error {
	for _, token := range m.tokens {
		if token.ID == id {
			now := time.Now()
			token.RevokedAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockRefreshTokenRepo) RevokeByTokenHash(ctx context.Context, tokenHash string) error {
	if token, ok := m.tokens[tokenHash]; ok {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (m *mockRefreshTokenRepo) RevokeAllByCPF(ctx context.Context, cpf string) error {
	now := time.Now()
	for _, token := range m.tokens {
		if token.PlayerCPF == cpf && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (m *mockRefreshTokenRepo) DeleteExpired(ctx context.Context) error {
	for hash, token := range m.tokens {
		if token.IsExpired() {
			delete(m.tokens, hash)
		}
	}
	return nil
}

// ============================================================
// Finance repository fake
// ============================================================

type mockFinanceRepo struct {
	items        map[uint]*models.PayableItem // by id
	keys         map[string]uint              // dedup key -> id
	transactions map[uint]*models.Transaction
	txItems      map[uint][]uint // tx id -> item ids
	deletedTxIDs []uint
	nextItemID   uint
	nextTxID     uint

	failCreateItem bool
	failSettle     bool
	failCreateTx   bool
	failDeleteTx   bool
}

func newMockFinanceRepo() *mockFinanceRepo {
	return &mockFinanceRepo{
		items:        map[uint]*models.PayableItem{},
		keys:         map[string]uint{},
		transactions: map[uint]*models.Transaction{},
		txItems:      map[uint][]uint{},
	}
}

func (m *mockFinanceRepo) CreateItemIfAbsent(ctx context.Context, item *models.PayableItem) (bool, error) {
	if m.failCreateItem {
		return false, errMockDB
	}
	if _, ok := m.keys[item.DedupKey]; ok {
		return false, nil
	}
	m.nextItemID++
	item.ID = m.nextItemID
	m.items[item.ID] = item
	m.keys[item.DedupKey] = item.ID
	return true, nil
}

func (m *mockFinanceRepo) ListDedupKeys(ctx context.Context, ownerCPF, kind string) ([]string, error) {
	var out []string
	for _, item := range m.items {
		if item.OwnerCPF == ownerCPF && item.Kind == kind {
			out = append(out, item.DedupKey)
		}
	}
	return out, nil
}

func (m *mockFinanceRepo) ListFineDedupKeysByMatch(ctx context.Context, matchID uint) ([]string, error) {
	var out []string
	for _, item := range m.items {
		if item.MatchID != nil && *item.MatchID == matchID {
			out = append(out, item.DedupKey)
		}
	}
	return out, nil
}

func (m *mockFinanceRepo) ListItemsByOwner(ctx context.Context, ownerCPF string) ([]models.PayableItem, error) {
	var out []models.PayableItem
	for _, item := range m.items {
		if item.OwnerCPF == ownerCPF {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockFinanceRepo) GetPendingItems(ctx context.Context, ownerCPF string, ids []uint) ([]models.PayableItem, error) {
	var out []models.PayableItem
	for _, id := range ids {
		item, ok := m.items[id]
		if !ok || item.OwnerCPF != ownerCPF || item.Status != models.ItemStatusPending {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (m *mockFinanceRepo) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for _, item := range m.items {
		if item.Status == models.ItemStatusPending && item.ReferenceDate.Before(before) {
			item.Status = models.ItemStatusOverdue
			n++
		}
	}
	return n, nil
}

func (m *mockFinanceRepo) CreateTransaction(ctx context.Context, tx *models.Transaction, items []models.PayableItem) error {
	if m.failCreateTx {
		return errMockDB
	}
	m.nextTxID++
	tx.ID = m.nextTxID
	m.transactions[tx.ID] = tx
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	m.txItems[tx.ID] = ids
	return nil
}

func (m *mockFinanceRepo) DeleteTransaction(ctx context.Context, id uint) error {
	if m.failDeleteTx {
		return errMockDB
	}
	delete(m.transactions, id)
	delete(m.txItems, id)
	m.deletedTxIDs = append(m.deletedTxIDs, id)
	return nil
}

func (m *mockFinanceRepo) AttachGatewayPaymentID(ctx context.Context, id uint, paymentID int64) error {
	tx, ok := m.transactions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	tx.GatewayPaymentID = &paymentID
	return nil
}

func (m *mockFinanceRepo) ListTransactionsByOwner(ctx context.Context, ownerCPF string) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range m.transactions {
		if tx.OwnerCPF == ownerCPF {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (m *mockFinanceRepo) SettleTransaction(ctx context.Context, id uint, paidAt time.Time, method string) (bool, error) {
	if m.failSettle {
		return false, errMockDB
	}
	_, ok := m.transactions[id]
	if !ok {
		return false, nil
	}
	settled := false
	for _, itemID := range m.txItems[id] {
		item := m.items[itemID]
		if item.Status == models.ItemStatusPaid {
			continue
		}
		item.Status = models.ItemStatusPaid
		item.PaymentDate = &paidAt
		item.PaymentMethod = method
		settled = true
	}
	return settled, nil
}

func (m *mockFinanceRepo) SumPaidTotal(ctx context.Context) (float64, error) {
	var total float64
	for _, item := range m.items {
		if item.Status == models.ItemStatusPaid {
			total += item.Amount
		}
	}
	return total, nil
}

// seedItem adds a pre-existing payable item, bypassing the generators
func (m *mockFinanceRepo) seedItem(item models.PayableItem) *models.PayableItem {
	m.nextItemID++
	item.ID = m.nextItemID
	m.items[item.ID] = &item
	m.keys[item.DedupKey] = item.ID
	return &item
}

// ============================================================
// Config repository fake
// ============================================================

type mockConfigRepo struct {
	cfg *models.AppConfig
}

func newMockConfigRepo() *mockConfigRepo {
	return &mockConfigRepo{
		cfg: &models.AppConfig{
			ID:                   1,
			PixKey:               "financeiro@afps.com.br",
			MonthlyFeeAmount:     50,
			YellowCardFineAmount: 10,
			RedCardFineAmount:    25,
			PayeeName:            "AFPS",
			PayeeCity:            "SAO PAULO",
		},
	}
}

func (m *mockConfigRepo) Get(ctx context.Context) (*models.AppConfig, error) {
	if m.cfg == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.cfg, nil
}

func (m *mockConfigRepo) Update(ctx context.Context, cfg *models.AppConfig) error {
	m.cfg = cfg
	return nil
}

// ============================================================
// Expense repository fake
// ============================================================

type mockExpenseRepo struct {
	expenses map[uint]*models.Expense
	nextID   uint
}

func newMockExpenseRepo() *mockExpenseRepo {
	return &mockExpenseRepo{expenses: map[uint]*models.Expense{}}
}

func (m *mockExpenseRepo) Create(ctx context.Context, expense *models.Expense) error {
	m.nextID++
	expense.ID = m.nextID
	m.expenses[expense.ID] = expense
	return nil
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id uint) (*models.Expense, error) {
	expense, ok := m.expenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return expense, nil
}

func (m *mockExpenseRepo) Update(ctx context.Context, expense *models.Expense) error {
	m.expenses[expense.ID] = expense
	return nil
}

func (m *mockExpenseRepo) Delete(ctx context.Context, id uint) error {
	delete(m.expenses, id)
	return nil
}

func (m *mockExpenseRepo) List(ctx context.Context, offset, limit int) ([]*models.Expense, int64, error) {
	var out []*models.Expense
	for _, expense := range m.expenses {
		out = append(out, expense)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (m *mockExpenseRepo) SumTotal(ctx context.Context) (float64, error) {
	var total float64
	for _, expense := range m.expenses {
		total += expense.Amount
	}
	return total, nil
}

// ============================================================
// Audit log repository fake
// ============================================================

type mockAuditRepo struct {
	entries []models.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) List(ctx context.Context, offset, limit int) ([]*models.AuditLog, int64, error) {
	out := make([]*models.AuditLog, 0, len(m.entries))
	for i := range m.entries {
		out = append(out, &m.entries[i])
	}
	return out, int64(len(out)), nil
}

// ============================================================
// Match repository fake
// ============================================================

type mockMatchRepo struct {
	matches map[uint]*models.Match
	nextID  uint
}

func newMockMatchRepo() *mockMatchRepo {
	return &mockMatchRepo{matches: map[uint]*models.Match{}}
}

func (m *mockMatchRepo) Create(ctx context.Context, match *models.Match) error {
	m.nextID++
	match.ID = m.nextID
	m.matches[match.ID] = match
	return nil
}

func (m *mockMatchRepo) GetByID(ctx context.Context, id uint) (*models.Match, error) {
	match, ok := m.matches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return match, nil
}

func (m *mockMatchRepo) Update(ctx context.Context, match *models.Match) error {
	if _, ok := m.matches[match.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *match
	stored.Teams = m.matches[match.ID].Teams
	m.matches[match.ID] = &stored
	return nil
}

func (m *mockMatchRepo) ReplaceTeams(ctx context.Context, matchID uint, teams []models.MatchTeam) error {
	match, ok := m.matches[matchID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	match.Teams = teams
	return nil
}

func (m *mockMatchRepo) Delete(ctx context.Context, id uint) error {
	delete(m.matches, id)
	return nil
}

func (m *mockMatchRepo) List(ctx context.Context, f repositories.MatchFilters, offset, limit int) ([]*models.Match, int64, error) {
	var out []*models.Match
	for _, match := range m.matches {
		if f.Status != "" && match.Status != f.Status {
			continue
		}
		out = append(out, match)
	}
	return out, int64(len(out)), nil
}

func (m *mockMatchRepo) ListFinalizedByPlayer(ctx context.Context, cpf string) ([]*models.Match, error) {
	var out []*models.Match
	for _, match := range m.matches {
		if match.Status != models.MatchStatusFinalized {
			continue
		}
		for _, team := range match.Teams {
			for _, entry := range team.Roster {
				if entry.PlayerCPF == cpf {
					out = append(out, match)
				}
			}
		}
	}
	return out, nil
}

// ============================================================
// Payment gateway fake
// ============================================================

type mockGateway struct {
	charge      *ChargeResult
	chargeErr   error
	payment     *PaymentInfo
	paymentErr  error
	lastCharge  *ChargeRequest
	getCalls    int
	chargeCalls int
}

func (m *mockGateway) CreatePixCharge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	m.chargeCalls++
	m.lastCharge = &req
	return m.charge, m.chargeErr
}

func (m *mockGateway) GetPayment(ctx context.Context, paymentID int64) (*PaymentInfo, error) {
	m.getCalls++
	return m.payment, m.paymentErr
}
