package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"moneytalk/internal/database"
	"moneytalk/internal/models"
	"moneytalk/internal/nlp"
)

// Store is the single data access layer for the four ledger collections.
// It exposes typed accessors for the handlers plus the generic
// Find/Aggregate pair the query constructor runs against.
type Store struct {
	db *database.MongoDB
}

// NewStore creates a ledger store over an established connection.
func NewStore(db *database.MongoDB) *Store {
	return &Store{db: db}
}

// Find runs an owner-scoped find. The caller builds the filter; this
// layer only translates the options.
func (s *Store) Find(ctx context.Context, collection string, filter, projection bson.M, sort bson.D, limit int64) ([]bson.M, error) {
	opts := options.Find().SetSort(sort).SetLimit(limit)
	if projection != nil {
		opts.SetProjection(projection)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return docs, nil
}

// Aggregate runs a pipeline and decodes the raw result documents.
func (s *Store) Aggregate(ctx context.Context, collection string, pipeline []bson.M) ([]bson.M, error) {
	cursor, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return docs, nil
}

// InsertEntry writes an income or expense entry.
func (s *Store) InsertEntry(ctx context.Context, collection string, entry *models.Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.Date.IsZero() {
		entry.Date = entry.CreatedAt
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert %s: %w", collection, err)
	}
	return nil
}

// InsertLoan writes a loan, defaulting it to ACTIVE.
func (s *Store) InsertLoan(ctx context.Context, loan *models.Loan) error {
	if loan.Status == "" {
		loan.Status = models.LoanStatusActive
	}
	if loan.CreatedAt.IsZero() {
		loan.CreatedAt = time.Now()
	}
	if loan.Date.IsZero() {
		loan.Date = loan.CreatedAt
	}
	if loan.StartDate.IsZero() {
		loan.StartDate = loan.Date
	}
	if _, err := s.db.Collection(database.CollectionLoans).InsertOne(ctx, loan); err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

// InsertInvestment writes an investment position.
func (s *Store) InsertInvestment(ctx context.Context, investment *models.Investment) error {
	if investment.CreatedAt.IsZero() {
		investment.CreatedAt = time.Now()
	}
	if investment.Date.IsZero() {
		investment.Date = investment.CreatedAt
	}
	if _, err := s.db.Collection(database.CollectionInvestments).InsertOne(ctx, investment); err != nil {
		return fmt.Errorf("insert investment: %w", err)
	}
	return nil
}

// Incomes returns every income entry for the user, most recent first.
func (s *Store) Incomes(ctx context.Context, userID string) ([]models.Entry, error) {
	return s.entries(ctx, database.CollectionIncomes, userID)
}

// Expenses returns every expense entry for the user, most recent first.
func (s *Store) Expenses(ctx context.Context, userID string) ([]models.Entry, error) {
	return s.entries(ctx, database.CollectionExpenses, userID)
}

func (s *Store) entries(ctx context.Context, collection, userID string) ([]models.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var entries []models.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return entries, nil
}

// Loans returns the user's loans, optionally filtered by status.
func (s *Store) Loans(ctx context.Context, userID, status string) ([]models.Loan, error) {
	filter := bson.M{"userId": userID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.db.Collection(database.CollectionLoans).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find loans: %w", err)
	}
	defer cursor.Close(ctx)

	var loans []models.Loan
	if err := cursor.All(ctx, &loans); err != nil {
		return nil, fmt.Errorf("decode loans: %w", err)
	}
	return loans, nil
}

// Investments returns the user's investments, optionally filtered by type.
func (s *Store) Investments(ctx context.Context, userID, investmentType string) ([]models.Investment, error) {
	filter := bson.M{"userId": userID}
	if investmentType != "" {
		filter["type"] = investmentType
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := s.db.Collection(database.CollectionInvestments).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find investments: %w", err)
	}
	defer cursor.Close(ctx)

	var investments []models.Investment
	if err := cursor.All(ctx, &investments); err != nil {
		return nil, fmt.Errorf("decode investments: %w", err)
	}
	return investments, nil
}

// Snapshot loads the user's full ledger and computes the aggregate view.
func (s *Store) Snapshot(ctx context.Context, userID string) (*models.FinancialSnapshot, error) {
	incomes, err := s.Incomes(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.Expenses(ctx, userID)
	if err != nil {
		return nil, err
	}
	loans, err := s.Loans(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	investments, err := s.Investments(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	return ComputeSnapshot(incomes, expenses, loans, investments), nil
}

// IsSavingsCategory reports whether a category names committed savings.
// Matching is folded and substring-based: entries written by other
// clients carry variants like "tiết kiệm mua nhà" or odd casing, and
// they must still count toward the savings total.
func IsSavingsCategory(category string) bool {
	return strings.Contains(nlp.Fold(category), "tiet kiem")
}

// ComputeSnapshot derives the totals from loaded slices. TotalSavings is
// the sum of income entries carrying a savings category; those entries
// also count toward TotalIncome, and AvailableBalance adds savings on
// top of the net balance again. That double count is intentional:
// committed savings are treated as spendable safety margin.
func ComputeSnapshot(incomes, expenses []models.Entry, loans []models.Loan, investments []models.Investment) *models.FinancialSnapshot {
	snapshot := &models.FinancialSnapshot{
		Incomes:     incomes,
		Expenses:    expenses,
		Loans:       loans,
		Investments: investments,
	}

	for _, entry := range incomes {
		snapshot.TotalIncome += entry.Amount
		if IsSavingsCategory(entry.Category) {
			snapshot.TotalSavings += entry.Amount
		}
	}
	for _, entry := range expenses {
		snapshot.TotalExpense += entry.Amount
	}

	snapshot.NetBalance = snapshot.TotalIncome - snapshot.TotalExpense
	snapshot.AvailableBalance = snapshot.NetBalance + snapshot.TotalSavings

	return snapshot
}
