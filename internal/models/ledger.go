package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loan status values
const (
	LoanStatusActive  = "ACTIVE"
	LoanStatusPaid    = "PAID"
	LoanStatusOverdue = "OVERDUE"
)

// Investment types
const (
	InvestmentStock      = "stock"
	InvestmentGold       = "gold"
	InvestmentRealEstate = "real_estate"
	InvestmentSavings    = "savings"
	InvestmentOther      = "other"
)

// CategorySavings is the canonical category for savings events. Savings
// are stored as income entries with this category, not a separate
// collection.
const CategorySavings = "Tiền tiết kiệm"

// Entry is a generic ledger entry (income or expense). Amounts are
// non-negative integers in VND.
type Entry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"userId" json:"user_id"`
	Amount      int64              `bson:"amount" json:"amount"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description" json:"description"`
	Date        time.Time          `bson:"date" json:"date"`
	CreatedAt   time.Time          `bson:"createdAt" json:"created_at"`
}

// LoanPayment is a single repayment against a loan.
type LoanPayment struct {
	Amount int64     `bson:"amount" json:"amount"`
	Date   time.Time `bson:"date" json:"date"`
}

// Loan is a borrowed amount with interest accrual while ACTIVE.
type Loan struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"userId" json:"user_id"`
	Amount       int64              `bson:"amount" json:"amount"`
	Category     string             `bson:"category" json:"category"`
	Description  string             `bson:"description" json:"description"`
	Lender       string             `bson:"lender" json:"lender"`
	InterestRate float64            `bson:"interestRate" json:"interest_rate"` // percent per RatePeriod
	RatePeriod   string             `bson:"ratePeriod" json:"rate_period"`     // day|week|month|quarter|year
	StartDate    time.Time          `bson:"startDate" json:"start_date"`
	DueDate      time.Time          `bson:"dueDate" json:"due_date"`
	Status       string             `bson:"status" json:"status"`
	Payments     []LoanPayment      `bson:"payments" json:"payments"`
	Date         time.Time          `bson:"date" json:"date"`
	CreatedAt    time.Time          `bson:"createdAt" json:"created_at"`
}

// RemainingBalance is the principal minus repayments, clamped at zero.
func (l *Loan) RemainingBalance() int64 {
	remaining := l.Amount
	for _, p := range l.Payments {
		remaining -= p.Amount
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TotalPaid sums all repayments.
func (l *Loan) TotalPaid() int64 {
	var total int64
	for _, p := range l.Payments {
		total += p.Amount
	}
	return total
}

// AccruedInterest computes remaining × (rate/100) × periods between start
// and due date, in the unit implied by the rate period. Interest accrues
// only while the loan is ACTIVE.
func (l *Loan) AccruedInterest() int64 {
	if l.Status != LoanStatusActive {
		return 0
	}

	days := l.DueDate.Sub(l.StartDate).Hours() / 24
	if days < 0 {
		days = 0
	}

	var periods float64
	switch l.RatePeriod {
	case "day":
		periods = days
	case "week":
		periods = days / 7
	case "quarter":
		periods = days / 90
	case "year":
		periods = days / 365
	default: // month
		periods = days / 30
	}

	interest := float64(l.RemainingBalance()) * (l.InterestRate / 100) * periods
	return int64(interest)
}

// Investment is a stock/gold/real-estate/savings position.
type Investment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"userId" json:"user_id"`
	Type         string             `bson:"type" json:"type"`
	Name         string             `bson:"name" json:"name"`
	Amount       int64              `bson:"amount" json:"amount"` // initial investment
	CurrentValue int64              `bson:"currentValue,omitempty" json:"current_value,omitempty"`
	BankName     string             `bson:"bankName,omitempty" json:"bank_name,omitempty"` // savings only
	Category     string             `bson:"category" json:"category"`
	Description  string             `bson:"description" json:"description"`
	Date         time.Time          `bson:"date" json:"date"`
	CreatedAt    time.Time          `bson:"createdAt" json:"created_at"`
}

// FinancialSnapshot is the aggregate view the financial calculation and
// statistics engines operate on. AvailableBalance deliberately counts
// committed savings as spendable safety margin.
type FinancialSnapshot struct {
	TotalIncome      int64 `json:"total_income"`
	TotalExpense     int64 `json:"total_expense"`
	TotalSavings     int64 `json:"total_savings"`
	NetBalance       int64 `json:"net_balance"`       // income minus expense
	AvailableBalance int64 `json:"available_balance"` // net + savings

	Incomes     []Entry      `json:"-"`
	Expenses    []Entry      `json:"-"`
	Loans       []Loan       `json:"-"`
	Investments []Investment `json:"-"`
}
