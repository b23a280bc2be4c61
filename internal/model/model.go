package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Customer represents the customers table
type Customer struct {
	ID            uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName     string          `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName      string          `gorm:"type:varchar(50);not null" json:"last_name"`
	Age           *int            `gorm:"type:int" json:"age,omitempty"`
	PhoneNumber   string          `gorm:"type:varchar(20);not null" json:"phone_number"`
	MonthlySalary decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monthly_salary"`
	ApprovedLimit decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"approved_limit"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Loans []Loan `gorm:"foreignKey:CustomerID" json:"loans,omitempty"`
}

// Loan represents the loans table
type Loan struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID     uint64          `gorm:"not null;index" json:"customer_id"`
	LoanAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"loan_amount"`
	Tenure         int             `gorm:"not null" json:"tenure"`
	InterestRate   float64         `gorm:"type:decimal(6,2);not null" json:"interest_rate"`
	MonthlyPayment decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monthly_payment"`
	EMIsPaidOnTime int             `gorm:"not null;default:0" json:"emis_paid_on_time"`
	DateOfApproval time.Time       `gorm:"type:date;not null" json:"date_of_approval"`
	EndDate        time.Time       `gorm:"type:date;not null;index" json:"end_date"`

	Customer Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"customer"`
}

func (Customer) TableName() string {
	return "customers"
}

func (Loan) TableName() string {
	return "loans"
}

// Database migration function
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Customer{},
		&Loan{},
	)
}
