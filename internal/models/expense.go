package models

import "time"

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCard         PaymentMethod = "CARD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentOther        PaymentMethod = "OTHER"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentBankTransfer, PaymentMobileMoney, PaymentOther:
		return true
	}
	return false
}

// Expense is a single spending record. Date is the business date of the
// spending, CreatedAt is when it was recorded.
type Expense struct {
	ID            uint          `gorm:"primaryKey"`
	Amount        float64       `gorm:"not null"`
	Description   *string       `gorm:"size:1024"`
	Date          time.Time     `gorm:"index;not null"`
	PaymentMethod PaymentMethod `gorm:"size:32;not null"`
	AttachmentURL *string       `gorm:"size:1024"`
	CategoryID    uint          `gorm:"index;not null"`
	UserID        uint          `gorm:"index;not null"`
	CreatedByID   *uint
	UpdatedByID   *uint
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time

	Category  *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE"`
	CreatedBy *User     `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
	UpdatedBy *User     `gorm:"foreignKey:UpdatedByID;constraint:OnDelete:SET NULL"`
}
