package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudentPayment is one month's tuition record for one registration (table student_payments).
type StudentPayment struct {
	ID             string          `gorm:"type:uuid;primaryKey"                                         json:"id"`
	RegistrationID string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_payment_reg_month,priority:1" json:"registrationId"`
	StudentName    string          `gorm:"type:varchar(100);not null"                                   json:"studentName"`
	MonthYear      string          `gorm:"type:varchar(7);not null;uniqueIndex:idx_payment_reg_month,priority:2;index" json:"monthYear"`
	Amount         float64         `gorm:"type:numeric(10,2);not null"                                  json:"amount"`
	IsPaid         bool            `gorm:"not null;default:false"                                       json:"isPaid"`
	PaymentDate    *datatypes.Date `gorm:"type:date"                                                    json:"paymentDate,omitempty"`
	PaymentMethod  string          `gorm:"type:varchar(30)"                                             json:"paymentMethod,omitempty"`
	Notes          string          `gorm:"type:text"                                                    json:"notes,omitempty"`
	Timestamps

	Registration *Registration `gorm:"foreignKey:RegistrationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (StudentPayment) TableName() string { return "student_payments" }

func (p *StudentPayment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
