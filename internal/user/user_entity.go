package user

import (
	"time"

	"dayflow-hrms/internal/identity"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Username     string    `gorm:"column:username;type:varchar(150);not null;uniqueIndex"`
	Email        string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	EmployeeCode string    `gorm:"column:employee_code;type:varchar(50);not null;uniqueIndex"`
	Password     string    `gorm:"column:password;type:text;not null"`
	Role         string    `gorm:"column:role;type:varchar(20);not null;index"`
	IsActive     bool      `gorm:"column:is_active;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Profile *EmployeeProfile `gorm:"foreignKey:UserID;references:ID"`
}

func (u User) Ownership() identity.Ownership {
	return identity.OwnedBy(identity.RelationUser, u.ID)
}

type EmployeeProfile struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	FullName      string     `gorm:"column:full_name;type:varchar(255);not null"`
	Phone         string     `gorm:"column:phone;type:varchar(30)"`
	Address       string     `gorm:"column:address;type:text"`
	JobTitle      string     `gorm:"column:job_title;type:varchar(100)"`
	Department    string     `gorm:"column:department;type:varchar(100)"`
	DateOfJoining *time.Time `gorm:"column:date_of_joining;type:date"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (EmployeeProfile) TableName() string {
	return "employee_profiles"
}

func (p EmployeeProfile) Ownership() identity.Ownership {
	return identity.OwnedBy(identity.RelationUser, p.UserID)
}
