package app

import (
	"fmt"

	"dayflow-hrms/internal/attendance"
	"dayflow-hrms/internal/leave"
	"dayflow-hrms/internal/messaging/kafka"
	"dayflow-hrms/internal/notification"
	"dayflow-hrms/internal/payroll"
	"dayflow-hrms/internal/regularization"
	"dayflow-hrms/internal/salarystructure"
	"dayflow-hrms/internal/user"

	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&user.User{},
		&user.EmployeeProfile{},
		&attendance.Record{},
		&regularization.Regularization{},
		&leave.Leave{},
		&salarystructure.SalaryStructure{},
		&payroll.Payroll{},
		&payroll.Component{},
		&notification.Notification{},
		&notification.Preference{},
		&kafka.OutboxRecord{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
