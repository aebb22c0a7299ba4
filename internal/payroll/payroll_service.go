package payroll

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dayflow-hrms/internal/identity"
	"dayflow-hrms/internal/notification"
	payrollerrors "dayflow-hrms/internal/payroll/errors"
	"dayflow-hrms/internal/salarystructure"
	"dayflow-hrms/internal/shared/contextutil"
	"dayflow-hrms/internal/shared/dbutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Generate(ctx context.Context, actor identity.Principal, req GeneratePayrollRequest) (PayrollResponse, error)
	Create(ctx context.Context, actor identity.Principal, req CreatePayrollRequest) (PayrollResponse, error)
	Update(ctx context.Context, id string, req UpdatePayrollRequest) (PayrollResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (PayrollResponse, error)
	ListMine(ctx context.Context, p identity.Principal) ([]PayrollResponse, error)
	List(ctx context.Context, filter ListFilter) ([]PayrollResponse, error)
	GetByID(ctx context.Context, p identity.Principal, id string) (PayrollResponse, error)
	Payslip(ctx context.Context, p identity.Principal, id string) ([]byte, string, error)
	Summary(ctx context.Context, filter SummaryFilter) (SummaryResponse, error)

	CreateComponent(ctx context.Context, req CreateComponentRequest) (ComponentResponse, error)
	ListComponents(ctx context.Context, activeOnly bool) ([]ComponentResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	structures salarystructure.Repository
	notifier   notification.Notifier
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	structures salarystructure.Repository,
	notifier notification.Notifier,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		structures: structures,
		notifier:   notifier,
		now:        func() time.Time { return time.Now().UTC() },
		logger:     l,
	}
}

func parseMonth(v string) (time.Time, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, payrollerrors.ErrInvalidMonthFormat
	}
	return monthStart(t), nil
}

func nonNegative(values ...decimal.Decimal) error {
	for _, v := range values {
		if v.IsNegative() {
			return payrollerrors.ErrInvalidMoneyValue
		}
	}
	return nil
}

// Generate derives the month's payroll from the employee's active salary
// structure.
func (s *service) Generate(ctx context.Context, actor identity.Principal, req GeneratePayrollRequest) (PayrollResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidEmployeeID
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		return PayrollResponse{}, err
	}

	log.Debug("generate payroll requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("month", req.Month),
		zap.String("actor_id", actor.UserID.String()),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("generate payroll begin tx failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	structure, err := s.structures.WithTx(tx).FindActive(ctx, employeeID)
	if err != nil {
		if dbutil.IsNotFound(err) {
			log.Warn("generate payroll without salary structure", zap.String("employee_id", req.EmployeeID))
			return PayrollResponse{}, payrollerrors.ErrSalaryStructureNotFound
		}
		log.Error("generate payroll structure lookup failed", zap.Error(err))
		return PayrollResponse{}, err
	}

	actorID := actor.UserID
	p := &Payroll{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		Month:       month,
		BasicSalary: structure.BasicSalary,
		Allowances:  structure.TotalAllowances(),
		Deductions:  structure.TotalDeductions(),
		Tax:         structure.IncomeTax,
		Status:      StatusDraft,
		GeneratedBy: &actorID,
	}

	if err := s.insert(ctx, qtx, p); err != nil {
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("generate payroll commit failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	log.Info("payroll generated",
		zap.String("payroll_id", p.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("month", req.Month),
		zap.String("net_salary", money(p.NetSalary)),
	)

	s.notifyGenerated(ctx, *p)
	return mapToResponse(*p), nil
}

// Create records a payroll with hand-entered figures.
func (s *service) Create(ctx context.Context, actor identity.Principal, req CreatePayrollRequest) (PayrollResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidEmployeeID
	}
	month, err := parseMonth(req.Month)
	if err != nil {
		return PayrollResponse{}, err
	}
	if req.BasicSalary == nil {
		return PayrollResponse{}, payrollerrors.ErrInvalidMoneyValue
	}
	if err := nonNegative(*req.BasicSalary, req.Allowances, req.Deductions, req.Tax); err != nil {
		return PayrollResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create payroll begin tx failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	exists, err := s.structures.WithTx(tx).EmployeeExists(ctx, employeeID)
	if err != nil {
		log.Error("create payroll employee lookup failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	if !exists {
		return PayrollResponse{}, payrollerrors.ErrEmployeeNotFound
	}

	actorID := actor.UserID
	p := &Payroll{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		Month:       month,
		BasicSalary: req.BasicSalary.Round(2),
		Allowances:  req.Allowances.Round(2),
		Deductions:  req.Deductions.Round(2),
		Tax:         req.Tax.Round(2),
		Status:      StatusDraft,
		GeneratedBy: &actorID,
	}

	if err := s.insert(ctx, s.repo.WithTx(tx), p); err != nil {
		return PayrollResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("create payroll commit failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	log.Info("payroll created",
		zap.String("payroll_id", p.ID.String()),
		zap.String("employee_id", req.EmployeeID),
	)

	s.notifyGenerated(ctx, *p)
	return mapToResponse(*p), nil
}

func (s *service) insert(ctx context.Context, qtx Repository, p *Payroll) error {
	log := contextutil.GetLogger(ctx, s.logger)

	exists, err := qtx.ExistsForMonth(ctx, p.EmployeeID, p.Month)
	if err != nil {
		log.Error("payroll duplicate check failed", zap.Error(err))
		return err
	}
	if exists {
		log.Warn("payroll already exists",
			zap.String("employee_id", p.EmployeeID.String()),
			zap.String("month", p.Month.Format(monthLayout)),
		)
		return payrollerrors.ErrPayrollExists
	}

	p.recalculate()
	if err := qtx.Create(ctx, p); err != nil {
		if dbutil.IsUniqueViolation(err) {
			return payrollerrors.ErrPayrollExists
		}
		log.Error("payroll persist failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) find(ctx context.Context, repo Repository, id string) (*Payroll, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, payrollerrors.ErrInvalidPayrollID
	}
	p, err := repo.FindByID(ctx, id)
	if err != nil {
		if dbutil.IsNotFound(err) {
			return nil, payrollerrors.ErrPayrollNotFound
		}
		return nil, err
	}
	return p, nil
}

// Update rewrites the figures of a payroll that has not been paid yet.
func (s *service) Update(ctx context.Context, id string, req UpdatePayrollRequest) (PayrollResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update payroll begin tx failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := s.find(ctx, qtx, id)
	if err != nil {
		return PayrollResponse{}, err
	}
	if p.Status == StatusPaid {
		log.Warn("update payroll rejected, already paid", zap.String("payroll_id", id))
		return PayrollResponse{}, payrollerrors.ErrPayrollPaid
	}

	for _, f := range []struct {
		in  *decimal.Decimal
		out *decimal.Decimal
	}{
		{req.BasicSalary, &p.BasicSalary},
		{req.Allowances, &p.Allowances},
		{req.Deductions, &p.Deductions},
		{req.Tax, &p.Tax},
	} {
		if f.in == nil {
			continue
		}
		if f.in.IsNegative() {
			return PayrollResponse{}, payrollerrors.ErrInvalidMoneyValue
		}
		*f.out = f.in.Round(2)
	}
	p.recalculate()

	if err := qtx.Update(ctx, p); err != nil {
		log.Error("update payroll persist failed", zap.String("payroll_id", id), zap.Error(err))
		return PayrollResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("update payroll commit failed", zap.String("payroll_id", id), zap.Error(err))
		return PayrollResponse{}, err
	}
	log.Info("payroll updated", zap.String("payroll_id", id))

	return mapToResponse(*p), nil
}

// UpdateStatus moves a payroll between DRAFT, PROCESSED and PAID. The payment
// date is stamped on the first move into PAID and never changed afterwards.
func (s *service) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (PayrollResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	target := strings.ToUpper(strings.TrimSpace(req.Status))
	if !IsValidStatus(target) {
		return PayrollResponse{}, payrollerrors.ErrInvalidStatus
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("update payroll status begin tx failed", zap.Error(err))
		return PayrollResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	p, err := s.find(ctx, qtx, id)
	if err != nil {
		return PayrollResponse{}, err
	}

	previous := p.Status
	p.Status = target
	if target == StatusPaid && p.PaymentDate == nil {
		now := s.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		p.PaymentDate = &today
	}
	p.recalculate()

	if err := qtx.Update(ctx, p); err != nil {
		log.Error("update payroll status persist failed", zap.String("payroll_id", id), zap.Error(err))
		return PayrollResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("update payroll status commit failed", zap.String("payroll_id", id), zap.Error(err))
		return PayrollResponse{}, err
	}
	log.Info("payroll status updated",
		zap.String("payroll_id", id),
		zap.String("from", previous),
		zap.String("to", target),
	)

	if target == StatusPaid && previous != StatusPaid {
		s.notifyPaid(ctx, *p)
	}
	return mapToResponse(*p), nil
}

func (s *service) ListMine(ctx context.Context, p identity.Principal) ([]PayrollResponse, error) {
	employeeID := p.UserID
	payrolls, err := s.repo.FindAll(ctx, Query{EmployeeID: &employeeID})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(payrolls), nil
}

// periodRange turns a year and optional month into a [from, to) range.
func periodRange(year, month int) (time.Time, time.Time, error) {
	if month < 0 || month > 12 || year < 0 || (month != 0 && year == 0) {
		return time.Time{}, time.Time{}, payrollerrors.ErrInvalidPeriodFilter
	}
	if month == 0 {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0), nil
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]PayrollResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	var q Query

	if filter.EmployeeID != "" {
		id, err := uuid.Parse(filter.EmployeeID)
		if err != nil {
			return nil, payrollerrors.ErrInvalidEmployeeID
		}
		q.EmployeeID = &id
	}
	if status := strings.ToUpper(strings.TrimSpace(filter.Status)); status != "" {
		if !IsValidStatus(status) {
			return nil, payrollerrors.ErrInvalidStatus
		}
		q.Status = status
	}
	if filter.Year != 0 || filter.Month != 0 {
		from, to, err := periodRange(filter.Year, filter.Month)
		if err != nil {
			return nil, err
		}
		q.From, q.To = &from, &to
	}

	payrolls, err := s.repo.FindAll(ctx, q)
	if err != nil {
		log.Error("list payrolls failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(payrolls), nil
}

func (s *service) GetByID(ctx context.Context, p identity.Principal, id string) (PayrollResponse, error) {
	payroll, err := s.find(ctx, s.repo, id)
	if err != nil {
		return PayrollResponse{}, err
	}
	if err := identity.AuthorizeOwner(p, payroll); err != nil {
		return PayrollResponse{}, err
	}
	return mapToResponse(*payroll), nil
}

func (s *service) Payslip(ctx context.Context, p identity.Principal, id string) ([]byte, string, error) {
	payroll, err := s.find(ctx, s.repo, id)
	if err != nil {
		return nil, "", err
	}
	if err := identity.AuthorizeOwner(p, payroll); err != nil {
		return nil, "", err
	}

	doc := renderPayslip(*payroll)
	name := fmt.Sprintf("payslip-%s-%s.pdf", payroll.Month.Format(monthLayout), payroll.EmployeeID.String()[:8])
	return doc, name, nil
}

func (s *service) Summary(ctx context.Context, filter SummaryFilter) (SummaryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	year := filter.Year
	if year == 0 {
		year = s.now().Year()
	}
	from, to, err := periodRange(year, filter.Month)
	if err != nil {
		return SummaryResponse{}, err
	}

	totals, err := s.repo.Summarize(ctx, from, to)
	if err != nil {
		log.Error("payroll summary failed", zap.Error(err))
		return SummaryResponse{}, err
	}

	var month *int
	if filter.Month != 0 {
		m := filter.Month
		month = &m
	}
	return mapToSummary(year, month, totals), nil
}

func (s *service) CreateComponent(ctx context.Context, req CreateComponentRequest) (ComponentResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	componentType := strings.ToUpper(strings.TrimSpace(req.ComponentType))
	if !IsValidComponentType(componentType) {
		return ComponentResponse{}, payrollerrors.ErrInvalidComponentType
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	c := &Component{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(req.Name),
		ComponentType: componentType,
		Description:   strings.TrimSpace(req.Description),
		IsActive:      active,
	}

	if err := s.repo.CreateComponent(ctx, c); err != nil {
		if dbutil.IsUniqueViolation(err) {
			return ComponentResponse{}, payrollerrors.ErrComponentExists
		}
		log.Error("create payroll component failed", zap.Error(err))
		return ComponentResponse{}, err
	}
	log.Info("payroll component created", zap.String("name", c.Name), zap.String("type", componentType))

	return mapToComponentResponse(*c), nil
}

func (s *service) ListComponents(ctx context.Context, activeOnly bool) ([]ComponentResponse, error) {
	components, err := s.repo.FindComponents(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	resp := make([]ComponentResponse, len(components))
	for i, c := range components {
		resp[i] = mapToComponentResponse(c)
	}
	return resp, nil
}

func (s *service) notifyGenerated(ctx context.Context, p Payroll) {
	log := contextutil.GetLogger(ctx, s.logger)

	if s.notifier == nil {
		return
	}
	id := p.ID
	_, err := s.notifier.Notify(ctx, notification.NotifyInput{
		RecipientID:       p.EmployeeID,
		Type:              notification.TypePayrollGenerated,
		Title:             "Payroll Generated",
		Message:           fmt.Sprintf("Your payroll for %s has been generated. Net salary: %s", p.Month.Format("January 2006"), money(p.NetSalary)),
		Priority:          notification.PriorityMedium,
		RelatedObjectType: "payroll",
		RelatedObjectID:   &id,
		ActionURL:         "/payrolls/" + id.String(),
	})
	if err != nil {
		log.Warn("payroll generated notification failed", zap.String("payroll_id", id.String()), zap.Error(err))
	}
}

func (s *service) notifyPaid(ctx context.Context, p Payroll) {
	log := contextutil.GetLogger(ctx, s.logger)

	if s.notifier == nil {
		return
	}
	id := p.ID
	_, err := s.notifier.Notify(ctx, notification.NotifyInput{
		RecipientID:       p.EmployeeID,
		Type:              notification.TypePayrollPaid,
		Title:             "Salary Paid",
		Message:           fmt.Sprintf("Your salary for %s has been paid: %s", p.Month.Format("January 2006"), money(p.NetSalary)),
		Priority:          notification.PriorityHigh,
		RelatedObjectType: "payroll",
		RelatedObjectID:   &id,
		ActionURL:         "/payrolls/" + id.String(),
	})
	if err != nil {
		log.Warn("payroll paid notification failed", zap.String("payroll_id", id.String()), zap.Error(err))
	}
}
