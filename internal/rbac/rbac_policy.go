package rbac

import "dayflow-hrms/internal/identity"

const (
	ResourceAttendance     = "attendance"
	ResourceRegularization = "regularization"
	ResourceLeave          = "leave"
	ResourceSalary         = "salary"
	ResourcePayroll        = "payroll"
	ResourceComponent      = "component"
	ResourceNotification   = "notification"
	ResourceUser           = "user"
	ResourceProfile        = "profile"
	ResourceDashboard      = "dashboard"
)

const (
	ActionSelf       = "self"
	ActionReadAll    = "read_all"
	ActionRequest    = "request"
	ActionApply      = "apply"
	ActionDecide     = "decide"
	ActionManage     = "manage"
	ActionRead       = "read"
	ActionBroadcast  = "broadcast"
	ActionDeactivate = "deactivate"
	ActionHR         = "hr"
)

type Permission struct {
	Role     string
	Resource string
	Action   string
}

// RoleInheritance lists (child, parent) pairs: HR can do everything an
// EMPLOYEE can, ADMIN everything HR can.
var RoleInheritance = [][2]string{
	{identity.RoleHR, identity.RoleEmployee},
	{identity.RoleAdmin, identity.RoleHR},
}

var DefaultPolicy = []Permission{
	{identity.RoleEmployee, ResourceAttendance, ActionSelf},
	{identity.RoleEmployee, ResourceRegularization, ActionRequest},
	{identity.RoleEmployee, ResourceLeave, ActionApply},
	{identity.RoleEmployee, ResourceSalary, ActionSelf},
	{identity.RoleEmployee, ResourcePayroll, ActionSelf},
	{identity.RoleEmployee, ResourceComponent, ActionRead},
	{identity.RoleEmployee, ResourceNotification, ActionSelf},
	{identity.RoleEmployee, ResourceProfile, ActionSelf},
	{identity.RoleEmployee, ResourceDashboard, ActionSelf},

	{identity.RoleHR, ResourceAttendance, ActionReadAll},
	{identity.RoleHR, ResourceRegularization, ActionDecide},
	{identity.RoleHR, ResourceLeave, ActionReadAll},
	{identity.RoleHR, ResourceLeave, ActionDecide},
	{identity.RoleHR, ResourceSalary, ActionManage},
	{identity.RoleHR, ResourcePayroll, ActionManage},
	{identity.RoleHR, ResourceComponent, ActionManage},
	{identity.RoleHR, ResourceNotification, ActionBroadcast},
	{identity.RoleHR, ResourceUser, ActionManage},
	{identity.RoleHR, ResourceDashboard, ActionHR},

	{identity.RoleAdmin, ResourceUser, ActionDeactivate},
}
