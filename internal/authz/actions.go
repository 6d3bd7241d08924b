package authz

import "github.com/spec-kit/workforce-service/internal/domain"

// Action names an operation subject to authorization.
type Action string

const (
	ActionLogout         Action = "session.logout"
	ActionViewProfile    Action = "profile.view"
	ActionUpdateProfile  Action = "profile.update"
	ActionListUsers      Action = "users.list"
	ActionCreateEmployee Action = "team.create_employee"
	ActionViewTeam       Action = "team.view"
	ActionViewEmployee   Action = "team.view_employee"
	ActionUpdateEmployee Action = "team.update_employee"
	ActionDeleteEmployee Action = "team.delete_employee"
	ActionCreateTask     Action = "task.create"
	ActionListTasks      Action = "task.list"
	ActionViewTask       Action = "task.view"
	ActionUpdateTask     Action = "task.update"
	ActionCreateTicket   Action = "ticket.create"
	ActionListTickets    Action = "ticket.list"
	ActionViewTicket     Action = "ticket.view"
	ActionCommentTicket  Action = "ticket.comment"
	ActionAssignTicket   Action = "ticket.assign"
)

// policy is one row of the permission matrix. Admins bypass every row.
type policy struct {
	verifiedOnly bool
	families     []domain.RoleFamily
	check        func(actor *domain.User, target Target) Decision
}

var (
	anyRole     = []domain.RoleFamily{domain.FamilyManager, domain.FamilyEmployee}
	managerOnly = []domain.RoleFamily{domain.FamilyManager}
	adminOnly   = []domain.RoleFamily{}
)

func defaultPolicies() map[Action]policy {
	return map[Action]policy{
		ActionLogout:         {verifiedOnly: false, families: anyRole, check: allow},
		ActionViewProfile:    {verifiedOnly: true, families: anyRole, check: allow},
		ActionUpdateProfile:  {verifiedOnly: true, families: anyRole, check: allow},
		ActionListUsers:      {verifiedOnly: true, families: adminOnly},
		ActionCreateEmployee: {verifiedOnly: true, families: managerOnly, check: checkCreateEmployee},
		ActionViewTeam:       {verifiedOnly: true, families: managerOnly, check: allow},
		ActionViewEmployee:   {verifiedOnly: true, families: managerOnly, check: checkTeamMember},
		ActionUpdateEmployee: {verifiedOnly: true, families: managerOnly, check: checkUpdateEmployee},
		ActionDeleteEmployee: {verifiedOnly: true, families: managerOnly, check: checkTeamMember},
		ActionCreateTask:     {verifiedOnly: true, families: managerOnly, check: checkCreateTask},
		ActionListTasks:      {verifiedOnly: true, families: anyRole, check: allow},
		ActionViewTask:       {verifiedOnly: true, families: anyRole, check: checkViewTask},
		ActionUpdateTask:     {verifiedOnly: true, families: anyRole, check: checkUpdateTask},
		ActionCreateTicket:   {verifiedOnly: true, families: anyRole, check: checkCreateTicket},
		ActionListTickets:    {verifiedOnly: true, families: anyRole, check: allow},
		ActionViewTicket:     {verifiedOnly: true, families: anyRole, check: checkViewTicket},
		ActionCommentTicket:  {verifiedOnly: true, families: anyRole, check: checkActOnTicket},
		ActionAssignTicket:   {verifiedOnly: true, families: anyRole, check: checkAssignTicket},
	}
}
