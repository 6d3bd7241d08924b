// Package authz decides whether an actor may perform an action on a target.
// Decisions are pure: they depend only on the records passed in, so callers
// load every user the decision needs before asking.
package authz

import (
	"github.com/spec-kit/workforce-service/internal/domain"
	apperrors "github.com/spec-kit/workforce-service/pkg/util"
)

// Rule identifies which precedence step produced a decision.
type Rule string

const (
	RuleAdmin      Rule = "admin-bypass"
	RuleVerified   Rule = "verified-gate"
	RuleRole       Rule = "role"
	RuleOwnership  Rule = "ownership"
	RulePeer       Rule = "same-manager-peer"
	RuleSelfScope  Rule = "task-self-scope"
	RuleQAScope    Rule = "qa-scope"
	RuleVisibility Rule = "visibility"
	RuleDefault    Rule = "default"
)

const (
	msgNotVerified   = "Please verify your email to access this resource"
	msgNoPermission  = "You do not have permission to perform this action"
	msgNotYourTeam   = "Not your team member"
	msgTeamTask      = "You can only assign tasks to your team members"
	msgNotTeamTask   = "You can only manage tasks of your team"
	msgNotAssignee   = "You are not assigned to this task"
	msgEmployeeField = "Employees can only update status or remarks"
	msgQAVerdictOnly = "Only quality assurance can set qa-approved or qa-rejected"
	msgQAField       = "Quality assurance can only update status or remarks"
	msgQAStatus      = "Quality assurance can only set status to qa-approved or qa-rejected"
	msgEmployeeRole  = "Managers can only manage employee-level roles"
	msgTicketTeam    = "You can only assign tickets to your team members or yourself"
	msgTicketPeer    = "You can only assign tickets to teammates under the same manager"
	msgTicketAccess  = "You do not have access to this ticket"
)

// Target carries every record a decision may inspect. Unused fields stay nil.
type Target struct {
	// Subject is the user being managed, or the proposed ticket assignee.
	Subject *domain.User
	// Role is the role requested for a created or updated account.
	Role *domain.Role

	Task *domain.Task
	// TaskAssignees are the loaded records of Task.AssignedTo.
	TaskAssignees []domain.User
	TaskPatch     *domain.TaskPatch
	// ProposedAssignees are the loaded records of a new assignee set.
	ProposedAssignees []domain.User

	Ticket         *domain.Ticket
	TicketCreator  *domain.User
	TicketAssignee *domain.User
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Rule    Rule
	Reason  string
}

// Err converts a denial into a forbidden DomainError.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperrors.NewForbidden(d.Reason)
}

func permit(rule Rule) Decision { return Decision{Allowed: true, Rule: rule} }

func deny(rule Rule, reason string) Decision {
	return Decision{Allowed: false, Rule: rule, Reason: reason}
}

func allow(*domain.User, Target) Decision { return permit(RuleRole) }

// Engine evaluates the permission matrix.
type Engine struct {
	policies map[Action]policy
}

// NewEngine returns an engine loaded with the default matrix.
func NewEngine() *Engine {
	return &Engine{policies: defaultPolicies()}
}

// Decide applies, in order: admin bypass, the verified gate, the role gate of
// the action, then the action-specific ownership, peer, self-scope and QA
// rules. Anything not explicitly allowed is denied.
func (e *Engine) Decide(actor *domain.User, action Action, target Target) Decision {
	d, p := e.gate(actor, action)
	if !d.Allowed || d.Rule == RuleAdmin {
		return d
	}
	if p.check == nil {
		return deny(RuleDefault, msgNoPermission)
	}
	return p.check(actor, target)
}

// Gate applies only the target-independent steps: admin bypass, the verified
// gate and the role gate. Routes use it before any record is loaded.
func (e *Engine) Gate(actor *domain.User, action Action) Decision {
	d, _ := e.gate(actor, action)
	return d
}

func (e *Engine) gate(actor *domain.User, action Action) (Decision, policy) {
	if actor == nil {
		return deny(RuleDefault, msgNoPermission), policy{}
	}
	if actor.Role.IsAdmin() {
		return permit(RuleAdmin), policy{}
	}
	p, ok := e.policies[action]
	if !ok {
		return deny(RuleDefault, msgNoPermission), p
	}
	if p.verifiedOnly && !actor.IsVerified {
		return deny(RuleVerified, msgNotVerified), p
	}
	if !familyAllowed(actor.Role.Family(), p.families) {
		return deny(RuleRole, msgNoPermission), p
	}
	return permit(RuleRole), p
}

// Authorize is Decide reduced to an error.
func (e *Engine) Authorize(actor *domain.User, action Action, target Target) error {
	return e.Decide(actor, action, target).Err()
}

func familyAllowed(f domain.RoleFamily, families []domain.RoleFamily) bool {
	for _, candidate := range families {
		if candidate == f {
			return true
		}
	}
	return false
}

func checkCreateEmployee(actor *domain.User, t Target) Decision {
	if t.Role != nil && !t.Role.IsEmployeeFamily() {
		return deny(RuleRole, msgEmployeeRole)
	}
	return permit(RuleOwnership)
}

func checkTeamMember(actor *domain.User, t Target) Decision {
	if t.Subject == nil || !t.Subject.ReportsTo(actor.ID) {
		return deny(RuleOwnership, msgNotYourTeam)
	}
	return permit(RuleOwnership)
}

func checkUpdateEmployee(actor *domain.User, t Target) Decision {
	if d := checkTeamMember(actor, t); !d.Allowed {
		return d
	}
	if t.Role != nil && !t.Role.IsEmployeeFamily() {
		return deny(RuleRole, msgEmployeeRole)
	}
	return permit(RuleOwnership)
}

func allReportTo(users []domain.User, managerID string) bool {
	for i := range users {
		if !users[i].ReportsTo(managerID) {
			return false
		}
	}
	return true
}

func checkCreateTask(actor *domain.User, t Target) Decision {
	if !allReportTo(t.ProposedAssignees, actor.ID) {
		return deny(RuleOwnership, msgTeamTask)
	}
	return permit(RuleOwnership)
}

// managesTask reports whether a manager assigned the task or leads one of its
// assignees.
func managesTask(actor *domain.User, t Target) bool {
	if t.Task == nil {
		return false
	}
	if t.Task.AssignedBy == actor.ID {
		return true
	}
	for i := range t.TaskAssignees {
		if t.TaskAssignees[i].ReportsTo(actor.ID) {
			return true
		}
	}
	return false
}

func checkViewTask(actor *domain.User, t Target) Decision {
	if t.Task == nil {
		return deny(RuleDefault, msgNoPermission)
	}
	switch {
	case actor.Role.IsManager():
		if managesTask(actor, t) {
			return permit(RuleOwnership)
		}
		return deny(RuleOwnership, msgNotTeamTask)
	case actor.Role.IsQA():
		return permit(RuleQAScope)
	default:
		if t.Task.HasAssignee(actor.ID) {
			return permit(RuleSelfScope)
		}
		return deny(RuleSelfScope, msgNotAssignee)
	}
}

func checkUpdateTask(actor *domain.User, t Target) Decision {
	if t.Task == nil || t.TaskPatch == nil {
		return deny(RuleDefault, msgNoPermission)
	}
	switch {
	case actor.Role.IsManager():
		return checkManagerTaskUpdate(actor, t)
	case actor.Role.IsQA():
		return checkQATaskUpdate(t.TaskPatch)
	default:
		return checkEmployeeTaskUpdate(actor, t)
	}
}

func checkManagerTaskUpdate(actor *domain.User, t Target) Decision {
	if !managesTask(actor, t) {
		return deny(RuleOwnership, msgNotTeamTask)
	}
	if t.TaskPatch.Has(domain.TaskFieldAssignedTo) && !allReportTo(t.ProposedAssignees, actor.ID) {
		return deny(RuleOwnership, msgTeamTask)
	}
	return permit(RuleOwnership)
}

func onlyStatusAndRemarks(p *domain.TaskPatch) bool {
	for _, f := range p.Fields {
		if f != domain.TaskFieldStatus && f != domain.TaskFieldRemarks {
			return false
		}
	}
	return true
}

// Employee patches are all-or-nothing: one disallowed key rejects the patch.
func checkEmployeeTaskUpdate(actor *domain.User, t Target) Decision {
	if !t.Task.HasAssignee(actor.ID) {
		return deny(RuleSelfScope, msgNotAssignee)
	}
	if !onlyStatusAndRemarks(t.TaskPatch) {
		return deny(RuleSelfScope, msgEmployeeField)
	}
	if t.TaskPatch.Status != nil && t.TaskPatch.Status.IsQAVerdict() {
		return deny(RuleSelfScope, msgQAVerdictOnly)
	}
	return permit(RuleSelfScope)
}

func checkQATaskUpdate(p *domain.TaskPatch) Decision {
	if !onlyStatusAndRemarks(p) {
		return deny(RuleQAScope, msgQAField)
	}
	if p.Status != nil && !p.Status.IsQAVerdict() {
		return deny(RuleQAScope, msgQAStatus)
	}
	return permit(RuleQAScope)
}

// checkTicketAssignee validates a proposed assignee. Managers may assign to
// their reports or themselves; employees only to peers sharing a manager.
func checkTicketAssignee(actor *domain.User, assignee *domain.User) Decision {
	if assignee == nil {
		return permit(RuleDefault)
	}
	if actor.Role.IsManager() {
		if assignee.ID == actor.ID || assignee.ReportsTo(actor.ID) {
			return permit(RuleOwnership)
		}
		return deny(RuleOwnership, msgTicketTeam)
	}
	if actor.Manager() != "" && assignee.ReportsTo(actor.Manager()) {
		return permit(RulePeer)
	}
	return deny(RulePeer, msgTicketPeer)
}

func checkCreateTicket(actor *domain.User, t Target) Decision {
	return checkTicketAssignee(actor, t.Subject)
}

func checkViewTicket(actor *domain.User, t Target) Decision {
	if t.Ticket == nil {
		return deny(RuleDefault, msgNoPermission)
	}
	if actor.Role.IsQA() {
		return permit(RuleQAScope)
	}
	if t.Ticket.CreatedBy == actor.ID || t.Ticket.Assignee() == actor.ID {
		return permit(RuleVisibility)
	}
	if actor.Role.IsManager() &&
		(t.TicketCreator.ReportsTo(actor.ID) || t.TicketAssignee.ReportsTo(actor.ID)) {
		return permit(RuleOwnership)
	}
	return deny(RuleVisibility, msgTicketAccess)
}

// checkActOnTicket extends visibility for comment and assign: an employee
// may act on a ticket opened by or assigned to a peer under the same manager.
func checkActOnTicket(actor *domain.User, t Target) Decision {
	d := checkViewTicket(actor, t)
	if d.Allowed || t.Ticket == nil || !actor.Role.IsEmployeeFamily() {
		return d
	}
	if mgr := actor.Manager(); mgr != "" &&
		(t.TicketCreator.ReportsTo(mgr) || t.TicketAssignee.ReportsTo(mgr)) {
		return permit(RulePeer)
	}
	return d
}

func checkAssignTicket(actor *domain.User, t Target) Decision {
	if d := checkActOnTicket(actor, t); !d.Allowed {
		return d
	}
	return checkTicketAssignee(actor, t.Subject)
}
