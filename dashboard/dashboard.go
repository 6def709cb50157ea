// Package dashboard holds the UI-agnostic state machine behind the vacation
// dashboard: filters, forms, confirmation flows and toasts. It talks to the
// API through a narrow interface so front ends and tests can swap transports.
package dashboard

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/taskflow/vacation/client"
)

// API is the slice of the HTTP client the dashboard needs.
type API interface {
	GetUsers(ctx context.Context) ([]client.User, error)
	CreateUser(ctx context.Context, in client.CreateUserInput) (*client.User, error)
	UpdateUser(ctx context.Context, id uint, in client.UpdateUserInput) (*client.User, error)
	DeleteUser(ctx context.Context, id uint) error
	GetVacations(ctx context.Context) ([]client.VacationRequest, error)
	CreateVacation(ctx context.Context, start, end client.Date) (*client.VacationRequest, error)
	ApproveVacation(ctx context.Context, id uint) (*client.VacationRequest, error)
	RejectVacation(ctx context.Context, id uint) (*client.VacationRequest, error)
	DeleteVacation(ctx context.Context, id uint) error
}

// Toast is a transient status message.
type Toast struct {
	Message string
	IsError bool
}

// Filters narrows the vacation list. Zero values mean "no constraint".
type Filters struct {
	Employee string      // case-insensitive substring of the requester name
	Start    client.Date // keep requests starting on or after this day
	End      client.Date // keep requests ending on or before this day
}

// ConfirmKind names the pending confirmation dialog, if any.
type ConfirmKind int

const (
	ConfirmNone ConfirmKind = iota
	ConfirmDeleteVacation
	ConfirmDeleteUser
	// ConfirmCascadeUser asks whether to delete the user's requests first.
	ConfirmCascadeUser
)

// Model is the dashboard state for one signed-in session. Not safe for
// concurrent use; drive it from a single UI loop.
type Model struct {
	api     API
	session client.Session

	Vacations []client.VacationRequest
	Users     []client.User
	Filters   Filters

	Loading   bool
	Toast     *Toast
	FormError string

	Confirm   ConfirmKind
	ConfirmID uint

	// Now is injectable for tests; defaults to the current UTC day.
	Now func() client.Date
}

func NewModel(api API, session client.Session) *Model {
	return &Model{api: api, session: session, Now: client.Today}
}

func (m *Model) Session() client.Session { return m.session }

// CanModerate reports whether approve/reject controls apply to this session.
func (m *Model) CanModerate() bool { return m.session.Role.CanModerate() }

// IsAdmin reports whether the user-management panel applies to this session.
func (m *Model) IsAdmin() bool { return m.session.Role == client.RoleAdmin }

// ShowEmployeeFilter hides the name filter for collaborators, who only ever
// see their own requests.
func (m *Model) ShowEmployeeFilter() bool { return m.session.Role != client.RoleCollaborator }

// Load fetches the vacation list, and the user list for admins.
func (m *Model) Load(ctx context.Context) error {
	m.Loading = true
	defer func() { m.Loading = false }()

	vacations, err := m.api.GetVacations(ctx)
	if err != nil {
		m.fail("failed to load vacation requests", err)
		return err
	}
	m.Vacations = vacations
	if m.IsAdmin() {
		users, err := m.api.GetUsers(ctx)
		if err != nil {
			m.fail("failed to load users", err)
			return err
		}
		m.Users = users
	}
	return nil
}

// FilteredVacations applies Filters without reordering or mutating the
// underlying list.
func (m *Model) FilteredVacations() []client.VacationRequest {
	needle := strings.ToLower(strings.TrimSpace(m.Filters.Employee))
	out := make([]client.VacationRequest, 0, len(m.Vacations))
	for _, vr := range m.Vacations {
		if needle != "" && !strings.Contains(strings.ToLower(vr.UserName), needle) {
			continue
		}
		if !m.Filters.Start.IsZero() && vr.StartDate.Before(m.Filters.Start.Time) {
			continue
		}
		if !m.Filters.End.IsZero() && vr.EndDate.After(m.Filters.End.Time) {
			continue
		}
		out = append(out, vr)
	}
	return out
}

// PendingCount reports how many visible requests still await a decision.
func (m *Model) PendingCount() int {
	n := 0
	for _, vr := range m.FilteredVacations() {
		if vr.Status == client.StatusPending {
			n++
		}
	}
	return n
}

// CreateVacation validates the range locally and files the request. Invalid
// input never reaches the network; the form error is set instead.
func (m *Model) CreateVacation(ctx context.Context, start, end client.Date) error {
	m.FormError = ""
	if start.IsZero() || end.IsZero() {
		m.FormError = "both dates are required"
		return errors.New(m.FormError)
	}
	if end.Before(start.Time) {
		m.FormError = "end date must not be before start date"
		return errors.New(m.FormError)
	}
	if start.Before(m.Now().Time) {
		m.FormError = "start date must not be in the past"
		return errors.New(m.FormError)
	}
	if _, err := m.api.CreateVacation(ctx, start, end); err != nil {
		if errors.Is(err, client.ErrOverlap) {
			m.FormError = "dates overlap an already approved vacation"
		} else {
			m.FormError = "failed to submit request"
		}
		return err
	}
	m.toast("vacation request submitted", false)
	return m.reloadVacations(ctx)
}

// Approve transitions a request and refreshes the list.
func (m *Model) Approve(ctx context.Context, id uint) error {
	return m.moderate(ctx, id, m.api.ApproveVacation, "request approved")
}

// Reject transitions a request and refreshes the list.
func (m *Model) Reject(ctx context.Context, id uint) error {
	return m.moderate(ctx, id, m.api.RejectVacation, "request rejected")
}

func (m *Model) moderate(ctx context.Context, id uint,
	op func(context.Context, uint) (*client.VacationRequest, error), okMsg string) error {
	if !m.CanModerate() {
		m.toast("not allowed", true)
		return client.ErrForbidden
	}
	if _, err := op(ctx, id); err != nil {
		if errors.Is(err, client.ErrNotPending) {
			m.toast("request was already decided", true)
		} else {
			m.fail("failed to update request", err)
		}
		// Refresh anyway so stale rows disappear.
		_ = m.reloadVacations(ctx)
		return err
	}
	m.toast(okMsg, false)
	return m.reloadVacations(ctx)
}

// RequestDeleteVacation opens the confirmation dialog.
func (m *Model) RequestDeleteVacation(id uint) {
	m.Confirm = ConfirmDeleteVacation
	m.ConfirmID = id
}

// RequestDeleteUser opens the confirmation dialog.
func (m *Model) RequestDeleteUser(id uint) {
	m.Confirm = ConfirmDeleteUser
	m.ConfirmID = id
}

// CancelConfirm dismisses any pending dialog.
func (m *Model) CancelConfirm() {
	m.Confirm = ConfirmNone
	m.ConfirmID = 0
}

// ConfirmPending executes whichever confirmation dialog is open.
func (m *Model) ConfirmPending(ctx context.Context) error {
	kind, id := m.Confirm, m.ConfirmID
	m.CancelConfirm()
	switch kind {
	case ConfirmDeleteVacation:
		return m.deleteVacation(ctx, id)
	case ConfirmDeleteUser:
		return m.deleteUser(ctx, id)
	case ConfirmCascadeUser:
		return m.cascadeDeleteUser(ctx, id)
	}
	return nil
}

func (m *Model) deleteVacation(ctx context.Context, id uint) error {
	if err := m.api.DeleteVacation(ctx, id); err != nil {
		m.fail("failed to delete request", err)
		return err
	}
	m.toast("request deleted", false)
	return m.reloadVacations(ctx)
}

func (m *Model) deleteUser(ctx context.Context, id uint) error {
	err := m.api.DeleteUser(ctx, id)
	switch {
	case errors.Is(err, client.ErrCannotDeleteSelf):
		m.toast("you cannot delete your own account", true)
		return err
	case errors.Is(err, client.ErrUserHasVacations):
		// Escalate to the cascade dialog instead of failing outright.
		m.Confirm = ConfirmCascadeUser
		m.ConfirmID = id
		return err
	case err != nil:
		m.fail("failed to delete user", err)
		return err
	}
	m.toast("user deleted", false)
	return m.reload(ctx)
}

// cascadeDeleteUser removes the user's vacation requests first, then retries
// the account deletion.
func (m *Model) cascadeDeleteUser(ctx context.Context, id uint) error {
	vacations, err := m.api.GetVacations(ctx)
	if err != nil {
		m.fail("failed to load vacation requests", err)
		return err
	}
	for _, vr := range vacations {
		if vr.UserID != id {
			continue
		}
		if err := m.api.DeleteVacation(ctx, vr.ID); err != nil {
			m.fail("failed to delete the user's requests", err)
			return err
		}
	}
	if err := m.api.DeleteUser(ctx, id); err != nil {
		m.fail("failed to delete user", err)
		return err
	}
	m.toast("user and their requests deleted", false)
	return m.reload(ctx)
}

// CreateUser validates and creates an account, then refreshes the user list.
func (m *Model) CreateUser(ctx context.Context, in client.CreateUserInput) error {
	m.FormError = ""
	switch {
	case strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Name) == "" || in.Password == "":
		m.FormError = "email, name and password are required"
	case in.Role != client.RoleAdmin && in.Role != client.RoleManager && in.Role != client.RoleCollaborator:
		m.FormError = "invalid role"
	case in.Role == client.RoleCollaborator && in.ManagerID == nil:
		m.FormError = "collaborators need a manager"
	}
	if m.FormError != "" {
		return errors.New(m.FormError)
	}
	if _, err := m.api.CreateUser(ctx, in); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "email_already_exists" {
			m.FormError = "an account with this email already exists"
		} else {
			m.FormError = "failed to create user"
		}
		return err
	}
	m.toast("user created", false)
	return m.reload(ctx)
}

// UpdateUser applies a partial account update and refreshes the user list.
func (m *Model) UpdateUser(ctx context.Context, id uint, in client.UpdateUserInput) error {
	if _, err := m.api.UpdateUser(ctx, id, in); err != nil {
		m.fail("failed to update user", err)
		return err
	}
	m.toast("user updated", false)
	return m.reload(ctx)
}

// Managers lists the accounts eligible as a collaborator's manager, sorted by
// name for dropdown display.
func (m *Model) Managers() []client.User {
	out := make([]client.User, 0)
	for _, u := range m.Users {
		if u.Role == client.RoleManager || u.Role == client.RoleAdmin {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Model) reloadVacations(ctx context.Context) error {
	vacations, err := m.api.GetVacations(ctx)
	if err != nil {
		m.fail("failed to refresh vacation requests", err)
		return err
	}
	m.Vacations = vacations
	return nil
}

func (m *Model) reload(ctx context.Context) error {
	if err := m.reloadVacations(ctx); err != nil {
		return err
	}
	if m.IsAdmin() {
		users, err := m.api.GetUsers(ctx)
		if err != nil {
			m.fail("failed to refresh users", err)
			return err
		}
		m.Users = users
	}
	return nil
}

func (m *Model) toast(msg string, isErr bool) { m.Toast = &Toast{Message: msg, IsError: isErr} }

func (m *Model) fail(msg string, err error) {
	if errors.Is(err, client.ErrForbidden) {
		msg = "not allowed"
	}
	m.toast(msg, true)
}
