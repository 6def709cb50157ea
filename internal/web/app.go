// Package web is the server-rendered front end. It keeps no state of its own:
// every page load builds a dashboard model from the API and renders it.
package web

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/taskflow/vacation/client"
	"github.com/taskflow/vacation/dashboard"
	"github.com/taskflow/vacation/view"
)

type App struct {
	api *client.Client
}

// New builds the front-end handler talking to the API at apiURL.
func New(apiURL string) http.Handler {
	app := &App{api: client.New(apiURL)}
	view.SetLoggedInResolver(func(r *http.Request) bool {
		_, ok := readSession(r)
		return ok
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := readSession(r); ok {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /login", app.loginPage)
	mux.HandleFunc("POST /login", app.login)
	mux.HandleFunc("POST /logout", app.logout)
	mux.HandleFunc("GET /dashboard", app.withModel(app.dashboardPage))
	mux.HandleFunc("POST /vacations", app.withModel(app.createVacation))
	mux.HandleFunc("POST /vacations/{id}/approve", app.withModel(app.moderateVacation))
	mux.HandleFunc("POST /vacations/{id}/reject", app.withModel(app.moderateVacation))
	mux.HandleFunc("POST /vacations/{id}/delete", app.withModel(app.deleteVacation))
	mux.HandleFunc("POST /users", app.withModel(app.createUser))
	mux.HandleFunc("POST /users/{id}/delete", app.withModel(app.deleteUser))
	return mux
}

func (a *App) loginPage(w http.ResponseWriter, r *http.Request) {
	a.renderLogin(w, r, "")
}

func (a *App) renderLogin(w http.ResponseWriter, r *http.Request, errMsg string) {
	if err := view.Render(w, r, "login.html", map[string]any{"Error": errMsg}); err != nil {
		log.Printf("render login: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.renderLogin(w, r, "invalid form")
		return
	}
	sess, err := a.api.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		msg := "login failed, try again later"
		if errors.Is(err, client.ErrInvalidCredentials) {
			msg = "invalid email or password"
		}
		a.renderLogin(w, r, msg)
		return
	}
	if err := writeSession(w, sess); err != nil {
		a.renderLogin(w, r, "login failed, try again later")
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (a *App) logout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// withModel loads the session and a freshly populated dashboard model, or
// bounces to the login page.
func (a *App) withModel(next func(http.ResponseWriter, *http.Request, *dashboard.Model)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := readSession(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		m := dashboard.NewModel(a.api.WithSession(sess), *sess)
		if err := m.Load(r.Context()); err != nil {
			if errors.Is(err, client.ErrUnauthorized) {
				clearSession(w)
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		next(w, r, m)
	}
}

func (a *App) dashboardPage(w http.ResponseWriter, r *http.Request, m *dashboard.Model) {
	q := r.URL.Query()
	m.Filters.Employee = q.Get("employee")
	if d, err := client.ParseDate(q.Get("start")); err == nil {
		m.Filters.Start = d
	}
	if d, err := client.ParseDate(q.Get("end")); err == nil {
		m.Filters.End = d
	}

	month := dashboard.CurrentMonth()
	if t, err := time.Parse("2006-01", q.Get("month")); err == nil {
		month = dashboard.Month{Year: t.Year(), Month: t.Month()}
	}
	grid := dashboard.BuildGrid(month, m.FilteredVacations())

	data := map[string]any{
		"Session":            m.Session(),
		"IsAdmin":            m.IsAdmin(),
		"ShowEmployeeFilter": m.ShowEmployeeFilter(),
		"Moderator":          m.CanModerate(),
		"Vacations":          m.FilteredVacations(),
		"Pending":            m.PendingCount(),
		"Users":              m.Users,
		"Managers":           m.Managers(),
		"Filters":            m.Filters,
		"Grid":               grid,
		"PrevMonth":          fmt.Sprintf("%04d-%02d", grid.Month.Prev().Year, int(grid.Month.Prev().Month)),
		"NextMonth":          fmt.Sprintf("%04d-%02d", grid.Month.Next().Year, int(grid.Month.Next().Month)),
		"Error":              q.Get("error"),
		"Notice":             q.Get("notice"),
	}
	if err := view.Render(w, r, "dashboard.html", data); err != nil {
		log.Printf("render dashboard: %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (a *App) createVacation(w http.ResponseWriter, r *http.Request, m *dashboard.Model) {
	if err := r.ParseForm(); err != nil {
		redirectDash(w, r, "error", "invalid form")
		return
	}
	start, _ := client.ParseDate(r.FormValue("startDate"))
	end, _ := client.ParseDate(r.FormValue("endDate"))
	if err := m.CreateVacation(r.Context(), start, end); err != nil {
		redirectDash(w, r, "error", m.FormError)
		return
	}
	redirectDash(w, r, "notice", "vacation request submitted")
}

func (a *App) moderateVacation(w http.ResponseWriter, r *http.Request, m *dashboard.Model) {
	id, ok := formID(r)
	if !ok {
		redirectDash(w, r, "error", "invalid request")
		return
	}
	var err error
	if strings.HasSuffix(r.URL.Path, "/approve") {
		err = m.Approve(r.Context(), id)
	} else {
		err = m.Reject(r.Context(), id)
	}
	if err != nil {
		redirectDash(w, r, "error", m.Toast.Message)
		return
	}
	redirectDash(w, r, "notice", m.Toast.Message)
}

func (a *App) deleteVacation(w http.ResponseWriter, r *http.Request, m *dashboard.Model) {
	id, ok := formID(r)
	if !ok {
		redirectDash(w, r, "error", "invalid request")
		return
	}
	m.RequestDeleteVacation(id)
	if err := m.ConfirmPending(r.Context()); err != nil {
		redirectDash(w, r, "error", m.Toast.Message)
		return
	}
	redirectDash(w, r, "notice", "request deleted")
}

func (a *App) createUser(w http.ResponseWriter, r *http.Request, m *dashboard.Model) {
	if err := r.ParseForm(); err != nil {
		redirectDash(w, r, "error", "invalid form")
		return
	}
	in := client.CreateUserInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Name:     r.FormValue("name"),
		Role:     client.Role(r.FormValue("role")),
	}
	if v := r.FormValue("managerId"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			mid := uint(id)
			in.ManagerID = &mid
		}
	}
	if err := m.CreateUser(r.Context(), in); err != nil {
		redirectDash(w, r, "error", m.FormError)
		return
	}
	redirectDash(w, r, "notice", "user created")
}

// deleteUser runs the two-step cascade in one request: the browser form
// carries cascade=1 once the user has confirmed the second dialog.
func (a *App) deleteUser(w http.ResponseWriter, r *http.Request, m *dashboard.Model) {
	id, ok := formID(r)
	if !ok {
		redirectDash(w, r, "error", "invalid request")
		return
	}
	m.RequestDeleteUser(id)
	err := m.ConfirmPending(r.Context())
	if errors.Is(err, client.ErrUserHasVacations) {
		if r.FormValue("cascade") == "1" {
			err = m.ConfirmPending(r.Context())
		} else {
			redirectDash(w, r, "error", "user still has vacation requests; confirm cascade delete")
			return
		}
	}
	if err != nil {
		redirectDash(w, r, "error", m.Toast.Message)
		return
	}
	redirectDash(w, r, "notice", "user deleted")
}

func formID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func redirectDash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	http.Redirect(w, r, "/dashboard?"+kind+"="+url.QueryEscape(msg), http.StatusSeeOther)
}
