// Package view renders the roster screen. Pages and fragments are html
// templates exposed as templ components, so handlers can render them
// directly or push them through datastar element patches.
package view

import (
	"embed"
	"encoding/json"
	"html/template"

	"github.com/a-h/templ"

	"github.com/msomdec/user-roster/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))

// Element ids the handlers patch.
const (
	UserListID = "user-list"
	ModalID    = "modal"
	FormID     = "user-form"
	BannerID   = "banner"
)

// CardID returns the element id of a user's card.
func CardID(userID string) string {
	return "user-" + userID
}

// FormMode selects between the add and edit variants of the user form.
type FormMode string

const (
	FormAdd  FormMode = "add"
	FormEdit FormMode = "edit"
)

// FormData is everything the user form needs to render.
type FormData struct {
	Mode   FormMode
	UserID string
	Values domain.UserForm
	Errors domain.FieldErrors
	Banner string
}

// Signals is the initial datastar signal set for the form inputs.
func (f FormData) Signals() string {
	b, err := json.Marshal(f.Values)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Title is the form heading.
func (f FormData) Title() string {
	if f.Mode == FormEdit {
		return "Update User Details"
	}
	return "Add User"
}

type listData struct {
	Users   []domain.User
	Loading bool
	Banner  string
}

func render(name string, data any) templ.Component {
	return templ.FromGoHTML(templates.Lookup(name), data)
}

// RosterPage renders the full screen.
func RosterPage(users []domain.User, loading domain.LoadingState) templ.Component {
	return render("page", listData{Users: users, Loading: loading == domain.LoadingPending})
}

// UserList renders the card grid. banner is shown above the cards when set.
func UserList(users []domain.User, loading domain.LoadingState, banner string) templ.Component {
	return render("user_list", listData{Users: users, Loading: loading == domain.LoadingPending, Banner: banner})
}

// UserCard renders a single user's card.
func UserCard(u domain.User) templ.Component {
	return render("user_card", u)
}

// UserForm renders the add or edit form.
func UserForm(data FormData) templ.Component {
	return render("user_form", data)
}

// EmptyModal renders the closed modal mount point.
func EmptyModal() templ.Component {
	return render("modal_empty", nil)
}

// Banner renders the page-level error banner. An empty message clears it.
func Banner(message string) templ.Component {
	return render("banner", message)
}
