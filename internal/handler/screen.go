package handler

import (
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/user-roster/internal/domain"
	"github.com/msomdec/user-roster/internal/store"
	"github.com/msomdec/user-roster/internal/validate"
	"github.com/msomdec/user-roster/internal/view"
)

const (
	msgLoadFailed   = "Could not load users. Please try again."
	msgOpenFailed   = "Could not load that user. Please try again."
	msgSaveFailed   = "Could not save the user. Please try again."
	msgDeleteFailed = "Could not delete the user. Please try again."
)

// ScreenHandler serves the roster screen. It reads from and mutates the
// user store only; it never talks to the users API directly.
type ScreenHandler struct {
	users *store.UserStore
}

// NewScreenHandler creates a new ScreenHandler.
func NewScreenHandler(users *store.UserStore) *ScreenHandler {
	return &ScreenHandler{users: users}
}

// HandlePage renders the roster page from the store's current state. The
// page requests /users/list on load to refresh the collection.
func (h *ScreenHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if err := view.RosterPage(h.users.Users(), h.users.Loading()).Render(r.Context(), w); err != nil {
		slog.Error("render roster page", "error", err)
	}
}

// HandleList fetches all users and patches the card grid via SSE.
func (h *ScreenHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	err := h.users.FetchAllUsers(r.Context())

	banner := ""
	if err != nil {
		banner = msgLoadFailed
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.UserList(h.users.Users(), h.users.Loading(), banner))
}

// HandleNew opens the empty add form.
func (h *ScreenHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.UserForm(view.FormData{Mode: view.FormAdd}),
		datastar.WithSelectorID(view.ModalID),
		datastar.WithModeInner(),
	)
}

// HandleCreate validates the add form and creates the user. An invalid form
// is sent back with its single error and the store is not called.
func (h *ScreenHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var form domain.UserForm
	if err := datastar.ReadSignals(r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	errs, ok := validate.Form(form)
	sse := datastar.NewSSE(w, r)
	if !ok {
		sse.PatchElementTempl(view.UserForm(view.FormData{Mode: view.FormAdd, Values: form, Errors: errs}))
		return
	}

	if _, err := h.users.CreateUser(r.Context(), form.Input()); err != nil {
		sse.PatchElementTempl(view.UserForm(view.FormData{Mode: view.FormAdd, Values: form, Banner: msgSaveFailed}))
		return
	}

	sse.PatchElementTempl(view.UserList(h.users.Users(), h.users.Loading(), ""))
	sse.PatchElementTempl(view.EmptyModal())
}

// HandleEdit loads the user into the store's selected slot and opens the
// pre-filled edit form.
func (h *ScreenHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	user, err := h.users.FetchUserByID(r.Context(), id)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		sse.PatchElementTempl(view.Banner(msgOpenFailed))
		return
	}

	sse.PatchElementTempl(view.Banner(""))
	sse.PatchElementTempl(
		view.UserForm(view.FormData{Mode: view.FormEdit, UserID: id, Values: domain.FormFromUser(user)}),
		datastar.WithSelectorID(view.ModalID),
		datastar.WithModeInner(),
	)
}

// HandleUpdate validates the edit form and updates the user.
func (h *ScreenHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var form domain.UserForm
	if err := datastar.ReadSignals(r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	errs, ok := validate.Form(form)
	sse := datastar.NewSSE(w, r)
	if !ok {
		sse.PatchElementTempl(view.UserForm(view.FormData{Mode: view.FormEdit, UserID: id, Values: form, Errors: errs}))
		return
	}

	user, err := h.users.UpdateUserByID(r.Context(), id, form.Input())
	if err != nil {
		sse.PatchElementTempl(view.UserForm(view.FormData{Mode: view.FormEdit, UserID: id, Values: form, Banner: msgSaveFailed}))
		return
	}

	sse.PatchElementTempl(view.UserCard(user))
	h.users.ClearSelected()
	sse.PatchElementTempl(view.EmptyModal())
}

// HandleDelete deletes the user and removes its card.
func (h *ScreenHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := h.users.DeleteUserByID(r.Context(), id)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		sse.PatchElementTempl(view.Banner(msgDeleteFailed))
		return
	}

	sse.RemoveElementByID(view.CardID(id))
	sse.PatchElementTempl(view.Banner(""))
}

// HandleClose closes the modal and forgets the selected user.
func (h *ScreenHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.users.ClearSelected()

	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(view.EmptyModal())
}
