package usersapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/restpanel/internal/platform/errors"
	"github.com/louisbranch/restpanel/internal/platform/id"
	"github.com/louisbranch/restpanel/internal/platform/timeouts"
	"github.com/louisbranch/restpanel/internal/services/usersapi/storage"
	"github.com/rs/cors"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CollectionPath is the users collection.
	CollectionPath = "/users"
	// StoresPath is the stores collection, whose user_id references users.
	StoresPath = "/stores"
	// TotalCountHeader carries the unpaginated size of a list response.
	TotalCountHeader = "X-Total-Count"

	maxBodyBytes = 1 << 20
)

// HandlerConfig configures the users API handler.
type HandlerConfig struct {
	Store storage.Store
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Now and NewID are replaced in tests.
	Now   func() time.Time
	NewID func() (string, error)
}

// Handler serves the users and stores collections.
type Handler struct {
	store           storage.Store
	bcryptCost      int
	now             func() time.Time
	newID           func() (string, error)
	createBody      *bodyValidator
	updateBody      *bodyValidator
	createStoreBody *bodyValidator
	updateStoreBody *bodyValidator
}

// userResource is the public JSON shape of a user. Stores lists the ids of
// the shops the user owns and is never null.
type userResource struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FullName  string   `json:"full_name"`
	Stores    []string `json:"stores"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

type userWrite struct {
	ID       *string `json:"id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewHandler builds the users API handler wrapped with CORS.
func NewHandler(config HandlerConfig) (http.Handler, error) {
	h, err := newHandler(config)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	h.routes(mux)
	return withCORS(mux), nil
}

func newHandler(config HandlerConfig) (*Handler, error) {
	if config.Store == nil {
		return nil, errors.New("users store is required")
	}
	createBody, err := compileValidator("create-user.json", createUserSchema)
	if err != nil {
		return nil, err
	}
	updateBody, err := compileValidator("update-user.json", updateUserSchema)
	if err != nil {
		return nil, err
	}
	createStoreBody, err := compileValidator("create-store.json", createStoreSchema)
	if err != nil {
		return nil, err
	}
	updateStoreBody, err := compileValidator("update-store.json", updateStoreSchema)
	if err != nil {
		return nil, err
	}
	h := &Handler{
		store:           config.Store,
		bcryptCost:      config.BcryptCost,
		now:             config.Now,
		newID:           config.NewID,
		createBody:      createBody,
		updateBody:      updateBody,
		createStoreBody: createStoreBody,
		updateStoreBody: updateStoreBody,
	}
	if h.bcryptCost == 0 {
		h.bcryptCost = bcrypt.DefaultCost
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.newID == nil {
		h.newID = id.NewID
	}
	return h, nil
}

func (h *Handler) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET "+CollectionPath, h.handleList)
	mux.HandleFunc("POST "+CollectionPath, h.handleCreate)
	mux.HandleFunc("GET "+CollectionPath+"/{id}", h.handleGet)
	mux.HandleFunc("PUT "+CollectionPath+"/{id}", h.handleUpdate)
	mux.HandleFunc("PATCH "+CollectionPath+"/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE "+CollectionPath+"/{id}", h.handleDelete)

	mux.HandleFunc("GET "+StoresPath, h.handleListStores)
	mux.HandleFunc("POST "+StoresPath, h.handleCreateStore)
	mux.HandleFunc("GET "+StoresPath+"/{id}", h.handleGetStore)
	mux.HandleFunc("PUT "+StoresPath+"/{id}", h.handleUpdateStore)
	mux.HandleFunc("PATCH "+StoresPath+"/{id}", h.handleUpdateStore)
	mux.HandleFunc("DELETE "+StoresPath+"/{id}", h.handleDeleteStore)
}

func withCORS(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Content-Type", "Traceparent", "Tracestate"},
		ExposedHeaders: []string{TotalCountHeader},
	}).Handler(next)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query, ok, err := parseListQuery(r.URL.Query(), storage.UserFields)
	if err != nil {
		writeError(w, "list users", apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err))
		return
	}
	if !ok {
		// A filter on a field no user carries matches nothing.
		w.Header().Set(TotalCountHeader, "0")
		writeJSON(w, http.StatusOK, []userResource{})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreQuery)
	defer cancel()
	page, err := h.store.ListUsers(ctx, query)
	if err != nil {
		h.writeStoreError(w, resourceUser, "list users", err)
		return
	}
	out := make([]userResource, 0, len(page.Users))
	for _, user := range page.Users {
		out = append(out, toResource(user))
	}
	w.Header().Set(TotalCountHeader, strconv.Itoa(page.Total))
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreQuery)
	defer cancel()
	user, err := h.store.GetUser(ctx, r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, resourceUser, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, toResource(user))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeWrite[userWrite](w, r, h.createBody)
	if !ok {
		return
	}

	userID := ""
	if input.ID != nil {
		userID = strings.TrimSpace(*input.ID)
	}
	if userID == "" {
		generated, err := h.newID()
		if err != nil {
			writeError(w, "generate user id", err)
			return
		}
		userID = generated
	}
	hash, err := h.hashPassword(*input.Password)
	if err != nil {
		writeError(w, "hash password", err)
		return
	}

	now := h.now().UTC()
	user := storage.User{
		ID:           userID,
		Username:     strings.TrimSpace(*input.Username),
		Email:        strings.TrimSpace(*input.Email),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreQuery)
	defer cancel()
	if err := h.store.CreateUser(ctx, user); err != nil {
		h.writeStoreError(w, resourceUser, "create user", err)
		return
	}
	w.Header().Set("Location", CollectionPath+"/"+user.ID)
	writeJSON(w, http.StatusCreated, toResource(user))
}

// handleUpdate serves PUT and PATCH. Both merge the supplied fields into the
// stored user; id and timestamps are server-owned.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeWrite[userWrite](w, r, h.updateBody)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreQuery)
	defer cancel()
	user, err := h.store.GetUser(ctx, r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, resourceUser, "get user", err)
		return
	}
	if input.Username != nil {
		user.Username = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Password != nil {
		hash, err := h.hashPassword(*input.Password)
		if err != nil {
			writeError(w, "hash password", err)
			return
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateUser(ctx, user); err != nil {
		h.writeStoreError(w, resourceUser, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, toResource(user))
}

// handleDelete answers with the removed user.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreQuery)
	defer cancel()
	user, err := h.store.GetUser(ctx, r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, resourceUser, "get user", err)
		return
	}
	if err := h.store.DeleteUser(ctx, user.ID); err != nil {
		h.writeStoreError(w, resourceUser, "delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, toResource(user))
}

// decodeWrite reads a bounded body, checks it against validator and decodes it
// into T. It answers the request itself when it returns false.
func decodeWrite[T any](w http.ResponseWriter, r *http.Request, validator *bodyValidator) (T, bool) {
	var input T
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeError(w, "read body", apperrors.Wrap(apperrors.CodeInvalidArgument, "could not read request body", err))
		return input, false
	}
	if len(body) > maxBodyBytes {
		writeError(w, "read body", apperrors.New(apperrors.CodeBodyTooLarge, "request body too large"))
		return input, false
	}
	if err := validator.validate(body); err != nil {
		writeError(w, "validate body", apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err))
		return input, false
	}
	if err := json.Unmarshal(body, &input); err != nil {
		writeError(w, "decode body", apperrors.Wrap(apperrors.CodeInvalidArgument, "invalid JSON body", err))
		return input, false
	}
	return input, true
}

func (h *Handler) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

const (
	resourceUser  = "user"
	resourceStore = "store"
)

// writeStoreError maps storage sentinels onto public errors naming resource.
func (h *Handler) writeStoreError(w http.ResponseWriter, resource, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		err = apperrors.Wrap(apperrors.CodeNotFound, resource+" not found", err)
	case errors.Is(err, storage.ErrUsernameTaken):
		err = apperrors.Wrap(apperrors.CodeAlreadyExists, "username already taken", err)
	case errors.Is(err, storage.ErrAlreadyExists):
		err = apperrors.Wrap(apperrors.CodeAlreadyExists, resource+" id already exists", err)
	case errors.Is(err, storage.ErrUnknownOwner):
		err = apperrors.Wrap(apperrors.CodeInvalidArgument, "user_id does not reference a user", err)
	case errors.Is(err, context.DeadlineExceeded):
		err = apperrors.Wrap(apperrors.CodeTimeout, "storage timed out", err)
	}
	writeError(w, op, err)
}

func toResource(user storage.User) userResource {
	return userResource{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Stores:    storeIDs(user.StoreIDs),
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func storeIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError answers with the status and public message of err. Server-side
// failures are logged with op.
func writeError(w http.ResponseWriter, op string, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s: %v", op, err)
	}
	writeJSON(w, status, errorResponse{Message: apperrors.PublicMessage(err)})
}
