package usersapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/restpanel/internal/platform/errors"
	"github.com/louisbranch/restpanel/internal/platform/timeouts"
	"github.com/louisbranch/restpanel/internal/services/usersapi/storage"
)

// storeResource is the public JSON shape of a shop. UserID references a user.
type storeResource struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type storeWrite struct {
	ID     *string `json:"id"`
	Name   *string `json:"name"`
	UserID *string `json:"user_id"`
}

func (h *Handler) handleListStores(w http.ResponseWriter, r *http.Request) {
	query, ok, err := parseListQuery(r.URL.Query(), storage.ShopFields)
	if err != nil {
		writeError(w, "list stores", apperrors.Wrap(apperrors.CodeInvalidArgument, err.Error(), err))
		return
	}
	if !ok {
		w.Header().Set(TotalCountHeader, "0")
		writeJSON(w, http.StatusOK, []storeResource{})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreQuery)
	defer cancel()
	page, err := h.store.ListShops(ctx, query)
	if err != nil {
		h.writeStoreError(w, resourceStore, "list stores", err)
		return
	}
	out := make([]storeResource, 0, len(page.Shops))
	for _, shop := range page.Shops {
		out = append(out, toStoreResource(shop))
	}
	w.Header().Set(TotalCountHeader, strconv.Itoa(page.Total))
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetStore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreQuery)
	defer cancel()
	shop, err := h.store.GetShop(ctx, r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, resourceStore, "get store", err)
		return
	}
	writeJSON(w, http.StatusOK, toStoreResource(shop))
}

func (h *Handler) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeWrite[storeWrite](w, r, h.createStoreBody)
	if !ok {
		return
	}

	shopID := ""
	if input.ID != nil {
		shopID = strings.TrimSpace(*input.ID)
	}
	if shopID == "" {
		generated, err := h.newID()
		if err != nil {
			writeError(w, "generate store id", err)
			return
		}
		shopID = generated
	}
	now := h.now().UTC()
	shop := storage.Shop{
		ID:        shopID,
		Name:      strings.TrimSpace(*input.Name),
		UserID:    strings.TrimSpace(*input.UserID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreQuery)
	defer cancel()
	if err := h.store.CreateShop(ctx, shop); err != nil {
		h.writeStoreError(w, resourceStore, "create store", err)
		return
	}
	w.Header().Set("Location", StoresPath+"/"+shop.ID)
	writeJSON(w, http.StatusCreated, toStoreResource(shop))
}

// handleUpdateStore serves PUT and PATCH with the same merge rules as users.
func (h *Handler) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeWrite[storeWrite](w, r, h.updateStoreBody)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreQuery)
	defer cancel()
	shop, err := h.store.GetShop(ctx, r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, resourceStore, "get store", err)
		return
	}
	if input.Name != nil {
		shop.Name = strings.TrimSpace(*input.Name)
	}
	if input.UserID != nil {
		shop.UserID = strings.TrimSpace(*input.UserID)
	}
	shop.UpdatedAt = h.now().UTC()

	if err := h.store.UpdateShop(ctx, shop); err != nil {
		h.writeStoreError(w, resourceStore, "update store", err)
		return
	}
	writeJSON(w, http.StatusOK, toStoreResource(shop))
}

func (h *Handler) handleDeleteStore(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.StoreQuery)
	defer cancel()
	shop, err := h.store.GetShop(ctx, r.PathValue("id"))
	if err != nil {
		h.writeStoreError(w, resourceStore, "get store", err)
		return
	}
	if err := h.store.DeleteShop(ctx, shop.ID); err != nil {
		h.writeStoreError(w, resourceStore, "delete store", err)
		return
	}
	writeJSON(w, http.StatusOK, toStoreResource(shop))
}

func toStoreResource(shop storage.Shop) storeResource {
	return storeResource{
		ID:        shop.ID,
		Name:      shop.Name,
		UserID:    shop.UserID,
		CreatedAt: shop.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: shop.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
