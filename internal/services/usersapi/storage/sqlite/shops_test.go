package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/louisbranch/restpanel/internal/services/usersapi/storage"
)

func TestCreateGetShopRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedUsers(t, store, 1)
	now := time.Date(2026, time.March, 4, 10, 30, 0, 0, time.UTC)
	input := storage.Shop{ID: "s1", Name: " Difference Engines ", UserID: "id00", CreatedAt: now, UpdatedAt: now}
	if err := store.CreateShop(context.Background(), input); err != nil {
		t.Fatalf("create shop: %v", err)
	}

	got, err := store.GetShop(context.Background(), "s1")
	if err != nil {
		t.Fatalf("get shop: %v", err)
	}
	if got.Name != "Difference Engines" {
		t.Fatalf("name = %q, want %q", got.Name, "Difference Engines")
	}
	if got.UserID != "id00" {
		t.Fatalf("user id = %q, want id00", got.UserID)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", got.CreatedAt, now)
	}
	if _, err := store.GetShop(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestCreateShopRequiresExistingOwner(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	err := store.CreateShop(context.Background(), storage.Shop{ID: "s1", Name: "Orphan", UserID: "nobody"})
	if !errors.Is(err, storage.ErrUnknownOwner) {
		t.Fatalf("err = %v, want %v", err, storage.ErrUnknownOwner)
	}
	page, err := store.ListShops(context.Background(), storage.ListQuery{})
	if err != nil {
		t.Fatalf("list shops: %v", err)
	}
	if page.Total != 0 {
		t.Fatalf("total = %d, want 0", page.Total)
	}
}

func TestCreateShopValidatesFields(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedUsers(t, store, 1)
	tests := []struct {
		name string
		shop storage.Shop
	}{
		{name: "id", shop: storage.Shop{ID: " ", Name: "x", UserID: "id00"}},
		{name: "name", shop: storage.Shop{ID: "s1", Name: " ", UserID: "id00"}},
		{name: "user id", shop: storage.Shop{ID: "s1", Name: "x", UserID: ""}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := store.CreateShop(context.Background(), tc.shop); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateShopDuplicateID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedUsers(t, store, 1)
	shop := storage.Shop{ID: "s1", Name: "First", UserID: "id00"}
	if err := store.CreateShop(context.Background(), shop); err != nil {
		t.Fatalf("create shop: %v", err)
	}
	err := store.CreateShop(context.Background(), shop)
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("err = %v, want %v", err, storage.ErrAlreadyExists)
	}
	if errors.Is(err, storage.ErrUsernameTaken) {
		t.Fatalf("err = %v, want no username conflict", err)
	}
}

func TestListShopsFiltersByOwner(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedUsers(t, store, 2)
	seedShops(t, store, "id00", "Zeta", "Alpha", "Mid")
	seedShops(t, store, "id01", "Other")

	page, err := store.ListShops(context.Background(), storage.ListQuery{
		Sort:    "name",
		Filters: map[string][]string{"user_id": {"id00"}},
	})
	if err != nil {
		t.Fatalf("list shops: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("total = %d, want 3", page.Total)
	}
	names := make([]string, 0, len(page.Shops))
	for _, shop := range page.Shops {
		names = append(names, shop.Name)
	}
	if fmt.Sprint(names) != "[Alpha Mid Zeta]" {
		t.Fatalf("names = %v, want [Alpha Mid Zeta]", names)
	}

	page, err = store.ListShops(context.Background(), storage.ListQuery{Search: "OTH", Limit: 5})
	if err != nil {
		t.Fatalf("search shops: %v", err)
	}
	if page.Total != 1 || page.Shops[0].UserID != "id01" {
		t.Fatalf("search = %+v, want the id01 shop", page)
	}

	if _, err := store.ListShops(context.Background(), storage.ListQuery{Sort: "email"}); err == nil {
		t.Fatal("expected unsupported sort error")
	}
	if _, err := store.ListShops(context.Background(), storage.ListQuery{Filters: map[string][]string{"username": {"x"}}}); err == nil {
		t.Fatal("expected unsupported filter error")
	}
}

func TestUserStoreIDsFollowShops(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedUsers(t, store, 2)
	seedShops(t, store, "id00", "Alpha", "Beta")

	user, err := store.GetUser(context.Background(), "id00")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if fmt.Sprint(user.StoreIDs) != "[id00-0 id00-1]" {
		t.Fatalf("store ids = %v, want [id00-0 id00-1]", user.StoreIDs)
	}

	page, err := store.ListUsers(context.Background(), storage.ListQuery{})
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(page.Users[0].StoreIDs) != 2 {
		t.Fatalf("listed store ids = %v, want 2 ids", page.Users[0].StoreIDs)
	}
	if page.Users[1].StoreIDs == nil || len(page.Users[1].StoreIDs) != 0 {
		t.Fatalf("shopless store ids = %#v, want empty slice", page.Users[1].StoreIDs)
	}
}

func TestUpdateShopMovesOwner(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedUsers(t, store, 2)
	seedShops(t, store, "id00", "Alpha")

	shop, err := store.GetShop(context.Background(), "id00-0")
	if err != nil {
		t.Fatalf("get shop: %v", err)
	}
	shop.UserID = "id01"
	shop.Name = "Renamed"
	if err := store.UpdateShop(context.Background(), shop); err != nil {
		t.Fatalf("update shop: %v", err)
	}
	got, err := store.GetShop(context.Background(), "id00-0")
	if err != nil {
		t.Fatalf("get shop: %v", err)
	}
	if got.UserID != "id01" || got.Name != "Renamed" {
		t.Fatalf("shop = %+v, want renamed and owned by id01", got)
	}

	shop.UserID = "nobody"
	if err := store.UpdateShop(context.Background(), shop); !errors.Is(err, storage.ErrUnknownOwner) {
		t.Fatalf("unknown owner err = %v, want %v", err, storage.ErrUnknownOwner)
	}
	missing := storage.Shop{ID: "missing", Name: "x", UserID: "id00"}
	if err := store.UpdateShop(context.Background(), missing); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestDeleteShop(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedUsers(t, store, 1)
	seedShops(t, store, "id00", "Alpha")

	if err := store.DeleteShop(context.Background(), "id00-0"); err != nil {
		t.Fatalf("delete shop: %v", err)
	}
	if err := store.DeleteShop(context.Background(), "id00-0"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete again err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestDeleteUserRemovesOwnedShops(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedUsers(t, store, 2)
	seedShops(t, store, "id00", "Alpha", "Beta")
	seedShops(t, store, "id01", "Kept")

	if err := store.DeleteUser(context.Background(), "id00"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	page, err := store.ListShops(context.Background(), storage.ListQuery{})
	if err != nil {
		t.Fatalf("list shops: %v", err)
	}
	if page.Total != 1 || page.Shops[0].Name != "Kept" {
		t.Fatalf("remaining shops = %+v, want only Kept", page.Shops)
	}

	if err := store.DeleteUser(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing err = %v, want %v", err, storage.ErrNotFound)
	}
}

// seedShops creates shops with ids <userID>-<n> in the order given.
func seedShops(t *testing.T, store *Store, userID string, names ...string) {
	t.Helper()

	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range names {
		at := base.Add(time.Duration(i) * time.Minute)
		shop := storage.Shop{ID: fmt.Sprintf("%s-%d", userID, i), Name: name, UserID: userID, CreatedAt: at, UpdatedAt: at}
		if err := store.CreateShop(context.Background(), shop); err != nil {
			t.Fatalf("seed shop %s: %v", name, err)
		}
	}
}
