package usecase

import (
	"context"
	"testing"

	"github.com/sc619/authd/internal/auth/entity"
	"github.com/sc619/authd/internal/pkg/jwt"
)

func authCtx(userID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: userID})
}

func TestProfile(t *testing.T) {

	t.Run("RequiresAuth", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		_, err := env.uc.Profile(context.Background())

		// Assert
		if !isBusinessError(err, "Authentication required") {
			t.Fatalf("expected auth rejection, got %v", err)
		}
	})

	t.Run("ReturnsUserWithAddressesAndMobiles", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		user := env.seedUser(t, entity.User{
			ID:       7,
			Username: "dana",
			Email:    "dana@example.com",
			Mobile:   "+15550001111",
			Name:     "Dana",
			LastName: "Reyes",
			IsActive: true,
		})
		env.db.mu.Lock()
		env.db.addresses[11] = entity.Address{ID: 11, UserID: user.ID, City: "Lisbon", Street: "Rua A", House: "4"}
		env.db.mobiles[21] = entity.ExtraMobile{ID: 21, UserID: user.ID, Mobile: "+15550002222"}
		env.db.addresses[12] = entity.Address{ID: 12, UserID: 99, City: "Porto", Street: "Rua B", House: "9"}
		env.db.mu.Unlock()

		// Act
		out, err := env.uc.Profile(authCtx(user.ID))

		// Assert
		if err != nil {
			t.Fatalf("profile: %v", err)
		}
		if out.Email != user.Email || out.Name != "Dana" {
			t.Fatalf("unexpected profile %+v", out)
		}
		if len(out.Addresses) != 1 || out.Addresses[0].City != "Lisbon" {
			t.Fatalf("expected only own addresses, got %+v", out.Addresses)
		}
		if len(out.ExtraMobiles) != 1 {
			t.Fatalf("expected one secondary mobile, got %+v", out.ExtraMobiles)
		}
	})

	t.Run("UpdateNameAndPassword", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		user := env.seedUser(t, entity.User{ID: 7, Name: "Dana", IsActive: true})

		// Act
		err := env.uc.ProfileUpdate(authCtx(user.ID), ProfileUpdateInput{
			Name:     "Daniela",
			Password: "fresh-secret-1",
		})

		// Assert
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		stored, _ := env.db.GetUserByID(context.Background(), user.ID)
		if stored.Name != "Daniela" {
			t.Fatalf("expected name change, got %q", stored.Name)
		}
		if !env.bcrypt.Verify(stored.Password, "fresh-secret-1") {
			t.Fatalf("new password must verify")
		}
	})
}

func TestAddress(t *testing.T) {

	t.Run("CreateListUpdateDelete", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		ctx := authCtx(7)
		env.seedUser(t, entity.User{ID: 7, IsActive: true})

		// Act
		created, err := env.uc.AddressCreate(ctx, AddressCreateInput{
			City:      "Lisbon",
			Street:    "Rua A",
			House:     "4",
			IsDefault: true,
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		list, err := env.uc.AddressList(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}

		if err := env.uc.AddressUpdate(ctx, AddressUpdateInput{
			ID:     created.ID,
			City:   "Porto",
			Street: "Rua B",
			House:  "9",
		}); err != nil {
			t.Fatalf("update: %v", err)
		}

		if err := env.uc.AddressDelete(ctx, AddressDeleteInput{ID: created.ID}); err != nil {
			t.Fatalf("delete: %v", err)
		}

		// Assert
		if len(list.Addresses) != 1 || list.Addresses[0].City != "Lisbon" {
			t.Fatalf("unexpected list %+v", list.Addresses)
		}
		after, err := env.uc.AddressList(ctx)
		if err != nil {
			t.Fatalf("list after delete: %v", err)
		}
		if len(after.Addresses) != 0 {
			t.Fatalf("expected empty list, got %+v", after.Addresses)
		}
	})

	t.Run("CannotTouchForeignAddress", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.db.mu.Lock()
		env.db.addresses[11] = entity.Address{ID: 11, UserID: 99, City: "Lisbon", Street: "Rua A", House: "4"}
		env.db.mu.Unlock()

		// Act
		updateErr := env.uc.AddressUpdate(authCtx(7), AddressUpdateInput{
			ID: 11, City: "Porto", Street: "Rua B", House: "9",
		})
		deleteErr := env.uc.AddressDelete(authCtx(7), AddressDeleteInput{ID: 11})

		// Assert
		if !isBusinessError(updateErr, "Address not found") {
			t.Fatalf("expected not-found on update, got %v", updateErr)
		}
		if !isBusinessError(deleteErr, "Address not found") {
			t.Fatalf("expected not-found on delete, got %v", deleteErr)
		}
	})
}

func TestMobile(t *testing.T) {

	t.Run("AddStartsUnconfirmed", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.seedUser(t, entity.User{ID: 7, IsActive: true})

		// Act
		out, err := env.uc.MobileAdd(authCtx(7), MobileAddInput{Mobile: "+15550002222"})

		// Assert
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		env.db.mu.Lock()
		defer env.db.mu.Unlock()
		if env.db.mobiles[out.ID].Confirmed {
			t.Fatalf("new number must start unconfirmed")
		}
	})

	t.Run("RejectsPrimaryNumberOfAnyAccount", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.seedUser(t, entity.User{ID: 9, Mobile: "+15550002222", IsActive: true})

		// Act
		_, err := env.uc.MobileAdd(authCtx(7), MobileAddInput{Mobile: "+15550002222"})

		// Assert
		if !isBusinessError(err, "already in use") {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("DeleteForeignNumber", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.db.mu.Lock()
		env.db.mobiles[21] = entity.ExtraMobile{ID: 21, UserID: 99, Mobile: "+15550002222"}
		env.db.mu.Unlock()

		// Act
		err := env.uc.MobileDelete(authCtx(7), MobileDeleteInput{ID: 21})

		// Assert
		if !isBusinessError(err, "not found") {
			t.Fatalf("expected not-found, got %v", err)
		}
	})
}
