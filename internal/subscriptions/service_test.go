package subscriptions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/chirpy-dev/chirpy-backend/pkg/db/models"
	pkgerrors "github.com/chirpy-dev/chirpy-backend/pkg/errors"
)

type fakeRepository struct {
	upserted  []*models.NotificationSubscription
	upsertErr error
	removed   int64
	deleteErr error
	deletedBy *uuid.UUID
}

func (f *fakeRepository) Upsert(ctx context.Context, sub *models.NotificationSubscription) error {
	f.upserted = append(f.upserted, sub)
	return f.upsertErr
}

func (f *fakeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.NotificationSubscription, error) {
	return nil, nil
}

func (f *fakeRepository) DeleteByEndpoint(ctx context.Context, userID *uuid.UUID, endpoint string) (int64, error) {
	f.deletedBy = userID
	return f.removed, f.deleteErr
}

func validInput() RegisterInput {
	return RegisterInput{Subscription: PushSubscription{
		Endpoint: " https://updates.push.services.mozilla.com/wpush/v2/abc ",
		Keys:     Keys{P256dh: "BNc...", Auth: "tBH..."},
	}}
}

func TestService_Register(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	user := uuid.New()

	sub, err := svc.Register(context.Background(), user, validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if sub.UserID != user || sub.Endpoint != "https://updates.push.services.mozilla.com/wpush/v2/abc" {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}
}

func TestService_RegisterValidation(t *testing.T) {
	svc, _ := NewService(&fakeRepository{})
	cases := map[string]func(*RegisterInput){
		"missing endpoint": func(in *RegisterInput) { in.Subscription.Endpoint = "" },
		"plain http":       func(in *RegisterInput) { in.Subscription.Endpoint = "http://push.example/1" },
		"missing keys":     func(in *RegisterInput) { in.Subscription.Keys = Keys{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			if _, err := svc.Register(context.Background(), uuid.New(), in); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if _, err := svc.Register(context.Background(), uuid.Nil, validInput()); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}
}

func TestService_RegisterRepositoryError(t *testing.T) {
	svc, _ := NewService(&fakeRepository{upsertErr: errors.New("db down")})
	if _, err := svc.Register(context.Background(), uuid.New(), validInput()); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestService_Unregister(t *testing.T) {
	repo := &fakeRepository{removed: 1}
	svc, _ := NewService(repo)
	user := uuid.New()

	if err := svc.Unregister(context.Background(), user, "https://push.example/1"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	if repo.deletedBy == nil || *repo.deletedBy != user {
		t.Fatalf("expected delete scoped to %s", user)
	}

	repo.removed = 0
	if err := svc.Unregister(context.Background(), user, "https://push.example/1"); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNewServiceRequiresRepository(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error")
	}
}
