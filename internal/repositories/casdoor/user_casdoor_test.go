package casdoor

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/lms-quiz-service/internal/models"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
)

type fakeClient struct {
	users map[string]*casdoorsdk.User
	calls int
}

func (f *fakeClient) GetUserByUserId(userId string) (*casdoorsdk.User, error) {
	f.calls++
	return f.users[userId], nil
}

func (f *fakeClient) GetPaginationUsers(p int, pageSize int, queryMap map[string]string) ([]*casdoorsdk.User, int, error) {
	f.calls++
	out := make([]*casdoorsdk.User, 0, len(f.users))
	for _, id := range []string{"u-admin", "u-inst", "u-stu"} {
		if user, ok := f.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, len(out), nil
}

func newFakeClient() *fakeClient {
	return &fakeClient{users: map[string]*casdoorsdk.User{
		"u-admin": {Id: "u-admin", DisplayName: "Root", IsAdmin: true},
		"u-inst":  {Id: "u-inst", DisplayName: "Grace", Roles: []*casdoorsdk.Role{{Name: "Teacher"}}},
		"u-stu":   {Id: "u-stu", DisplayName: "Ada", Email: "ada@example.com", Roles: []*casdoorsdk.Role{{Name: "student"}}},
	}}
}

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()}), mr
}

func TestGetByIDCachesUser(t *testing.T) {
	client, mr := newRedis(t)
	fake := newFakeClient()
	repo := newUserCasdoor(fake, client)
	ctx := context.Background()

	user, err := repo.GetByID(ctx, "u-stu")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if user.FullName != "Ada" || user.Role != models.RoleStudent {
		t.Fatalf("unexpected user %+v", user)
	}

	deadline := time.Now().Add(2 * time.Second)
	for !mr.Exists("user:id:u-stu") && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if _, err := repo.GetByID(ctx, "u-stu"); err != nil {
		t.Fatalf("second GetByID: %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("expected one Casdoor call, got %d", fake.calls)
	}
}

func TestGetByIDUnknownUser(t *testing.T) {
	repo := newUserCasdoor(newFakeClient(), nil)
	if _, err := repo.GetByID(context.Background(), "ghost"); !repositories.IsNotFoundError(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestExistsByIDCachesResult(t *testing.T) {
	client, mr := newRedis(t)
	fake := newFakeClient()
	repo := newUserCasdoor(fake, client)
	ctx := context.Background()

	exists, err := repo.ExistsByID(ctx, "ghost")
	if err != nil || exists {
		t.Fatalf("ExistsByID(ghost) = %v, %v", exists, err)
	}
	if !mr.Exists("user:exists:id:ghost") {
		t.Fatal("existence check was not cached")
	}

	if exists, _ := repo.ExistsByID(ctx, "ghost"); exists || fake.calls != 1 {
		t.Fatalf("expected cached negative answer, calls=%d", fake.calls)
	}
}

func TestMapCasdoorRoles(t *testing.T) {
	fake := newFakeClient()
	tests := map[string]models.UserRole{
		"u-admin": models.RoleAdmin,
		"u-inst":  models.RoleInstructor,
		"u-stu":   models.RoleStudent,
	}
	for id, want := range tests {
		if got := MapCasdoorRoles(fake.users[id]); got != want {
			t.Errorf("MapCasdoorRoles(%s) = %s, want %s", id, got, want)
		}
	}
	if got := MapCasdoorRoles(&casdoorsdk.User{}); got != models.RoleStudent {
		t.Errorf("user without roles = %s", got)
	}
}

func TestListFiltersByRole(t *testing.T) {
	repo := newUserCasdoor(newFakeClient(), nil)
	role := models.RoleInstructor

	users, total, err := repo.List(context.Background(), repositories.UserFilters{Role: &role})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(users) != 1 || users[0].ID != "u-inst" {
		t.Fatalf("List(instructor) = %v (total %d)", users, total)
	}
}

func TestUpsertIsRejected(t *testing.T) {
	repo := newUserCasdoor(newFakeClient(), nil)

	err := repo.Upsert(context.Background(), &models.User{ID: "u-new"})
	if !errors.Is(err, repositories.ErrReadOnly) {
		t.Fatalf("Upsert = %v, want ErrReadOnly", err)
	}
}
