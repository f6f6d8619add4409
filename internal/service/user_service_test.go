package service

import (
	"Ripple/internal/pkg/security"
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func claimsWithSubject(sub string) *security.IdentityClaims {
	return &security.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
	}
}

func TestResolveOrCreateCreatesOnFirstSeen(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo)

	claims := claimsWithSubject("idp_1")
	claims.Name = "Alice"
	claims.Email = "alice@example.com"

	user, err := svc.ResolveOrCreate(context.Background(), claims)
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if user.Name != "Alice" {
		t.Fatalf("name = %q, want Alice", user.Name)
	}
	if user.Email == nil || *user.Email != "alice@example.com" {
		t.Fatal("email not stored")
	}
}

func TestResolveOrCreateRefreshesProfile(t *testing.T) {
	repo := newFakeUserRepo()
	existing := repo.addUser("Old Name", "idp_1")
	svc := NewUserService(repo)

	claims := claimsWithSubject("idp_1")
	claims.Name = "New Name"

	user, err := svc.ResolveOrCreate(context.Background(), claims)
	if err != nil {
		t.Fatalf("ResolveOrCreate: %v", err)
	}
	if user.ID != existing.ID {
		t.Fatalf("id = %d, want %d", user.ID, existing.ID)
	}
	if repo.users[existing.ID].Name != "New Name" {
		t.Fatal("profile not refreshed")
	}
}

func TestResolveOrCreateRejectsMissingPrincipal(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	if _, err := svc.ResolveOrCreate(context.Background(), nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestLookupReturnsNilWithoutError(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	user, err := svc.Lookup(context.Background(), nil)
	if err != nil || user != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", user, err)
	}

	user, err = svc.Lookup(context.Background(), claimsWithSubject("never_synced"))
	if err != nil || user != nil {
		t.Fatalf("got (%v, %v), want (nil, nil)", user, err)
	}
}

func TestDisplayNameFromClaimsPriority(t *testing.T) {
	cases := []struct {
		name   string
		claims *security.IdentityClaims
		want   string
	}{
		{"full name wins", &security.IdentityClaims{Name: "Alice", Nickname: "ali", Email: "a@x.com"}, "Alice"},
		{"nickname next", &security.IdentityClaims{Nickname: "ali", PreferredUsername: "alice01"}, "ali"},
		{"preferred username next", &security.IdentityClaims{PreferredUsername: "alice01", Email: "a@x.com"}, "alice01"},
		{"email last resort", &security.IdentityClaims{Email: "a@x.com"}, "a@x.com"},
		{"nothing usable", &security.IdentityClaims{Name: "  "}, "Unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := displayNameFromClaims(tc.claims); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestListForDiscoveryExcludesCallerAndClampsLimit(t *testing.T) {
	repo := newFakeUserRepo()
	caller := repo.addUser("Caller", "idp_c")
	repo.addUser("Bob", "idp_b")
	repo.addUser("Bobby", "idp_bb")
	svc := NewUserService(repo)

	res, err := svc.ListForDiscovery(context.Background(), caller.ID, "bob", 0)
	if err != nil {
		t.Fatalf("ListForDiscovery: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("len = %d, want 2", len(res))
	}
	for _, u := range res {
		if u.ID == caller.ID {
			t.Fatal("caller should be excluded")
		}
		if u.AvatarColor == "" {
			t.Fatal("avatar color missing")
		}
	}
}
