package auth

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeychainStore_RoundTrip(t *testing.T) {
	keyring.MockInit()
	store := NewKeychainStore("")

	if err := store.SetToken("Porkbun-APIKey", "  pk1\n"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	got, err := store.GetToken("porkbun-apikey")
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if got != "pk1" {
		t.Fatalf("GetToken = %q, want %q", got, "pk1")
	}

	if err := store.DeleteToken("porkbun-apikey"); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if _, err := store.GetToken("porkbun-apikey"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("GetToken after delete err = %v, want ErrTokenNotFound", err)
	}
	if err := store.DeleteToken("porkbun-apikey"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("second DeleteToken err = %v, want ErrTokenNotFound", err)
	}
}

func TestKeychainStore_RejectsBlankInput(t *testing.T) {
	keyring.MockInit()
	store := NewKeychainStore("dnsctl-test")

	if err := store.SetToken("zonomi", "   "); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("SetToken blank err = %v, want ErrEmptyToken", err)
	}
	if err := store.SetToken(" ", "secret"); err == nil {
		t.Fatal("SetToken with blank key succeeded")
	}
	if _, err := store.GetToken(""); err == nil {
		t.Fatal("GetToken with blank key succeeded")
	}
}

func TestKeychainStore_WrapsBackendErrors(t *testing.T) {
	backend := errors.New("keychain locked")
	keyring.MockInitWithError(backend)
	t.Cleanup(keyring.MockInit)
	store := NewKeychainStore("")

	if err := store.SetToken("zonomi", "secret"); !errors.Is(err, backend) {
		t.Fatalf("SetToken err = %v, want wrapped backend error", err)
	}
	if _, err := store.GetToken("zonomi"); !errors.Is(err, backend) || errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("GetToken err = %v, want wrapped backend error", err)
	}
}
