package keychain

import "testing"

func TestResolveExplicitBackends(t *testing.T) {
	for _, b := range []string{"macos", "secretstorage", "pass"} {
		got, err := Resolve(b)
		if err != nil || got != b {
			t.Fatalf("Resolve(%q) = (%q, %v)", b, got, err)
		}
	}
	if got, err := Resolve(""); err != nil || got != "" {
		t.Fatalf("Resolve(\"\") = (%q, %v), want disabled", got, err)
	}
	if _, err := Resolve("windows-vault"); err == nil {
		t.Fatal("unknown backend accepted")
	}
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	if err := Store("macos", "OPENAI_API_KEY", ""); err == nil {
		t.Fatal("empty key accepted")
	}
}

func TestStoreDisabledBackendIsNoOp(t *testing.T) {
	if err := Store("", "OPENAI_API_KEY", "sk-x"); err != nil {
		t.Fatalf("disabled backend errored: %v", err)
	}
}
