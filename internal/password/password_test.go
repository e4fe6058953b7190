package password

import (
	"errors"
	"strings"
	"testing"
)

// テストでは計算量を抑えたパラメータを使う
func testHasher() *Hasher {
	return NewHasher(Params{MemoryKiB: 8 * 1024, Iterations: 1, Parallelism: 1})
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher()

	encoded, err := h.Hash("password123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	ok, err := h.Verify(encoded, "password123")
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}

	ok, err = h.Verify(encoded, "wrongpass")
	if err != nil {
		t.Fatalf("Verify(wrong) returned error: %v", err)
	}
	if ok {
		t.Fatal("Verify(wrong) should be false")
	}
}

func TestHashUsesRandomSalt(t *testing.T) {
	h := testHasher()

	a, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	b, err := h.Hash("same")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyMalformedHash(t *testing.T) {
	h := testHasher()

	cases := []string{
		"",
		"plain-text",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHQ$!!!",
	}
	for _, encoded := range cases {
		ok, err := h.Verify(encoded, "password123")
		if ok || !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("Verify(%q) = %v, %v; want false, ErrInvalidHash", encoded, ok, err)
		}
	}
}

func TestVerifyAcceptsParamsFromOtherHosts(t *testing.T) {
	// 4 スレッドの既定値で作られたハッシュを 1 スレッド設定のサーバーで検証する
	other := NewHasher(Params{MemoryKiB: 64 * 1024, Iterations: 3, Parallelism: 4})
	encoded, err := other.Hash("password123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if !strings.Contains(encoded, "$m=65536,t=3,p=4$") {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	h := testHasher()
	ok, err := h.Verify(encoded, "password123")
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v; want true, nil", ok, err)
	}
	ok, err = h.Verify(encoded, "wrongpass")
	if err != nil || ok {
		t.Fatalf("Verify(wrong) = %v, %v; want false, nil", ok, err)
	}
}

func TestVerifyRejectsOversizedParams(t *testing.T) {
	h := testHasher()

	cases := []string{
		"$argon2id$v=19$m=2097152,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2U",
		"$argon2id$v=19$m=8192,t=17,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2U",
		"$argon2id$v=19$m=8192,t=1,p=256$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2V5a2U",
	}
	for _, encoded := range cases {
		if _, err := h.Verify(encoded, "password123"); !errors.Is(err, ErrInvalidHash) {
			t.Fatalf("Verify(%q) error = %v, want ErrInvalidHash", encoded, err)
		}
	}
}

func TestNewHasherFillsDefaults(t *testing.T) {
	h := NewHasher(Params{})
	def := DefaultParams()
	if h.Params() != def {
		t.Fatalf("Params() = %+v, want %+v", h.Params(), def)
	}
}
