package whatsapp

import "testing"

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"object":"whatsapp_business_account"}`)
	sig := Sign("app-secret", body)

	if !VerifySignature("app-secret", body, sig) {
		t.Fatal("expected valid signature")
	}
	if VerifySignature("other-secret", body, sig) {
		t.Fatal("expected mismatch for wrong secret")
	}
	if VerifySignature("app-secret", []byte("tampered"), sig) {
		t.Fatal("expected mismatch for tampered body")
	}
	for _, bad := range []string{"", "sha256=", "md5=abc", "deadbeef"} {
		if VerifySignature("app-secret", body, bad) {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	if VerifySignature("", body, sig) {
		t.Fatal("expected empty secret to be rejected")
	}
}
