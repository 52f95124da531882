package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"action":"opened"}`)

	tests := []struct {
		name      string
		secret    string
		signature string
		want      bool
	}{
		{
			name:      "valid signature",
			secret:    "hunter2",
			signature: sign("hunter2", body),
			want:      true,
		},
		{
			name:      "wrong secret",
			secret:    "hunter2",
			signature: sign("other", body),
			want:      false,
		},
		{
			name:      "missing signature",
			secret:    "hunter2",
			signature: "",
			want:      false,
		},
		{
			name:      "mangled prefix",
			secret:    "hunter2",
			signature: "sha1=deadbeef",
			want:      false,
		},
		{
			name:      "no secret configured accepts anything",
			secret:    "",
			signature: "",
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := verifySignature(tt.secret, body, tt.signature); got != tt.want {
				t.Errorf("verifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifySignatureBodyTamper(t *testing.T) {
	secret := "hunter2"
	signature := sign(secret, []byte(`{"action":"opened"}`))
	if verifySignature(secret, []byte(`{"action":"closed"}`), signature) {
		t.Error("signature over a different body should not verify")
	}
}
