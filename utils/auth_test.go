package utils

import (
	"mime/multipart"
	"strings"
	"testing"

	"claims-management-server/config"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secreto123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == "secreto123" {
		t.Fatal("hash must not equal the plain password")
	}
	if !CheckPasswordHash("secreto123", hash) {
		t.Fatal("correct password should verify")
	}
	if CheckPasswordHash("otra-clave", hash) {
		t.Fatal("wrong password must not verify")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	config.Load()

	token, err := GenerateToken(42, "employee", "empleado@claims.local")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("failed to verify token: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Role != "employee" {
		t.Fatalf("expected role employee, got %q", claims.Role)
	}
	if claims.Email != "empleado@claims.local" {
		t.Fatalf("expected email to round-trip, got %q", claims.Email)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	config.Load()

	if _, err := VerifyToken("not-a-token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}

func TestValidateAttachment(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  string
	}{
		{"valid pdf", "informe.pdf", 1024, ""},
		{"valid image", "captura.PNG", 2048, ""},
		{"empty file", "vacio.pdf", 0, "archivo vacío"},
		{"too large", "enorme.pdf", maxAttachmentSize + 1, "supera el tamaño"},
		{"forbidden extension", "script.exe", 1024, "tipo de archivo no permitido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := &multipart.FileHeader{Filename: tt.filename, Size: tt.size}
			err := ValidateAttachment(header)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
