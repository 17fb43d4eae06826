// ABOUTME: Tests for CATALOG_ALL_PROXY parsing
// ABOUTME: Checks which proxy URLs produce a dialer without opening connections

package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCreateSOCKS5DialContextFunc_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		proxy string
	}{
		{"wrong scheme", "ssh+http://jump@bastion:22?private-key=/tmp/k"},
		{"missing key", "ssh+socks5://jump@bastion:22"},
		{"unreadable key", "ssh+socks5://jump@bastion:22?private-key=/nonexistent/key"},
		{"missing host", "ssh+socks5://?private-key=/tmp/k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if dial := createSOCKS5DialContextFunc(tt.proxy); dial != nil {
				t.Errorf("Expected nil dialer for %q", tt.proxy)
			}
		})
	}
}

func TestCreateSOCKS5DialContextFunc_Valid(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_rsa")
	if err := os.WriteFile(keyPath, []byte("not-a-real-key"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	dial := createSOCKS5DialContextFunc("ssh+socks5://jump@bastion:22?private-key=" + keyPath)
	if dial == nil {
		t.Fatal("Expected a dialer")
	}
}

func TestNewCatalogClient_Proxied(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_rsa")
	if err := os.WriteFile(keyPath, []byte("not-a-real-key"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := NewCatalogClient("https://catalog.test", time.Second, "ssh+socks5://jump@bastion:22?private-key="+keyPath)
	if !c.Proxied() {
		t.Error("Expected proxied client")
	}

	direct := NewCatalogClient("https://catalog.test", time.Second, "socks5://bastion:22")
	if direct.Proxied() {
		t.Error("Expected unusable proxy to fall back to a direct client")
	}
}
