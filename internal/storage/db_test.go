package storage

import "testing"

// TestPoolConfigApplicationName verifies conversion log sessions are tagged
// unless the DSN already names an application.
func TestPoolConfigApplicationName(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"postgres://workouthub:pw@localhost:5432/workouthub?sslmode=disable", "workouthub"},
		{"postgres://workouthub:pw@localhost:5432/workouthub?sslmode=disable&application_name=validate", "validate"},
		{"host=localhost user=workouthub dbname=workouthub sslmode=disable", "workouthub"},
	}
	for _, tt := range tests {
		cfg, err := poolConfig(tt.dsn)
		if err != nil {
			t.Fatalf("poolConfig(%q): %v", tt.dsn, err)
		}
		if got := cfg.ConnConfig.RuntimeParams["application_name"]; got != tt.want {
			t.Errorf("%s: application_name = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestPoolConfigBadDSN(t *testing.T) {
	if _, err := poolConfig("postgres://localhost:notaport/db"); err == nil {
		t.Error("expected error for malformed dsn")
	}
}
