package cmd

import "testing"

func TestResolveListenAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		host    string
		port    int
		want    string
		wantErr bool
	}{
		{name: "default host", host: "", port: 8080, want: "127.0.0.1:8080"},
		{name: "localhost", host: "localhost", port: 9090, want: "localhost:9090"},
		{name: "ipv6 loopback", host: "::1", port: 8080, want: "[::1]:8080"},
		{name: "bracketed ipv6", host: "[::1]", port: 8080, want: "[::1]:8080"},
		{name: "other loopback", host: "127.0.0.2", port: 8080, want: "127.0.0.2:8080"},
		{name: "all interfaces", host: "0.0.0.0", port: 8080, wantErr: true},
		{name: "public address", host: "192.168.1.10", port: 8080, wantErr: true},
		{name: "hostname", host: "example.com", port: 8080, wantErr: true},
		{name: "port zero", host: "127.0.0.1", port: 0, wantErr: true},
		{name: "port too large", host: "127.0.0.1", port: 70000, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveListenAddr(tc.host, tc.port)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
