package geo

import "testing"

func TestIsPrivate(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"172.31.255.254", true},
		{"192.168.1.5", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"fe80::1", true},
		{"fd00::1", true},
		{"0.0.0.0", true},
		{"not-an-ip", true},
		{"", true},
		{"256.1.1.1", true},
		{"8.8.8.8", false},
		{"203.0.113.9", false},
		{"2001:4860:4860::8888", false},
		{"172.32.0.1", false},
	}

	for _, tc := range tests {
		t.Run(tc.ip, func(t *testing.T) {
			if got := IsPrivate(tc.ip); got != tc.want {
				t.Fatalf("IsPrivate(%q) = %v, want %v", tc.ip, got, tc.want)
			}
		})
	}
}
