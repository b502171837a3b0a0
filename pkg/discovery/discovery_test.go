package discovery

import "testing"

func TestInstanceKey(t *testing.T) {
	inst := &ServiceInstance{Name: "homecook", Host: "10.0.0.7", Port: 8080}

	if got := instanceKey("/services/", inst); got != "/services/homecook/10.0.0.7:8080" {
		t.Fatalf("key = %q", got)
	}
	if got := instanceKey("/services", inst); got != "/services/homecook/10.0.0.7:8080" {
		t.Fatalf("key without trailing slash = %q", got)
	}
}

func TestParseInstance(t *testing.T) {
	tests := []struct {
		addr    string
		host    string
		port    int
		wantErr bool
	}{
		{addr: "10.0.0.7:8080", host: "10.0.0.7", port: 8080},
		{addr: "[::1]:50051", host: "::1", port: 50051},
		{addr: "localhost", wantErr: true},
		{addr: "host:http", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			inst, err := parseInstance("homecook", tt.addr)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", inst)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseInstance: %v", err)
			}
			if inst.Host != tt.host || inst.Port != tt.port || inst.Name != "homecook" {
				t.Fatalf("instance = %+v", inst)
			}
			if inst.Addr() != tt.addr {
				t.Fatalf("Addr() = %q, want %q", inst.Addr(), tt.addr)
			}
		})
	}
}
