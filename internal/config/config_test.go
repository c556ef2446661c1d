package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Engine: EngineConfig{
			Addrs: []string{"localhost:6379"},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingEngineAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Engine: EngineConfig{
			Addrs: []string{},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing engine addrs")
	}
}

func TestValidate_BatchLargerThanChunk(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Engine: EngineConfig{
			Addrs: []string{"localhost:6379"},
		},
		Index: IndexConfig{
			ChunkSize:     100,
			BulkBatchSize: 500,
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error when bulk batch exceeds chunk size")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Engine.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Engine.ReadinessTimeout)
	}
	if cfg.Database.Path != "tuf.db" {
		t.Errorf("expected Path=tuf.db, got %q", cfg.Database.Path)
	}
	if cfg.Index.KeyPrefix != "tuf:" {
		t.Errorf("expected KeyPrefix=tuf:, got %q", cfg.Index.KeyPrefix)
	}
	if cfg.Index.ChunkSize != 2000 {
		t.Errorf("expected ChunkSize=2000, got %d", cfg.Index.ChunkSize)
	}
	if cfg.Index.BulkBatchSize != 500 {
		t.Errorf("expected BulkBatchSize=500, got %d", cfg.Index.BulkBatchSize)
	}
	if cfg.Index.CursorPageSize != 1000 {
		t.Errorf("expected CursorPageSize=1000, got %d", cfg.Index.CursorPageSize)
	}
	if cfg.Index.SyncTimeoutSec != 10 {
		t.Errorf("expected SyncTimeoutSec=10, got %d", cfg.Index.SyncTimeoutSec)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Index: IndexConfig{
			KeyPrefix: "stage:",
			ChunkSize: 5000,
		},
	}
	cfg.ApplyDefaults()

	if cfg.Index.KeyPrefix != "stage:" {
		t.Errorf("expected KeyPrefix=stage:, got %q", cfg.Index.KeyPrefix)
	}
	if cfg.Index.ChunkSize != 5000 {
		t.Errorf("expected ChunkSize=5000, got %d", cfg.Index.ChunkSize)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TUF_TEST_PASSWORD", "s3cret")

	data := expandEnvVars([]byte("password: ${TUF_TEST_PASSWORD}\nprefix: ${TUF_MISSING:-tuf:}"))
	want := "password: s3cret\nprefix: tuf:"
	if string(data) != want {
		t.Errorf("expanded = %q, want %q", data, want)
	}
}
