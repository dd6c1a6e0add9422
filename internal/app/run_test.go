package app

import (
	"bytes"
	"testing"
)

// TestRun_MigrateCommand_RequiresDB はmigrateコマンドがDB接続を試みることを検証する。
// テスト環境ではDB接続が失敗するため、エラーが返ることを許容する。
func TestRun_MigrateCommand_RequiresDB(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	err := Run(&buf, []string{"migrate"})
	if err == nil {
		// CI/ローカルにDBがある場合はマイグレーションが成功する可能性がある
		t.Log("Run(migrate) succeeded - DB is available in test environment")
	}
}

func TestRun_WithMissingEnv_ReturnsError(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("API_SECRET", "")

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	if err == nil {
		t.Fatal("Run with missing env should return error")
	}
}

// TestRun_HealthcheckWithoutServer_ReturnsError はサーバー未起動時の
// healthcheckコマンドがエラーを返すことを検証する。
func TestRun_HealthcheckWithoutServer_ReturnsError(t *testing.T) {
	// 到達不能なポートを指定する
	t.Setenv("SERVER_PORT", "1")

	var buf bytes.Buffer
	err := Run(&buf, []string{"healthcheck"})
	if err == nil {
		t.Fatal("healthcheck without a running server should return error")
	}
}
