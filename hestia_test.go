// hestia_test.go - Test suite for the configuration engine core
//
// Test Philosophy:
// - DRY principle: common helpers for engine and file setup
// - OS-aware: temp directories only, no fixed paths
// - Smart assertions: meaningful error messages
// - Comprehensive coverage: registration, reload classification, save
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package hestia

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testHelper provides common test utilities following DRY principle
type testHelper struct {
	t       *testing.T
	tempDir string
}

func newTestHelper(t *testing.T) *testHelper {
	t.Helper()
	return &testHelper{t: t, tempDir: t.TempDir()}
}

// createConfigFile creates a config file with the given content and returns
// its path.
func (h *testHelper) createConfigFile(content string) string {
	h.t.Helper()

	path := filepath.Join(h.tempDir, "test.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		h.t.Fatalf("Failed to create config file: %v", err)
	}
	return path
}

// newEngine creates an engine for a config file with the given content.
func (h *testHelper) newEngine(content string) *Config {
	h.t.Helper()

	cfg, err := New(h.createConfigFile(content))
	if err != nil {
		h.t.Fatalf("Failed to create engine: %v", err)
	}
	return cfg
}

// mustRegister registers an option or fails the test.
func (h *testHelper) mustRegister(cfg *Config, opt Option, namespace string) {
	h.t.Helper()

	if err := cfg.Register(opt, namespace); err != nil {
		h.t.Fatalf("Failed to register %q: %v", opt.Name, err)
	}
}

// hasMessage reports whether any queued message at the given level contains
// substr.
func hasMessage(cfg *Config, level Level, substr string) bool {
	for _, msg := range cfg.Messages() {
		if msg.Level == level && strings.Contains(msg.Text, substr) {
			return true
		}
	}
	return false
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestNewAcceptsMissingFile(t *testing.T) {
	h := newTestHelper(t)

	path := filepath.Join(h.tempDir, "absent.conf")
	cfg, err := New(path)
	if err != nil {
		t.Fatalf("New failed for missing file: %v", err)
	}

	// the writability probe must not leave the file behind
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Probe file was left behind")
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestNewRejectsUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, directory permissions not enforced")
	}
	h := newTestHelper(t)

	dir := filepath.Join(h.tempDir, "ro")
	if err := os.Mkdir(dir, 0555); err != nil {
		t.Fatalf("Failed to create read-only dir: %v", err)
	}

	if _, err := New(filepath.Join(dir, "test.conf")); err == nil {
		t.Error("Expected error for unwritable directory")
	}
}

func TestReloadDefaultsOnly(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("")

	h.mustRegister(cfg, Option{Name: "nick_name", Default: "Hestia"}, "core")
	h.mustRegister(cfg, Option{Name: "recon_wait", Default: 60, Parse: ParseInt}, "core")

	if result := cfg.Reload(); result != ReloadSuccess {
		t.Errorf("Reload() = %v, want SUCCESS", result)
	}
	if got := cfg.GetString("nick_name"); got != "Hestia" {
		t.Errorf("nick_name = %q, want default", got)
	}
	if got := cfg.GetInt("recon_wait"); got != 60 {
		t.Errorf("recon_wait = %d, want default 60", got)
	}
}

func TestReloadFileValues(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("nick_name = sibyl\nrecon_wait = 120\ndebug: true\n")

	h.mustRegister(cfg, Option{Name: "nick_name", Default: "Hestia"}, "core")
	h.mustRegister(cfg, Option{Name: "recon_wait", Default: 60, Parse: ParseInt}, "core")
	h.mustRegister(cfg, Option{Name: "debug", Default: false, Parse: ParseBool}, "core")

	if result := cfg.Reload(); result != ReloadSuccess {
		t.Fatalf("Reload() = %v, want SUCCESS; messages: %v", result, cfg.Messages())
	}
	if got := cfg.GetString("nick_name"); got != "sibyl" {
		t.Errorf("nick_name = %q, want \"sibyl\"", got)
	}
	if got := cfg.GetInt("recon_wait"); got != 120 {
		t.Errorf("recon_wait = %d, want 120", got)
	}
	if !cfg.GetBool("debug") {
		t.Error("debug = false, want true")
	}
}

func TestReloadUnknownOptionIsInformational(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("mystery = 42\n")

	h.mustRegister(cfg, Option{Name: "nick_name", Default: "Hestia"}, "core")

	if result := cfg.Reload(); result != ReloadSuccess {
		t.Errorf("Reload() = %v, want SUCCESS for unknown-only noise", result)
	}
	if !hasMessage(cfg, LevelInfo, "mystery") {
		t.Error("Expected info message naming the unknown option")
	}
	if cfg.Get("mystery") != nil {
		t.Error("Unknown option leaked into the table")
	}
}

func TestReloadBadValueFallsBackToDefault(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("recon_wait = soon\n")

	h.mustRegister(cfg, Option{Name: "recon_wait", Default: 60, Parse: ParseInt}, "core")

	if result := cfg.Reload(); result != ReloadErrors {
		t.Errorf("Reload() = %v, want ERRORS", result)
	}
	if got := cfg.GetInt("recon_wait"); got != 60 {
		t.Errorf("recon_wait = %d, want default after parse failure", got)
	}
	if !hasMessage(cfg, LevelError, "recon_wait") {
		t.Error("Expected error message naming the option")
	}
}

func TestReloadMissingRequiredFails(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("")

	h.mustRegister(cfg, Option{Name: "username", Default: "", Required: true}, "core")

	if result := cfg.Reload(); result != ReloadFail {
		t.Errorf("Reload() = %v, want FAIL", result)
	}
	if !hasMessage(cfg, LevelCritical, "username") {
		t.Error("Expected critical message naming the missing option")
	}
}

func TestReloadRequiredSatisfiedByFile(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("username = me@example.com\n")

	h.mustRegister(cfg, Option{Name: "username", Default: "", Required: true}, "core")

	if result := cfg.Reload(); result != ReloadSuccess {
		t.Errorf("Reload() = %v, want SUCCESS", result)
	}
}

func TestReloadRequiredDroppedValueStillFails(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("username = bad\n")

	reject := func(value interface{}) bool { return false }
	h.mustRegister(cfg, Option{Name: "username", Default: "", Required: true, Validate: reject}, "core")

	// the present-but-rejected value falls back to the empty default, so
	// the required check still fails
	if result := cfg.Reload(); result != ReloadFail {
		t.Errorf("Reload() = %v, want FAIL", result)
	}
}

func TestReloadIgnoresRealSections(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("nick_name = sibyl\n[extra]\nhidden = 1\n")

	h.mustRegister(cfg, Option{Name: "nick_name", Default: "Hestia"}, "core")

	if result := cfg.Reload(); result != ReloadErrors {
		t.Errorf("Reload() = %v, want ERRORS for ignored section", result)
	}
	if got := cfg.GetString("nick_name"); got != "sibyl" {
		t.Errorf("nick_name = %q, want value before the section", got)
	}
	if !hasMessage(cfg, LevelError, "extra") {
		t.Error("Expected error message naming the ignored section")
	}
}

func TestReloadUnparseableFileUsesDefaults(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("this is not an assignment\n")

	h.mustRegister(cfg, Option{Name: "nick_name", Default: "Hestia"}, "core")

	if result := cfg.Reload(); result != ReloadErrors {
		t.Errorf("Reload() = %v, want ERRORS", result)
	}
	if got := cfg.GetString("nick_name"); got != "Hestia" {
		t.Errorf("nick_name = %q, want default", got)
	}
}

func TestReloadCreatesDefaultFile(t *testing.T) {
	h := newTestHelper(t)

	path := filepath.Join(h.tempDir, "fresh.conf")
	cfg, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.mustRegister(cfg, Option{Name: "nick_name", Default: "Hestia"}, "core")
	h.mustRegister(cfg, Option{Name: "recon_wait", Default: 60, Parse: ParseInt}, "core")

	if result := cfg.Reload(); result != ReloadSuccess {
		t.Fatalf("Reload() = %v, want SUCCESS; messages: %v", result, cfg.Messages())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Default file was not created: %v", err)
	}
	want := "#nick_name = Hestia\n#recon_wait = 60\n"
	if string(data) != want {
		t.Errorf("Default file content:\n%q\nwant:\n%q", string(data), want)
	}
}

func TestReloadFreezesRegistration(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("")

	h.mustRegister(cfg, Option{Name: "first", Default: 1}, "core")
	cfg.Reload()

	if err := cfg.Register(Option{Name: "late", Default: 2}, "core"); err == nil {
		t.Error("Expected registration to fail after first reload")
	}
}

func TestReloadReplacesTableWholesale(t *testing.T) {
	h := newTestHelper(t)
	path := h.createConfigFile("recon_wait = 120\n")
	cfg, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.mustRegister(cfg, Option{Name: "recon_wait", Default: 60, Parse: ParseInt}, "core")

	cfg.Reload()
	if got := cfg.GetInt("recon_wait"); got != 120 {
		t.Fatalf("recon_wait = %d, want 120", got)
	}

	// removing the value from the file must restore the default
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatalf("Failed to truncate file: %v", err)
	}
	cfg.Reload()
	if got := cfg.GetInt("recon_wait"); got != 60 {
		t.Errorf("recon_wait = %d, want default after value removed", got)
	}
}

func TestGetBeforeReloadReturnsDefaults(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("nick_name = sibyl\n")

	h.mustRegister(cfg, Option{Name: "nick_name", Default: "Hestia"}, "core")
	h.mustRegister(cfg, Option{Name: "log_level", Default: LevelWarning}, "core")

	if got := cfg.GetString("nick_name"); got != "Hestia" {
		t.Errorf("Get before reload = %q, want default", got)
	}
	if got := cfg.GetLevel("log_level"); got != LevelWarning {
		t.Errorf("GetLevel = %v, want LevelWarning", got)
	}
	if cfg.Get("unregistered") != nil {
		t.Error("Unregistered option should yield nil")
	}
}

func TestTypedGettersOnMismatch(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("")
	h.mustRegister(cfg, Option{Name: "nick_name", Default: "Hestia"}, "core")

	if got := cfg.GetInt("nick_name"); got != 0 {
		t.Errorf("GetInt on string = %d, want 0", got)
	}
	if cfg.GetBool("nick_name") {
		t.Error("GetBool on string should be false")
	}
	if got := cfg.GetLevel("nick_name"); got != LevelInfo {
		t.Errorf("GetLevel on string = %v, want LevelInfo", got)
	}
}

func TestSaveRoundtrip(t *testing.T) {
	h := newTestHelper(t)
	content := "# reconnect delay\nrecon_wait = 60\nnick_name = sibyl\n"
	path := h.createConfigFile(content)
	cfg, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.mustRegister(cfg, Option{Name: "recon_wait", Default: 60, Parse: ParseInt}, "core")
	h.mustRegister(cfg, Option{Name: "nick_name", Default: "Hestia"}, "core")
	cfg.Reload()

	if err := cfg.Save("recon_wait", "120", "admin request"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// live table updated without a reload
	if got := cfg.GetInt("recon_wait"); got != 120 {
		t.Errorf("recon_wait = %d, want 120 after save", got)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file back: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "recon_wait = 120") {
		t.Errorf("File missing new assignment:\n%s", text)
	}
	if !strings.Contains(text, stampPrefix) || !strings.Contains(text, "(admin request)") {
		t.Errorf("File missing modification stamp:\n%s", text)
	}
	// unrelated lines preserved byte for byte
	if !strings.Contains(text, "# reconnect delay\n") {
		t.Errorf("Comment line lost:\n%s", text)
	}
	if !strings.Contains(text, "nick_name = sibyl\n") {
		t.Errorf("Unrelated option lost:\n%s", text)
	}

	// a fresh engine must read the saved value back
	cfg2, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := cfg2.Register(Option{Name: "recon_wait", Default: 60, Parse: ParseInt}, "core"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result := cfg2.Reload(); result != ReloadSuccess {
		t.Fatalf("Reload() = %v, want SUCCESS; messages: %v", result, cfg2.Messages())
	}
	if got := cfg2.GetInt("recon_wait"); got != 120 {
		t.Errorf("Fresh engine recon_wait = %d, want 120", got)
	}
}

func TestSaveRejectedLeavesFileUntouched(t *testing.T) {
	h := newTestHelper(t)
	content := "recon_wait = 60\n"
	path := h.createConfigFile(content)
	cfg, err := New(path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h.mustRegister(cfg, Option{Name: "recon_wait", Default: 60, Parse: ParseInt}, "core")
	cfg.Reload()

	if err := cfg.Save("recon_wait", "soon", ""); err == nil {
		t.Fatal("Expected save rejection for unparseable value")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file back: %v", err)
	}
	if string(data) != content {
		t.Errorf("Rejected save modified the file:\n%q", string(data))
	}
	if got := cfg.GetInt("recon_wait"); got != 60 {
		t.Errorf("Live value changed after rejected save: %d", got)
	}
}

func TestSaveUnknownOption(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("")

	if err := cfg.Save("ghost", "1", ""); err == nil {
		t.Error("Expected error saving unregistered option")
	}
}

func TestSaveBeforeReload(t *testing.T) {
	h := newTestHelper(t)
	cfg := h.newEngine("")
	h.mustRegister(cfg, Option{Name: "nick_name", Default: "Hestia"}, "core")

	if err := cfg.Save("nick_name", "early", ""); err != nil {
		t.Fatalf("Save before reload failed: %v", err)
	}
	if got := cfg.GetString("nick_name"); got != "early" {
		t.Errorf("nick_name = %q, want saved value", got)
	}

	// save also closes the registration window
	if err := cfg.Register(Option{Name: "late", Default: 1}, "core"); err == nil {
		t.Error("Expected registration to fail after save")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", "debug", LevelDebug, false},
		{"mixed case", "Warning", LevelWarning, false},
		{"padded", "  critical  ", LevelCritical, false},
		{"unknown", "loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestResultString(t *testing.T) {
	if ReloadFail.String() != "FAIL" || ReloadSuccess.String() != "SUCCESS" || ReloadErrors.String() != "ERRORS" {
		t.Error("Result string mapping is wrong")
	}
}

func TestIsEmptyValue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"nil", nil, true},
		{"empty string", "", true},
		{"string", "x", false},
		{"zero int", 0, true},
		{"int", 7, false},
		{"false", false, true},
		{"true", true, false},
		{"empty slice", []string{}, true},
		{"slice", []string{"a"}, false},
		{"empty map", map[string]int{}, true},
		{"map", map[string]int{"a": 1}, false},
		{"nil pointer", (*Secret)(nil), true},
		{"pointer", NewSecret("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isEmptyValue(tt.value); got != tt.want {
				t.Errorf("isEmptyValue(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}
