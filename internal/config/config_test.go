package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	cfg, found, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("found = true for a missing file")
	}
	if cfg == nil || *cfg != (Config{}) {
		t.Errorf("cfg = %+v, want empty", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sub", "sendtg.yaml")
	in := &Config{
		APIURL:   "https://tg.example.com/bot",
		BotToken: "123456789:AAFakeTokenFakeTokenFake",
		ChatID:   "-1001234567890",
	}
	if err := Save(in, path); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	out, found, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("found = false after save")
	}
	if *out != *in {
		t.Errorf("round trip: got %+v, want %+v", out, in)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("SENDTG_TEST_TOKEN", "123456789:AAFakeTokenFakeTokenFake")

	path := filepath.Join(t.TempDir(), "sendtg.yaml")
	raw := "bot_token: ${SENDTG_TEST_TOKEN}\nchat_id: ${SENDTG_TEST_CHAT:--100500}\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BotToken != "123456789:AAFakeTokenFakeTokenFake" {
		t.Errorf("BotToken = %q", cfg.BotToken)
	}
	if cfg.ChatID != "-100500" {
		t.Errorf("ChatID = %q, want the fallback default", cfg.ChatID)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sendtg.yaml")
	raw := "bot_token: ${SENDTG_NO_SUCH_VAR}\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}

	_, _, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "SENDTG_NO_SUCH_VAR") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := &Config{}
	cfg.Defaults()
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}

	cfg = &Config{APIURL: "https://tg.example.com/bot"}
	cfg.Defaults()
	if cfg.APIURL != "https://tg.example.com/bot" {
		t.Error("Defaults overwrote an explicit API URL")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	full := Config{APIURL: DefaultAPIURL, BotToken: "t", ChatID: "c"}
	if err := full.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"no token", Config{APIURL: DefaultAPIURL, ChatID: "c"}, "bot token"},
		{"no chat", Config{APIURL: DefaultAPIURL, BotToken: "t"}, "chat ID"},
		{"no url", Config{BotToken: "t", ChatID: "c"}, "API URL"},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want mention of %q", tt.name, err, tt.want)
		}
	}
}

func TestPath_HonorsXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "sendtg", "sendtg.yaml") {
		t.Errorf("Path = %q", path)
	}
}
