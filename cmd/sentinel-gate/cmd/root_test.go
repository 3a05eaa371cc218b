package cmd

import "testing"

func TestRootCmd_HasExpectedCommands(t *testing.T) {
	want := []string{"start", "stop", "reset", "hash-passphrase", "verify", "version"}
	got := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		got[c.Name()] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("rootCmd missing expected command %q", name)
		}
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("rootCmd missing --config persistent flag")
	}
	if rootCmd.PersistentFlags().Lookup("state") == nil {
		t.Error("rootCmd missing --state persistent flag")
	}
}
