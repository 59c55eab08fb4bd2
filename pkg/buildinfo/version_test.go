package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version || info.Commit != Commit || info.Date != Date {
		t.Errorf("Get() = %+v, want package variables", info)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestTemplate(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	defer func() { Version = old }()

	if got := Template(); !strings.Contains(got, "{{.Name}} version v9.9.9") {
		t.Errorf("Template() = %q", got)
	}
	if got := String(); !strings.HasPrefix(got, "version: v9.9.9\n") {
		t.Errorf("String() = %q", got)
	}
}
