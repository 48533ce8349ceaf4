package monitoring

import "testing"

func TestSetLoggerNilInstallsNoop(t *testing.T) {
	defer SetLogger(nil)

	SetLogger(nil)
	// Must not panic.
	Logf("dropped %d", 1)
}

func TestSetLoggerRedirects(t *testing.T) {
	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, format)
	})
	defer SetLogger(nil)

	Logf("first %s", "x")
	Logf("second")

	if len(got) != 2 || got[0] != "first %s" {
		t.Errorf("redirected logger saw %v", got)
	}
}

func TestCapture(t *testing.T) {
	lines, restore := Capture()

	Logf("stage=%s kind=%s", "build", "no_toolchain")
	restore()
	Logf("after restore") // must not land in the capture buffer

	if len(*lines) != 1 {
		t.Fatalf("captured %d lines, want 1", len(*lines))
	}
	if (*lines)[0] != "stage=build kind=no_toolchain" {
		t.Errorf("captured line = %q", (*lines)[0])
	}
}
