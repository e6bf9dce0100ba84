package sevenzip

import (
	"strings"
	"testing"
)

func TestClassifyExit(t *testing.T) {
	tests := []struct {
		name string
		code int
		want error
	}{
		{"ok", 0, nil},
		{"warning", 1, ErrWarning},
		{"fatal", 2, ErrFatal},
		{"usage", 7, ErrUsage},
		{"memory", 8, ErrMemory},
		{"user stopped", 255, ErrUserStopped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyExit(tt.code); got != tt.want {
				t.Errorf("ClassifyExit(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassifyExit_Unknown(t *testing.T) {
	err := ClassifyExit(42)
	if err == nil {
		t.Fatal("unknown exit code should error")
	}
	if !strings.Contains(err.Error(), "42") {
		t.Errorf("error should mention the exit code: %v", err)
	}
}
