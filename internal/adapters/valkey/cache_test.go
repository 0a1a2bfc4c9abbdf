package valkey

import (
	"errors"
	"testing"
)

func TestIsMiss(t *testing.T) {
	if IsMiss(errors.New("connection refused")) {
		t.Error("a transport error is not a miss")
	}
	if IsMiss(nil) {
		t.Error("nil is not a miss")
	}
}
