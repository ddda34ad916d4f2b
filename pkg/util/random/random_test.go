package random

import (
	"strings"
	"testing"
)

func TestGetUpperCode(t *testing.T) {
	code := GetUpperCode(8)
	if len(code) != 8 {
		t.Fatalf("len = %d", len(code))
	}
	if strings.ToUpper(code) != code {
		t.Fatalf("code %q is not upper case", code)
	}
}

func TestGetNowAndLenRandomString(t *testing.T) {
	a := GetNowAndLenRandomString(11)
	b := GetNowAndLenRandomString(11)
	if len(a) != 17 {
		t.Fatalf("len = %d", len(a))
	}
	if a == b {
		t.Fatalf("two calls returned the same id %q", a)
	}
}
