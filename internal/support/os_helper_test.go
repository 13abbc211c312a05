package support

import (
	"reflect"
	"testing"
)

func TestGetEnv(t *testing.T) {
	if got := GetEnv("GATEHOUSE_TEST_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("got %q, want fallback", got)
	}

	t.Setenv("GATEHOUSE_TEST_SET", "value")
	if got := GetEnv("GATEHOUSE_TEST_SET", "fallback"); got != "value" {
		t.Fatalf("got %q, want value", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	if got := GetEnvInt("GATEHOUSE_TEST_MISSING", 7); got != 7 {
		t.Fatalf("got %d, want fallback 7", got)
	}

	t.Setenv("GATEHOUSE_TEST_INT", "42")
	if got := GetEnvInt("GATEHOUSE_TEST_INT", 7); got != 42 {
		t.Fatalf("got %d, want 42", got)
	}

	t.Setenv("GATEHOUSE_TEST_INT", "not-a-number")
	if got := GetEnvInt("GATEHOUSE_TEST_INT", 7); got != 7 {
		t.Fatalf("got %d, want fallback on parse failure", got)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("GATEHOUSE_TEST_FLOAT", "2.5")
	if got := GetEnvFloat("GATEHOUSE_TEST_FLOAT", 1); got != 2.5 {
		t.Fatalf("got %v, want 2.5", got)
	}
}

func TestGetEnvList(t *testing.T) {
	fallback := []string{"/admin/"}

	if got := GetEnvList("GATEHOUSE_TEST_MISSING", fallback); !reflect.DeepEqual(got, fallback) {
		t.Fatalf("got %v, want fallback", got)
	}

	t.Setenv("GATEHOUSE_TEST_LIST", " /admin/, /login/ ,,/banking/")
	want := []string{"/admin/", "/login/", "/banking/"}
	if got := GetEnvList("GATEHOUSE_TEST_LIST", fallback); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	t.Setenv("GATEHOUSE_TEST_LIST", " , ")
	if got := GetEnvList("GATEHOUSE_TEST_LIST", fallback); !reflect.DeepEqual(got, fallback) {
		t.Fatalf("got %v, want fallback for all-empty value", got)
	}
}
