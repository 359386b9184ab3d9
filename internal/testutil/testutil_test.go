package testutil

import (
	"errors"
	"net/http"
	"testing"
)

// failNowCall runs fn against a throwaway testing.T on its own goroutine so
// helpers that call Fatal/Fatalf (which exit the goroutine) can be observed
// without failing this test.
func failNowCall(fn func(t *testing.T)) *testing.T {
	fakeT := &testing.T{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(fakeT)
	}()
	<-done
	return fakeT
}

func TestAssertStatusCode(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusNotFound, http.StatusNotFound)
}

func TestAssertStatusCode_FailurePath(t *testing.T) {
	t.Parallel()

	fakeT := &testing.T{}
	AssertStatusCode(fakeT, http.StatusOK, http.StatusBadRequest)
	if !fakeT.Failed() {
		t.Error("expected failure on mismatched status code")
	}
}

func TestAssertNoError(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
}

func TestAssertNoError_FailurePath(t *testing.T) {
	t.Parallel()

	fakeT := failNowCall(func(ft *testing.T) {
		AssertNoError(ft, errors.New("boom"))
	})
	if !fakeT.Failed() {
		t.Error("expected failure when error is non-nil")
	}
}

func TestAssertError(t *testing.T) {
	t.Parallel()

	AssertError(t, errors.New("test error"))
}

func TestAssertError_FailurePath(t *testing.T) {
	t.Parallel()

	fakeT := failNowCall(func(ft *testing.T) {
		AssertError(ft, nil)
	})
	if !fakeT.Failed() {
		t.Error("expected failure when error is nil")
	}
}

func TestAssertInDelta(t *testing.T) {
	t.Parallel()

	AssertInDelta(t, 1.0001, 1.0, 0.01)

	fakeT := &testing.T{}
	AssertInDelta(fakeT, 2.0, 1.0, 0.01)
	if !fakeT.Failed() {
		t.Error("expected failure outside tolerance")
	}
}

func TestNewTestRequest(t *testing.T) {
	t.Parallel()

	req := NewTestRequest(http.MethodPost, "/api/runs")
	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	if req.URL.Path != "/api/runs" {
		t.Errorf("path = %s, want /api/runs", req.URL.Path)
	}
}

func TestNewTestRecorder(t *testing.T) {
	t.Parallel()

	w := NewTestRecorder()
	if w.Code != http.StatusOK {
		t.Errorf("initial Code = %d, want %d", w.Code, http.StatusOK)
	}
}
