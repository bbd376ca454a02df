package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", NewError("gone").Mark(ErrNotFound), http.StatusNotFound},
		{"validation", NewError("bad input").Mark(ErrValidation), http.StatusBadRequest},
		{"blob not found", NewError("stale").Mark(ErrBlobNotFound), http.StatusInternalServerError},
		{"generation", NewError("render failed").Mark(ErrGeneration), http.StatusInternalServerError},
		{"unmarked", fmt.Errorf("plain"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, HTTPStatusFromErr(tc.err))
		})
	}
}

func TestMarkSurvivesWrapping(t *testing.T) {
	inner := NewError("blob missing").Mark(ErrBlobNotFound)
	outer := WithError(inner).WithHint("treated as cache miss").Mark(ErrStorage)

	assert.True(t, IsBlobNotFound(inner))
	assert.False(t, IsNotFound(inner))
	assert.True(t, IsBlobNotFound(outer), "outer marks must not hide the inner class")
}
