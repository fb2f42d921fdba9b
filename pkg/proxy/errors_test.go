package proxy

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"folio-hq/relay/pkg/upstream"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "request error is a client fault",
			err:  &RequestError{Message: "bad days", Param: "days"},
			want: http.StatusBadRequest,
		},
		{
			name: "missing credential is an operator fault",
			err:  &upstream.ConfigurationError{Upstream: "github", Message: "token missing"},
			want: http.StatusInternalServerError,
		},
		{
			name: "upstream 404 propagates",
			err:  &upstream.HTTPError{Upstream: "github", StatusCode: 404, Message: "not found"},
			want: http.StatusNotFound,
		},
		{
			name: "upstream 403 propagates",
			err:  &upstream.HTTPError{Upstream: "github", StatusCode: 403, Message: "rate limited"},
			want: http.StatusForbidden,
		},
		{
			name: "graphql error in a 200 is a bad gateway",
			err:  &upstream.HTTPError{Upstream: "leetcode", StatusCode: 200, Message: "user not found"},
			want: http.StatusBadGateway,
		},
		{
			name: "malformed upstream data is a bad gateway",
			err:  &upstream.DataError{Upstream: "github", Field: "user", Message: "null user"},
			want: http.StatusBadGateway,
		},
		{
			name: "network failure is a bad gateway",
			err:  &upstream.NetworkError{Upstream: "github", Cause: errors.New("connection refused")},
			want: http.StatusBadGateway,
		},
		{
			name: "network timeout is a gateway timeout",
			err:  &upstream.NetworkError{Upstream: "github", Cause: context.DeadlineExceeded},
			want: http.StatusGatewayTimeout,
		},
		{
			name: "unknown error is internal",
			err:  errors.New("surprise"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorStatus(tt.err); got != tt.want {
				t.Errorf("ErrorStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorMessageHidesInternals(t *testing.T) {
	err := &upstream.ConfigurationError{Upstream: "github", Message: "env RELAY_SECRET_GITHUB_TOKEN empty"}
	message, details := ErrorMessage(err)
	if message != "upstream credential is not configured" {
		t.Errorf("message = %q", message)
	}
	if details != "github" {
		t.Errorf("details = %q", details)
	}
}
