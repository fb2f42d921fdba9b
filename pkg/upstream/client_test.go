package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoGraphQL(t *testing.T) {
	t.Run("decodes the data payload on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", r.Method)
			}
			w.Write([]byte(`{"data":{"user":{"login":"octocat"}}}`))
		}))
		defer srv.Close()

		c := NewClient(ClientConfig{Name: "github"})
		var out struct {
			User struct {
				Login string `json:"login"`
			} `json:"user"`
		}
		if err := c.DoGraphQL(context.Background(), srv.URL, "query{}", nil, nil, &out); err != nil {
			t.Fatalf("DoGraphQL() error = %v", err)
		}
		if out.User.Login != "octocat" {
			t.Errorf("login = %q, want octocat", out.User.Login)
		}
	})

	t.Run("2xx body with errors array is a failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":null,"errors":[{"message":"Bad credentials","extensions":{"code":"UNAUTHENTICATED"}}]}`))
		}))
		defer srv.Close()

		c := NewClient(ClientConfig{Name: "github"})
		err := c.DoGraphQL(context.Background(), srv.URL, "query{}", nil, nil, nil)
		if err == nil {
			t.Fatal("expected error for 2xx body with errors array")
		}
		he, ok := err.(*HTTPError)
		if !ok {
			t.Fatalf("error type = %T, want *HTTPError", err)
		}
		if he.Message != "Bad credentials" {
			t.Errorf("message = %q, want upstream error message", he.Message)
		}
		if he.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want the upstream 200", he.StatusCode)
		}
	})

	t.Run("non-2xx status is an HTTPError with that status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`upstream exploded`))
		}))
		defer srv.Close()

		c := NewClient(ClientConfig{Name: "github"})
		err := c.DoGraphQL(context.Background(), srv.URL, "query{}", nil, nil, nil)
		if StatusOf(err) != http.StatusBadGateway {
			t.Errorf("StatusOf(err) = %d, want 502", StatusOf(err))
		}
	})

	t.Run("unreachable host is a NetworkError", func(t *testing.T) {
		c := NewClient(ClientConfig{Name: "github"})
		err := c.DoGraphQL(context.Background(), "http://127.0.0.1:1/graphql", "query{}", nil, nil, nil)
		if err == nil {
			t.Fatal("expected error for unreachable host")
		}
		if _, ok := err.(*NetworkError); !ok {
			t.Errorf("error type = %T, want *NetworkError", err)
		}
	})

	t.Run("malformed body is a DataError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>not json</html>`))
		}))
		defer srv.Close()

		c := NewClient(ClientConfig{Name: "leetcode"})
		err := c.DoGraphQL(context.Background(), srv.URL, "query{}", nil, nil, nil)
		if !IsData(err) {
			t.Errorf("error = %v, want DataError", err)
		}
	})
}
