package profiling

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler(t *testing.T) {
	server := httptest.NewServer(NewHandler())
	defer server.Close()

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	response, err := client.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("Get: %s", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusSeeOther || response.Header.Get("Location") != "/debug/pprof/" {
		t.Fatalf("TestHandler: expected a redirect to /debug/pprof/, got %d %q",
			response.StatusCode, response.Header.Get("Location"))
	}

	response, err = client.Get(server.URL + "/debug/pprof/")
	if err != nil {
		t.Fatalf("Get: %s", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("TestHandler: unexpected status %d for the pprof index", response.StatusCode)
	}
}
