package workua

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

const listingPageOne = `<!DOCTYPE html>
<html><body><div id="pjax">
<div class="card card-hover resume-link">
  <h2><a href="/resumes/1001/">Python Developer</a></h2>
  <div><span class="strong-600">Олег</span></div>
  <p class="mt-xs mb-0"><span>25 років</span>, Київ, Дистанційно</p>
  <p class="mb-0 mt-xs text-default-7">Вища освіта · Повна зайнятість</p>
  <time datetime="2024-06-01">3 дні тому</time>
</div>
<div class="card resume-link">
  <h2>Junior Developer</h2>
</div>
</div></body></html>`

const listingPageTwo = `<!DOCTYPE html>
<html><body><div id="pjax">
<div class="resume-link">
  <h2><a href="/resumes/2001/">QA Engineer</a></h2>
  <div><span class="strong-600">Марія</span></div>
</div>
</div></body></html>`

const listingPageEmpty = `<!DOCTYPE html>
<html><body><div id="pjax"><p>Нічого не знайдено</p></div></body></html>`

// requestCap guards tests against an infinite pagination loop on broken
// fixtures: the server fails the test instead of serving forever.
const requestCap = 10

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > requestCap {
			t.Errorf("more than %d requests, scan does not terminate", requestCap)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client := New(zap.NewNop())
	client.BaseURL = srv.URL
	client.HTTPClient = srv.Client()

	return client, srv
}

func TestScanCollectsAllPages(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(listingPageOne))
		case "2":
			w.Write([]byte(listingPageTwo))
		default:
			w.Write([]byte(listingPageEmpty))
		}
	})

	records, err := client.Scan(context.Background(), "Python Developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.Title != "Python Developer" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Link != srv.URL+"/resumes/1001/" {
		t.Fatalf("expected absolute link, got %q", first.Link)
	}
	if first.Name != "Олег" {
		t.Fatalf("unexpected name: %q", first.Name)
	}
	if first.Age != "25 років" {
		t.Fatalf("unexpected age: %q", first.Age)
	}
	if first.Location != "Дистанційно" {
		t.Fatalf("expected last location segment, got %q", first.Location)
	}
	if first.Education != "Вища освіта · Повна зайнятість" {
		t.Fatalf("unexpected education: %q", first.Education)
	}
	if first.LastUpdate != "3 дні тому" {
		t.Fatalf("unexpected last update: %q", first.LastUpdate)
	}
}

func TestScanAppliesDefaultsForMissingFields(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(listingPageOne))
			return
		}
		w.Write([]byte(listingPageEmpty))
	})

	records, err := client.Scan(context.Background(), "Python Developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	sparse := records[1]
	if sparse.Title != "Junior Developer" {
		t.Fatalf("unexpected title: %q", sparse.Title)
	}
	if sparse.Link != "" {
		t.Fatalf("expected empty link for card without href, got %q", sparse.Link)
	}
	if sparse.Name != DefaultName {
		t.Fatalf("expected default name, got %q", sparse.Name)
	}
	if sparse.Age != DefaultAge {
		t.Fatalf("expected default age, got %q", sparse.Age)
	}
	if sparse.Location != DefaultLocation {
		t.Fatalf("expected default location, got %q", sparse.Location)
	}
	if sparse.Education != DefaultEducation {
		t.Fatalf("expected default education, got %q", sparse.Education)
	}
	if sparse.LastUpdate != DefaultLastUpdate {
		t.Fatalf("expected default last update, got %q", sparse.LastUpdate)
	}
}

func TestScanStopsOnEmptyPage(t *testing.T) {
	pagesServed := make([]string, 0)
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pagesServed = append(pagesServed, page)
		if page == "1" {
			w.Write([]byte(listingPageTwo))
			return
		}
		w.Write([]byte(listingPageEmpty))
	})

	records, err := client.Scan(context.Background(), "QA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if len(pagesServed) != 2 {
		t.Fatalf("expected scan to stop after the empty page, served %v", pagesServed)
	}
}

func TestScanStopsOnNonSuccessStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(listingPageOne))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	records, err := client.Scan(context.Background(), "Python Developer")
	if err != nil {
		t.Fatalf("non-success status is normal termination, got error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected records accumulated before the failing page, got %d", len(records))
	}
}

func TestScanSearchParamKeepsPlusSeparator(t *testing.T) {
	var rawQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		w.Write([]byte(listingPageEmpty))
	})

	if _, err := client.Scan(context.Background(), "Python Developer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "search=Python+Developer"; !strings.Contains(rawQuery, want) {
		t.Fatalf("expected %q in raw query %q", want, rawQuery)
	}
	if want := "page=1"; !strings.Contains(rawQuery, want) {
		t.Fatalf("expected %q in raw query %q", want, rawQuery)
	}
}
