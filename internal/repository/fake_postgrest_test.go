package repository

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"pycsa-web/internal/baas"

	"go.uber.org/zap"
)

// fakePostgrest is an in-memory stand-in for the PostgREST tables endpoint.
// It understands eq filters, order, offset/limit, exact counts, single
// object responses and the unique sku constraint on products.
type fakePostgrest struct {
	mu     sync.Mutex
	tables map[string][]map[string]any
	nextID int64
	clock  time.Time
}

func newFakeBackend(t *testing.T) (*baas.Client, *fakePostgrest) {
	t.Helper()
	fake := &fakePostgrest{
		tables: map[string][]map[string]any{},
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return baas.NewClient(srv.URL, "anon", 0, zap.NewNop()), fake
}

func (f *fakePostgrest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := strings.TrimPrefix(r.URL.Path, "/rest/v1/")
	query := r.URL.Query()
	single := r.Header.Get("Accept") == "application/vnd.pgrst.object+json"

	switch r.Method {
	case http.MethodGet:
		rows := f.filter(name, query)
		f.sortRows(rows, query.Get("order"))
		total := len(rows)
		offset, _ := strconv.Atoi(query.Get("offset"))
		if offset > 0 && offset >= total {
			w.Header().Set("Content-Range", fmt.Sprintf("*/%d", total))
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			fmt.Fprintf(w, `{"code":"PGRST103","details":"An offset of %d was requested, but there are only %d rows.","hint":null,"message":"Requested range not satisfiable"}`, offset, total)
			return
		}
		rows = rows[offset:]
		if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit < len(rows) {
			rows = rows[:limit]
		}
		if strings.Contains(r.Header.Get("Prefer"), "count=exact") {
			w.Header().Set("Content-Range", fmt.Sprintf("%d-%d/%d", offset, offset+len(rows)-1, total))
		}
		f.respond(w, rows, single)

	case http.MethodPost:
		var row map[string]any
		json.NewDecoder(r.Body).Decode(&row)
		if name == "products" && row["sku"] != nil {
			for _, existing := range f.tables[name] {
				if existing["sku"] == row["sku"] {
					w.WriteHeader(http.StatusConflict)
					fmt.Fprint(w, `{"code":"23505","details":null,"hint":null,"message":"duplicate key value violates unique constraint \"products_sku_key\""}`)
					return
				}
			}
		}
		f.nextID++
		f.clock = f.clock.Add(time.Minute)
		row["id"] = float64(f.nextID)
		if _, ok := row["created_at"]; !ok {
			row["created_at"] = f.clock.Format(time.RFC3339)
		}
		f.tables[name] = append(f.tables[name], row)
		w.WriteHeader(http.StatusCreated)
		f.respond(w, []map[string]any{row}, single)

	case http.MethodPatch:
		var patch map[string]any
		json.NewDecoder(r.Body).Decode(&patch)
		rows := f.filter(name, query)
		for _, row := range rows {
			for k, v := range patch {
				row[k] = v
			}
		}
		f.respond(w, rows, single)

	case http.MethodDelete:
		matched := f.filter(name, query)
		kept := f.tables[name][:0]
		for _, row := range f.tables[name] {
			if !contains(matched, row) {
				kept = append(kept, row)
			}
		}
		f.tables[name] = kept
		w.WriteHeader(http.StatusNoContent)
	}
}

func (f *fakePostgrest) filter(name string, query map[string][]string) []map[string]any {
	var out []map[string]any
	for _, row := range f.tables[name] {
		match := true
		for col, values := range query {
			switch col {
			case "select", "order", "offset", "limit":
				continue
			}
			want := strings.TrimPrefix(values[0], "eq.")
			if fmt.Sprint(row[col]) != want {
				match = false
			}
		}
		if match {
			out = append(out, row)
		}
	}
	return out
}

func (f *fakePostgrest) sortRows(rows []map[string]any, order string) {
	if order == "" {
		return
	}
	terms := strings.Split(order, ",")
	sort.SliceStable(rows, func(i, j int) bool {
		for _, term := range terms {
			col, dir, _ := strings.Cut(term, ".")
			a, b := fmt.Sprint(rows[i][col]), fmt.Sprint(rows[j][col])
			if a == b {
				continue
			}
			if dir == "desc" {
				return a > b
			}
			return a < b
		}
		return false
	})
}

func (f *fakePostgrest) respond(w http.ResponseWriter, rows []map[string]any, single bool) {
	if single {
		if len(rows) != 1 {
			w.WriteHeader(http.StatusNotAcceptable)
			fmt.Fprint(w, `{"code":"PGRST116","details":"The result contains 0 rows","hint":null,"message":"JSON object requested, multiple (or no) rows returned"}`)
			return
		}
		json.NewEncoder(w).Encode(rows[0])
		return
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	json.NewEncoder(w).Encode(rows)
}

func contains(rows []map[string]any, row map[string]any) bool {
	for _, r := range rows {
		if fmt.Sprint(r["id"]) == fmt.Sprint(row["id"]) {
			return true
		}
	}
	return false
}
