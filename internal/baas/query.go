package baas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const singleObjectMediaType = "application/vnd.pgrst.object+json"

// Query builds one PostgREST request against a table.
type Query struct {
	client  *Client
	table   string
	params  url.Values
	order   []string
	prefer  []string
	single  bool
	hasPage bool
	from    int
	to      int
}

// From starts a query on table.
func (c *Client) From(table string) *Query {
	return &Query{
		client: c,
		table:  table,
		params: url.Values{},
	}
}

// Select limits the returned columns, e.g. "id,title,date".
func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

// Eq adds an equality filter.
func (q *Query) Eq(column string, value any) *Query {
	q.params.Add(column, "eq."+fmt.Sprint(value))
	return q
}

// Order appends an ordering term. Terms apply in call order.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.order = append(q.order, column+"."+dir)
	return q
}

// Range selects rows from..to inclusive (zero based).
func (q *Query) Range(from, to int) *Query {
	q.hasPage = true
	q.from = from
	q.to = to
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// Count asks for the exact total row count of the filtered query.
func (q *Query) Count() *Query {
	q.prefer = append(q.prefer, "count=exact")
	return q
}

// Single expects exactly one row and decodes it as an object. Zero rows
// yields ErrNoRows.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

func (q *Query) build(method string, prefer ...string) request {
	params := url.Values{}
	for k, v := range q.params {
		params[k] = append([]string(nil), v...)
	}
	if len(q.order) > 0 {
		params.Set("order", strings.Join(q.order, ","))
	}
	if q.hasPage {
		params.Set("offset", strconv.Itoa(q.from))
		params.Set("limit", strconv.Itoa(q.to-q.from+1))
	}

	headers := http.Header{}
	if q.single {
		headers.Set("Accept", singleObjectMediaType)
	}
	if all := append(append([]string(nil), q.prefer...), prefer...); len(all) > 0 {
		headers.Set("Prefer", strings.Join(all, ","))
	}

	return request{
		method:  method,
		path:    "/rest/v1/" + q.table,
		query:   params,
		headers: headers,
	}
}

// Find runs the query and decodes the rows into dest. The returned count is
// the exact total when Count was requested and -1 otherwise.
func (q *Query) Find(ctx context.Context, dest any) (int, error) {
	resp, err := q.client.do(ctx, q.build(http.MethodGet))
	if err != nil {
		return 0, err
	}
	if err := decode(resp.body, dest); err != nil {
		return 0, err
	}
	return parseContentRange(resp.headers.Get("Content-Range")), nil
}

// Insert writes row and decodes the stored representation into dest when
// dest is non-nil.
func (q *Query) Insert(ctx context.Context, row any, dest any) error {
	return q.write(ctx, http.MethodPost, row, dest)
}

// Update patches the rows matched by the filters.
func (q *Query) Update(ctx context.Context, patch any, dest any) error {
	return q.write(ctx, http.MethodPatch, patch, dest)
}

// Delete removes the rows matched by the filters.
func (q *Query) Delete(ctx context.Context) error {
	_, err := q.client.do(ctx, q.build(http.MethodDelete))
	return err
}

func (q *Query) write(ctx context.Context, method string, payload any, dest any) error {
	body, err := jsonBody(payload)
	if err != nil {
		return err
	}

	ret := "return=minimal"
	if dest != nil {
		ret = "return=representation"
	}
	req := q.build(method, ret)
	req.body = body

	resp, err := q.client.do(ctx, req)
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	return decode(resp.body, dest)
}

func decode(body []byte, dest any) error {
	if dest == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseContentRange reads the total from "0-5/13" or "*/0".
func parseContentRange(header string) int {
	i := strings.LastIndex(header, "/")
	if i < 0 {
		return -1
	}
	total, err := strconv.Atoi(header[i+1:])
	if err != nil {
		return -1
	}
	return total
}
