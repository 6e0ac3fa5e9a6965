package mock

import (
	"context"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Query is one synthetic unit of work for the pool workload: a request shape
// plus a simulated processing cost for when no real upstream is wired.
type Query struct {
	Path  string
	Query string
	Cost  time.Duration
}

// GenerateQueries produces num randomized queries for tests and benchmarks.
func GenerateQueries(num int) []*Query {
	list := make([]*Query, 0, num)
	for i := 0; i < num; i++ {
		list = append(list, newQuery(i))
	}
	return list
}

// StreamQueries emits an endless stream of randomized queries until the
// context is canceled or num queries were produced (num <= 0 means no limit).
func StreamQueries(ctx context.Context, num int) <-chan *Query {
	out := make(chan *Query)
	go func() {
		defer close(out)
		for i := 0; num <= 0 || i < num; i++ {
			select {
			case <-ctx.Done():
				return
			case out <- newQuery(i):
			}
		}
	}()
	return out
}

func newQuery(i int) *Query {
	return &Query{
		Path: "/api/v1/" + gofakeit.Word() + "/" + gofakeit.Word(),
		Query: "user=" + gofakeit.Username() +
			"&domain=" + gofakeit.DomainName() +
			"&lang=" + gofakeit.LanguageAbbreviation() +
			"&seq=" + strconv.Itoa(i),
		Cost: time.Duration(gofakeit.Number(50, 2000)) * time.Microsecond,
	}
}
