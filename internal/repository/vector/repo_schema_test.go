package vector

import (
	"context"
	"strings"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	dbredis "github.com/kailas-cloud/twinrag/internal/db/redis"
)

// The schema emitted by FT.CREATE and the attribute FT.SEARCH addresses are
// built by different layers. This drives EnsureIndex and Query through one
// Repo over the real command builders and checks the two commands agree: a
// KNN query against an attribute the schema never declared fails on a real
// server for every single search.
func TestIndexSchema_DeclaresQueriedAttribute(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var createArgs, searchArgs []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "FT.CREATE" {
				return false
			}
			createArgs = append([]string(nil), cmd...)
			return true
		})).
		Return(mock.Result(mock.RedisString("OK")))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "FT.SEARCH" {
				return false
			}
			searchArgs = append([]string(nil), cmd...)
			return true
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	repo := New(dbredis.NewStoreForTest(c), "twinrag:profile:",
		Options{Dimensions: 4, M: 16, EFConstruct: 200})

	ctx := context.Background()
	if _, err := repo.EnsureIndex(ctx); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}
	if _, err := repo.Query(ctx, []float32{0.1, 0.2, 0.3, 0.4}, 3); err != nil {
		t.Fatalf("Query: %v", err)
	}

	attr := queriedAttribute(t, searchArgs)
	declared := declaredAttributes(t, createArgs)
	if !declared[attr] {
		t.Errorf("KNN query addresses @%s but the schema declares only %v", attr, keys(declared))
	}
}

// queriedAttribute extracts the @attribute from the FT.SEARCH query string.
func queriedAttribute(t *testing.T, args []string) string {
	t.Helper()
	if len(args) < 3 {
		t.Fatalf("short FT.SEARCH command: %v", args)
	}
	query := args[2]
	at := strings.Index(query, "@")
	if at < 0 {
		t.Fatalf("no @attribute in query %q", query)
	}
	rest := query[at+1:]
	if sp := strings.IndexByte(rest, ' '); sp >= 0 {
		rest = rest[:sp]
	}
	return rest
}

// declaredAttributes collects the queryable attribute names from the SCHEMA
// section: the AS alias when one is declared, the field name otherwise.
func declaredAttributes(t *testing.T, args []string) map[string]bool {
	t.Helper()
	start := -1
	for i, a := range args {
		if a == "SCHEMA" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		t.Fatalf("no SCHEMA in FT.CREATE command: %v", args)
	}

	declared := make(map[string]bool)
	schema := args[start:]
	for i := 0; i+1 < len(schema); i++ {
		switch schema[i+1] {
		case "AS":
			if i+2 < len(schema) {
				declared[schema[i+2]] = true
			}
		case "TEXT", "TAG", "VECTOR":
			declared[schema[i]] = true
		}
	}
	return declared
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
