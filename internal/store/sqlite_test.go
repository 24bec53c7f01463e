package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "recpick-test.db")
	s, err := Open(dbPath)
	require.NoError(t, err, "open test store")
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func seedSample(t *testing.T, s *Store) {
	t.Helper()
	records, err := SampleRecords()
	require.NoError(t, err)
	require.NoError(t, s.Upsert(context.Background(), records))
}

func names(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestSearchPrefixMatchesFirst(t *testing.T) {
	s := openTestStore(t)
	seedSample(t, s)

	page, err := s.Search(context.Background(), Query{Term: "corp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Corporation", "Globex Corporation", "Umbrella Corporation"}, names(page.Records))

	page, err = s.Search(context.Background(), Query{Term: "ac"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Corporation", "Acme Labs", "Ada Lovelace", "Grace Hopper"}, names(page.Records))
	assert.Equal(t, 4, page.Total)
}

func TestSearchKindFilterAndPaging(t *testing.T) {
	s := openTestStore(t)
	seedSample(t, s)
	ctx := context.Background()

	first, err := s.Search(ctx, Query{Kind: "company", Limit: 4})
	require.NoError(t, err)
	second, err := s.Search(ctx, Query{Kind: "company", Limit: 4, Offset: 4})
	require.NoError(t, err)

	assert.Equal(t, 10, first.Total)
	assert.Len(t, first.Records, 4)
	assert.Len(t, second.Records, 4)
	assert.NotEqual(t, first.Records[0].ID, second.Records[0].ID)
	for _, r := range append(first.Records, second.Records...) {
		assert.Equal(t, "company", r.Kind)
	}
}

func TestSearchEscapesWildcards(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Upsert(context.Background(), []Record{
		{ID: "a", Name: "100% cotton"},
		{ID: "b", Name: "1000 cotton"},
	}))

	page, err := s.Search(context.Background(), Query{Term: "100%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% cotton"}, names(page.Records))
}

func TestSearchNoMatchesReturnsEmptyPage(t *testing.T) {
	s := openTestStore(t)
	seedSample(t, s)

	page, err := s.Search(context.Background(), Query{Term: "zzz"})
	require.NoError(t, err)
	assert.NotNil(t, page.Records)
	assert.Empty(t, page.Records)
	assert.Zero(t, page.Total)
}

func TestGetAndUpsertReplace(t *testing.T) {
	s := openTestStore(t)
	seedSample(t, s)
	ctx := context.Background()

	r, err := s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", r.Name)
	assert.Equal(t, map[string]string{"team": "analytics"}, r.Attributes)

	require.NoError(t, s.Upsert(ctx, []Record{{ID: "1", Name: "Augusta Ada King", Kind: "person"}}))
	r, err = s.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Augusta Ada King", r.Name)
	assert.Nil(t, r.Attributes)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertRequiresID(t *testing.T) {
	s := openTestStore(t)

	err := s.Upsert(context.Background(), []Record{{ID: "ok", Name: "fine"}, {Name: "no id"}})

	require.Error(t, err)
	page, err := s.Search(context.Background(), Query{})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "the whole batch is rolled back")
}

func TestSeedFromFile(t *testing.T) {
	s := openTestStore(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
records:
  - id: "x1"
    name: Xerxes
    kind: person
  - id: "x2"
    name: Xanadu Ltd
    kind: company
`), 0o644))

	n, err := s.SeedFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := s.Search(context.Background(), Query{Term: "xan"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Xanadu Ltd"}, names(page.Records))
}

func TestParseSeedRejectsIncompleteRecords(t *testing.T) {
	_, err := ParseSeed([]byte("records:\n  - id: \"1\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id and name are required")
}
