package messe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/spielplan/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {})
}

type fakeCache struct {
	pages map[string]string
	puts  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	content, ok := c.pages[key]
	return content, ok, nil
}

func (c *fakeCache) Put(ctx context.Context, key string, payload string) error {
	c.pages[key] = payload
	c.puts++
	return nil
}

func testClient(t *testing.T, handler http.Handler, cache PageCache) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(testLogger(), cache, Config{BaseURL: server.URL})
}

// The Galeria record carries the non-breaking space the live API mixes
// into hall values.
const exhibitorPayload = `{"exhibitors":[
	{"ID":101,"NAME":"Kosmos","HALLE":"Hall 3","STAND":"A10","LAND":"Germany","WEB":"kosmos.de","INFO":"Family games","LOGO":"kosmos.png"},
	{"ID":"202","NAME":"Asmodee","HALLE":"Hall 1|Hall 2","STAND":"B20|C30"},
	{"ID":"303","NAME":"Ragged Booths","HALLE":"Hall 4|Hall 5","STAND":"D40"},
	{"ID":"404","NAME":"Galeria Press","HALLE":"Hall` + "\u00a0" + `Galeria","STAND":"G5"},
	{"ID":"505","NAME":"No Location","HALLE":"","STAND":""}
]}`

func TestFetchExhibitors(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/exhibitors")
		assert.NotEmpty(t, r.URL.Query().Get("columns"))
		w.Write([]byte(exhibitorPayload))
	}), nil)

	exhibitors, err := client.FetchExhibitors(context.Background(), false)
	require.NoError(t, err)

	// one record per booth location, the location-less record dropped
	require.Len(t, exhibitors, 6)

	kosmos := exhibitors[0]
	assert.Equal(t, "101", kosmos.ID)
	assert.Equal(t, "Kosmos", kosmos.Name)
	assert.Equal(t, models.Hall{Num: 3, Numeric: true}, kosmos.Hall)
	assert.Equal(t, "A10", kosmos.Booth)
	assert.Equal(t, "Germany", kosmos.Country)
	assert.Equal(t, "Family games", kosmos.Info)
	assert.False(t, kosmos.IsMultiLocation)
	assert.Equal(t, "kosmos.png", kosmos.Extra["LOGO"])

	// pipe-delimited halls and booths pair up by position
	assert.Equal(t, models.Hall{Num: 1, Numeric: true}, exhibitors[1].Hall)
	assert.Equal(t, "B20", exhibitors[1].Booth)
	assert.True(t, exhibitors[1].IsMultiLocation)
	assert.Equal(t, models.Hall{Num: 2, Numeric: true}, exhibitors[2].Hall)
	assert.Equal(t, "C30", exhibitors[2].Booth)

	// a ragged booth list falls back to the first booth
	assert.Equal(t, models.Hall{Num: 4, Numeric: true}, exhibitors[3].Hall)
	assert.Equal(t, "D40", exhibitors[3].Booth)
	assert.Equal(t, models.Hall{Num: 5, Numeric: true}, exhibitors[4].Hall)
	assert.Equal(t, "D40", exhibitors[4].Booth)
}

func TestFetchExhibitorsHallCleaning(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(exhibitorPayload))
	}), nil)

	exhibitors, err := client.FetchExhibitors(context.Background(), false)
	require.NoError(t, err)

	// non-breaking space and "Hall " prefix are stripped before parsing
	galeria := exhibitors[len(exhibitors)-1]
	assert.Equal(t, "Galeria Press", galeria.Name)
	assert.Equal(t, models.Hall{Label: "Galeria"}, galeria.Hall)
}

func TestFetchProducts(t *testing.T) {
	const payload = `[
		{"TITEL":"Ark Nova","FIRMA_ID":101,"UNTERTITEL":"Zoo builder","INFO":"Big box","BILDER":"x.png"},
		{"TITEL":"","FIRMA_ID":"202"},
		{"TITEL":"Orphan Game"}
	]`

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/products")
		w.Write([]byte(payload))
	}), nil)

	products, err := client.FetchProducts(context.Background(), false)
	require.NoError(t, err)

	// records without title or company are dropped
	require.Len(t, products, 1)
	assert.Equal(t, "Ark Nova", products[0].Title)
	assert.Equal(t, "101", products[0].CompanyID)
	assert.Equal(t, "Zoo builder", products[0].Subtitle)
	assert.Equal(t, "Big box", products[0].Info)
	assert.Equal(t, "x.png", products[0].Extra["BILDER"])
}

func TestFetchExhibitorsCache(t *testing.T) {
	hits := 0
	cache := newFakeCache()
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(exhibitorPayload))
	}), cache)

	_, err := client.FetchExhibitors(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, cache.puts)

	// second call served from cache
	_, err = client.FetchExhibitors(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	// bypassing the cache fetches live but still refreshes the cache
	_, err = client.FetchExhibitors(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 2, cache.puts)
}

func TestFetchRowsErrors(t *testing.T) {
	t.Run("error status", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}), nil)

		_, err := client.FetchExhibitors(context.Background(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 502")
	})

	t.Run("malformed payload", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`"just a string"`))
		}), nil)

		_, err := client.FetchExhibitors(context.Background(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "payload shape")
	})

	t.Run("wrapper without the resource key", func(t *testing.T) {
		client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"something_else":[]}`))
		}), nil)

		exhibitors, err := client.FetchExhibitors(context.Background(), false)
		require.NoError(t, err)
		assert.Empty(t, exhibitors)
	})
}

func TestYear(t *testing.T) {
	client := NewClient(testLogger(), nil, Config{})
	assert.Len(t, client.Year(), 2)
}
