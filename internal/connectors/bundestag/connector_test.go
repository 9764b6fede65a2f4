package bundestag

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/telemachus/internal/connectors/httpclient"
	"github.com/custodia-labs/telemachus/internal/core/domain"
	"github.com/custodia-labs/telemachus/internal/normalisers/tabular"
)

const searchJSON = `{"results":[
  {"registerNumber":"R001234","lobbyistIdentity":{"name":"Google Germany GmbH"},"registerEntryDetails":{"registerEntryId":42}},
  {"registerNumber":"R005678","lobbyistIdentity":{"name":"Google Cloud Verband"},"registerEntryDetails":{"registerEntryId":"77"}},
  {"registerNumber":"","lobbyistIdentity":{"name":"Broken"},"registerEntryDetails":{}}
]}`

const detailWithProjects = `{
  "lobbyistIdentity":{"name":"Google Germany GmbH"},
  "activitiesAndInterests":{"fieldsOfInterest":[{"de":"Digitalisierung","en":"Digitalisation"},{"en":"Competition"}]},
  "regulatoryProjects":{"regulatoryProjectsCount":2,"regulatoryProjects":[
    {"title":"KI-Verordnung","printedMatters":[{"leadingMinistries":[]},{"leadingMinistries":[{"shortTitle":"BMDV"}]}]},
    {"title":"Datengesetz","printedMatters":[]}
  ]},
  "accountDetails":{"firstPublicationDate":"2022-03-01","lastUpdateDate":"2024-06-30"}
}`

const detailWithoutProjects = `{
  "lobbyistIdentity":{"name":"Google Cloud Verband"},
  "activitiesAndInterests":{"fieldsOfInterest":[{"de":"Cloud"}]},
  "accountDetails":{"firstPublicationDate":"2023-01-15"}
}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google", r.URL.Query().Get("q"))
		assert.Equal(t, "RELEVANCE_DESC", r.URL.Query().Get("sort"))
		_, _ = w.Write([]byte(searchJSON))
	})
	mux.HandleFunc("/detail/R001234/42", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailWithProjects))
	})
	mux.HandleFunc("/detail/R005678/77", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailWithoutProjects))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestConnector(t *testing.T, srv *httptest.Server) *Connector {
	t.Helper()
	norm, ok := tabular.NewDefaultRegistry().Get(domain.JurisdictionGermany)
	require.True(t, ok)
	client := httpclient.New(httpclient.Config{RequestsPerSecond: 1000, Burst: 100, MaxRetries: -1})
	return New(Config{
		SearchURL: srv.URL + "/search",
		DetailURL: srv.URL + "/detail/%s/%s",
	}, client, norm)
}

func TestConnector_LiveSearch(t *testing.T) {
	recs, err := newTestConnector(t, newServer(t)).LiveSearch(context.Background(), "google", time.Hour)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, domain.NormalizedRecord{
		SubjectName:     "Google Germany GmbH",
		CounterpartName: "BMDV",
		Date:            "2024-06-30",
		Topic:           "KI-Verordnung",
		Department:      register,
		Jurisdiction:    domain.JurisdictionGermany,
		SourceDocument:  "R001234",
	}, recs[0])

	assert.Equal(t, "Datengesetz", recs[1].Topic)
	assert.Empty(t, recs[1].CounterpartName)

	assert.Equal(t, "Google Cloud Verband", recs[2].SubjectName)
	assert.Equal(t, "2023-01-15", recs[2].Date)
	assert.Equal(t, "Cloud", recs[2].Topic)
}

func TestConnector_LiveSearchMaxEntities(t *testing.T) {
	c := newTestConnector(t, newServer(t))
	c.cfg.MaxEntities = 1

	recs, err := c.LiveSearch(context.Background(), "google", time.Hour)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestConnector_LiveSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestConnector(t, srv).LiveSearch(context.Background(), "google", time.Hour)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestDetailRows(t *testing.T) {
	rows := detail{}.rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0][colName])
}

func TestIDString(t *testing.T) {
	assert.Equal(t, "42", idString(float64(42)))
	assert.Equal(t, "77", idString("77"))
	assert.Equal(t, "", idString(nil))
}

func TestConnector_Discover(t *testing.T) {
	_, err := New(Config{}, nil, nil).Discover(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotSupported)
}
