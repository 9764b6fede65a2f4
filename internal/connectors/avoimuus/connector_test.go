package avoimuus

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

const registrationsJSON = `[
  {"companyName":"Nokia Oyj","companyId":1001,"registrationDate":"2024-01-10","mainIndustry":"Telecommunications"},
  {"companyName":"Teollisuusliitto","companyId":"2002","registrationDate":"2024-02-01",
   "supplementaryCompanyNames":[{"title":"Nokia Workers Union"}]},
  {"companyName":"Fortum Oyj","companyId":3003,"registrationDate":"2024-03-01"}
]`

const activitiesJSON = `[
  {"topics":[{"contactTopicOther":"5G spectrum"},{"contactTopicProject":"Cyber security act"}]},
  {"topics":[{"contactTopicOther":"5G spectrum"},{"contactTopicOther":{"unexpected":true}}]}
]`

func newTestConnector(t *testing.T) *Connector {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(registrationsPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(registrationsJSON))
	})
	mux.HandleFunc(activitiesPath+"1001", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(activitiesJSON))
	})
	mux.HandleFunc(activitiesPath+"2002", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	norm, ok := tabular.NewDefaultRegistry().Get(domain.JurisdictionFinland)
	require.True(t, ok)
	client := httpclient.New(httpclient.Config{RequestsPerSecond: 1000, Burst: 100, MaxRetries: -1})
	return New(srv.URL+"/", client, nil, norm)
}

func TestConnector_LiveSearch(t *testing.T) {
	recs, err := newTestConnector(t).LiveSearch(context.Background(), "nokia", time.Hour)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, domain.NormalizedRecord{
		SubjectName:    "Nokia Oyj",
		Date:           "2024-01-10",
		Topic:          "5G spectrum",
		Department:     register,
		Jurisdiction:   domain.JurisdictionFinland,
		SourceDocument: "1001",
	}, recs[0])
	assert.Equal(t, "Cyber security act", recs[1].Topic)

	// Matched on a supplementary name; failed activity fetch keeps the entry.
	assert.Equal(t, "Teollisuusliitto", recs[2].SubjectName)
	assert.Empty(t, recs[2].Topic)
	assert.Equal(t, "2002", recs[2].SourceDocument)
}

func TestConnector_LiveSearchMainIndustryFallback(t *testing.T) {
	c := newTestConnector(t)
	c.maxEntities = 0

	recs, err := c.LiveSearch(context.Background(), "nokia oyj", time.Hour)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Telecommunications", recs[0].Topic)
}

func TestConnector_LiveSearchNoMatch(t *testing.T) {
	recs, err := newTestConnector(t).LiveSearch(context.Background(), "shell", time.Hour)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestTopicText(t *testing.T) {
	assert.Equal(t, "a", topic{ContactTopicOther: " a ", ContactTopicProject: "b"}.text())
	assert.Equal(t, "b", topic{ContactTopicOther: 3.0, ContactTopicProject: "b"}.text())
	assert.Equal(t, "", topic{}.text())
}

func TestConnector_Discover(t *testing.T) {
	_, err := New("", nil, nil, nil).Discover(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotSupported)
}
