package lobbyfacts

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

const registerXML = `<?xml version="1.0" encoding="UTF-8"?>
<ListOfIRPublicDetail>
  <resultList>
    <interestRepresentative>
      <identificationCode>03181945560-59</identificationCode>
      <name><originalName>Google</originalName></name>
      <acronym></acronym>
    </interestRepresentative>
    <interestRepresentative>
      <identificationCode>111-22</identificationCode>
      <name><originalName>European Digital Rights</originalName></name>
      <acronym>EDRi</acronym>
    </interestRepresentative>
    <interestRepresentative>
      <identificationCode>333-44</identificationCode>
      <name><originalName>Alphabet Google Holdings</originalName></name>
    </interestRepresentative>
  </resultList>
</ListOfIRPublicDetail>`

const meetingsCSV = "\ufeffDate,Subject,DG name/Portfolio,Attending from Commission,Other lobbyists\n" +
	"2024-02-01,AI Act,Internal Market,Thierry Breton,\n" +
	"2023-11-15,Digital Markets Act,Competition,Margrethe Vestager,Apple\n"

func TestMatchRegister(t *testing.T) {
	reps, err := MatchRegister([]byte(registerXML), "GOOGLE", 0)
	require.NoError(t, err)
	require.Len(t, reps, 2)
	assert.Equal(t, Representative{ID: "03181945560-59", Name: "Google"}, reps[0])
	assert.Equal(t, "333-44", reps[1].ID)

	reps, err = MatchRegister([]byte(registerXML), "edri", 0)
	require.NoError(t, err)
	require.Len(t, reps, 1)
	assert.Equal(t, "European Digital Rights", reps[0].Name)

	reps, err = MatchRegister([]byte(registerXML), "google", 1)
	require.NoError(t, err)
	assert.Len(t, reps, 1)

	reps, err = MatchRegister([]byte(registerXML), "  ", 0)
	require.NoError(t, err)
	assert.Empty(t, reps)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/register.xml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(registerXML))
	})
	mux.HandleFunc("/meetings/03181945560-59", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(meetingsCSV))
	})
	mux.HandleFunc("/meetings/333-44", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestConnector(t *testing.T, srv *httptest.Server) *Connector {
	t.Helper()
	norm, ok := tabular.NewDefaultRegistry().Get(domain.JurisdictionEU)
	require.True(t, ok)
	client := httpclient.New(httpclient.Config{RequestsPerSecond: 1000, Burst: 100, MaxRetries: -1})
	return New(Config{
		RegisterURL: srv.URL + "/register.xml",
		MeetingsURL: srv.URL + "/meetings/%s",
	}, client, nil, norm)
}

func TestConnector_LiveSearch(t *testing.T) {
	c := newTestConnector(t, newServer(t))

	recs, err := c.LiveSearch(context.Background(), "google", time.Hour)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, domain.NormalizedRecord{
		SubjectName:     "Google",
		CounterpartName: "Thierry Breton",
		Date:            "2024-02-01",
		Topic:           "AI Act",
		Department:      "Internal Market",
		Jurisdiction:    domain.JurisdictionEU,
		SourceDocument:  "03181945560-59",
	}, recs[0])
	assert.Equal(t, "Margrethe Vestager", recs[1].CounterpartName)
}

func TestConnector_LiveSearchNoMatch(t *testing.T) {
	c := newTestConnector(t, newServer(t))

	recs, err := c.LiveSearch(context.Background(), "nobody", time.Hour)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestConnector_LiveSearchRegisterDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestConnector(t, srv).LiveSearch(context.Background(), "google", time.Hour)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestConnector_Discover(t *testing.T) {
	c := New(Config{}, nil, nil, nil)
	_, err := c.Discover(context.Background(), 10)
	assert.ErrorIs(t, err, domain.ErrNotSupported)
	assert.False(t, c.Info().SupportsDiscovery)
	assert.True(t, c.Info().SupportsLiveSearch)
}
