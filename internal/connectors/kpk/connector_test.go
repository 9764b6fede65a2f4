package kpk

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

const registerPage = `<html><body>
<h2><strong>Register lobistov, stanje 2024</strong></h2>
<div class="flex flex-column gap-3">
  <strong>Novak, Janez</strong>
  <p class="m-0">Energetika · Telekomunikacije · Zdravstvo</p>
  <ul>
    <li>Propiar d.o.o.</li>
    <li>Dunajska cesta 5</li>
    <li>1000 Ljubljana</li>
    <li>janez@propiar.si</li>
  </ul>
</div>
<div class="flex flex-column gap-3">
  <strong>Kovač, Maja</strong>
  <p class="m-0">Kmetijstvo</p>
  <ul><li>maja@example.si</li></ul>
</div>
<div class="flex flex-column gap-3">
  <strong>Novak, Janez</strong>
</div>
<p><strong>Opomba</strong></p>
</body></html>`

func TestParseRegister(t *testing.T) {
	rows, err := ParseRegister([]byte(registerPage))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, domain.RawRow{
		colName:    "Novak, Janez",
		colCompany: "Propiar d.o.o.",
		colFields:  "Energetika; Telekomunikacije; Zdravstvo",
		colEmail:   "janez@propiar.si",
	}, rows[0])
	assert.Equal(t, "Kovač, Maja", rows[1][colName])
	assert.Empty(t, rows[1][colCompany])
}

func TestConnector_LiveSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(registerPage))
	}))
	defer srv.Close()

	norm, ok := tabular.NewDefaultRegistry().Get(domain.JurisdictionSlovenia)
	require.True(t, ok)
	client := httpclient.New(httpclient.Config{RequestsPerSecond: 1000, Burst: 100, MaxRetries: -1})
	c := New(srv.URL, client, nil, norm)

	tests := []struct {
		term string
		want []string
	}{
		{"novak", []string{"Novak, Janez"}},
		{"PROPIAR", []string{"Novak, Janez"}},
		{"kmetijstvo", []string{"Kovač, Maja"}},
		{"nobody", nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			recs, err := c.LiveSearch(context.Background(), tt.term, time.Hour)
			require.NoError(t, err)
			var names []string
			for _, r := range recs {
				names = append(names, r.SubjectName)
				assert.Equal(t, domain.JurisdictionSlovenia, r.Jurisdiction)
				assert.Equal(t, register, r.Department)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestConnector_LiveSearchCounterpartIsEmployer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(registerPage))
	}))
	defer srv.Close()

	norm, _ := tabular.NewDefaultRegistry().Get(domain.JurisdictionSlovenia)
	c := New(srv.URL, httpclient.New(httpclient.Config{RequestsPerSecond: 1000, MaxRetries: -1}), nil, norm)

	recs, err := c.LiveSearch(context.Background(), "janez", time.Hour)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Propiar d.o.o.", recs[0].CounterpartName)
	assert.Equal(t, "Energetika; Telekomunikacije; Zdravstvo", recs[0].Topic)
}

func TestConnector_Discover(t *testing.T) {
	_, err := New("", nil, nil, nil).Discover(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotSupported)
}
