package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFetchCountries(t *testing.T) {
	server := newJSONServer(t, http.StatusOK, `[
		{"name":"Kenya","capital":"Nairobi","region":"Africa","population":50000000,"currencies":[{"code":"KES"}],"flag":"https://flagcdn.com/ke.svg"},
		{"name":"Antarctica","population":1000}
	]`)
	c := NewExternalSourceClient(server.URL, "", time.Second)

	countries, err := c.FetchCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 2)
	assert.Equal(t, "Kenya", countries[0]["name"])
	assert.Equal(t, float64(50000000), countries[0]["population"])
}

func TestFetchCountries_Unavailable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "服务端错误", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "空响应", status: http.StatusOK, body: ``},
		{name: "null响应", status: http.StatusOK, body: `null`},
		{name: "类型错误", status: http.StatusOK, body: `{"name":"Kenya"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newJSONServer(t, tt.status, tt.body)
			c := NewExternalSourceClient(server.URL, "", time.Second)

			countries, err := c.FetchCountries(context.Background())
			assert.Nil(t, countries)

			var unavailable *SourceUnavailableError
			require.True(t, errors.As(err, &unavailable))
			assert.Equal(t, SourceCountries, unavailable.Source)
			assert.Equal(t, "Could not fetch data from Countries API", unavailable.Details())
		})
	}
}

func TestFetchCountries_NonObjectElements(t *testing.T) {
	server := newJSONServer(t, http.StatusOK, `[{"name":"Kenya","population":50000000},"oops",42,null,{"name":"Chad"}]`)
	c := NewExternalSourceClient(server.URL, "", time.Second)

	countries, err := c.FetchCountries(context.Background())
	require.NoError(t, err)
	require.Len(t, countries, 5)
	assert.Equal(t, "Kenya", countries[0]["name"])
	assert.Empty(t, countries[1])
	assert.Empty(t, countries[2])
	assert.Empty(t, countries[3])
	assert.Equal(t, "Chad", countries[4]["name"])
}

func TestFetchCountries_EmptyArray(t *testing.T) {
	server := newJSONServer(t, http.StatusOK, `[]`)
	c := NewExternalSourceClient(server.URL, "", time.Second)

	countries, err := c.FetchCountries(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, countries)
	assert.Empty(t, countries)
}

// fetchFailures 从默认注册表读取某个数据源的失败计数
func fetchFailures(t *testing.T, source string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "countries_external_fetch_failures_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "source" && label.GetValue() == source {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestFetch_CanceledIsNotCountedAsFailure(t *testing.T) {
	server := newJSONServer(t, http.StatusOK, `[]`)
	c := NewExternalSourceClient(server.URL, server.URL, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := fetchFailures(t, SourceRates)
	_, err := c.FetchRates(ctx)

	var unavailable *SourceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, fetchFailures(t, SourceRates))
}

func TestFetch_FailureIsCounted(t *testing.T) {
	server := newJSONServer(t, http.StatusServiceUnavailable, `{}`)
	c := NewExternalSourceClient(server.URL, server.URL, time.Second)

	before := fetchFailures(t, SourceCountries)
	_, err := c.FetchCountries(context.Background())

	require.Error(t, err)
	assert.Equal(t, before+1, fetchFailures(t, SourceCountries))
}

func TestFetchCountries_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewExternalSourceClient(server.URL, "", 50*time.Millisecond)
	_, err := c.FetchCountries(context.Background())

	var unavailable *SourceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, SourceCountries, unavailable.Source)
}

func TestFetchRates_Envelope(t *testing.T) {
	server := newJSONServer(t, http.StatusOK, `{"result":"success","base_code":"USD","rates":{"USD":1,"KES":110.5,"NGN":"1600.25"}}`)
	c := NewExternalSourceClient("", server.URL, time.Second)

	rates, err := c.FetchRates(context.Background())
	require.NoError(t, err)
	assert.Len(t, rates, 3)
	assert.Equal(t, 110.5, rates["KES"])
	assert.Equal(t, 1600.25, rates["NGN"])
}

func TestFetchRates_FlatMap(t *testing.T) {
	server := newJSONServer(t, http.StatusOK, `{"KES":110.5,"EUR":0.92,"BAD":null}`)
	c := NewExternalSourceClient("", server.URL, time.Second)

	rates, err := c.FetchRates(context.Background())
	require.NoError(t, err)
	assert.Len(t, rates, 2)

	rate, ok := rates.Lookup("EUR")
	assert.True(t, ok)
	assert.Equal(t, 0.92, rate)

	_, ok = rates.Lookup("BAD")
	assert.False(t, ok)
}

func TestFetchRates_Unavailable(t *testing.T) {
	server := newJSONServer(t, http.StatusBadGateway, `{}`)
	c := NewExternalSourceClient("", server.URL, time.Second)

	_, err := c.FetchRates(context.Background())

	var unavailable *SourceUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, SourceRates, unavailable.Source)
	assert.Contains(t, err.Error(), "502")
}

func TestFetchRates_NotObject(t *testing.T) {
	server := newJSONServer(t, http.StatusOK, `[1,2,3]`)
	c := NewExternalSourceClient("", server.URL, time.Second)

	_, err := c.FetchRates(context.Background())

	var unavailable *SourceUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestNewExternalSourceClient_DefaultTimeout(t *testing.T) {
	c := NewExternalSourceClient("a", "b", 0)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
