package harreport

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpdoctor "github.com/httpdoctor/httpdoctor"
)

type fixedFetcher struct {
	responses map[string][]byte
}

func (f fixedFetcher) Fetch(_ context.Context, req httpdoctor.Request) ([]byte, error) {
	return f.responses[req.URL.Path], nil
}

func diagnose(t *testing.T) *httpdoctor.Diagnosis {
	t.Helper()
	d, err := httpdoctor.New(httpdoctor.Config{
		Fetcher: fixedFetcher{responses: map[string][]byte{
			"/start": []byte("HTTP/1.1 301 Moved Permanently\r\n" +
				"Location: /end\r\n" +
				"Content-Length: 0\r\n" +
				"\r\n"),
			"/end": []byte("HTTP/1.1 200 OK\r\n" +
				"Content-Type: text/plain\r\n" +
				"Content-Length: 4\r\n" +
				"\r\n" +
				"done"),
		}},
	})
	require.NoError(t, err)
	return d.Check(context.Background(), "http://site.example/start")
}

func TestFromDiagnosis(t *testing.T) {
	report := FromDiagnosis(diagnose(t))

	require.Len(t, report.Log.Pages, 1)
	assert.Equal(t, "1.2", report.Log.Version)

	// the primary entry plus at least the redirect target
	require.GreaterOrEqual(t, len(report.Log.Entries), 2)
	primary := report.Log.Entries[0]
	assert.Equal(t, "http://site.example/start", primary.Request.URL)
	assert.Equal(t, 301, primary.Response.Status)
	assert.Equal(t, "/end", primary.Response.RedirectURL)
	assert.NotEmpty(t, primary.Notes)

	var redirect *Entry
	for i := range report.Log.Entries {
		if report.Log.Entries[i].Relation == "redirect-target" {
			redirect = &report.Log.Entries[i]
		}
	}
	require.NotNil(t, redirect)
	assert.Equal(t, 200, redirect.Response.Status)
	assert.Equal(t, int64(4), redirect.Response.BodySize)
}

func TestMarshalIsValidJSON(t *testing.T) {
	doc, err := FromDiagnosis(diagnose(t)).Marshal()
	require.NoError(t, err)

	var round map[string]interface{}
	require.NoError(t, json.Unmarshal(doc, &round))
	log := round["log"].(map[string]interface{})
	assert.NotEmpty(t, log["entries"])
}

func TestTransportFailureEntry(t *testing.T) {
	d, err := httpdoctor.New(httpdoctor.Config{
		Fetcher:        fixedFetcher{responses: map[string][]byte{}},
		DisableRelated: true,
	})
	require.NoError(t, err)
	// empty response bytes parse to nothing; the entry still renders
	diag := d.Check(context.Background(), "http://site.example/void")

	report := FromDiagnosis(diag)
	require.Len(t, report.Log.Entries, 1)
	assert.NotEmpty(t, report.Log.Entries[0].Notes)
}
