package crosscheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfaronov/httpheader"
)

func TestVaryAgainstNoGzip(t *testing.T) {
	notes := EvaluateVaryAgainst(
		Facts{StatusCode: 200},
		Facts{StatusCode: 200, GzipEncoded: false},
	)
	assert.Equal(t, []string{"CONNEG_NO_GZIP"}, noteIDs(notes))
}

func TestVaryAgainstStatusMismatch(t *testing.T) {
	notes := EvaluateVaryAgainst(
		Facts{StatusCode: 200},
		Facts{StatusCode: 406, GzipEncoded: true},
	)
	// variants are not comparable, so only the mismatch is reported
	assert.Equal(t, []string{"VARY_STATUS_MISMATCH"}, noteIDs(notes))
}

func TestVaryAgainstWellBehaved(t *testing.T) {
	primary := Facts{
		StatusCode:  200,
		ContentType: "text/html",
		Vary:        []string{"accept-encoding"},
		BodyDigest:  1,
		BodyLength:  1000,
	}
	negotiated := Facts{
		StatusCode:  200,
		ContentType: "text/html",
		Vary:        []string{"accept-encoding"},
		GzipEncoded: true,
		BodyDigest:  2,
		BodyLength:  400,
	}
	notes := EvaluateVaryAgainst(primary, negotiated)
	assert.Empty(t, noteIDs(notes))
}

func TestVaryAgainstMissingVary(t *testing.T) {
	notes := EvaluateVaryAgainst(
		Facts{StatusCode: 200},
		Facts{StatusCode: 200, GzipEncoded: true},
	)
	ids := noteIDs(notes)
	assert.Contains(t, ids, "CONNEG_NO_VARY")
}

func TestVaryAgainstInconsistentVary(t *testing.T) {
	notes := EvaluateVaryAgainst(
		Facts{StatusCode: 200, Vary: []string{"accept-encoding", "user-agent"}},
		Facts{StatusCode: 200, GzipEncoded: true, Vary: []string{"accept-encoding"}},
	)
	assert.Contains(t, noteIDs(notes), "VARY_INCONSISTENT")
}

func TestVaryAgainstContentTypeMismatch(t *testing.T) {
	notes := EvaluateVaryAgainst(
		Facts{StatusCode: 200, ContentType: "text/html",
			Vary: []string{"accept-encoding"}},
		Facts{StatusCode: 200, ContentType: "application/xhtml+xml",
			GzipEncoded: true, Vary: []string{"accept-encoding"}},
	)
	assert.Contains(t, noteIDs(notes), "VARY_HEADER_MISMATCH")
}

func TestVaryAgainstUnchangedStrongETag(t *testing.T) {
	tag := httpheader.EntityTag{Opaque: "v1"}
	notes := EvaluateVaryAgainst(
		Facts{StatusCode: 200, Vary: []string{"accept-encoding"},
			HasETag: true, ETag: tag},
		Facts{StatusCode: 200, GzipEncoded: true, Vary: []string{"accept-encoding"},
			HasETag: true, ETag: tag},
	)
	assert.Contains(t, noteIDs(notes), "VARY_ETAG_DOESNT_CHANGE")
}

func TestVaryAgainstSameEncodingDifferentBody(t *testing.T) {
	notes := EvaluateVaryAgainst(
		Facts{StatusCode: 200, GzipEncoded: true, Vary: []string{"accept-encoding"},
			BodyDigest: 1},
		Facts{StatusCode: 200, GzipEncoded: true, Vary: []string{"accept-encoding"},
			BodyDigest: 2},
	)
	assert.Contains(t, noteIDs(notes), "VARY_BODY_MISMATCH")
}

func TestCompressionNotesSavings(t *testing.T) {
	notes := CompressionNotes(
		Facts{BodyLength: 1000},
		Facts{BodyLength: 400, GzipEncoded: true},
	)
	assert.Equal(t, []string{"CONNEG_GZIP_GOOD"}, noteIDs(notes))
	assert.Contains(t, notes[0].Summary(), "60%")
}

func TestCompressionNotesCounterproductive(t *testing.T) {
	notes := CompressionNotes(
		Facts{BodyLength: 400},
		Facts{BodyLength: 600, GzipEncoded: true},
	)
	assert.Equal(t, []string{"CONNEG_GZIP_BAD"}, noteIDs(notes))
}

func TestCompressionNotesNotApplicable(t *testing.T) {
	// primary already compressed, or negotiation failed
	assert.Nil(t, CompressionNotes(
		Facts{BodyLength: 1000, GzipEncoded: true},
		Facts{BodyLength: 400, GzipEncoded: true}))
	assert.Nil(t, CompressionNotes(
		Facts{BodyLength: 1000},
		Facts{BodyLength: 400}))
}
