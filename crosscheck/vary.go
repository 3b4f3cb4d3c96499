package crosscheck

import (
	"strconv"

	"github.com/httpdoctor/httpdoctor/note"
)

// EvaluateVaryAgainst compares the primary response's facts with those of a
// variant of the same resource fetched with Accept-Encoding: gzip, and
// reports negotiation and Vary defects. It is pure; the orchestrator calls
// it once the auxiliary fetch has completed.
func EvaluateVaryAgainst(primary, negotiated Facts) []note.Note {
	var notes []note.Note
	emit := func(subject, id string, args ...string) {
		notes = append(notes, note.New(subject, id, args...))
	}

	if !negotiated.GzipEncoded {
		emit(note.SubjectMessage, "CONNEG_NO_GZIP")
		return notes
	}

	// Negotiation is happening; the variants must be comparable.
	if primary.StatusCode != negotiated.StatusCode {
		emit(note.SubjectMessage, "VARY_STATUS_MISMATCH",
			"neg_status", strconv.Itoa(negotiated.StatusCode),
			"noneg_status", strconv.Itoa(primary.StatusCode))
		return notes
	}

	if primary.ContentType != negotiated.ContentType {
		emit(note.HeaderSubject("Content-Type"), "VARY_HEADER_MISMATCH",
			"field_name", "Content-Type")
	}

	if !contains(negotiated.Vary, "accept-encoding") && !contains(negotiated.Vary, "*") {
		emit(note.HeaderSubject("Vary"), "CONNEG_NO_VARY")
	}
	if !sameList(primary.Vary, negotiated.Vary) {
		emit(note.HeaderSubject("Vary"), "VARY_INCONSISTENT",
			"conneg_vary", varyList(negotiated.Vary),
			"no_conneg_vary", varyList(primary.Vary))
	}

	if primary.HasETag && negotiated.HasETag &&
		primary.ETag == negotiated.ETag && !primary.ETag.Weak {
		emit(note.HeaderSubject("ETag"), "VARY_ETAG_DOESNT_CHANGE")
	}

	// With different encodings the bodies legitimately differ; the digest
	// check only makes sense when both variants are identically encoded.
	if primary.GzipEncoded == negotiated.GzipEncoded &&
		primary.BodyDigest != negotiated.BodyDigest {
		emit(note.SubjectMessage, "VARY_BODY_MISMATCH")
	}

	return notes
}

// CompressionNotes reports how worthwhile the negotiated compression was.
func CompressionNotes(primary, negotiated Facts) []note.Note {
	if !negotiated.GzipEncoded || primary.GzipEncoded ||
		primary.BodyLength <= 0 || negotiated.BodyLength <= 0 {
		return nil
	}
	savings := int(100 * (primary.BodyLength - negotiated.BodyLength) / primary.BodyLength)
	args := []string{
		"orig_size", strconv.FormatInt(primary.BodyLength, 10),
		"gzip_size", strconv.FormatInt(negotiated.BodyLength, 10),
	}
	if savings >= 0 {
		args = append(args, "savings", strconv.Itoa(savings))
		return []note.Note{note.New(note.HeaderSubject("Content-Encoding"),
			"CONNEG_GZIP_GOOD", args...)}
	}
	args = append(args, "savings", strconv.Itoa(-savings))
	return []note.Note{note.New(note.HeaderSubject("Content-Encoding"),
		"CONNEG_GZIP_BAD", args...)}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sameList(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
