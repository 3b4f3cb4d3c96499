package note

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogCoverage(t *testing.T) {
	for id, tpl := range Catalog() {
		assert.NotEmpty(t, tpl.Summary, "%s has no summary", id)
		assert.GreaterOrEqual(t, tpl.Severity, Good, "%s severity", id)
		assert.LessOrEqual(t, tpl.Severity, Bad, "%s severity", id)
		// summaries are single-line
		assert.NotContains(t, tpl.Summary, "\n", "%s summary", id)
	}
}

func TestNewSubstitutesArgs(t *testing.T) {
	n := New(SubjectMessage, "STATUS_UNCACHEABLE", "code", "418")
	assert.Equal(t, "The 418 status is not cacheable by default.", n.Summary())
	assert.Equal(t, Info, n.Severity)
	assert.NotEmpty(t, n.Ref)
}

func TestNewUnknownIDPanics(t *testing.T) {
	assert.Panics(t, func() { New(SubjectMessage, "NO_SUCH_TEMPLATE") })
}

func TestNewOddArgsPanics(t *testing.T) {
	assert.Panics(t, func() { New(SubjectMessage, "FRESHNESS_NONE", "orphan") })
}

func TestUnmatchedPlaceholderVisible(t *testing.T) {
	// a template arg the caller forgot stays visible instead of vanishing
	n := New(SubjectMessage, "STATUS_UNCACHEABLE", "unrelated", "x")
	assert.Contains(t, n.Summary(), "{code}")
}

func TestSubjects(t *testing.T) {
	assert.Equal(t, "header-cache-control", HeaderSubject("Cache-Control"))
	n := New(HeaderSubject("ETag"), "VALIDATOR_STRONG")
	assert.Equal(t, "etag", n.HeaderName())
	m := New(SubjectMessage, "FRESHNESS_NONE")
	assert.Equal(t, "", m.HeaderName())
}

func TestSeverityString(t *testing.T) {
	for sev, want := range map[Severity]string{
		Good: "good", Info: "info", Warning: "warning", Bad: "bad",
	} {
		assert.Equal(t, want, sev.String())
	}
}

func TestTextExpansion(t *testing.T) {
	n := New(SubjectMessage, "BODY_INCOMPLETE", "declared", "10", "received", "5")
	text := n.Text()
	assert.True(t, strings.Contains(text, "10") && strings.Contains(text, "5"), text)
}
