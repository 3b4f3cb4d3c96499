package httpdoctor

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/vfaronov/httpheader"
	"golang.org/x/sync/errgroup"

	"github.com/httpdoctor/httpdoctor/crosscheck"
	"github.com/httpdoctor/httpdoctor/note"
)

// runRelated decides which auxiliary fetches the primary diagnosis earns
// and runs them concurrently. Each one is internally sequential
// (fetch → parse → analyze) and failure-isolated: a failed auxiliary fetch
// yields a best-effort child diagnosis, never an error on the parent.
func (d *Doctor) runRelated(ctx context.Context, diag *Diagnosis, req Request) {
	if diag.Message == nil {
		return
	}

	var mu sync.Mutex
	link := func(kind RelationKind, child *Diagnosis, extra []note.Note) {
		mu.Lock()
		defer mu.Unlock()
		diag.link(kind, child)
		diag.addNotes(extra...)
	}

	g, gctx := errgroup.WithContext(ctx)

	if isRedirect(diag.Message.StatusCode) {
		g.Go(func() error {
			chain := &redirectChain{visited: map[string]bool{req.URL.String(): true}}
			child, notes := d.followRedirect(gctx, diag, req, chain)
			if child != nil {
				link(RelationRedirect, child, notes)
			} else {
				mu.Lock()
				diag.addNotes(notes...)
				mu.Unlock()
			}
			return nil
		})
	}

	if diag.Facts.Validator != crosscheck.ValidatorNone {
		g.Go(func() error {
			child, notes := d.retryConditional(gctx, diag, req)
			link(RelationConditional, child, notes)
			return nil
		})
	}

	if diag.Facts.RangesBytes && diag.Message.BodyLength > 0 &&
		diag.Message.StatusCode == http.StatusOK {
		g.Go(func() error {
			child, notes := d.retryRange(gctx, diag, req)
			link(RelationRange, child, notes)
			return nil
		})
	}

	if req.ExtraHeaders.Get("Accept-Encoding") == "" &&
		diag.Message.StatusCode != http.StatusPartialContent {
		g.Go(func() error {
			child, notes := d.retryConneg(gctx, diag, req)
			link(RelationConneg, child, notes)
			return nil
		})
	}

	g.Wait()
}

// redirectChain is the one piece of state shared along a redirect chase.
// It is owned by the goroutine following that chain and never crosses to
// sibling checks.
type redirectChain struct {
	visited map[string]bool
	depth   int
}

// followRedirect chases the Location of a redirect response. The returned
// diagnosis covers the immediate target (with further hops linked under
// it); the notes belong on the redirecting parent.
func (d *Doctor) followRedirect(ctx context.Context, parent *Diagnosis,
	req Request, chain *redirectChain) (*Diagnosis, []note.Note) {

	if parent.Facts.Location == nil {
		return nil, []note.Note{note.New(note.SubjectMessage,
			"REDIRECT_WITHOUT_LOCATION",
			"code", strconv.Itoa(parent.Message.StatusCode))}
	}
	target := req.URL.ResolveReference(parent.Facts.Location)

	if chain.visited[target.String()] {
		return nil, []note.Note{note.New(note.HeaderSubject("Location"),
			"REDIRECT_LOOP", "uri", target.String())}
	}
	if chain.depth >= d.cfg.MaxRedirects {
		return nil, []note.Note{note.New(note.SubjectMessage,
			"REDIRECT_LIMIT",
			"limit", strconv.Itoa(d.cfg.MaxRedirects))}
	}
	chain.visited[target.String()] = true
	chain.depth++

	nextReq := Request{Method: req.Method, URL: target}
	child := d.checkOne(ctx, nextReq, "redirect")
	if child.Message != nil && isRedirect(child.Message.StatusCode) {
		grandchild, notes := d.followRedirect(ctx, child, nextReq, chain)
		if grandchild != nil {
			child.link(RelationRedirect, grandchild)
		}
		child.addNotes(notes...)
	}
	child.freeze()
	return child, nil
}

// retryConditional confirms 304 support using the response's validator.
func (d *Doctor) retryConditional(ctx context.Context, parent *Diagnosis,
	req Request) (*Diagnosis, []note.Note) {

	extra := make(http.Header)
	var precondition string
	if parent.Facts.HasETag {
		httpheader.SetIfNoneMatch(extra, []httpheader.EntityTag{parent.Facts.ETag})
		precondition = "If-None-Match"
	} else {
		httpheader.SetIfModifiedSince(extra, parent.Facts.LastModified)
		precondition = "If-Modified-Since"
	}

	child := d.checkOne(ctx, Request{
		Method:       req.Method,
		URL:          req.URL,
		ExtraHeaders: extra,
	}, "conditional")
	child.freeze()

	if child.Message == nil {
		return child, []note.Note{subreqProblem("conditional", child)}
	}
	if child.Message.StatusCode == http.StatusNotModified {
		return child, []note.Note{note.New(note.SubjectMessage,
			"CONDITIONAL_SUPPORTED", "precondition", precondition)}
	}
	return child, []note.Note{note.New(note.SubjectMessage,
		"CONDITIONAL_NOT_SUPPORTED",
		"precondition", precondition,
		"code", strconv.Itoa(child.Message.StatusCode))}
}

const rangeProbeEnd = 99

// retryRange asks for a small prefix range and verifies the partial
// content matches the full body.
func (d *Doctor) retryRange(ctx context.Context, parent *Diagnosis,
	req Request) (*Diagnosis, []note.Note) {

	end := int64(rangeProbeEnd)
	if parent.Message.BodyLength <= end {
		end = parent.Message.BodyLength - 1
	}
	// a capped capture keeps only a body prefix; the probe must stay
	// within it or the comparison below has nothing to compare against
	if kept := int64(len(parent.Message.Body)); parent.Message.BodyTruncated && kept <= end {
		end = kept - 1
	}
	spec := "bytes=0-" + strconv.FormatInt(end, 10)
	extra := make(http.Header)
	extra.Set("Range", spec)

	child := d.checkOne(ctx, Request{
		Method:       req.Method,
		URL:          req.URL,
		ExtraHeaders: extra,
	}, "range")
	child.freeze()

	if child.Message == nil {
		return child, []note.Note{subreqProblem("range", child)}
	}
	switch child.Message.StatusCode {
	case http.StatusPartialContent:
		want := parent.Message.Body
		if int64(len(want)) > end+1 {
			want = want[:end+1]
		}
		if bytes.Equal(child.Message.Body, want) {
			return child, []note.Note{note.New(note.SubjectMessage,
				"RANGE_CORRECT", "range", spec)}
		}
		return child, []note.Note{note.New(note.SubjectMessage,
			"RANGE_INCORRECT", "range", spec)}
	case http.StatusOK:
		return child, []note.Note{note.New(
			note.HeaderSubject("Accept-Ranges"), "RANGE_FULL")}
	default:
		return child, []note.Note{note.New(note.SubjectMessage,
			"RANGE_STATUS",
			"code", strconv.Itoa(child.Message.StatusCode))}
	}
}

// retryConneg re-fetches with Accept-Encoding: gzip and compares the
// variants.
func (d *Doctor) retryConneg(ctx context.Context, parent *Diagnosis,
	req Request) (*Diagnosis, []note.Note) {

	extra := make(http.Header)
	extra.Set("Accept-Encoding", "gzip")

	child := d.checkOne(ctx, Request{
		Method:       req.Method,
		URL:          req.URL,
		ExtraHeaders: extra,
	}, "conneg")
	child.freeze()

	if child.Message == nil {
		return child, []note.Note{subreqProblem("content negotiation", child)}
	}
	notes := crosscheck.EvaluateVaryAgainst(parent.Facts, child.Facts)
	notes = append(notes, crosscheck.CompressionNotes(parent.Facts, child.Facts)...)
	return child, notes
}

func subreqProblem(kind string, child *Diagnosis) note.Note {
	problem := "the request failed"
	for _, n := range child.Notes {
		if n.ID == "TRANSPORT_ERROR" {
			problem = n.Summary()
			break
		}
	}
	return note.New(note.SubjectMessage, "SUBREQ_PROBLEM",
		"kind", kind, "problem", problem)
}

func isRedirect(statusCode int) bool {
	if statusCode == 301 ||
		statusCode == 302 ||
		statusCode == 303 ||
		statusCode == 307 ||
		statusCode == 308 {
		return true
	}
	return false
}
