// Package httpdoctor fetches a resource at the wire level and diagnoses its
// HTTP conformance: framing, header syntax, caching, validators and content
// negotiation. The result is a Diagnosis carrying typed header values and
// spec-cited Notes, plus linked diagnoses for related fetches.
package httpdoctor

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/httpdoctor/httpdoctor/crosscheck"
	"github.com/httpdoctor/httpdoctor/headers"
	"github.com/httpdoctor/httpdoctor/message"
	"github.com/httpdoctor/httpdoctor/note"
)

// Doctor runs diagnoses. It is safe for concurrent use.
type Doctor struct {
	cfg     Config
	fetcher Fetcher
	log     zerolog.Logger
	clock   clock.Clock
}

// New validates the configuration and creates a Doctor. The returned error
// is always a *ConfigurationError.
func New(config Config) (*Doctor, error) {
	cfg, err := config.withDefaults()
	if err != nil {
		return nil, err
	}
	logger := log.Logger
	if config.Logger != nil {
		logger = *config.Logger
	}
	return &Doctor{
		cfg:     cfg,
		fetcher: cfg.Fetcher,
		log:     logger,
		clock:   cfg.Clock,
	}, nil
}

// Check fetches and diagnoses the resource at uri. It always returns a
// Diagnosis: fetch and parse failures become Notes on it, never errors.
func (d *Doctor) Check(ctx context.Context, uri string) *Diagnosis {
	req, ok := d.parseTarget(uri)
	if !ok {
		diag := &Diagnosis{URI: uri, Method: http.MethodGet, FetchedAt: d.clock.Now()}
		diag.addNotes(note.New(note.SubjectMessage, "TRANSPORT_ERROR",
			"error", "the URI could not be parsed as an http or https URL"))
		diag.freeze()
		return diag
	}

	diag := d.checkOne(ctx, req, "primary")
	if !d.cfg.DisableRelated {
		d.runRelated(ctx, diag, req)
	}
	diag.freeze()
	d.log.Debug().Str("uri", diag.URI).
		Stringer("state", stateDone).
		Int("related", len(diag.Related)).
		Msg("Diagnosis complete")
	return diag
}

func (d *Doctor) parseTarget(uri string) (Request, bool) {
	u, err := url.Parse(uri)
	if err != nil || !isHTTPURL(u.Scheme) || u.Host == "" {
		return Request{}, false
	}
	return Request{Method: http.MethodGet, URL: u}, true
}

// checkOne runs one fetch → parse → analyze sequence. The returned
// Diagnosis is not yet frozen; the caller appends relation results first.
func (d *Doctor) checkOne(ctx context.Context, req Request, kind string) *Diagnosis {
	logger := d.log.With().
		Str("uri", req.URL.String()).
		Str("check", kind).
		Logger()

	diag := &Diagnosis{URI: req.URL.String(), Method: req.Method}
	st := stateFetching
	logger.Debug().Stringer("state", st).Msg("Fetching resource")

	fetchCtx := ctx
	if d.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, d.cfg.FetchTimeout)
		defer cancel()
	}
	raw, err := d.fetcher.Fetch(fetchCtx, req)
	diag.FetchedAt = d.clock.Now()
	if err != nil {
		logger.Debug().Err(err).Msg("Fetch failed")
		diag.addNotes(note.New(note.SubjectMessage, "TRANSPORT_ERROR",
			"error", err.Error()))
		diag.freeze()
		return diag
	}

	msg, parseNotes, parseErr := message.ParseResponse(raw, message.Options{
		BodyCap: d.cfg.BodyCap,
	})
	st = stateParsed
	logger.Trace().Stringer("state", st).
		Int("fields", len(msg.Fields)).
		Int("status", msg.StatusCode).
		Msg("Parsed response")
	diag.Message = msg
	if parseErr != nil {
		logger.Debug().Err(parseErr).Msg("Parse abandoned")
		offset := 0
		var pe *message.ParseError
		if errors.As(parseErr, &pe) {
			offset = pe.Offset
		}
		diag.addNotes(note.New(note.SubjectMessage, "PARSE_ABANDONED",
			"offset", strconv.Itoa(offset),
			"error", parseErr.Error()))
	}

	results, headerNotes := headers.AnalyzeAll(msg)
	diag.Results = results

	facts, crossNotes := crosscheck.Evaluate(msg, results, crosscheck.Request{
		Method:             req.Method,
		HasAuthorization:   req.ExtraHeaders.Get("Authorization") != "",
		SentAcceptEncoding: req.ExtraHeaders.Get("Accept-Encoding") != "",
	}, diag.FetchedAt, d.clock.Now())
	diag.Facts = facts

	// Note order: header field order first, then parse-level findings,
	// then cross-header facts.
	diag.addNotes(headerNotes...)
	diag.addNotes(parseNotes...)
	diag.addNotes(crossNotes...)

	st = stateAnalyzed
	logger.Debug().Stringer("state", st).
		Int("notes", len(diag.Notes)).
		Stringer("severest", diag.Severest()).
		Msg("Analyzed response")
	return diag
}
