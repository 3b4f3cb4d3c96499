package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	httpdoctor "github.com/httpdoctor/httpdoctor"
	harreport "github.com/httpdoctor/httpdoctor/pkg/har-report"
	"github.com/httpdoctor/httpdoctor/store"
)

var (
	servePortFlag   int
	serveDbFlag     string
	serveConfigFlag string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the diagnosis daemon",
	Long: `Run an HTTP daemon that checks resources on demand and keeps the
results so they can be shared and re-read later.

Routes:
  POST /check?uri=...   run a check and store the result
  GET  /results/{id}      a stored diagnosis as JSON
  GET  /results/{id}/har  the same diagnosis as a HAR document
  GET  /recent            recently stored checks`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePortFlag, "port", 8000, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDbFlag, "db", "httpdoctor.db",
		"Results DB file name (use 'memory' for an in-memory db)")
	serveCmd.Flags().StringVar(&serveConfigFlag, "config", "",
		"YAML configuration file")
}

type serveConfig struct {
	Port         int           `yaml:"port"`
	Db           string        `yaml:"db"`
	MaxRedirects int           `yaml:"maxRedirects"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	ResultTTL    time.Duration `yaml:"resultTTL"`
}

func getServeConfig(filename string) (serveConfig, error) {
	config := serveConfig{
		Port:      servePortFlag,
		Db:        serveDbFlag,
		ResultTTL: 7 * 24 * time.Hour,
	}
	if filename == "" {
		return config, nil
	}
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = yaml.Unmarshal(configBytes, &config)
	return config, err
}

func runServe(cmd *cobra.Command, args []string) error {
	config, err := getServeConfig(serveConfigFlag)
	if err != nil {
		return err
	}

	dbFilename := config.Db
	if dbFilename == "memory" {
		dbFilename = ""
	}
	results, err := store.NewSQLiteStore(dbFilename)
	if err != nil {
		return err
	}

	doctor, err := httpdoctor.New(httpdoctor.Config{
		MaxRedirects: config.MaxRedirects,
		FetchTimeout: config.FetchTimeout,
		Logger:       &log.Logger,
	})
	if err != nil {
		return err
	}

	daemon := &daemon{doctor: doctor, results: results, ttl: config.ResultTTL}

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Post("/check", daemon.check)
	r.Get("/results/{id}", daemon.result)
	r.Get("/results/{id}/har", daemon.resultHar)
	r.Get("/recent", daemon.recent)

	log.Info().Int("port", config.Port).Str("db", config.Db).
		Msg("Daemon listening")
	return http.ListenAndServe(fmt.Sprintf(":%d", config.Port), r)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).
			Msg("Request")
		next.ServeHTTP(w, r)
	})
}

type daemon struct {
	doctor  *httpdoctor.Doctor
	results store.Store
	ttl     time.Duration
}

func (d *daemon) check(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("uri")
	if uri == "" {
		http.Error(w, "missing uri parameter", http.StatusBadRequest)
		return
	}

	diag := d.doctor.Check(r.Context(), uri)
	document, err := json.Marshal(diag)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id := resultID(uri, diag.FetchedAt)
	entry := store.Entry{
		ID:        id,
		URI:       uri,
		CreatedAt: diag.FetchedAt,
		Expires:   diag.FetchedAt.Add(d.ttl),
		Document:  document,
	}
	if err := d.results.Put(entry); err != nil {
		log.Error().Err(err).Str("id", id).Msg("Cannot store result")
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/results/"+id)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":        id,
		"diagnosis": diag,
	})
}

func (d *daemon) result(w http.ResponseWriter, r *http.Request) {
	entry, ok := d.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(entry.Document)
}

func (d *daemon) resultHar(w http.ResponseWriter, r *http.Request) {
	entry, ok := d.lookup(w, r)
	if !ok {
		return
	}
	var diag httpdoctor.Diagnosis
	if err := json.Unmarshal(entry.Document, &diag); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	doc, err := harreport.FromDiagnosis(&diag).Marshal()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(doc)
}

func (d *daemon) recent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := d.results.Recent(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	type listing struct {
		ID        string    `json:"id"`
		URI       string    `json:"uri"`
		CreatedAt time.Time `json:"createdAt"`
	}
	listings := make([]listing, 0, len(entries))
	for _, e := range entries {
		listings = append(listings, listing{e.ID, e.URI, e.CreatedAt})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listings)
}

func (d *daemon) lookup(w http.ResponseWriter, r *http.Request) (store.Entry, bool) {
	id := chi.URLParam(r, "id")
	entry, ok, err := d.results.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return store.Entry{}, false
	}
	if !ok {
		http.Error(w, "no such result", http.StatusNotFound)
		return store.Entry{}, false
	}
	return entry, true
}

func resultID(uri string, at time.Time) string {
	h := xxhash.New()
	h.WriteString(uri)
	h.WriteString(strconv.FormatInt(at.UnixNano(), 10))
	return strconv.FormatUint(h.Sum64(), 16)
}
