package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"machinery-service/internal/config"
	"machinery-service/internal/export"
	"machinery-service/internal/machinery/model"
	"machinery-service/internal/machinery/service"
	"machinery-service/internal/metrics"
	"machinery-service/internal/subsystem"
)

const maxCanonicalizeNames = 10000

// Service: всё, что нужно обработчикам; собирается один раз при старте.
type Service struct {
	Cfg        config.Config
	Tables     service.Tables
	Canon      *service.Canonicalizer
	Subsystems []subsystem.Definition
	Metrics    *metrics.Metrics
}

func NewService(cfg config.Config, tables service.Tables, defs []subsystem.Definition, m *metrics.Metrics) *Service {
	return &Service{
		Cfg:        cfg,
		Tables:     tables,
		Canon:      service.NewCanonicalizer(tables),
		Subsystems: defs,
		Metrics:    m,
	}
}

// порог подсказок можно переопределить полем threshold
func (s *Service) reconciler(r *http.Request) *service.Reconciler {
	th := toFloat(r.FormValue("threshold"), s.Cfg.SuggestThreshold)
	if th <= 0 || th > 1 {
		th = s.Cfg.SuggestThreshold
	}
	return service.NewReconciler(s.Canon, th)
}

type canonicalizeRequest struct {
	Names []string `json:"names"`
}

// Canonicalize: POST {"names": [...]} -> [{raw, canonical, critical}].
func Canonicalize(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(r.Context())

		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req canonicalizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Metrics.Analysis("canonicalize", err)
			writeError(w, r, statusFor(err), "bad json: "+err.Error())
			return
		}
		if len(req.Names) > maxCanonicalizeNames {
			writeError(w, r, http.StatusBadRequest, "too many names")
			return
		}

		out := make([]model.CanonicalName, 0, len(req.Names))
		for _, n := range req.Names {
			out = append(out, model.CanonicalName{
				Raw:       n,
				Canonical: s.Canon.Canonicalize(n),
				Critical:  s.Canon.IsCritical(n),
			})
		}
		s.Metrics.Analysis("canonicalize", nil)
		writeJSON(w, r, http.StatusOK, out)

		log.Info().Int("names", len(out)).Dur("elapsed", time.Since(start)).Msg("canonicalize done")
	}
}

type reconcileCounts struct {
	Vessel         int `json:"vessel"`
	Reference      int `json:"reference"`
	Critical       int `json:"critical"`
	VesselSpecific int `json:"vesselSpecific"`
	Different      int `json:"different"`
	Missing        int `json:"missing"`
}

type reconcileResponse struct {
	model.ReconciliationResult
	Counts reconcileCounts `json:"counts"`
}

// Reconcile: multipart data (журнал работ) + reference (справочник, все листы).
// format=json|csv|xlsx; для csv table=different|missing|suggestions.
func Reconcile(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(r.Context())

		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		defer r.Body.Close()

		u, ok := readUploads(w, r, s.Cfg.HeaderRow)
		if !ok {
			s.Metrics.Analysis("reconcile", errBadInput)
			return
		}
		outFmt, ok := format(r)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "unsupported format: "+outFmt)
			return
		}

		rec := s.reconciler(r)
		sets := rec.BuildSets(u.jobs, u.ref)
		res := rec.ReconcileSets(sets)
		s.Metrics.Analysis("reconcile", nil)

		log.Info().
			Str("data", u.dataName).
			Str("reference", u.refName).
			Strs("sheets", u.ref.Names()).
			Int("vessel", sets.Vessel.Len()).
			Int("different", res.Different.Len()).
			Int("missing", res.Missing.Len()).
			Int("suggestions", len(res.Suggestions)).
			Dur("elapsed", time.Since(start)).
			Msg("reconcile done")

		switch outFmt {
		case "json":
			writeJSON(w, r, http.StatusOK, reconcileResponse{
				ReconciliationResult: res,
				Counts: reconcileCounts{
					Vessel:         sets.Vessel.Len(),
					Reference:      sets.Reference.Len(),
					Critical:       sets.Critical.Len(),
					VesselSpecific: sets.VesselSpecific.Len(),
					Different:      res.Different.Len(),
					Missing:        res.Missing.Len(),
				},
			})
		case "xlsx":
			writeTables(w, r, outFmt, "machinery_reconcile", export.ReconcileTables(res))
		case "csv":
			tables := []export.Table{export.DifferentTable(res), export.MissingTable(res), export.SuggestionsTable(res)}
			name := r.FormValue("table")
			if name == "" {
				name = "different"
			}
			t, ok := pickTable(tables, name)
			if !ok {
				writeError(w, r, http.StatusBadRequest, "unknown table: "+name)
				return
			}
			writeTables(w, r, outFmt, "machinery_"+strings.ToLower(strings.ReplaceAll(t.Name, " ", "_")), []export.Table{t})
		}
	}
}

// subsystemView: результат подсистемы для JSON; строки недостающих работ только при details=true.
type subsystemView struct {
	Label        string          `json:"label"`
	Sheet        string          `json:"sheet,omitempty"`
	Filtered     int             `json:"filtered"`
	Matched      int             `json:"matched"`
	MissingCount int             `json:"missingCount"`
	Pivot        subsystem.Pivot `json:"pivot"`
	Missing      []model.JobRow  `json:"missing,omitempty"`
	Error        string          `json:"error,omitempty"`
}

type overviewResponse struct {
	Overview   model.Overview  `json:"overview"`
	Subsystems []subsystemView `json:"subsystems"`
}

// Overview: сводка дашборда. Сверка оборудования + все подсистемы + пропущенные работы.
// format=json|csv|xlsx; для csv table=overview|job sources|missing jobs|different|missing.
func Overview(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := zerolog.Ctx(r.Context())

		if r.Method != http.MethodPost {
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		defer r.Body.Close()

		u, ok := readUploads(w, r, s.Cfg.HeaderRow)
		if !ok {
			s.Metrics.Analysis("overview", errBadInput)
			return
		}
		outFmt, ok := format(r)
		if !ok {
			writeError(w, r, http.StatusBadRequest, "unsupported format: "+outFmt)
			return
		}

		rec := s.reconciler(r)
		sets := rec.BuildSets(u.jobs, u.ref)
		res := rec.ReconcileSets(sets)

		results := subsystem.RunAll(s.Subsystems, u.jobs, u.ref)
		failed := 0
		for _, sr := range results {
			if sr.Err != nil {
				failed++
				s.Metrics.SubsystemError(sr.Label)
				log.Debug().Err(sr.Err).Str("subsystem", sr.Label).Msg("subsystem skipped")
			}
		}
		summary := rec.SummarizeMissingJobs(sets.Vessel, subsystem.JobSources(results))
		ov := rec.BuildOverview(u.jobs, res, summary)
		s.Metrics.Analysis("overview", nil)

		log.Info().
			Str("data", u.dataName).
			Str("reference", u.refName).
			Str("vessel", ov.VesselName).
			Int("jobs", ov.TotalJobs).
			Int("subsystems", len(results)).
			Int("subsystems_failed", failed).
			Int("missing_jobs", summary.Total).
			Dur("elapsed", time.Since(start)).
			Msg("overview done")

		switch outFmt {
		case "json":
			details := toBool(r.FormValue("details"), false)
			views := make([]subsystemView, 0, len(results))
			for _, sr := range results {
				v := subsystemView{
					Label:        sr.Label,
					Sheet:        sr.Sheet,
					Filtered:     sr.Filtered,
					Matched:      sr.Matched,
					MissingCount: len(sr.Missing),
					Pivot:        sr.Pivot,
				}
				if details {
					v.Missing = sr.Missing
				}
				if sr.Err != nil {
					v.Error = sr.Err.Error()
				}
				views = append(views, v)
			}
			writeJSON(w, r, http.StatusOK, overviewResponse{Overview: ov, Subsystems: views})
		case "xlsx":
			writeTables(w, r, outFmt, "dashboard_overview", export.OverviewTables(ov, results))
		case "csv":
			name := r.FormValue("table")
			if name == "" {
				name = "missing jobs"
			}
			t, ok := pickTable(export.OverviewTables(ov, results), name)
			if !ok {
				writeError(w, r, http.StatusBadRequest, "unknown table: "+name)
				return
			}
			writeTables(w, r, outFmt, "dashboard_"+strings.ToLower(strings.ReplaceAll(t.Name, " ", "_")), []export.Table{t})
		}
	}
}

type aliasesResponse struct {
	Aliases   int                  `json:"aliases"`
	Canonical int                  `json:"canonical"`
	Critical  []string             `json:"critical"`
	Issues    []service.AliasIssue `json:"issues"`
}

// Aliases: состояние загруженной таблицы алиасов.
func Aliases(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		resp := aliasesResponse{
			Critical: s.Tables.Critical,
			Issues:   s.Tables.Issues,
		}
		if s.Tables.Aliases != nil {
			resp.Aliases = s.Tables.Aliases.Len()
			resp.Canonical = s.Tables.Aliases.CanonicalCount()
		}
		if resp.Issues == nil {
			resp.Issues = []service.AliasIssue{}
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

// Subsystems: описания подсистем, по которым считается сводка.
func Subsystems(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, r, http.StatusOK, s.Subsystems)
	}
}
