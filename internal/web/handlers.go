package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"festcal/internal/export"
	"festcal/internal/ics"
	appLog "festcal/internal/log"
	"festcal/internal/model"
	"festcal/internal/palette"
	"festcal/internal/schedule"
)

const maxPaletteSize = 360

// dayDTO is the JSON shape of a festival day.
type dayDTO struct {
	Date   string     `json:"date"`
	Stages []stageDTO `json:"stages"`
}

type stageDTO struct {
	Name       string   `json:"name"`
	Color      string   `json:"color"`
	SetCount   int      `json:"set_count"`
	Sets       []setDTO `json:"sets,omitempty"`
	NowPlaying *int     `json:"now_playing,omitempty"`
}

type setDTO struct {
	Index  int       `json:"index"`
	Artist string    `json:"artist"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

type activeResponse struct {
	Now    time.Time `json:"now"`
	Today  string    `json:"today"`
	Active bool      `json:"active"`
	Day    *dayDTO   `json:"day,omitempty"`
}

type statusResponse struct {
	Now       time.Time `json:"now"`
	Today     string    `json:"today"`
	Phase     string    `json:"phase"`
	Day       string    `json:"day,omitempty"`
	DaysUntil int       `json:"days_until,omitempty"`
}

type spanDateDTO struct {
	Date      string `json:"date"`
	Scheduled bool   `json:"scheduled"`
}

type colorDTO struct {
	Hue float64 `json:"hue"`
	Hex string  `json:"hex"`
}

// handleDays lists the festival days with their stages and colors.
func (s *Server) handleDays(w http.ResponseWriter, _ *http.Request) {
	out := make([]dayDTO, 0, len(s.days))
	for _, d := range s.days {
		out = append(out, s.dayView(d, false))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDay returns one day with every set window.
//
// GET /api/days/{date}
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	day, ok := schedule.FindDay(s.days, chi.URLParam(r, "date"))
	if !ok {
		writeError(w, http.StatusNotFound, "festival day not found")
		return
	}
	writeJSON(w, http.StatusOK, s.dayView(day, true))
}

// handleStage returns one stage of a day with its windows and the set
// playing at now.
//
// GET /api/days/{date}/stages/{stage}?now=2024-05-18T01:15:00-07:00
func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	day, ok := schedule.FindDay(s.days, chi.URLParam(r, "date"))
	if !ok {
		writeError(w, http.StatusNotFound, "festival day not found")
		return
	}

	name := chi.URLParam(r, "stage")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	idx := -1
	for i, st := range day.Stages {
		if st.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeError(w, http.StatusNotFound, "stage not found")
		return
	}

	now, err := s.requestNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view := s.dayView(day, true).Stages[idx]
	playing := schedule.NowPlaying(day.Stages[idx], day.Date, now)
	view.NowPlaying = &playing
	writeJSON(w, http.StatusOK, view)
}

// handleActive returns the live festival day, if any.
//
// GET /api/active[?now=RFC3339]
func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	st, err := s.requestStatus(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := activeResponse{
		Now:    st.Now,
		Today:  st.Today.Format(time.DateOnly),
		Active: st.Active,
	}
	if st.Active {
		view := s.dayView(st.Day, true)
		resp.Day = &view
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStatus returns the festival phase.
//
// GET /api/status[?now=RFC3339]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.requestStatus(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := statusResponse{
		Now:       st.Now,
		Today:     st.Today.Format(time.DateOnly),
		Phase:     string(st.Phase),
		DaysUntil: st.DaysUntil,
	}
	if st.Active {
		resp.Day = st.Day.Key()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSpan(w http.ResponseWriter, _ *http.Request) {
	span, err := schedule.Span(s.days)
	if err != nil {
		appLog.Error("api span failed", err)
		writeError(w, http.StatusInternalServerError, "failed to compute festival span")
		return
	}
	out := make([]spanDateDTO, 0, len(span))
	for _, sd := range span {
		out = append(out, spanDateDTO{Date: sd.Date.Format(time.DateOnly), Scheduled: sd.Scheduled})
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePalette returns n generated stage colors.
//
// GET /api/palette?n=8
func (s *Server) handlePalette(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil || n < 1 || n > maxPaletteSize {
		writeError(w, http.StatusBadRequest, "n must be an integer in [1, 360]")
		return
	}
	out := make([]colorDTO, 0, n)
	for _, c := range palette.Generate(n) {
		out = append(out, colorDTO{Hue: c.Hue, Hex: c.Hex()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleICS(w http.ResponseWriter, _ *http.Request) {
	body, err := s.cachedExport("ics", func() ([]byte, error) {
		cal, err := ics.Export(s.days, ics.ExportOptions{Name: "festcal lineup", StageColors: s.colors})
		return []byte(cal), err
	})
	if err != nil {
		appLog.Error("ics export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.ics"`)
	_, _ = w.Write(body)
}

func (s *Server) handleXLSX(w http.ResponseWriter, _ *http.Request) {
	body, err := s.cachedExport("xlsx", func() ([]byte, error) {
		return export.BuildLineupXLSX(s.days, s.colors)
	})
	if err != nil {
		appLog.Error("xlsx export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export workbook")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="schedule.xlsx"`)
	_, _ = w.Write(body)
}

func (s *Server) cachedExport(key string, build func() ([]byte, error)) ([]byte, error) {
	s.exportsMu.Lock()
	defer s.exportsMu.Unlock()

	if body, ok := s.exports[key]; ok {
		return body, nil
	}
	body, err := build()
	if err != nil {
		return nil, err
	}
	s.exports[key] = body
	return body, nil
}

func (s *Server) dayView(d model.FestivalDay, withSets bool) dayDTO {
	colors := palette.ForStages(d.StageNames(), s.colors)
	out := dayDTO{
		Date:   d.Key(),
		Stages: make([]stageDTO, 0, len(d.Stages)),
	}
	for i, st := range d.Stages {
		sv := stageDTO{
			Name:     st.Name,
			Color:    colors[i].Hex(),
			SetCount: len(st.SetTimes),
		}
		if withSets {
			for _, win := range schedule.Windows(st, d.Date) {
				sv.Sets = append(sv.Sets, setDTO{
					Index:  win.Index,
					Artist: win.Artist,
					Start:  win.Start,
					End:    win.End,
				})
			}
		}
		out.Stages = append(out.Stages, sv)
	}
	return out
}

// requestStatus evaluates the status at ?now= when given, otherwise
// returns the clock's latest sample.
func (s *Server) requestStatus(r *http.Request) (schedule.Status, error) {
	if r.URL.Query().Get("now") == "" && s.clock != nil {
		return s.clock.Status(), nil
	}
	now, err := s.requestNow(r)
	if err != nil {
		return schedule.Status{}, err
	}
	return schedule.StatusAt(now, s.days), nil
}

var (
	errBadNow      = errors.New("now must be RFC3339 or YYYY-MM-DDTHH:MM")
	errNowOutRange = fmt.Errorf("now must be within %d years of the lineup", maxNowYears)
)

// maxNowYears bounds ?now= around the lineup's first day.
const maxNowYears = 100

// requestNow reads ?now= (RFC3339, or a local date-time in the configured
// zone). Without it the clock's last sample, or time.Now, is used.
func (s *Server) requestNow(r *http.Request) (time.Time, error) {
	loc := s.location()
	raw := r.URL.Query().Get("now")
	if raw == "" {
		if s.clock != nil {
			return s.clock.Status().Now, nil
		}
		return time.Now().In(loc), nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		t = t.In(loc)
	} else if t, err = time.ParseInLocation("2006-01-02T15:04", raw, loc); err != nil {
		return time.Time{}, errBadNow
	}

	if len(s.days) > 0 {
		anchor := s.days[0].Date.Year()
		if y := t.Year(); y < anchor-maxNowYears || y > anchor+maxNowYears {
			return time.Time{}, errNowOutRange
		}
	}
	return t, nil
}

func (s *Server) location() *time.Location {
	if s.clock != nil {
		return s.clock.Location()
	}
	loc, err := s.cfg.Location()
	if err != nil {
		appLog.Warn("failed to load timezone; falling back to local", "timezone", s.cfg.Timezone)
	}
	return loc
}
