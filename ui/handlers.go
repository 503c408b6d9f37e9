package ui

import (
	stderrors "errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BurningYang107/sensor-data-viewer/adapters/tabular"
	"github.com/BurningYang107/sensor-data-viewer/domain/core"
	"github.com/BurningYang107/sensor-data-viewer/domain/dataset"
	"github.com/BurningYang107/sensor-data-viewer/domain/view"
	"github.com/BurningYang107/sensor-data-viewer/internal/errors"
	"github.com/BurningYang107/sensor-data-viewer/internal/pipeline"
	"github.com/BurningYang107/sensor-data-viewer/internal/session"
	"github.com/BurningYang107/sensor-data-viewer/internal/summary"
)

const sessionCookie = "session_id"

// previewRows caps how many raw rows the upload preview shows.
const previewRows = 10

// currentSession resolves the session from the session_id query parameter,
// falling back to the session cookie. The query parameter form keeps preloaded
// sessions linkable.
func (s *Server) currentSession(c *gin.Context) (*session.Session, error) {
	id := c.Query(sessionCookie)
	if id == "" {
		if cookie, err := c.Cookie(sessionCookie); err == nil {
			id = cookie
		}
	}
	if id == "" {
		return nil, errors.New(errors.CodeSessionNotFound, "no dataset loaded, upload a file first")
	}

	sid, err := core.ParseSessionID(id)
	if err != nil {
		return nil, errors.SessionNotFound(id)
	}
	return s.store.Get(sid)
}

// viewState is the fully parsed query state of one dashboard interaction.
type viewState struct {
	Filter  view.FilterState
	Page    view.PageState
	Variant view.VariantSpec
}

func parseFilterState(c *gin.Context) (view.FilterState, error) {
	f := view.FilterState{
		InEar:   c.QueryArray("in_ear"),
		EarSide: c.QueryArray("ear_side"),
		User:    c.Query("user"),
	}

	if raw := c.Query("start"); raw != "" {
		t, err := dataset.ParseTime(raw)
		if err != nil {
			return view.FilterState{}, errors.InvalidInput(fmt.Sprintf("unparseable start time %q", raw))
		}
		f.Start = &t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := dataset.ParseTime(raw)
		if err != nil {
			return view.FilterState{}, errors.InvalidInput(fmt.Sprintf("unparseable end time %q", raw))
		}
		f.End = &t
	}

	return f, nil
}

// parseViewState rejects pages below 1 outright; pages past the end are
// clamped later by the pipeline.
func parseViewState(c *gin.Context) (viewState, error) {
	filter, err := parseFilterState(c)
	if err != nil {
		return viewState{}, err
	}

	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil {
		return viewState{}, errors.InvalidInput(fmt.Sprintf("page %q is not a number", raw))
	}
	if page < 1 {
		return viewState{}, errors.InvalidInput(fmt.Sprintf("page must be at least 1, got %d", page))
	}

	variant, err := view.ParseChartVariant(c.Query("chart"))
	if err != nil {
		return viewState{}, errors.InvalidInput(err.Error())
	}
	spec, _ := variant.Spec()

	return viewState{
		Filter:  filter,
		Page:    view.PageState{Page: page},
		Variant: spec,
	}, nil
}

// asAppError lifts domain sentinel errors into coded errors at the HTTP
// boundary; coded errors pass through unchanged.
func asAppError(err error) error {
	if err == nil || errors.IsAppError(err) {
		return err
	}
	switch {
	case stderrors.Is(err, core.ErrEmptyFilterResult):
		return errors.EmptyFilterResult()
	case stderrors.Is(err, core.ErrMissingColumn):
		return errors.WithCode(errors.CodeMissingColumn, err)
	case stderrors.Is(err, core.ErrSessionNotFound):
		return errors.WithCode(errors.CodeSessionNotFound, err)
	case core.IsNotFoundError(err):
		return errors.WithCode(errors.CodeNotFound, err)
	case core.IsUserInputError(err):
		return errors.WithCode(errors.CodeInvalidInput, err)
	case core.IsLoadError(err):
		return errors.WithCode(errors.CodeLoadFailed, err)
	}
	return err
}

func httpStatus(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeSessionNotFound, errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeLoadFailed, errors.CodeEmptyFilterResult, errors.CodeMissingColumn,
		errors.CodeInvalidInput, errors.CodeValidationError:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError maps domain errors onto HTTP statuses. HTMX requests get an
// inline alert fragment, everything else gets JSON.
func (s *Server) respondError(c *gin.Context, err error) {
	err = asAppError(err)

	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[respondError] internal error: %v", err)
	}

	code := errors.CodeInternalError
	if errors.IsAppError(err) {
		code = errors.GetCode(err)
	}

	if c.GetHeader("HX-Request") == "true" {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(status, `<div class="alert alert-error">%s</div>`, template.HTMLEscapeString(err.Error()))
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

// handleIndex serves the dashboard page. Without a resolvable session it
// shows the upload panel and the usage guide inline.
func (s *Server) handleIndex(c *gin.Context) {
	data := gin.H{
		"Title":      "传感器数据可视化",
		"Variants":   view.Variants(),
		"GuideHTML":  guideHTML(),
		"HasDataset": false,
	}

	if sess, err := s.currentSession(c); err == nil {
		data["HasDataset"] = true
		data["SessionID"] = sess.ID.String()
		data["SourceName"] = sess.Dataset.SourceName
	}

	s.renderTemplate(c, "index.html", data)
}

// handleGuide serves the full usage guide page.
func (s *Server) handleGuide(c *gin.Context) {
	s.renderTemplate(c, "guide.html", gin.H{
		"Title":     "使用说明",
		"GuideHTML": guideHTML(),
	})
}

var validExtensions = []string{".csv", ".xlsx", ".xls"}

var expectedUploadMimeTypes = []string{
	"text/csv",
	"application/csv",
	"text/plain",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func isExpectedUploadMime(contentType string) bool {
	for _, mimeType := range expectedUploadMimeTypes {
		if contentType == mimeType {
			return true
		}
	}
	return strings.Contains(contentType, "csv") || strings.Contains(contentType, "excel")
}

// handleUpload accepts a sensor export and replaces the caller's session.
func (s *Server) handleUpload(c *gin.Context) {
	log.Printf("[handleUpload] Starting file upload")

	file, header, err := c.Request.FormFile("dataset")
	if err != nil {
		log.Printf("[handleUpload] FAILED - no file in request: %v", err)
		s.respondError(c, errors.InvalidInput(`no file uploaded, expected multipart field "dataset"`))
		return
	}
	defer file.Close()

	if header.Size > s.cfg.Data.MaxUploadBytes {
		log.Printf("[handleUpload] FAILED - file too large: %d bytes", header.Size)
		s.respondError(c, errors.InvalidInput(fmt.Sprintf("file size (%.1f MB) exceeds the %d MB limit",
			float64(header.Size)/(1024*1024), s.cfg.Data.MaxUploadBytes/(1024*1024))))
		return
	}

	filename := header.Filename
	hasValidExtension := false
	for _, ext := range validExtensions {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			hasValidExtension = true
			break
		}
	}
	if !hasValidExtension {
		log.Printf("[handleUpload] FAILED - invalid file extension: %s", filename)
		s.respondError(c, errors.InvalidInput("only CSV (.csv) and Excel (.xlsx, .xls) files are allowed"))
		return
	}

	// Browsers are unreliable about MIME types for CSV, so mismatches are
	// logged but not rejected.
	if contentType := header.Header.Get("Content-Type"); contentType != "" && !isExpectedUploadMime(contentType) {
		log.Printf("[handleUpload] WARNING - unexpected MIME type %q for file: %s", contentType, filename)
	}

	sess, err := s.store.CreateFromReader(c.Request.Context(), file, filename)
	if err != nil {
		log.Printf("[handleUpload] FAILED - %v", err)
		s.respondError(c, err)
		return
	}

	// Replacing a dataset drops its predecessor immediately instead of
	// leaving it to the janitor.
	if prev, cerr := c.Cookie(sessionCookie); cerr == nil {
		if prevID, perr := core.ParseSessionID(prev); perr == nil && prevID != sess.ID {
			s.store.Delete(prevID)
		}
	}
	c.SetCookie(sessionCookie, sess.ID.String(), int(s.cfg.Session.TTL.Seconds()), "/", "", false, true)

	ds := sess.Dataset
	c.JSON(http.StatusOK, gin.H{
		"session_id":  sess.ID,
		"source_name": ds.SourceName,
		"rows":        ds.RowCount(),
		"columns":     ds.Columns,
		"time_column": ds.TimeColumn,
		"flag_column": ds.FlagColumn,
		"warnings":    ds.Warnings,
	})
}

// filterOptions is what the widget row needs to render itself.
type filterOptions struct {
	Columns      []string           `json:"columns"`
	Users        []string           `json:"users,omitempty"`
	InEar        []string           `json:"in_ear,omitempty"`
	EarSide      []string           `json:"ear_side,omitempty"`
	HasTimestamp bool               `json:"has_timestamp"`
	TimeColumn   string             `json:"time_column,omitempty"`
	FlagColumn   string             `json:"flag_column,omitempty"`
	TimeMin      string             `json:"time_min,omitempty"`
	TimeMax      string             `json:"time_max,omitempty"`
	TotalRows    int                `json:"total_rows"`
	Variants     []view.VariantSpec `json:"chart_variants"`
}

func buildOptions(ds *dataset.Dataset) filterOptions {
	opts := filterOptions{
		Columns:      ds.Columns,
		InEar:        ds.DistinctValues(dataset.ColInEar),
		EarSide:      ds.DistinctValues(dataset.ColEarSide),
		HasTimestamp: ds.HasTimes(),
		TimeColumn:   ds.TimeColumn,
		FlagColumn:   ds.FlagColumn,
		TotalRows:    ds.RowCount(),
		Variants:     view.Variants(),
	}
	if users := ds.Users(); users != nil {
		opts.Users = append([]string{dataset.AllUsers}, users...)
	}
	if min, max, ok := ds.TimeBounds(); ok {
		opts.TimeMin = min.Format(time.RFC3339)
		opts.TimeMax = max.Format(time.RFC3339)
	}
	return opts
}

// handleOptions returns the filter widget choices for the current dataset.
func (s *Server) handleOptions(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildOptions(sess.Dataset))
}

// handleView runs the pipeline for the current query state and returns
// everything one interaction renders: page rows, overview and chart payload.
func (s *Server) handleView(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ds := sess.Dataset

	state, err := parseViewState(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	res, err := pipeline.Run(pipeline.Input{Dataset: ds, Filter: state.Filter, Page: state.Page})
	if err != nil {
		s.respondError(c, err)
		return
	}

	overview, err := summary.Build(ds, res.Filtered, res.FilteredClean)
	if err != nil {
		s.respondError(c, err)
		return
	}

	chart, err := BuildChart(ds, res, state.Variant)
	if err != nil {
		s.respondError(c, err)
		return
	}

	warnings := append(append([]string{}, ds.Warnings...), res.Warnings...)

	c.JSON(http.StatusOK, gin.H{
		"filter":   state.Filter,
		"page":     res.Page,
		"columns":  ds.Columns,
		"rows":     tableRows(ds, res),
		"overview": overview,
		"chart":    chart,
		"warnings": warnings,
	})
}

// handleExport streams the filtered rows as a BOM-prefixed CSV attachment.
// Export reads the stage-4 rows: value-anomalous rows stay in the file even
// though the charts skip them.
func (s *Server) handleExport(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ds := sess.Dataset

	filter, err := parseFilterState(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	res, err := pipeline.Run(pipeline.Input{Dataset: ds, Filter: filter, Page: view.PageState{Page: 1}})
	if err != nil {
		s.respondError(c, err)
		return
	}

	filename := tabular.ExportFilename(len(res.Filtered))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	if err := tabular.WriteCSV(c.Writer, ds.Columns, res.Filtered); err != nil {
		// Headers are already out, all we can do is log.
		log.Printf("[handleExport] write failed: %v", err)
	}
}

// tableRow is one rendered row of the data table, aligned with the page.
type tableRow struct {
	Sequence  int      `json:"sequence"`
	Cells     []string `json:"cells"`
	Anomalous bool     `json:"anomalous"`
	Segment   int      `json:"segment"`
	Isolated  bool     `json:"isolated"`
}

func tableRows(ds *dataset.Dataset, res *pipeline.Result) []tableRow {
	isolated := isolatedSegments(res.Segments)
	rows := make([]tableRow, len(res.Page.Rows))
	for i, row := range res.Page.Rows {
		cells := make([]string, len(ds.Columns))
		for j, col := range ds.Columns {
			cells[j] = row.Value(col)
		}
		rows[i] = tableRow{
			Sequence:  row.Sequence(),
			Cells:     cells,
			Anomalous: res.Flags[i],
			Segment:   res.SegmentIDs[i],
			Isolated:  isolated[res.SegmentIDs[i]],
		}
	}
	return rows
}

// handleFragmentOverview renders the overview stats panel.
func (s *Server) handleFragmentOverview(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ds := sess.Dataset

	state, err := parseViewState(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	res, err := pipeline.Run(pipeline.Input{Dataset: ds, Filter: state.Filter, Page: state.Page})
	if err != nil {
		s.respondError(c, err)
		return
	}

	overview, err := summary.Build(ds, res.Filtered, res.FilteredClean)
	if err != nil {
		s.respondError(c, err)
		return
	}

	warnings := append(append([]string{}, ds.Warnings...), res.Warnings...)

	s.renderPartial(c, "fragments/overview.html", gin.H{
		"Overview": overview,
		"Warnings": warnings,
	})
}

// handleFragmentTable renders the paginated data table.
func (s *Server) handleFragmentTable(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ds := sess.Dataset

	state, err := parseViewState(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	res, err := pipeline.Run(pipeline.Input{Dataset: ds, Filter: state.Filter, Page: state.Page})
	if err != nil {
		s.respondError(c, err)
		return
	}

	base := c.Request.URL.Query()
	base.Del("page")
	query := base.Encode()
	if query != "" {
		query += "&"
	}

	data := gin.H{
		"Columns": ds.Columns,
		"Rows":    tableRows(ds, res),
		"Page":    res.Page,
	}
	if res.Page.HasPrev() {
		data["PrevURL"] = template.URL(fmt.Sprintf("/fragments/table?%spage=%d", query, res.Page.Number-1))
	}
	if res.Page.HasNext() {
		data["NextURL"] = template.URL(fmt.Sprintf("/fragments/table?%spage=%d", query, res.Page.Number+1))
	}

	s.renderPartial(c, "fragments/table.html", data)
}

// handleFragmentPreview renders the head of the raw dataset, shown right
// after an upload before any filtering.
func (s *Server) handleFragmentPreview(c *gin.Context) {
	sess, err := s.currentSession(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ds := sess.Dataset

	n := ds.RowCount()
	if n > previewRows {
		n = previewRows
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		cells := make([]string, len(ds.Columns))
		for j, col := range ds.Columns {
			cells[j] = ds.Rows[i].Value(col)
		}
		rows[i] = cells
	}

	s.renderPartial(c, "fragments/preview.html", gin.H{
		"SourceName": ds.SourceName,
		"TotalRows":  ds.RowCount(),
		"Columns":    ds.Columns,
		"Rows":       rows,
		"Warnings":   ds.Warnings,
	})
}
