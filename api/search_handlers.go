package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"threatshare/core"
	"threatshare/search"
	"threatshare/storage"

	"github.com/gorilla/mux"
)

// SearchFiltersResponse describes the accepted search parameters
type SearchFiltersResponse struct {
	Types         []core.IOCType        `json:"types"`
	ThreatLevels  []core.ThreatLevel    `json:"threatLevels"`
	SortKeys      []string              `json:"sortKeys"`
	SortOrders    []string              `json:"sortOrders"`
	Confidence    Range                 `json:"confidence"`
	Limit         Range                 `json:"limit"`
	QueryLength   Range                 `json:"queryLength"`
	ExportFormats []search.ExportFormat `json:"exportFormats"`
	PopularTags   []storage.TagCount    `json:"popularTags"`
}

// Range is an inclusive numeric bound
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// advancedSearch godoc
//
//	@Summary		Advanced IOC search
//	@Description	Filters, sorts and paginates IOCs. includeSensitive is honored only for privileged roles.
//	@Tags			search
//	@Produce		json
//	@Param			query				query		string	false	"Free text over value, description and tags (2-100 chars)"
//	@Param			type				query		string	false	"IOC type"	enums(ip,domain,url,hash-md5,hash-sha1,hash-sha256,email,cidr,asn)
//	@Param			threatLevel			query		string	false	"Threat level"	enums(low,medium,high,critical)
//	@Param			tags				query		string	false	"Comma separated tags, any may match"
//	@Param			confidenceMin		query		int		false	"Minimum confidence"	minimum(0)	maximum(100)
//	@Param			confidenceMax		query		int		false	"Maximum confidence"	minimum(0)	maximum(100)
//	@Param			dateFrom			query		string	false	"Created on or after (YYYY-MM-DD or RFC 3339)"
//	@Param			dateTo				query		string	false	"Created on or before (YYYY-MM-DD or RFC 3339)"
//	@Param			sortBy				query		string	false	"Sort key"	enums(createdAt,updatedAt,threatLevel,confidence,verificationCount)	default(createdAt)
//	@Param			sortOrder			query		string	false	"Sort order"	enums(asc,desc)	default(desc)
//	@Param			page				query		int		false	"Page number"	minimum(1)	default(1)
//	@Param			limit				query		int		false	"Page size"	minimum(1)	maximum(100)	default(20)
//	@Param			includeSensitive	query		bool	false	"Include anonymity flag and full description"
//	@Success		200					{object}	SuccessResponse{data=search.Response}
//	@Failure		400					{object}	ErrorResponse
//	@Failure		500					{object}	ErrorResponse
//	@Router			/api/v1/search/advanced [get]
//	@Security		BearerAuth
func (a *API) advancedSearch(w http.ResponseWriter, r *http.Request) {
	resp, err := a.engine.Search(r.Context(), search.ParamsFromValues(r.URL.Query()), a.includeSensitive(r))
	if err != nil {
		a.writeServiceError(w, r, err, "Search failed")
		return
	}
	a.respondData(w, resp)
}

// quickSearch godoc
//
//	@Summary		Quick search
//	@Description	Returns the 20 newest IOCs whose value, description or tags contain q
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Search text (max 100 chars)"
//	@Success		200	{object}	SuccessResponse{data=[]service.QuickResult}
//	@Failure		400	{object}	ErrorResponse
//	@Router			/api/v1/search/quick [get]
//	@Security		BearerAuth
func (a *API) quickSearch(w http.ResponseWriter, r *http.Request) {
	results, err := a.service.QuickSearch(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		a.writeServiceError(w, r, err, "Quick search failed")
		return
	}
	a.respondData(w, results)
}

// getIOCByValue godoc
//
//	@Summary		Look up an IOC by value
//	@Description	Returns the newest IOC whose value equals the path value, e.g. a file hash
//	@Tags			search
//	@Produce		json
//	@Param			value				path		string	true	"IOC value"
//	@Param			includeSensitive	query		bool	false	"Include anonymity flag and full description"
//	@Success		200					{object}	SuccessResponse{data=search.Result}
//	@Failure		404					{object}	ErrorResponse
//	@Router			/api/v1/search/ioc/{value} [get]
//	@Security		BearerAuth
func (a *API) getIOCByValue(w http.ResponseWriter, r *http.Request) {
	ioc, err := a.service.GetByValue(r.Context(), mux.Vars(r)["value"])
	if err != nil {
		a.writeServiceError(w, r, err, "IOC lookup failed")
		return
	}
	a.respondData(w, search.FormatResult(ioc, a.includeSensitive(r)))
}

// getSearchFilters godoc
//
//	@Summary		Search filter metadata
//	@Description	Lists accepted enumerations and bounds together with the most used tags
//	@Tags			search
//	@Produce		json
//	@Success		200	{object}	SuccessResponse{data=SearchFiltersResponse}
//	@Router			/api/v1/search/filters [get]
//	@Security		BearerAuth
func (a *API) getSearchFilters(w http.ResponseWriter, r *http.Request) {
	tags, err := a.stats.PopularTags(r.Context(), storage.PopularTagsLimit)
	if err != nil {
		// The enumerations are still useful without tag suggestions
		a.logger.Warnw("Failed to load popular tags for filter metadata",
			"request_id", GetRequestIDOrDefault(r.Context()),
			"error", err)
		tags = []storage.TagCount{}
	}

	a.respondData(w, SearchFiltersResponse{
		Types:         core.AllIOCTypes,
		ThreatLevels:  core.AllThreatLevels,
		SortKeys:      search.SortKeys,
		SortOrders:    search.SortOrders,
		Confidence:    Range{Min: 0, Max: core.MaxConfidence},
		Limit:         Range{Min: 1, Max: search.MaxLimit},
		QueryLength:   Range{Min: search.MinQueryLength, Max: search.MaxQueryLength},
		ExportFormats: search.ExportFormats,
		PopularTags:   tags,
	})
}

// exportSearchResults godoc
//
//	@Summary		Export search results
//	@Description	Serializes every match, up to the export limit, as a JSON or CSV attachment. Paging parameters are ignored.
//	@Tags			search
//	@Produce		json
//	@Produce		text/csv
//	@Param			format				query		string	false	"Export format"	enums(json,csv)	default(json)
//	@Param			includeSensitive	query		bool	false	"Include anonymity flag and full description"
//	@Success		200					{file}		file
//	@Failure		400					{object}	ErrorResponse
//	@Router			/api/v1/search/export [get]
//	@Security		BearerAuth
func (a *API) exportSearchResults(w http.ResponseWriter, r *http.Request) {
	results, format, err := a.engine.Export(r.Context(), search.ParamsFromValues(r.URL.Query()), a.includeSensitive(r))
	if err != nil {
		a.writeServiceError(w, r, err, "Export failed")
		return
	}

	// Serialize before writing headers so a failure can still become a 500
	var buf bytes.Buffer
	if err := search.Export(&buf, results, format); err != nil {
		a.writeServiceError(w, r, err, "Export failed")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", search.ExportFilename(format, time.Now().UTC())))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		a.logger.Warnw("Failed to write export", "request_id", GetRequestIDOrDefault(r.Context()), "error", err)
	}
}
