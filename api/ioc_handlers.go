package api

import (
	"net/http"
	"time"

	"threatshare/core"
	"threatshare/search"
	"threatshare/service"

	"github.com/gorilla/mux"
)

// listParams are the query parameters accepted by the IOC listing
var listParams = []string{"type", "threatLevel", "tags", "page", "limit"}

// IOCListResponse represents a paginated list of IOCs
type IOCListResponse struct {
	IOCs       []search.Result   `json:"iocs"`
	Pagination search.Pagination `json:"pagination"`
}

// SubmittedIOC summarizes a newly stored IOC
type SubmittedIOC struct {
	ID          string           `json:"id"`
	Type        core.IOCType     `json:"type"`
	Value       string           `json:"value"`
	ThreatLevel core.ThreatLevel `json:"threatLevel"`
	Status      core.IOCStatus   `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// VerifyResponse reports the verification count after a verify call
type VerifyResponse struct {
	ID                string `json:"id"`
	VerificationCount int    `json:"verificationCount"`
}

// TypeListItem is the projection returned by the per-type listing
type TypeListItem struct {
	ID          string           `json:"id"`
	Value       string           `json:"value"`
	ThreatLevel core.ThreatLevel `json:"threatLevel"`
	Confidence  int              `json:"confidence"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// listIOCs godoc
//
//	@Summary		List IOCs
//	@Description	Returns the newest IOCs first, with optional exact-match filters
//	@Tags			iocs
//	@Produce		json
//	@Param			type		query		string	false	"IOC type"
//	@Param			threatLevel	query		string	false	"Threat level"
//	@Param			tags		query		string	false	"Comma separated tags, any may match"
//	@Param			status		query		string	false	"Lifecycle status"	enums(pending,confirmed)
//	@Param			page		query		int		false	"Page number"	minimum(1)	default(1)
//	@Param			limit		query		int		false	"Page size"	minimum(1)	maximum(100)	default(20)
//	@Success		200			{object}	SuccessResponse{data=IOCListResponse}
//	@Failure		400			{object}	ErrorResponse
//	@Router			/api/v1/iocs [get]
//	@Security		BearerAuth
func (a *API) listIOCs(w http.ResponseWriter, r *http.Request) {
	query := search.ParamsFromValues(r.URL.Query())
	raw := make(search.RawParams, len(listParams))
	for _, key := range listParams {
		if v, ok := query[key]; ok {
			raw[key] = v
		}
	}

	f, err := search.Normalize(raw)
	if err != nil {
		a.writeServiceError(w, r, err, "Failed to list IOCs")
		return
	}

	pred := search.BuildQuery(f)
	if status := search.Sanitize(query["status"]); status != "" {
		if !core.IOCStatus(status).IsValid() {
			a.writeServiceError(w, r, core.NewValidationError("status", "must be one of [pending confirmed]"), "Failed to list IOCs")
			return
		}
		pred = pred.And(search.Predicate{Clauses: []search.Clause{{Field: "status", Op: search.OpEq, Value: status}}})
	}

	resp, err := a.engine.SearchWhere(r.Context(), f, pred, a.includeSensitive(r))
	if err != nil {
		a.writeServiceError(w, r, err, "Failed to list IOCs")
		return
	}
	a.respondData(w, IOCListResponse{IOCs: resp.Results, Pagination: resp.Pagination})
}

// submitIOC godoc
//
//	@Summary		Submit an IOC
//	@Description	Validates and stores a new IOC. Submissions are anonymous unless isAnonymous is false.
//	@Tags			iocs
//	@Accept			json
//	@Produce		json
//	@Param			ioc	body		core.IOCSubmission	true	"IOC to share"
//	@Success		201	{object}	SuccessResponse{data=SubmittedIOC}
//	@Failure		400	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/v1/iocs [post]
//	@Security		BearerAuth
func (a *API) submitIOC(w http.ResponseWriter, r *http.Request) {
	var sub core.IOCSubmission
	if !a.decodeJSONBody(w, r, &sub) {
		return
	}

	username, _ := GetUsername(r.Context())
	ioc, err := a.service.Submit(r.Context(), &sub, username)
	if err != nil {
		a.writeServiceError(w, r, err, "Failed to submit IOC")
		return
	}

	a.respondJSON(w, SuccessResponse{
		Success: true,
		Message: "IOC submitted successfully",
		Data: SubmittedIOC{
			ID:          ioc.ID,
			Type:        ioc.Type,
			Value:       ioc.Value,
			ThreatLevel: ioc.ThreatLevel,
			Status:      ioc.Status,
			CreatedAt:   ioc.CreatedAt,
		},
	}, http.StatusCreated)
}

// getIOC godoc
//
//	@Summary		Get IOC
//	@Description	Returns a single IOC by ID
//	@Tags			iocs
//	@Produce		json
//	@Param			id					path		string	true	"IOC ID"
//	@Param			includeSensitive	query		bool	false	"Include anonymity flag and full description"
//	@Success		200					{object}	SuccessResponse{data=search.Result}
//	@Failure		404					{object}	ErrorResponse
//	@Router			/api/v1/iocs/{id} [get]
//	@Security		BearerAuth
func (a *API) getIOC(w http.ResponseWriter, r *http.Request) {
	ioc, err := a.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.writeServiceError(w, r, err, "Failed to get IOC")
		return
	}
	a.respondData(w, search.FormatResult(ioc, a.includeSensitive(r)))
}

// verifyIOC godoc
//
//	@Summary		Verify an IOC
//	@Description	Increments the verification count of an IOC
//	@Tags			iocs
//	@Produce		json
//	@Param			id	path		string	true	"IOC ID"
//	@Success		200	{object}	SuccessResponse{data=VerifyResponse}
//	@Failure		404	{object}	ErrorResponse
//	@Router			/api/v1/iocs/{id}/verify [patch]
//	@Security		BearerAuth
func (a *API) verifyIOC(w http.ResponseWriter, r *http.Request) {
	ioc, err := a.service.Verify(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		a.writeServiceError(w, r, err, "Failed to verify IOC")
		return
	}
	a.respondJSON(w, SuccessResponse{
		Success: true,
		Message: "IOC verification count updated",
		Data:    VerifyResponse{ID: ioc.ID, VerificationCount: ioc.VerificationCount},
	}, http.StatusOK)
}

// getIOCsByType godoc
//
//	@Summary		IOCs by type
//	@Description	Returns the 50 newest IOCs of a type
//	@Tags			iocs
//	@Produce		json
//	@Param			type	path		string	true	"IOC type"
//	@Success		200		{object}	SuccessResponse{data=[]TypeListItem}
//	@Failure		400		{object}	ErrorResponse
//	@Router			/api/v1/iocs/type/{type} [get]
//	@Security		BearerAuth
func (a *API) getIOCsByType(w http.ResponseWriter, r *http.Request) {
	iocType := search.Sanitize(mux.Vars(r)["type"])
	if err := core.ValidateVar("type", iocType, "ioctype"); err != nil {
		a.writeServiceError(w, r, err, "Failed to list IOCs by type")
		return
	}

	f := search.DefaultFilter()
	f.Limit = service.ByTypeLimit
	pred := search.Predicate{Clauses: []search.Clause{{Field: "type", Op: search.OpEq, Value: iocType}}}

	resp, err := a.engine.SearchWhere(r.Context(), f, pred, false)
	if err != nil {
		a.writeServiceError(w, r, err, "Failed to list IOCs by type")
		return
	}

	items := make([]TypeListItem, 0, len(resp.Results))
	for _, res := range resp.Results {
		items = append(items, TypeListItem{
			ID:          res.ID,
			Value:       res.Value,
			ThreatLevel: res.ThreatLevel,
			Confidence:  res.Confidence,
			CreatedAt:   res.CreatedAt,
		})
	}
	a.respondData(w, items)
}
