package search

import (
	"time"
	"unicode/utf8"

	"threatshare/core"
)

// MaxDescriptionLength is the number of characters of a description shown publicly
const MaxDescriptionLength = 200

// Ellipsis marks a truncated description
const Ellipsis = "..."

// Result is the public shape of an IOC in search responses and exports.
// IsAnonymous and FullDescription are only set for authorized callers.
type Result struct {
	ID                string           `json:"id"`
	Type              core.IOCType     `json:"type"`
	Value             string           `json:"value"`
	ThreatLevel       core.ThreatLevel `json:"threatLevel"`
	Confidence        int              `json:"confidence"`
	Description       string           `json:"description"`
	Tags              []string         `json:"tags"`
	FirstSeen         *time.Time       `json:"firstSeen,omitempty"`
	LastSeen          *time.Time       `json:"lastSeen,omitempty"`
	Submitter         string           `json:"submitter"`
	Status            core.IOCStatus   `json:"status"`
	VerificationCount int              `json:"verificationCount"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`

	IsAnonymous     *bool   `json:"isAnonymous,omitempty"`
	FullDescription *string `json:"fullDescription,omitempty"`
}

// FormatResults projects records into their response shape. Unless
// includeSensitive is set, descriptions are truncated and the anonymity
// flag is withheld; anonymous submitters are always masked.
func FormatResults(iocs []*core.IOC, includeSensitive bool) []Result {
	results := make([]Result, 0, len(iocs))
	for _, ioc := range iocs {
		results = append(results, FormatResult(ioc, includeSensitive))
	}
	return results
}

// FormatResult projects a single record
func FormatResult(ioc *core.IOC, includeSensitive bool) Result {
	tags := ioc.Tags
	if tags == nil {
		tags = []string{}
	}
	verifications := ioc.VerificationCount
	if verifications < 0 {
		verifications = 0
	}

	r := Result{
		ID:                ioc.ID,
		Type:              ioc.Type,
		Value:             ioc.Value,
		ThreatLevel:       ioc.ThreatLevel,
		Confidence:        ioc.Confidence,
		Description:       TruncateDescription(ioc.Description),
		Tags:              append([]string{}, tags...),
		FirstSeen:         ioc.FirstSeen,
		LastSeen:          ioc.LastSeen,
		Submitter:         ioc.DisplaySubmitter(),
		Status:            ioc.Status,
		VerificationCount: verifications,
		CreatedAt:         ioc.CreatedAt,
		UpdatedAt:         ioc.UpdatedAt,
	}

	if includeSensitive {
		anon := ioc.IsAnonymous
		full := ioc.Description
		r.IsAnonymous = &anon
		r.FullDescription = &full
	}
	return r
}

// TruncateDescription cuts s to MaxDescriptionLength characters, adding an ellipsis when cut
func TruncateDescription(s string) string {
	if utf8.RuneCountInString(s) <= MaxDescriptionLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxDescriptionLength]) + Ellipsis
}
