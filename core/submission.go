package core

import (
	"strings"
	"time"
)

// IOCSubmission is the payload accepted when a client shares a new IOC
type IOCSubmission struct {
	Type        IOCType     `json:"type" yaml:"type" validate:"required,ioctype"`
	Value       string      `json:"value" yaml:"value" validate:"required,min=1,max=2048"`
	ThreatLevel ThreatLevel `json:"threatLevel" yaml:"threatLevel" validate:"required,threatlevel"`
	Confidence  *int        `json:"confidence" yaml:"confidence" validate:"required,gte=0,lte=100"`
	Description string      `json:"description,omitempty" yaml:"description" validate:"max=5000"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags" validate:"max=20,dive,min=1,max=50,ioctag"`
	FirstSeen   *time.Time  `json:"firstSeen,omitempty" yaml:"firstSeen"`
	LastSeen    *time.Time  `json:"lastSeen,omitempty" yaml:"lastSeen"`
	IsAnonymous *bool       `json:"isAnonymous,omitempty" yaml:"isAnonymous"`
}

// Anonymous reports the effective anonymity flag; submissions are anonymous unless stated otherwise
func (s *IOCSubmission) Anonymous() bool {
	return s.IsAnonymous == nil || *s.IsAnonymous
}

// Validate checks the submission, returning a ValidationError for the first bad field
func (s *IOCSubmission) Validate() error {
	if err := ValidateStruct(s); err != nil {
		return err
	}
	if err := ValidateIOCValue(s.Type, s.Value); err != nil {
		return &ValidationError{Field: "value", Message: err.Error()}
	}
	if s.FirstSeen != nil && s.LastSeen != nil && s.LastSeen.Before(*s.FirstSeen) {
		return &ValidationError{Field: "lastSeen", Message: "must not be before firstSeen"}
	}
	return nil
}

// ToIOC builds a pending IOC from a validated submission.
// username is the authenticated caller, empty when unknown.
func (s *IOCSubmission) ToIOC(username string) *IOC {
	ioc := NewIOC(s.Type, s.Value, s.ThreatLevel, *s.Confidence)
	ioc.Description = s.Description
	ioc.Tags = cleanTags(s.Tags)
	ioc.FirstSeen = s.FirstSeen
	ioc.LastSeen = s.LastSeen
	ioc.IsAnonymous = s.Anonymous()

	switch {
	case ioc.IsAnonymous:
		ioc.Submitter = AnonymousSubmitter
	case username != "":
		ioc.Submitter = username
	default:
		ioc.Submitter = SystemSubmitter
	}
	return ioc
}

// cleanTags trims tags and drops empties and repeats, keeping first occurrence order
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
