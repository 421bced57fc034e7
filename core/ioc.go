package core

import (
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// IOC Types and Constants
// =============================================================================

// IOCType represents the type of indicator of compromise
type IOCType string

const (
	IOCTypeIP         IOCType = "ip"
	IOCTypeDomain     IOCType = "domain"
	IOCTypeURL        IOCType = "url"
	IOCTypeHashMD5    IOCType = "hash-md5"
	IOCTypeHashSHA1   IOCType = "hash-sha1"
	IOCTypeHashSHA256 IOCType = "hash-sha256"
	IOCTypeEmail      IOCType = "email"
	IOCTypeCIDR       IOCType = "cidr"
	IOCTypeASN        IOCType = "asn"
)

// AllIOCTypes lists every accepted IOC type, in display order
var AllIOCTypes = []IOCType{
	IOCTypeIP, IOCTypeDomain, IOCTypeURL,
	IOCTypeHashMD5, IOCTypeHashSHA1, IOCTypeHashSHA256,
	IOCTypeEmail, IOCTypeCIDR, IOCTypeASN,
}

// IsValid checks if the IOC type is valid
func (t IOCType) IsValid() bool {
	for _, valid := range AllIOCTypes {
		if t == valid {
			return true
		}
	}
	return false
}

// IOCStatus represents the lifecycle status of an IOC
type IOCStatus string

const (
	IOCStatusPending   IOCStatus = "pending"
	IOCStatusConfirmed IOCStatus = "confirmed"
)

// AllIOCStatuses returns all valid IOC statuses
var AllIOCStatuses = []IOCStatus{IOCStatusPending, IOCStatusConfirmed}

// IsValid checks if the IOC status is valid
func (s IOCStatus) IsValid() bool {
	for _, valid := range AllIOCStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

// ThreatLevel is the severity classification of an IOC.
// Its string form does not sort by severity; use Order for comparisons.
type ThreatLevel string

const (
	ThreatLevelLow      ThreatLevel = "low"
	ThreatLevelMedium   ThreatLevel = "medium"
	ThreatLevelHigh     ThreatLevel = "high"
	ThreatLevelCritical ThreatLevel = "critical"
)

// AllThreatLevels lists the threat levels from least to most severe
var AllThreatLevels = []ThreatLevel{
	ThreatLevelLow, ThreatLevelMedium, ThreatLevelHigh, ThreatLevelCritical,
}

var threatLevelOrder = map[ThreatLevel]int{
	ThreatLevelLow:      1,
	ThreatLevelMedium:   2,
	ThreatLevelHigh:     3,
	ThreatLevelCritical: 4,
}

// Order returns the severity ordinal: low=1 through critical=4, 0 for anything else.
func (l ThreatLevel) Order() int {
	return threatLevelOrder[l]
}

// IsValid checks if the threat level is one of the known levels
func (l ThreatLevel) IsValid() bool {
	return l.Order() > 0
}

// =============================================================================
// IOC Value Validation
// =============================================================================

var (
	// Domain pattern - ReDoS-safe
	domainPattern = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)
	md5Pattern    = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)
	sha1Pattern   = regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	sha256Pattern = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)
	asnPattern    = regexp.MustCompile(`^(?i:AS)?\d{1,10}$`)
	// TagPattern is the accepted character set for tags and tag filters
	TagPattern = regexp.MustCompile(`^[a-zA-Z0-9\s,.-]+$`)
)

// Maximum lengths for IOC fields
const (
	MaxIOCValueLength       = 2048
	MaxIOCDescriptionLength = 5000
	MaxIOCTagLength         = 50
	MaxIOCTagCount          = 20
	MaxConfidence           = 100
)

// AnonymousSubmitter is rendered in place of the submitter of anonymous IOCs
const AnonymousSubmitter = "Anonymous"

// SystemSubmitter is recorded when a non-anonymous IOC has no authenticated user
const SystemSubmitter = "System"

// ValidateIOCValue validates an IOC value based on its type
func ValidateIOCValue(iocType IOCType, value string) error {
	normalizedValue := strings.TrimSpace(value)
	if normalizedValue == "" {
		return fmt.Errorf("IOC value cannot be empty")
	}
	if len(normalizedValue) > MaxIOCValueLength {
		return fmt.Errorf("IOC value exceeds maximum length of %d characters", MaxIOCValueLength)
	}

	switch iocType {
	case IOCTypeIP:
		if net.ParseIP(normalizedValue) == nil {
			return fmt.Errorf("invalid IP address format")
		}
	case IOCTypeCIDR:
		if _, _, err := net.ParseCIDR(normalizedValue); err != nil {
			return fmt.Errorf("invalid CIDR notation: %w", err)
		}
	case IOCTypeDomain:
		if !domainPattern.MatchString(strings.ToLower(normalizedValue)) {
			return fmt.Errorf("invalid domain format")
		}
	case IOCTypeHashMD5:
		if !md5Pattern.MatchString(normalizedValue) {
			return fmt.Errorf("invalid MD5 hash (must be 32 hex characters)")
		}
	case IOCTypeHashSHA1:
		if !sha1Pattern.MatchString(normalizedValue) {
			return fmt.Errorf("invalid SHA1 hash (must be 40 hex characters)")
		}
	case IOCTypeHashSHA256:
		if !sha256Pattern.MatchString(normalizedValue) {
			return fmt.Errorf("invalid SHA256 hash (must be 64 hex characters)")
		}
	case IOCTypeURL:
		parsed, err := url.ParseRequestURI(normalizedValue)
		if err != nil {
			return fmt.Errorf("invalid URL format: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("URL must use http or https scheme")
		}
	case IOCTypeEmail:
		if _, err := mail.ParseAddress(normalizedValue); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}
	case IOCTypeASN:
		if !asnPattern.MatchString(normalizedValue) {
			return fmt.Errorf("invalid ASN (expected AS<number> or <number>)")
		}
		digits := strings.TrimLeft(strings.ToUpper(normalizedValue), "AS")
		if _, err := strconv.ParseUint(digits, 10, 32); err != nil {
			return fmt.Errorf("ASN out of range")
		}
	default:
		return fmt.Errorf("unknown IOC type: %s", iocType)
	}

	return nil
}

// NormalizeIOCValue normalizes an IOC value for consistent storage and matching
func NormalizeIOCValue(iocType IOCType, value string) string {
	normalized := strings.TrimSpace(value)

	switch iocType {
	case IOCTypeIP, IOCTypeCIDR, IOCTypeDomain:
		return strings.ToLower(normalized)
	case IOCTypeHashMD5, IOCTypeHashSHA1, IOCTypeHashSHA256:
		return strings.ToLower(normalized)
	case IOCTypeURL:
		// Lowercase scheme and host only; paths are case-sensitive
		if parsed, err := url.Parse(normalized); err == nil {
			parsed.Scheme = strings.ToLower(parsed.Scheme)
			parsed.Host = strings.ToLower(parsed.Host)
			return parsed.String()
		}
		return normalized
	case IOCTypeEmail:
		if at := strings.LastIndex(normalized, "@"); at > 0 {
			return normalized[:at] + strings.ToLower(normalized[at:])
		}
		return normalized
	case IOCTypeASN:
		return "AS" + strings.TrimLeft(strings.ToUpper(normalized), "AS")
	default:
		return normalized
	}
}

// =============================================================================
// IOC Struct
// =============================================================================

// IOC represents a persistent indicator of compromise
type IOC struct {
	ID               string      `json:"id" bson:"_id"`
	Type             IOCType     `json:"type" bson:"type"`
	Value            string      `json:"value" bson:"value"`
	ThreatLevel      ThreatLevel `json:"threatLevel" bson:"threatLevel"`
	ThreatLevelOrder int         `json:"-" bson:"threatLevelOrder"`
	Confidence       int         `json:"confidence" bson:"confidence"`

	Description string   `json:"description" bson:"description"`
	Tags        []string `json:"tags" bson:"tags"`

	FirstSeen *time.Time `json:"firstSeen,omitempty" bson:"firstSeen,omitempty"`
	LastSeen  *time.Time `json:"lastSeen,omitempty" bson:"lastSeen,omitempty"`

	IsAnonymous       bool      `json:"isAnonymous" bson:"isAnonymous"`
	Submitter         string    `json:"submitter" bson:"submitter"`
	VerificationCount int       `json:"verificationCount" bson:"verificationCount"`
	Status            IOCStatus `json:"status" bson:"status"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// NewIOC creates a pending IOC with a fresh ID and a normalized value
func NewIOC(iocType IOCType, value string, level ThreatLevel, confidence int) *IOC {
	now := time.Now().UTC()
	ioc := &IOC{
		ID:         uuid.New().String(),
		Type:       iocType,
		Value:      NormalizeIOCValue(iocType, value),
		Confidence: confidence,
		Tags:       []string{},
		Status:     IOCStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	ioc.SetThreatLevel(level)
	return ioc
}

// SetThreatLevel updates the level together with its precomputed sort ordinal
func (ioc *IOC) SetThreatLevel(level ThreatLevel) {
	ioc.ThreatLevel = level
	ioc.ThreatLevelOrder = level.Order()
}

// Validate checks the record invariants that do not depend on storage
func (ioc *IOC) Validate() error {
	if !ioc.Type.IsValid() {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown IOC type %q", ioc.Type)}
	}
	if err := ValidateIOCValue(ioc.Type, ioc.Value); err != nil {
		return &ValidationError{Field: "value", Message: err.Error()}
	}
	if !ioc.ThreatLevel.IsValid() {
		return &ValidationError{Field: "threatLevel", Message: fmt.Sprintf("unknown threat level %q", ioc.ThreatLevel)}
	}
	if ioc.ThreatLevelOrder != ioc.ThreatLevel.Order() {
		return &ValidationError{Field: "threatLevel", Message: "threat level ordinal out of sync"}
	}
	if ioc.Confidence < 0 || ioc.Confidence > MaxConfidence {
		return &ValidationError{Field: "confidence", Message: "confidence must be between 0 and 100"}
	}
	if ioc.VerificationCount < 0 {
		return &ValidationError{Field: "verificationCount", Message: "verification count cannot be negative"}
	}
	if ioc.FirstSeen != nil && ioc.LastSeen != nil && ioc.LastSeen.Before(*ioc.FirstSeen) {
		return &ValidationError{Field: "lastSeen", Message: "lastSeen must not be before firstSeen"}
	}
	return nil
}

// DisplaySubmitter returns the submitter as it may be shown publicly
func (ioc *IOC) DisplaySubmitter() string {
	if ioc.IsAnonymous {
		return AnonymousSubmitter
	}
	return ioc.Submitter
}
