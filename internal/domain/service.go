package domain

import (
	"regexp"
	"strings"
	"time"
)

// Source identifies the government pricing system a service row came from.
type Source string

const (
	SourceSINAPI   Source = "sinapi"
	SourceSINAPISP Source = "sinapi_sp"
	SourceSINAPICE Source = "sinapi_ce"
	SourceSICRO    Source = "sicro"
	SourceSICONV   Source = "siconv"
	SourceCPOS     Source = "cpos"
	SourceEMOP     Source = "emop"
	SourceUnknown  Source = "unknown"
)

// Validation bounds for service rows.
const (
	MinDescriptionLength = 10
	MinValue             = 0.01
	MaxValue             = 999_999_999.99
)

var (
	sinapiCodePattern = regexp.MustCompile(`^\d{5,6}$`)
	sicroCodePattern  = regexp.MustCompile(`^[A-Z]\d{3,4}$`)
)

// Service is the canonical representation of one priced-service line
// extracted from a government spreadsheet.
type Service struct {
	ID          int64
	Source      Source
	OriginFile  string
	ServiceCode string
	BaseDate    time.Time
	Description string
	Unit        string
	IsLoaded    bool
	Value       float64
	CreatedAt   time.Time
}

// ValidSource reports whether s names a known pricing system.
func ValidSource(s Source) bool {
	switch s {
	case SourceSINAPI, SourceSINAPISP, SourceSINAPICE, SourceSICRO,
		SourceSICONV, SourceCPOS, SourceEMOP, SourceUnknown:
		return true
	}
	return false
}

// NormalizeCode strips the punctuation used in printed service codes so
// that "874-49" and "874.49" compare equal to "87449".
func NormalizeCode(code string) string {
	code = strings.ReplaceAll(code, ".", "")
	code = strings.ReplaceAll(code, "-", "")
	return strings.TrimSpace(code)
}

// Validate checks the canonical row constraints. Rows failing validation are
// dropped from the structured store but may still be indexed as chunks.
func (s *Service) Validate() error {
	if strings.TrimSpace(s.ServiceCode) == "" {
		return ErrEmptyServiceCode
	}
	desc := strings.TrimSpace(s.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if len([]rune(desc)) < MinDescriptionLength {
		return ErrDescriptionTooShort
	}
	if s.Value < MinValue || s.Value > MaxValue {
		return ErrPriceOutOfRange
	}

	switch s.Source {
	case SourceSINAPI, SourceSINAPISP, SourceSINAPICE:
		if !sinapiCodePattern.MatchString(NormalizeCode(s.ServiceCode)) {
			return ErrInvalidCodePattern
		}
	case SourceSICRO:
		if !sicroCodePattern.MatchString(strings.TrimSpace(s.ServiceCode)) {
			return ErrInvalidCodePattern
		}
	}

	return nil
}
