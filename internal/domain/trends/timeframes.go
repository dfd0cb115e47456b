// internal/domain/trends/timeframes.go

package trends

// Timeframe tokens accepted by the trends endpoints.
const (
	TimeframePastHour    = "now 1-H"
	TimeframePast4Hours  = "now 4-H"
	TimeframePastDay     = "now 1-d"
	TimeframePast7Days   = "now 7-d"
	TimeframePastMonth   = "today 1-m"
	TimeframePast3Months = "today 3-m"
	TimeframePastYear    = "today 12-m"
	TimeframePast5Years  = "today 5-y"
	TimeframeAllTime     = "2004-present"
)

// Defaults applied at the API boundary when a request omits them.
const (
	DefaultTimeframe  = TimeframePastYear
	DefaultGeo        = "US"
	DefaultResolution = ResolutionCountry
)

var timeframes = []string{
	TimeframePastHour,
	TimeframePast4Hours,
	TimeframePastDay,
	TimeframePast7Days,
	TimeframePastMonth,
	TimeframePast3Months,
	TimeframePastYear,
	TimeframePast5Years,
	TimeframeAllTime,
}

// Timeframes returns every accepted timeframe token, shortest window first.
func Timeframes() []string {
	out := make([]string, len(timeframes))
	copy(out, timeframes)
	return out
}

// IsValidTimeframe reports whether tf is one of the accepted tokens.
func IsValidTimeframe(tf string) bool {
	for _, t := range timeframes {
		if t == tf {
			return true
		}
	}
	return false
}

var regions = []string{
	"US", "GB", "CA", "AU", "DE", "FR", "IT", "ES", "NL", "BR",
	"MX", "AR", "CL", "CO", "PE", "VE", "JP", "KR", "IN", "SG",
	"MY", "TH", "VN", "PH", "ID", "NZ", "ZA", "EG", "NG", "KE",
}

// Regions returns the curated two-letter region codes. The list is
// advisory; an empty geo (worldwide) and codes outside it are accepted.
func Regions() []string {
	out := make([]string, len(regions))
	copy(out, regions)
	return out
}
