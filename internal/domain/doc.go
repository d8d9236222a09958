// Package domain models UK-style road accident records and the cleaning
// rules applied to the raw dataset.
//
// # Data Source
//
// The source is a single delimited file of accident reports in the STATS19
// tradition: one row per reported accident, with free-text categorical
// columns, a day-month-year date column, an hour:minute time column, and
// irregular header spellings ("Accident Date", "Local_Authority_(District)",
// "Speed_limit"). Headers are normalized to snake_case identifiers before
// any other processing; see [NormalizeHeader].
//
// # Cleaning Conventions
//
// Severity ("Accident_Severity" column):
//
//	Closed enum {Fatal, Serious, Slight}. The raw data contains the known
//	misspelling "fetal", which is corrected to "Fatal". Any other spelling
//	that does not match the three canonical values after lowercasing and
//	capitalizing is downgraded to "Unknown" rather than rejected; a
//	misread severity must never abort ingestion. See [FixSeverity].
//
// Open-vocabulary categoricals (weather, light, road type, ...):
//
//	Values pass through trimmed with their original casing preserved.
//	Empty strings, the literal tokens "nan"/"none"/"null" (any case), and
//	any value containing "missing" or "out of range" collapse to the
//	canonical "Unknown" token. Cleaned categorical columns are therefore
//	never empty, but their vocabulary is whatever the source used, so
//	consumers must derive category sets from the data, not assume one.
//	See [CleanCategory].
//
// Temporal columns:
//
//	Dates use day-month-year ("31-12-2020"); times use hour:minute
//	("15:04"). Unparseable values become nil, never a sentinel date, and
//	date failures are counted in the load diagnostics. Year, month token
//	("2020-12"), month number, and the English weekday name are derived
//	only when the date parsed.
//
// Day of week:
//
//	Resolution order: the source day-of-week column (after categorical
//	repair), then the weekday derived from the parsed date, then
//	"Unknown". The final value is constrained to the ordered Monday..Sunday
//	domain; anything else resolves to "Unknown". See [ResolveDayOfWeek].
//
// # Severity Score
//
// The ordinal score is a pure function of severity: Slight=1, Serious=2,
// Fatal=3. Unknown has no score. The score feeds mean-severity aggregates
// and the map hotspot weighting.
package domain
