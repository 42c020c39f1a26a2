package docparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bloodbridge/constants"
	"bloodbridge/internal/llm"
)

// Rule-based ID-card parsing. This is the fallback strategy when model
// extraction is disabled or produced nothing usable, so every heuristic here
// must tolerate noisy OCR text.

// The group separator is a literal space, not \s: card numbers never wrap,
// and a \s would glue the tail of a DOB line to digits on the next line.
var (
	idSpacedPattern  = regexp.MustCompile(`\b(\d{4} ?\d{4} ?\d{4})\b`)
	idCompactPattern = regexp.MustCompile(`\b(\d{12})\b`)
	idSeparators     = regexp.MustCompile(`[\s\-]`)
	nonDigitPattern  = regexp.MustCompile(`\D`)
)

// CleanIDNumber strips spaces and hyphens so "1234 5678 9012" and
// "1234-5678-9012" compare equal to "123456789012".
func CleanIDNumber(raw string) string {
	return idSeparators.ReplaceAllString(raw, "")
}

// ValidateIDNumber checks one candidate ID number. Structural defects are
// issues in both modes. The Verhoeff checksum runs only in strict mode, and
// even there a failure is only a warning because test documents and several
// legitimate cards in the wild fail it.
func ValidateIDNumber(raw string, strict bool) (issues, warnings []string) {
	cleaned := CleanIDNumber(raw)

	if len(cleaned) != 12 {
		issues = append(issues, fmt.Sprintf("ID number must be 12 digits, got %d", len(cleaned)))
	}
	if nonDigitPattern.MatchString(cleaned) {
		issues = append(issues, "ID number contains non-digit characters")
	}
	if len(cleaned) == 12 && cleaned == strings.Repeat(cleaned[:1], 12) {
		issues = append(issues, "ID number is a single repeated digit")
	}
	if cleaned == "123456789012" || cleaned == "012345678901" {
		issues = append(issues, "ID number is a sequential test value")
	}
	if strict && len(issues) == 0 && !verhoeffValid(cleaned) {
		warnings = append(warnings, "ID checksum validation failed (may be test data)")
	}
	return issues, warnings
}

// ExtractIDNumber scans text for a 12-digit ID, preferring the printed
// 4-4-4 grouping. Candidates with structural issues (repeated or sequential
// digits) are passed over in favor of a clean later candidate, but the first
// hit is still returned when nothing better exists; the document validator
// reports the issues. Checksum failures never disqualify a candidate.
func ExtractIDNumber(text string) string {
	first := ""
	for _, pat := range []*regexp.Regexp{idSpacedPattern, idCompactPattern} {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			cleaned := CleanIDNumber(m[1])
			if issues, _ := ValidateIDNumber(cleaned, false); len(issues) == 0 {
				return cleaned
			}
			if first == "" && len(cleaned) == 12 {
				first = cleaned
			}
		}
	}
	return first
}

// nameStopWords are tokens that regularly match the name patterns on real
// cards but are never a person's name.
var nameStopWords = []string{
	"GOVERNMENT", "INDIA", "AADHAAR", "AUTHORITY", "IDENTIFICATION",
	"UNIQUE", "ENROLLMENT", "MALE", "FEMALE", "ISSUED", "PROOF",
	"IDENTITY", "CITIZENSHIP",
}

// namePatterns are tried in order of reliability. The first well-formed hit
// wins.
var namePatterns = []*regexp.Regexp{
	// Name printed directly above the date of birth.
	regexp.MustCompile(`([A-Z][a-z]+(?: [A-Z][a-z]+)+)\s*\n?\s*(?:DOB|D\.O\.B|Date of Birth)`),
	// Postal-style "To: <name>" block on e-Aadhaar letters.
	regexp.MustCompile(`To[:\s]+([A-Z][A-Za-z .]+?)(?:\n|$)`),
	// Explicit label.
	regexp.MustCompile(`(?i)NAME[:\s]+([A-Z][A-Za-z .]+?)(?:\n|$)`),
	// Name followed by a relation marker.
	regexp.MustCompile(`([A-Z][A-Za-z .]+?)\s+(?:S/O|D/O|W/O|C/O)`),
	// Name printed directly above the gender line.
	regexp.MustCompile(`([A-Z][a-z]+(?: [A-Z][a-z]+)+)\s*\n?\s*(?:MALE|FEMALE)`),
	// Common surnames anchor a line that OCR otherwise mangles.
	regexp.MustCompile(`([A-Z][a-z]+ (?:Kumar|Singh|Sharma|Devi|Reddy|Patel|Gupta|Khan|Das|Yadav)(?: [A-Z][a-z]+)?)`),
	// Last resort: any run of 2-4 capitalized words.
	regexp.MustCompile(`\b([A-Z][a-z]+(?: [A-Z][a-z]+){1,3})\b`),
}

// ExtractName applies the ordered name heuristics.
func ExtractName(text string) string {
	for _, pat := range namePatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			if name := cleanName(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

func cleanName(raw string) string {
	name := strings.Join(strings.Fields(raw), " ")
	if len(name) < 4 || len(name) > 50 {
		return ""
	}
	upper := strings.ToUpper(name)
	for _, stop := range nameStopWords {
		if strings.Contains(upper, stop) {
			return ""
		}
	}
	return name
}

var dobPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:DOB|D\.O\.B\.?|Date of Birth|Birth)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`),
	regexp.MustCompile(`(?i)(?:YOB|Year of Birth)[:\s]*(\d{4})`),
	regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`),
}

// ExtractDateOfBirth returns the printed date of birth normalized to
// DD/MM/YYYY, or "" when absent. A bare year of birth becomes 01/01/YYYY.
func ExtractDateOfBirth(text string) string {
	for i, pat := range dobPatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if i == 1 {
			return "01/01/" + m[1]
		}
		return normalizeDate(m[1])
	}
	return ""
}

var dateSplit = regexp.MustCompile(`[/\-.]`)

func normalizeDate(raw string) string {
	parts := dateSplit.Split(raw, -1)
	if len(parts) != 3 {
		return raw
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return raw
	}
	if len(parts[2]) == 2 {
		// Two-digit years above 50 belong to the 1900s on identity cards.
		if year > 50 {
			year += 1900
		} else {
			year += 2000
		}
	}
	return fmt.Sprintf("%02d/%02d/%04d", day, month, year)
}

// AgeFromDOB computes the completed age in years at "now" for a DD/MM/YYYY
// date. It returns nil for unparseable dates and for ages outside (0, 120).
func AgeFromDOB(dob string, now time.Time) *int {
	parts := dateSplit.Split(dob, -1)
	if len(parts) != 3 {
		return nil
	}
	day, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	year, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}

	age := now.Year() - year
	if int(now.Month()) < month || (int(now.Month()) == month && now.Day() < day) {
		age--
	}
	if age <= 0 || age >= 120 {
		return nil
	}
	return &age
}

var (
	malePattern   = regexp.MustCompile(`\bMALE\b`)
	femalePattern = regexp.MustCompile(`\bFEMALE\b`)
)

// ExtractGender reads the gender line. FEMALE wins over MALE so the substring
// overlap can never misclassify.
func ExtractGender(text string) string {
	upper := strings.ToUpper(text)
	if femalePattern.MatchString(upper) {
		return string(constants.GenderFemale)
	}
	if malePattern.MatchString(upper) {
		return string(constants.GenderMale)
	}
	return ""
}

// ParseIdentity runs all identity heuristics over OCR text.
func ParseIdentity(text string) *llm.IdentityFields {
	fields := &llm.IdentityFields{
		IDNumber:    ExtractIDNumber(text),
		Name:        ExtractName(text),
		DateOfBirth: ExtractDateOfBirth(text),
		Gender:      ExtractGender(text),
	}
	if fields.DateOfBirth != "" {
		fields.Age = AgeFromDOB(fields.DateOfBirth, time.Now())
	}
	return fields
}

var identityKeywords = []string{
	"AADHAAR", "AADHAR", "UIDAI", "GOVERNMENT OF INDIA", "GOVERNMENT", "INDIA",
}

// ValidateIdentityDocument checks plausibility of the whole extraction.
// In strict mode most soft findings escalate to issues; a missing ID number
// is always an issue.
func ValidateIdentityDocument(text string, fields *llm.IdentityFields, strict bool) ValidationResult {
	var issues, warnings []string

	addFinding := func(msg string) {
		if strict {
			issues = append(issues, msg)
		} else {
			warnings = append(warnings, msg)
		}
	}

	if len(text) < 30 {
		addFinding("extracted text is very short, document may be unreadable")
	}

	if fields.IDNumber == "" {
		issues = append(issues, "no ID number found in document")
	} else {
		numIssues, numWarnings := ValidateIDNumber(fields.IDNumber, strict)
		issues = append(issues, numIssues...)
		warnings = append(warnings, numWarnings...)
	}

	if fields.Name == "" {
		addFinding("no name found in document")
	}
	if fields.DateOfBirth == "" && fields.Gender == "" {
		addFinding("neither date of birth nor gender found")
	}

	upper := strings.ToUpper(text)
	hasKeyword := false
	for _, kw := range identityKeywords {
		if strings.Contains(upper, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		addFinding("document does not look like an identity card")
	}

	if len(text) < 100 && fields.IDNumber != "" {
		warnings = append(warnings, "very little text extracted, image may be blurry")
	}

	return finalize(issues, warnings, 20)
}
