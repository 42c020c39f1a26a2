package docparse

import (
	"regexp"
	"strconv"
	"strings"

	"bloodbridge/constants"
	"bloodbridge/internal/llm"
)

// Blood-group extraction is a cascade of strategies ordered from most to
// least anchored. Lab reports print the group in wildly different layouts
// (labeled rows, worded signs, split ABO/Rh lines, OCR-mangled glyphs), so
// each tier handles one layout family and the first valid hit wins.

var bloodGroupCanon = []string{"AB+", "AB-", "A+", "A-", "B+", "B-", "O+", "O-"}

func isCanonGroup(g string) bool {
	for _, c := range bloodGroupCanon {
		if g == c {
			return true
		}
	}
	return false
}

// normalizeSign maps the worded and OCR variants of Rh onto "+"/"-".
func normalizeSign(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "+", "POSITIVE", "POS", "+VE", "+IVE":
		return "+"
	case "-", "NEGATIVE", "NEG", "-VE", "-IVE":
		return "-"
	default:
		return ""
	}
}

// precededByLetter rejects candidates whose ABO letters continue a longer
// uppercase token, so "AA+" and "BB-" never yield "A+" or "B+".
func precededByLetter(s string, idx int) bool {
	return idx > 0 && s[idx-1] >= 'A' && s[idx-1] <= 'Z'
}

var (
	aboLinePattern = regexp.MustCompile(`(?i)\bABO\s*(?:GROUP|TYPE|GROUPING)?\s*[:\-]?\s*(AB|A|B|O)\b`)
	rhLinePattern  = regexp.MustCompile(`(?i)\bRH(?:ESUS)?\s*(?:FACTOR|TYPE|TYPING)?\s*[:\-]?\s*(POSITIVE|NEGATIVE|POS|NEG|\+VE|-VE|\+|-)`)
)

// tierSplitABORh handles reports that print the ABO group and Rh factor on
// separate lines. The Rh match is searched near the ABO line first, then in
// the whole text.
func tierSplitABORh(text string) (string, bool) {
	loc := aboLinePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", false
	}
	letters := strings.ToUpper(text[loc[2]:loc[3]])

	windowStart := loc[0] - 100
	if windowStart < 0 {
		windowStart = 0
	}
	windowEnd := loc[1] + 200
	if windowEnd > len(text) {
		windowEnd = len(text)
	}

	for _, scope := range []string{text[windowStart:windowEnd], text} {
		if m := rhLinePattern.FindStringSubmatch(scope); m != nil {
			if sign := normalizeSign(m[1]); sign != "" {
				if g := letters + sign; isCanonGroup(g) {
					return g, true
				}
			}
		}
	}
	return "", false
}

var labeledGroupPattern = regexp.MustCompile(
	`(?i)(?:BLOOD\s*GROUP|BLOOD\s*TYPE|ABO\s*GROUP|ABO\s*TYPE|ABO|GROUPE\s*SANGUIN|GRUPO\s*SANGUINEO|BLUTGRUPPE|GROUP|RESULT|VALUE|FINDING|OBSERVATION)\s*[:\-]?\s*(AB|A|B|O)\s*(POSITIVE|NEGATIVE|POS|NEG|\+VE|-VE|\+|-)`)

// tierLabeled reads "Blood Group: B+" style rows, including the French,
// Spanish and German labels that show up on international reports.
func tierLabeled(text string) (string, bool) {
	m := labeledGroupPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	sign := normalizeSign(m[2])
	if sign == "" {
		return "", false
	}
	g := strings.ToUpper(m[1]) + sign
	return g, isCanonGroup(g)
}

var wordedGroupPattern = regexp.MustCompile(`(?i)\b(AB|A|B|O)\s*[\(\[]?\s*(POSITIVE|NEGATIVE|POS|NEG|\+VE|-VE|\+IVE|-IVE)\b`)

// tierWorded reads "B Positive", "O (NEGATIVE)", "A +ve".
func tierWorded(text string) (string, bool) {
	m := wordedGroupPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	sign := normalizeSign(m[2])
	if sign == "" {
		return "", false
	}
	g := strings.ToUpper(m[1]) + sign
	return g, isCanonGroup(g)
}

var standaloneGroupPattern = regexp.MustCompile(`\b(AB|A|B|O)\s?([+-])`)

// tierStandalone reads a bare "B+" or "AB -" anywhere in the text.
func tierStandalone(text string) (string, bool) {
	m := standaloneGroupPattern.FindStringSubmatch(strings.ToUpper(text))
	if m == nil {
		return "", false
	}
	g := m[1] + m[2]
	return g, isCanonGroup(g)
}

var (
	strippableRunes      = regexp.MustCompile(`[\s|._,;:'"()\[\]{}]+`)
	strippedGroupPattern = regexp.MustCompile(`(AB|A|B|O)([+-])`)
)

// tierAggressive collapses separators and unicode whitespace first, so
// "B | +" and "A -" still parse.
func tierAggressive(text string) (string, bool) {
	stripped := strippableRunes.ReplaceAllString(strings.ToUpper(text), "")
	for _, loc := range strippedGroupPattern.FindAllStringSubmatchIndex(stripped, -1) {
		if precededByLetter(stripped, loc[0]) {
			continue
		}
		g := stripped[loc[0]:loc[1]]
		if isCanonGroup(g) {
			return g, true
		}
	}
	return "", false
}

// tierForwardScan walks the text character by character: at each ABO letter
// it looks up to five characters ahead for an Rh sign. AB is tried before the
// single letters at every position.
func tierForwardScan(text string) (string, bool) {
	s := strings.ToUpper(text)
	for i := 0; i < len(s); i++ {
		if precededByLetter(s, i) {
			continue
		}
		var letters string
		switch {
		case strings.HasPrefix(s[i:], "AB"):
			letters = "AB"
		case s[i] == 'A' || s[i] == 'B' || s[i] == 'O':
			letters = string(s[i])
		default:
			continue
		}
		// The letter run must end before the lookahead starts.
		after := i + len(letters)
		if after < len(s) && s[after] >= 'A' && s[after] <= 'Z' {
			continue
		}
		for j := after; j < after+5 && j < len(s); j++ {
			if s[j] == '+' || s[j] == '-' {
				if g := letters + string(s[j]); isCanonGroup(g) {
					return g, true
				}
				break
			}
		}
	}
	return "", false
}

// tierReverseScan starts from each Rh sign and looks up to five characters
// back for the ABO letters.
func tierReverseScan(text string) (string, bool) {
	s := strings.ToUpper(text)
	for i := 0; i < len(s); i++ {
		if s[i] != '+' && s[i] != '-' {
			continue
		}
		for j := i - 1; j >= 0 && j >= i-5; j-- {
			c := s[j]
			if c != 'A' && c != 'B' && c != 'O' {
				continue
			}
			letters := string(c)
			if c == 'B' && j > 0 && s[j-1] == 'A' && !precededByLetter(s, j-1) {
				letters = "AB"
				j--
			} else if precededByLetter(s, j) {
				break
			}
			if g := letters + string(s[i]); isCanonGroup(g) {
				return g, true
			}
			break
		}
	}
	return "", false
}

var ocrGlyphFixes = strings.NewReplacer("0", "O", "8", "B")

// tierOCRCorrected retries the standalone match after mapping the glyphs
// tesseract most often confuses: zero for O and eight for B.
func tierOCRCorrected(text string) (string, bool) {
	return tierStandalone(ocrGlyphFixes.Replace(strings.ToUpper(text)))
}

var nonGroupRunes = regexp.MustCompile(`[^A-Z+\-]`)

// tierLastResort strips everything but letters and signs, then looks for the
// eight canonical values as substrings, AB groups first.
func tierLastResort(text string) (string, bool) {
	stripped := nonGroupRunes.ReplaceAllString(strings.ToUpper(text), "")
	for _, g := range bloodGroupCanon {
		idx := strings.Index(stripped, g)
		for idx >= 0 {
			if !precededByLetter(stripped, idx) {
				return g, true
			}
			next := strings.Index(stripped[idx+1:], g)
			if next < 0 {
				break
			}
			idx += 1 + next
		}
	}
	return "", false
}

var bloodGroupTiers = []func(string) (string, bool){
	tierSplitABORh,
	tierLabeled,
	tierWorded,
	tierStandalone,
	tierAggressive,
	tierForwardScan,
	tierReverseScan,
	tierOCRCorrected,
	tierLastResort,
}

// ExtractBloodGroup runs the cascade and returns the first valid group, or
// "" when no tier finds one.
func ExtractBloodGroup(text string) string {
	for _, tier := range bloodGroupTiers {
		if g, ok := tier(text); ok {
			return g
		}
	}
	return ""
}

var patientNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:PATIENT\s*NAME|NAME\s*OF\s*PATIENT)\s*[:\-]\s*([A-Za-z .]{2,50})`),
	regexp.MustCompile(`(?i)\bNAME\s*[:\-]\s*([A-Za-z .]{2,50})`),
	regexp.MustCompile(`\b(?:MR|MRS|MS|MASTER)\.?\s+([A-Z][A-Za-z .]{2,40})`),
}

func extractPatientName(text string) string {
	for _, pat := range patientNamePatterns {
		if m := pat.FindStringSubmatch(text); m != nil {
			name := strings.Join(strings.Fields(m[1]), " ")
			name = strings.Trim(name, ". ")
			if len(name) >= 2 && len(name) <= 50 {
				return name
			}
		}
	}
	return ""
}

var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bAGE\s*[:\-]?\s*(\d{1,3})`),
	regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:YEARS|YRS)\b`),
}

func extractPatientAge(text string) *int {
	for _, pat := range agePatterns {
		if m := pat.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 && n < 120 {
				return &n
			}
		}
	}
	return nil
}

var sexLabelPattern = regexp.MustCompile(`(?i)\b(?:SEX|GENDER)\s*[:\-]?\s*([MF])\b`)

func extractPatientGender(text string) string {
	if g := ExtractGender(text); g != "" {
		return g
	}
	if m := sexLabelPattern.FindStringSubmatch(text); m != nil {
		if strings.EqualFold(m[1], "F") {
			return string(constants.GenderFemale)
		}
		return string(constants.GenderMale)
	}
	return ""
}

var (
	hospitalLabelPattern = regexp.MustCompile(`(?i)(?:HOSPITAL|CLINIC|LABORATORY|LAB|DIAGNOSTICS?)\s*[:\-]\s*([A-Za-z0-9 .&,']{3,100})`)
	hospitalLinePattern  = regexp.MustCompile(`(?im)^\s*([A-Za-z0-9 .&,']*(?:HOSPITAL|CLINIC|LABORATORY|LABS?|DIAGNOSTICS?|MEDICAL|HEALTHCARE)[A-Za-z0-9 .&,']*)\s*$`)
)

func extractHospitalName(text string) string {
	if m := hospitalLabelPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := hospitalLinePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	// Letterheads put the facility name on the first line.
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= 5 && len(line) <= 100 {
			return line
		}
		if line != "" {
			break
		}
	}
	return ""
}

// Indian mobile numbers start with 6-9; the word boundaries keep a ten-digit
// run inside a longer number (an ID, a lab accession) from matching.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:PHONE|MOBILE|CONTACT|TEL)\s*(?:NO\.?)?\s*[:\-]?\s*(?:\+91[\s\-]?)?([6-9]\d{9})\b`),
	regexp.MustCompile(`\+91[\s\-]?([6-9]\d{9})\b`),
	regexp.MustCompile(`\b([6-9]\d{9})\b`),
}

func extractPhone(text string) string {
	for _, pat := range phonePatterns {
		if m := pat.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

var testDatePattern = regexp.MustCompile(`(?i)(?:REPORT\s*DATE|TEST\s*DATE|COLLECTION\s*DATE|COLLECTED(?:\s*ON)?|DATE)\s*[:\-]?\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`)

func extractTestDate(text string) string {
	if m := testDatePattern.FindStringSubmatch(text); m != nil {
		return normalizeDate(m[1])
	}
	return ""
}

// ParseReport runs all report heuristics over OCR text.
func ParseReport(text string) *llm.ReportFields {
	return &llm.ReportFields{
		BloodGroup:    ExtractBloodGroup(text),
		PatientName:   extractPatientName(text),
		PatientAge:    extractPatientAge(text),
		PatientGender: extractPatientGender(text),
		TestDate:      extractTestDate(text),
		HospitalName:  extractHospitalName(text),
		Phone:         extractPhone(text),
	}
}

// invalidGroupValues are OCR doublings and near-miss letters that must never
// be accepted as a blood group, whichever strategy produced them.
var invalidGroupValues = []string{
	"BB+", "BB-", "AA+", "AA-", "OO+", "OO-", "C+", "C-", "D+", "D-",
}

var medicalTerms = []string{
	"BLOOD", "HEMOGLOBIN", "HAEMOGLOBIN", "TEST", "REPORT",
	"LABORATORY", "LAB", "SAMPLE", "PATIENT", "HOSPITAL",
}

// ValidateReportDocument checks plausibility of a report extraction. A
// missing or invalid blood group is always an issue; softer findings escalate
// only in strict mode.
func ValidateReportDocument(text string, fields *llm.ReportFields, strict bool) ValidationResult {
	var issues, warnings []string

	addFinding := func(msg string) {
		if strict {
			issues = append(issues, msg)
		} else {
			warnings = append(warnings, msg)
		}
	}

	if len(text) < 50 {
		addFinding("extracted text is very short, document may be unreadable")
	}
	if fields.HospitalName == "" {
		addFinding("no hospital or laboratory name found")
	}

	switch {
	case fields.BloodGroup == "":
		issues = append(issues, "no blood group found in report")
	case !isCanonGroup(fields.BloodGroup) || isBlacklistedGroup(fields.BloodGroup):
		issues = append(issues, "invalid blood group value: "+fields.BloodGroup)
	}

	upper := strings.ToUpper(text)
	hasTerm := false
	for _, term := range medicalTerms {
		if strings.Contains(upper, term) {
			hasTerm = true
			break
		}
	}
	if !hasTerm {
		addFinding("document does not look like a medical report")
	}

	return finalize(issues, warnings, 25)
}

func isBlacklistedGroup(g string) bool {
	for _, bad := range invalidGroupValues {
		if strings.EqualFold(g, bad) {
			return true
		}
	}
	return false
}
