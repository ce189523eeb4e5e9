package laborreport

import (
	"regexp"
	"strings"
	"unicode"
)

var deptCodePattern = regexp.MustCompile(`\b\d{3}-\d{3}-\d{3}\b`)

// ClassifyLaborType reads the department-code markers anywhere in the row.
// Rows without a marker default to indirect and report the fallback.
func ClassifyLaborType(row []string, layout Layout) (labor LaborType, inferred bool) {
	direct := fold(layout.DirectMarker)
	indirect := fold(layout.IndirectMarker)
	sawIndirect := false
	for _, cell := range row {
		f := fold(cell)
		if strings.Contains(f, direct) {
			return Direct, false
		}
		if strings.Contains(f, indirect) {
			sawIndirect = true
		}
	}
	if sawIndirect {
		return Indirect, false
	}
	return Indirect, true
}

type identity struct {
	EID      string
	Name     string
	DeptCode string
}

// extractIdentity pulls a best-effort employee id, name and department code
// out of the leading cells of an associate row.
func extractIdentity(row []string, cells int) identity {
	if len(row) > cells {
		row = row[:cells]
	}
	var id identity
	for _, raw := range row {
		cell := strings.TrimSpace(raw)
		if cell == "" {
			continue
		}
		if id.DeptCode == "" {
			if code := deptCodePattern.FindString(cell); code != "" {
				id.DeptCode = code
				continue
			}
		}
		tokens := words(cell)
		if id.EID == "" {
			for _, token := range tokens {
				if isIdentifierToken(token) {
					id.EID = token
					break
				}
			}
		}
		if id.Name == "" {
			id.Name = nameFromCell(cell, tokens)
		}
	}
	return id
}

func nameFromCell(cell string, tokens []string) string {
	found := false
	for _, token := range tokens {
		if isWordToken(token, 3) {
			found = true
			break
		}
	}
	if !found {
		return ""
	}
	if !strings.ContainsFunc(cell, unicode.IsDigit) {
		return cell
	}
	var parts []string
	for _, token := range tokens {
		if !strings.ContainsFunc(token, unicode.IsDigit) {
			parts = append(parts, token)
		}
	}
	return strings.Join(parts, " ")
}
