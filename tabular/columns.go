package tabular

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/uyouii/isotherm-augmentor/common"
)

var (
	pressureKeys = []string{
		"p [bar]", "p[bar]", "p (bar)", "p(bar)",
		"pressure [bar]", "pressure(bar)", "pressure",
		"presion [bar]", "presión [bar]", "presion(bar)", "presión(bar)",
		"p", "presion", "presión",
	}
	uptakeKeys = []string{
		"mmol/g co2", "mmol/gco2", "mmol g-1 co2", "mmol/g",
		"uptake", "adsorption", "loading", "q", "q co2", "co2 uptake",
	}

	spaces  = regexp.MustCompile(`\s+`)
	pAsWord = regexp.MustCompile(`\bp\b`)
)

func normalizeHeader(s string) string {
	return spaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// FindColumns returns the indexes of the pressure and uptake columns.
// Exact key matches win in priority order, then a looser heuristic applies.
func FindColumns(headers []string) (int, int, error) {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	pCol := matchKeys(normalized, pressureKeys)
	yCol := matchKeys(normalized, uptakeKeys)

	if pCol < 0 {
		for i, h := range normalized {
			if strings.Contains(h, "bar") && (pAsWord.MatchString(h) || strings.Contains(h, "pressure") ||
				strings.Contains(h, "presion") || strings.Contains(h, "presión")) {
				pCol = i
				break
			}
		}
	}
	if yCol < 0 {
		for i, h := range normalized {
			if (strings.Contains(h, "mmol") && strings.Contains(h, "co2")) || h == "q" {
				yCol = i
				break
			}
		}
	}

	if pCol < 0 || yCol < 0 {
		return -1, -1, fmt.Errorf("%w: headers %q", common.ErrMissingColumns, headers)
	}
	return pCol, yCol, nil
}

func matchKeys(normalized, keys []string) int {
	for _, key := range keys {
		for i, h := range normalized {
			if h == key {
				return i
			}
		}
	}
	return -1
}
