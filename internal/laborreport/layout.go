package laborreport

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/phillip-england/laborsuite/internal/dates"
)

var validate = validator.New()

// Layout carries every position and marker string tied to the payroll
// vendor's export format. The sub-header row sits directly below
// DayHeaderRow and associate rows start directly below that.
type Layout struct {
	DayHeaderRow        int      `yaml:"day_header_row" validate:"gte=0"`
	WeekEndingLabel     string   `yaml:"week_ending_label" validate:"required"`
	WeekEndingScanRows  int      `yaml:"week_ending_scan_rows" validate:"gt=0"`
	WeekEndingScanCols  int      `yaml:"week_ending_scan_cols" validate:"gt=0"`
	WeekEndingLookahead int      `yaml:"week_ending_lookahead" validate:"gte=0"`
	ClassifyCells       int      `yaml:"classify_cells" validate:"gt=0"`
	IdentityCells       int      `yaml:"identity_cells" validate:"gt=0"`
	RegularMarkers      []string `yaml:"regular_markers" validate:"min=1,dive,required"`
	OvertimeMarkers     []string `yaml:"overtime_markers" validate:"min=1,dive,required"`
	SkipMarkers         []string `yaml:"skip_markers" validate:"dive,required"`
	Shift1Boundary      string   `yaml:"shift1_boundary" validate:"required"`
	Shift2Boundary      string   `yaml:"shift2_boundary" validate:"required,nefield=Shift1Boundary"`
	DirectMarker        string   `yaml:"direct_marker" validate:"required"`
	IndirectMarker      string   `yaml:"indirect_marker" validate:"required,nefield=DirectMarker"`
}

func DefaultLayout() Layout {
	return Layout{
		DayHeaderRow:        4,
		WeekEndingLabel:     "week ending",
		WeekEndingScanRows:  30,
		WeekEndingScanCols:  20,
		WeekEndingLookahead: 3,
		ClassifyCells:       10,
		IdentityCells:       15,
		RegularMarkers:      []string{"reg"},
		OvertimeMarkers:     []string{"ot", "overtime"},
		SkipMarkers:         []string{"total", "grand", "summary", "department total", "dept total"},
		Shift1Boundary:      "shift 1 total",
		Shift2Boundary:      "shift 2 total",
		DirectMarker:        "004-251-211",
		IndirectMarker:      "005-251-221",
	}
}

// LoadLayout reads YAML overrides on top of DefaultLayout. An empty path
// yields the defaults.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	if strings.TrimSpace(path) == "" {
		return layout, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout: %w", err)
	}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return Layout{}, fmt.Errorf("parse layout: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return Layout{}, err
	}
	return layout, nil
}

func (l Layout) Validate() error {
	if err := validate.Struct(l); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid layout: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid layout: %w", err)
	}
	return nil
}

func (l Layout) SubHeaderRow() int { return l.DayHeaderRow + 1 }

func (l Layout) DataStartRow() int { return l.DayHeaderRow + 2 }

func (l Layout) weekEndingScan() dates.WeekEndingScan {
	return dates.WeekEndingScan{
		Label:      l.WeekEndingLabel,
		Rows:       l.WeekEndingScanRows,
		Cols:       l.WeekEndingScanCols,
		Lookahead:  l.WeekEndingLookahead,
		HeaderRows: l.DataStartRow(),
	}
}

func fold(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}

func foldAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if f := fold(v); f != "" {
			out = append(out, f)
		}
	}
	return out
}
