package site

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"sitemate/internal/errors"
)

// DateLayout is the calendar day a diary entry is filed under
const DateLayout = "2006-01-02"

// DiaryEntry is the daily site report. A project has at most one entry per day.
type DiaryEntry struct {
	ID        string         `json:"id"`
	Project   string         `json:"project"`
	Date      string         `json:"date"`
	Weather   string         `json:"weather,omitempty"`
	Labor     map[string]int `json:"labor,omitempty"`
	WorkDone  string         `json:"work_done"`
	Issues    string         `json:"issues,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Validate normalises d, filing it under today when no date is set
func (d *DiaryEntry) Validate(now time.Time) error {
	d.Project = strings.TrimSpace(d.Project)
	d.WorkDone = strings.TrimSpace(d.WorkDone)
	if d.Project == "" {
		return errors.InvalidInput("project", "empty")
	}
	if d.WorkDone == "" {
		return errors.InvalidInput("work_done", "empty")
	}
	for trade, n := range d.Labor {
		if n < 0 {
			return errors.InvalidInput("labor", fmt.Sprintf("%s=%d", trade, n))
		}
	}
	if d.Date == "" {
		d.Date = now.Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return errors.InvalidInput("date", d.Date)
	}
	d.CreatedAt = now
	return nil
}

// Headcount is the number of workers on site that day
func (d DiaryEntry) Headcount() int {
	n := 0
	for _, c := range d.Labor {
		n += c
	}
	return n
}

// LaborSummary lists the trades on site, e.g. "Labourer: 6, Mason: 4"
func (d DiaryEntry) LaborSummary() string {
	trades := make([]string, 0, len(d.Labor))
	for trade, n := range d.Labor {
		if n > 0 {
			trades = append(trades, trade)
		}
	}
	sort.Strings(trades)
	parts := make([]string, len(trades))
	for i, trade := range trades {
		parts[i] = fmt.Sprintf("%s: %d", trade, d.Labor[trade])
	}
	return strings.Join(parts, ", ")
}

// DiaryExists is returned for a second entry on the same day
func DiaryExists(project, date string) error {
	return errors.Conflict(fmt.Sprintf("diary already submitted for %s on %s", project, date)).
		WithContext("project", project)
}

// SortDiary orders entries newest day first
func SortDiary(ds []DiaryEntry) {
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].Date > ds[j].Date
	})
}
