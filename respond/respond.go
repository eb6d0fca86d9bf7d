// Package respond builds the Hebrew user-facing messages for the structured
// data handlers. Formatting is fixed here so handlers stay free of string
// assembly and the wording can be adjusted in one place.
package respond

import (
	"fmt"
	"strings"
	"time"
)

// humanDate is the display format for dates in user-facing messages.
const humanDate = "02/01/2006"

// DailyContainers reports the container count of a single day.
func DailyContainers(count int, day time.Time) string {
	return fmt.Sprintf("%s | מספר המכולות שטופלו הוא %d.\nלמידע נוסף, שאל שאלה אחרת או בקש סיכום נוסף.",
		day.Format(humanDate), count)
}

// ContainersRange reports the container count between two dates inclusive.
func ContainersRange(count int, start, end time.Time) string {
	return fmt.Sprintf("בין %s ל-%s נפרקו %d מכולות.",
		start.Format(humanDate), end.Format(humanDate), count)
}

// VehiclesRange reports the vehicle count between two dates inclusive.
func VehiclesRange(count int, start, end time.Time) string {
	return fmt.Sprintf("בין %s ל-%s טופלו %d רכבים.",
		start.Format(humanDate), end.Format(humanDate), count)
}

// MonthlyContainers reports the container count of one calendar month.
func MonthlyContainers(count, month, year int) string {
	return fmt.Sprintf("בחודש %02d/%d נפרקו %d מכולות.", month, year, count)
}

// ComparisonContainers reports the container counts of two months and their
// difference.
func ComparisonContainers(count1, month1, year1, count2, month2, year2, difference int) string {
	var trend string
	switch {
	case difference > 0:
		trend = fmt.Sprintf("עלייה של %d מכולות.", difference)
	case difference < 0:
		trend = fmt.Sprintf("ירידה של %d מכולות.", -difference)
	default:
		trend = "ללא שינוי."
	}
	return fmt.Sprintf("השוואת מכולות:\n%02d/%d: %d מכולות\n%02d/%d: %d מכולות\n%s",
		month1, year1, count1, month2, year2, count2, trend)
}

// PortStatus is one terminal's answer to a container status lookup.
type PortStatus struct {
	PortName string
	Summary  string
	Err      error
}

// ContainerStatus reports the per-terminal lookup results for one container
// identifier. Terminals that failed are listed as unavailable rather than
// omitted.
func ContainerStatus(containerID string, statuses []PortStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "סטטוס מכולה %s:\n", containerID)
	if len(statuses) == 0 {
		b.WriteString("לא התקבל מידע מאף נמל.")
		return b.String()
	}
	for _, status := range statuses {
		if status.Err != nil {
			fmt.Fprintf(&b, "• %s: המידע אינו זמין כרגע\n", status.PortName)
			continue
		}
		fmt.Fprintf(&b, "• %s: %s\n", status.PortName, status.Summary)
	}
	return strings.TrimRight(b.String(), "\n")
}

// StatusUnavailable is returned when no status lookup client is configured.
func StatusUnavailable() string {
	return "שירות בדיקת הסטטוס אינו זמין כרגע."
}

// Fallback is the generic could-not-understand message.
func Fallback() string {
	return "מצטער, לא הצלחתי להבין את הבקשה. נסה לנסח מחדש או לשאול שאלה אחרת."
}
